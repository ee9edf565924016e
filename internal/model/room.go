package model

import "time"

// RoomID is a human-readable identifier for joining rooms
type RoomID string

// RoomKind distinguishes 2-player duel rooms from N-player battle rooms
type RoomKind string

const (
	KindDuel   RoomKind = "duel"   // exactly 2 players, auto-start on second join
	KindBattle RoomKind = "battle" // 3-21 players, host-controlled start/reset
)

// RoomStatus represents the current phase of a room's match
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"  // roster open, no seed assigned
	StatusPlaying  RoomStatus = "playing"  // match in progress
	StatusFinished RoomStatus = "finished" // terminal until explicit reset
)

// Capacity bounds per room kind
const (
	DuelCapacity      = 2
	BattleCapacityMin = 3
	BattleCapacityMax = 21
)

// RoomPlayer is one player's membership in a room, including the
// client-reported score and board snapshot the server relays as-is.
type RoomPlayer struct {
	ID          PlayerID
	DisplayName string
	Score       int
	Board       [][]int // last reported snapshot, nil until first report
	Alive       bool
	Rank        int // 0 while alive; 1 is the winner, larger is earlier out
	JoinedAt    time.Time
}

// Room represents one active match room
type Room struct {
	ID        RoomID
	Kind      RoomKind
	Status    RoomStatus
	Capacity  int
	Seed      int64 // shared piece-sequence seed, 0 until a match starts
	HostID    PlayerID
	Players   []*RoomPlayer
	WinTally  map[PlayerID]int // duel rematch win counts for this pairing
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetPlayer returns the member with the given player ID, or nil if not found
func (r *Room) GetPlayer(id PlayerID) *RoomPlayer {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AliveCount returns the number of members still alive
func (r *Room) AliveCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// AlivePlayers returns the members still alive, in roster order
func (r *Room) AlivePlayers() []*RoomPlayer {
	var alive []*RoomPlayer
	for _, p := range r.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// Opponent returns the other member of a duel room, or nil
func (r *Room) Opponent(id PlayerID) *RoomPlayer {
	for _, p := range r.Players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

// IsFull reports whether the roster has reached capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.Capacity
}

// Ranking is a room member's final placement in a finished match
type Ranking struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	Rank        int      `json:"rank"`
}
