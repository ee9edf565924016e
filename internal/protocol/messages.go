// Package protocol defines the JSON wire format exchanged with browser
// clients over the websocket connection.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

// MessageType identifies the kind of message sent over the wire.
type MessageType string

const (
	// Client -> Server messages
	MsgCreateDuel   MessageType = "create_duel"
	MsgJoinDuel     MessageType = "join_duel"
	MsgCreateBattle MessageType = "create_battle"
	MsgJoinBattle   MessageType = "join_battle"
	MsgStartBattle  MessageType = "start_battle"
	MsgResetRoom    MessageType = "reset_room"
	MsgGameAction   MessageType = "game_action"
	MsgChat         MessageType = "chat"
	MsgLeave        MessageType = "leave"
	MsgListDuels    MessageType = "list_duels"
	MsgListBattles  MessageType = "list_battles"

	// Server -> Client messages
	MsgRoomCreated   MessageType = "room_created"
	MsgRoomJoined    MessageType = "room_joined"
	MsgPlayerJoined  MessageType = "player_joined"
	MsgPlayerLeft    MessageType = "player_left"
	MsgHostChanged   MessageType = "host_changed"
	MsgGameStarted   MessageType = "game_started"
	MsgPeerUpdate    MessageType = "peer_update"
	MsgAttack        MessageType = "attack"
	MsgGarbage       MessageType = "garbage"
	MsgEliminated    MessageType = "eliminated"
	MsgDuelFinished  MessageType = "duel_finished"
	MsgMatchFinished MessageType = "match_finished"
	MsgRoomReset     MessageType = "room_reset"
	MsgDuelList      MessageType = "duel_list"
	MsgBattleList    MessageType = "battle_list"
	MsgChatRelay     MessageType = "chat_relay"
	MsgError         MessageType = "error"
)

// GameActionKind distinguishes the in-match events a client reports.
type GameActionKind string

const (
	ActionBoard    GameActionKind = "board"
	ActionScore    GameActionKind = "score"
	ActionAttack   GameActionKind = "attack"
	ActionGameOver GameActionKind = "game_over"
)

// Envelope is the top-level wire format for all messages.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an Envelope ready for sending.
func NewEnvelope(t MessageType, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s payload: %w", t, err)
	}
	return Envelope{Type: t, Payload: raw}, nil
}

// MustEnvelope is NewEnvelope for payloads built from internal state,
// which cannot fail to marshal.
func MustEnvelope(t MessageType, payload any) Envelope {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		panic(err)
	}
	return env
}

// --- Client -> Server payloads ---

// JoinRoomPayload carries the room code for join_duel and join_battle.
type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

// CreateBattlePayload carries the requested room size.
type CreateBattlePayload struct {
	Capacity int `json:"capacity"`
}

// GameActionPayload reports an in-match event from the client simulation.
type GameActionPayload struct {
	Kind GameActionKind `json:"kind"`
	// Board is the full grid for ActionBoard, row-major, 0 = empty.
	Board [][]int `json:"board,omitempty"`
	// Score is the client's total for ActionScore.
	Score int `json:"score,omitempty"`
	// Rows is the garbage row count for ActionAttack.
	Rows int `json:"rows,omitempty"`
}

// ChatPayload is a chat line scoped to the sender's room.
type ChatPayload struct {
	Text string `json:"text"`
}

// --- Server -> Client payloads ---

// PlayerInfo describes one room member.
type PlayerInfo struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Alive       bool   `json:"alive"`
	IsHost      bool   `json:"is_host"`
}

// RoomStatePayload is the full room view, sent on create, join, and
// whenever membership changes.
type RoomStatePayload struct {
	RoomID   string       `json:"room_id"`
	Kind     string       `json:"kind"`
	Status   string       `json:"status"`
	Capacity int          `json:"capacity"`
	HostID   string       `json:"host_id"`
	Players  []PlayerInfo `json:"players"`
}

// PlayerEventPayload announces a single member joining or leaving.
type PlayerEventPayload struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

// HostChangedPayload announces a host handover.
type HostChangedPayload struct {
	HostID string `json:"host_id"`
}

// GameStartedPayload tells every client to begin simulating from Seed.
type GameStartedPayload struct {
	Seed    int64        `json:"seed"`
	Players []PlayerInfo `json:"players"`
}

// PeerUpdatePayload relays one opponent's board or score.
type PeerUpdatePayload struct {
	PlayerID string         `json:"player_id"`
	Kind     GameActionKind `json:"kind"`
	Board    [][]int        `json:"board,omitempty"`
	Score    int            `json:"score,omitempty"`
}

// AttackPayload announces a routed attack to the whole room. Delivery
// of the garbage itself goes to the target alone.
type AttackPayload struct {
	From   string `json:"from"`
	Target string `json:"target"`
	Rows   int    `json:"rows"`
}

// GarbagePayload tells a client to insert garbage rows.
type GarbagePayload struct {
	Rows int    `json:"rows"`
	From string `json:"from"`
}

// EliminatedPayload announces a player topping out with their final rank.
type EliminatedPayload struct {
	PlayerID string `json:"player_id"`
	Rank     int    `json:"rank"`
}

// DuelFinishedPayload announces the duel result and running tally.
type DuelFinishedPayload struct {
	WinnerID string         `json:"winner_id"`
	LoserID  string         `json:"loser_id"`
	WinTally map[string]int `json:"win_tally"`
}

// RankingInfo is one row of the final standings.
type RankingInfo struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Rank        int    `json:"rank"`
}

// MatchFinishedPayload carries the final standings of a battle.
type MatchFinishedPayload struct {
	Rankings []RankingInfo `json:"rankings"`
}

// RoomInfo summarises one room for the lobby listing.
type RoomInfo struct {
	RoomID   string `json:"room_id"`
	Players  int    `json:"players"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

// RoomListPayload lists the rooms of one kind, for duel_list and
// battle_list.
type RoomListPayload struct {
	Rooms []RoomInfo `json:"rooms"`
}

// ChatRelayPayload fans a chat line out to the room.
type ChatRelayPayload struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

// ErrorPayload reports a failed request without closing the connection.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomState builds the shared room view from the authoritative room.
func RoomState(room *model.Room) RoomStatePayload {
	return RoomStatePayload{
		RoomID:   string(room.ID),
		Kind:     string(room.Kind),
		Status:   string(room.Status),
		Capacity: room.Capacity,
		HostID:   string(room.HostID),
		Players:  Members(room),
	}
}

// Members converts the room roster to wire form.
func Members(room *model.Room) []PlayerInfo {
	players := make([]PlayerInfo, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerInfo{
			PlayerID:    string(p.ID),
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Alive:       p.Alive,
			IsHost:      p.ID == room.HostID,
		})
	}
	return players
}
