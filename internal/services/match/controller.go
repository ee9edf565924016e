package match

import (
	"log/slog"
	"sort"
	"time"

	"github.com/wanheng20031114/whgame-Tetris/internal/dependencies/clock"
	"github.com/wanheng20031114/whgame-Tetris/internal/dependencies/random"
	"github.com/wanheng20031114/whgame-Tetris/internal/model"
	"github.com/wanheng20031114/whgame-Tetris/internal/roomstore"
)

const (
	// RoomIDLength is the length of generated room identifiers
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room identifiers (avoid confusing chars)
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller owns the room lifecycle state machine: waiting -> playing ->
// finished -> waiting. It assigns match seeds, tracks eliminations and
// produces final rankings.
type Controller struct {
	rooms  *roomstore.Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewController creates a match controller
func NewController(rooms *roomstore.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		rooms:  rooms,
		clock:  clk,
		random: rnd,
		logger: logger.With(slog.String("component", "match")),
	}
}

// Elimination records one player's exit from a running match
type Elimination struct {
	PlayerID    model.PlayerID
	DisplayName string
	Rank        int
}

// GameOverResult describes the consequences of a game-over report
type GameOverResult struct {
	Room       *model.Room
	Eliminated *Elimination // nil if the player was already out
	Finished   bool
	Rankings   []model.Ranking   // populated when Finished
	DuelWinner *model.RoomPlayer // populated for duel rooms
}

// LeaveResult describes the consequences of a player leaving
type LeaveResult struct {
	RoomID      model.RoomID
	Kind        model.RoomKind
	Room        *model.Room // nil when the room was deleted
	RoomDeleted bool
	NewHostID   model.PlayerID  // non-empty when host authority transferred
	GameOver    *GameOverResult // non-nil when leaving mid-match eliminated the player
}

// CreateDuelRoom creates a 2-player room with the given player as its first member
func (c *Controller) CreateDuelRoom(player model.Player) (*model.Room, error) {
	return c.createRoom(player, model.KindDuel, model.DuelCapacity)
}

// CreateBattleRoom creates an N-player room hosted by the given player
func (c *Controller) CreateBattleRoom(host model.Player, maxPlayers int) (*model.Room, error) {
	if maxPlayers < model.BattleCapacityMin || maxPlayers > model.BattleCapacityMax {
		return nil, model.ErrInvalidCapacity
	}
	return c.createRoom(host, model.KindBattle, maxPlayers)
}

func (c *Controller) createRoom(player model.Player, kind model.RoomKind, capacity int) (*model.Room, error) {
	if _, err := c.rooms.FindByPlayer(player.ID); err == nil {
		return nil, model.ErrAlreadyInRoom
	}
	now := c.clock.Now()

	var id model.RoomID
	for {
		id = model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet))
		if !c.rooms.Exists(id) {
			break
		}
	}

	room := &model.Room{
		ID:       id,
		Kind:     kind,
		Status:   model.StatusWaiting,
		Capacity: capacity,
		HostID:   player.ID,
		Players: []*model.RoomPlayer{
			newRoomPlayer(player, now),
		},
		WinTally:  make(map[model.PlayerID]int),
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.rooms.Save(room)

	c.logger.Info("room created",
		slog.String("room", string(id)),
		slog.String("kind", string(kind)),
		slog.Int("capacity", capacity))
	return room, nil
}

// JoinRoom adds a player to a waiting room. For duel rooms the match starts
// automatically when the second player arrives; started reports that.
func (c *Controller) JoinRoom(id model.RoomID, player model.Player) (room *model.Room, started bool, err error) {
	room, err = c.rooms.Get(id)
	if err != nil {
		return nil, false, err
	}
	if _, ferr := c.rooms.FindByPlayer(player.ID); ferr == nil {
		return nil, false, model.ErrAlreadyInRoom
	}
	if room.Status != model.StatusWaiting {
		return nil, false, model.ErrMatchAlreadyStarted
	}
	if room.IsFull() {
		return nil, false, model.ErrRoomFull
	}

	room.Players = append(room.Players, newRoomPlayer(player, c.clock.Now()))
	room.UpdatedAt = c.clock.Now()
	c.rooms.AddPlayer(room.ID, player.ID)

	if room.Kind == model.KindDuel && room.IsFull() {
		c.startMatch(room)
		started = true
	}
	return room, started, nil
}

// Start begins a battle match. Only the host may start, and at least two
// players must be present.
func (c *Controller) Start(id model.RoomID, requester model.PlayerID) (*model.Room, error) {
	room, err := c.rooms.Get(id)
	if err != nil {
		return nil, err
	}
	if room.Kind == model.KindBattle && room.HostID != requester {
		return nil, model.ErrNotHost
	}
	if room.Status == model.StatusPlaying {
		return nil, model.ErrMatchAlreadyStarted
	}
	if len(room.Players) < 2 {
		return nil, model.ErrInsufficientPlayers
	}
	c.startMatch(room)
	return room, nil
}

// startMatch draws a fresh seed and resets every member for play
func (c *Controller) startMatch(room *model.Room) {
	room.Seed = c.random.Int63()
	room.Status = model.StatusPlaying
	for _, p := range room.Players {
		p.Score = 0
		p.Alive = true
		p.Rank = 0
		p.Board = nil
	}
	room.UpdatedAt = c.clock.Now()

	c.logger.Info("match started",
		slog.String("room", string(room.ID)),
		slog.Int64("seed", room.Seed),
		slog.Int("players", len(room.Players)))
}

// ReportGameOver handles a player's self-elimination: rank assignment,
// alive-count bookkeeping and the end check. Duel rooms short-circuit: the
// first report unconditionally makes the opponent the winner.
func (c *Controller) ReportGameOver(id model.RoomID, playerID model.PlayerID) (*GameOverResult, error) {
	room, err := c.rooms.Get(id)
	if err != nil {
		return nil, err
	}
	if room.Status != model.StatusPlaying {
		return nil, model.ErrMatchNotPlaying
	}
	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrNotInRoom
	}

	if room.Kind == model.KindDuel {
		return c.finishDuel(room, playerID), nil
	}

	result := &GameOverResult{Room: room}
	if player.Alive {
		// Rank equals the alive count before this player is removed from it,
		// so the first player out of an M-player match gets rank M.
		rank := room.AliveCount()
		player.Alive = false
		player.Rank = rank
		result.Eliminated = &Elimination{
			PlayerID:    player.ID,
			DisplayName: player.DisplayName,
			Rank:        rank,
		}
		c.logger.Info("player eliminated",
			slog.String("room", string(room.ID)),
			slog.String("player", string(player.ID)),
			slog.Int("rank", rank))
	}

	if room.AliveCount() <= 1 {
		c.finishBattle(room, result)
	}
	room.UpdatedAt = c.clock.Now()
	return result, nil
}

// finishDuel ends a duel: the surviving opponent wins regardless of score
func (c *Controller) finishDuel(room *model.Room, loserID model.PlayerID) *GameOverResult {
	winner := room.Opponent(loserID)
	room.Status = model.StatusFinished
	room.UpdatedAt = c.clock.Now()
	if winner != nil {
		room.WinTally[winner.ID]++
	}
	c.logger.Info("duel finished",
		slog.String("room", string(room.ID)),
		slog.String("loser", string(loserID)))
	return &GameOverResult{
		Room:       room,
		Finished:   true,
		DuelWinner: winner,
	}
}

// finishBattle closes out a battle match: the last survivor (if any) gets
// rank 1 and the roster is ranked ascending.
func (c *Controller) finishBattle(room *model.Room, result *GameOverResult) {
	for _, p := range room.Players {
		if p.Alive {
			p.Alive = false
			p.Rank = 1
		}
	}
	room.Status = model.StatusFinished

	rankings := make([]model.Ranking, 0, len(room.Players))
	for _, p := range room.Players {
		rankings = append(rankings, model.Ranking{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Rank:        p.Rank,
		})
	}
	sort.Slice(rankings, func(i, j int) bool { return rankings[i].Rank < rankings[j].Rank })

	result.Finished = true
	result.Rankings = rankings

	c.logger.Info("match finished",
		slog.String("room", string(room.ID)),
		slog.Int("players", len(rankings)))
}

// Reset returns a finished room to play. Battle rooms go back to waiting
// (host only); duel rooms immediately restart with a fresh seed.
func (c *Controller) Reset(id model.RoomID, requester model.PlayerID) (*model.Room, error) {
	room, err := c.rooms.Get(id)
	if err != nil {
		return nil, err
	}
	if room.GetPlayer(requester) == nil {
		return nil, model.ErrNotInRoom
	}
	if room.Status != model.StatusFinished {
		return nil, model.ErrInvalidResetState
	}

	if room.Kind == model.KindDuel {
		if len(room.Players) < 2 {
			return nil, model.ErrInsufficientPlayers
		}
		c.startMatch(room)
		return room, nil
	}

	if room.HostID != requester {
		return nil, model.ErrNotHost
	}
	room.Seed = 0
	room.Status = model.StatusWaiting
	for _, p := range room.Players {
		p.Score = 0
		p.Alive = true
		p.Rank = 0
		p.Board = nil
	}
	room.UpdatedAt = c.clock.Now()
	return room, nil
}

// Leave removes a player from their room: host transfer, mid-match
// elimination and empty-room cleanup all happen here. Disconnects are
// processed exactly like voluntary leaves.
func (c *Controller) Leave(playerID model.PlayerID) (*LeaveResult, error) {
	room, err := c.rooms.FindByPlayer(playerID)
	if err != nil {
		return nil, err
	}
	result := &LeaveResult{RoomID: room.ID, Kind: room.Kind}

	// Leaving mid-match counts as a game-over report first, while the
	// player is still on the roster and can be ranked.
	player := room.GetPlayer(playerID)
	if room.Status == model.StatusPlaying && player != nil && player.Alive {
		if gameOver, goErr := c.ReportGameOver(room.ID, playerID); goErr == nil {
			result.GameOver = gameOver
		}
	}

	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	c.rooms.RemovePlayer(playerID)

	if len(room.Players) == 0 {
		c.rooms.Delete(room.ID)
		result.RoomDeleted = true
		c.logger.Info("room deleted", slog.String("room", string(room.ID)))
		return result, nil
	}

	if room.Kind == model.KindBattle && room.HostID == playerID {
		room.HostID = room.Players[0].ID
		result.NewHostID = room.HostID
		c.logger.Info("host transferred",
			slog.String("room", string(room.ID)),
			slog.String("host", string(room.HostID)))
	}
	room.UpdatedAt = c.clock.Now()
	result.Room = room
	return result, nil
}

// UpdateScore records a player's client-reported score
func (c *Controller) UpdateScore(id model.RoomID, playerID model.PlayerID, score int) error {
	room, err := c.rooms.Get(id)
	if err != nil {
		return err
	}
	player := room.GetPlayer(playerID)
	if player == nil {
		return model.ErrNotInRoom
	}
	player.Score = score
	return nil
}

// UpdateBoard records a player's client-reported board snapshot
func (c *Controller) UpdateBoard(id model.RoomID, playerID model.PlayerID, board [][]int) error {
	room, err := c.rooms.Get(id)
	if err != nil {
		return err
	}
	player := room.GetPlayer(playerID)
	if player == nil {
		return model.ErrNotInRoom
	}
	player.Board = board
	return nil
}

// RoomFor returns the room containing the given player
func (c *Controller) RoomFor(playerID model.PlayerID) (*model.Room, error) {
	return c.rooms.FindByPlayer(playerID)
}

// GetRoom returns a room by id
func (c *Controller) GetRoom(id model.RoomID) (*model.Room, error) {
	return c.rooms.Get(id)
}

// ListRooms returns all rooms of a kind
func (c *Controller) ListRooms(kind model.RoomKind) []*model.Room {
	return c.rooms.List(kind)
}

func newRoomPlayer(player model.Player, joinedAt time.Time) *model.RoomPlayer {
	return &model.RoomPlayer{
		ID:          player.ID,
		DisplayName: player.DisplayName,
		Alive:       true,
		JoinedAt:    joinedAt,
	}
}
