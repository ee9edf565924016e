package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
	"github.com/wanheng20031114/whgame-Tetris/internal/protocol"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/attack"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/match"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/score"
)

// Relay routes client envelopes into the match and attack services and
// fans the resulting events back out to room members. A single mutex
// serialises all handling; room state is only ever touched from here.
type Relay struct {
	mu      sync.Mutex
	sender  Sender
	matches *match.Controller
	attacks *attack.Router
	auth    *auth.Service
	scores  *score.Service
	logger  *slog.Logger
}

func NewRelay(
	sender Sender,
	matches *match.Controller,
	attacks *attack.Router,
	authService *auth.Service,
	scores *score.Service,
	logger *slog.Logger,
) *Relay {
	return &Relay{
		sender:  sender,
		matches: matches,
		attacks: attacks,
		auth:    authService,
		scores:  scores,
		logger:  logger.With(slog.String("component", "relay")),
	}
}

// HandleMessage dispatches one client envelope.
func (r *Relay) HandleMessage(player model.Player, env protocol.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	switch env.Type {
	case protocol.MsgCreateDuel:
		err = r.createRoom(player, model.KindDuel, 0)
	case protocol.MsgCreateBattle:
		var p protocol.CreateBattlePayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = r.createRoom(player, model.KindBattle, p.Capacity)
		}
	case protocol.MsgJoinDuel, protocol.MsgJoinBattle:
		var p protocol.JoinRoomPayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = r.joinRoom(player, model.RoomID(p.RoomID))
		}
	case protocol.MsgStartBattle:
		err = r.startBattle(player)
	case protocol.MsgResetRoom:
		err = r.resetRoom(player)
	case protocol.MsgGameAction:
		var p protocol.GameActionPayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = r.gameAction(player, p)
		}
	case protocol.MsgChat:
		var p protocol.ChatPayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = r.chat(player, p.Text)
		}
	case protocol.MsgLeave:
		err = r.leave(player)
	case protocol.MsgListDuels:
		r.sendRoomList(player.ID, model.KindDuel)
	case protocol.MsgListBattles:
		r.sendRoomList(player.ID, model.KindBattle)
	default:
		r.logger.Warn("unknown message type",
			slog.String("player", string(player.ID)),
			slog.String("type", string(env.Type)))
		return
	}

	if err != nil {
		r.sendError(player.ID, err)
	}
}

// HandleDisconnect treats a dropped connection exactly like a leave.
func (r *Relay) HandleDisconnect(player model.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.leave(player)
	if err != nil && !errors.Is(err, model.ErrNotInRoom) && !errors.Is(err, model.ErrRoomNotFound) {
		r.logger.Error("disconnect cleanup failed",
			slog.String("player", string(player.ID)),
			slog.String("error", err.Error()))
	}
}

func (r *Relay) createRoom(player model.Player, kind model.RoomKind, capacity int) error {
	var (
		room *model.Room
		err  error
	)
	if kind == model.KindDuel {
		room, err = r.matches.CreateDuelRoom(player)
	} else {
		room, err = r.matches.CreateBattleRoom(player, capacity)
	}
	if err != nil {
		return err
	}

	r.logger.Info("room created",
		slog.String("room", string(room.ID)),
		slog.String("kind", string(room.Kind)),
		slog.String("player", string(player.ID)))
	r.sender.SendTo(player.ID, protocol.MustEnvelope(protocol.MsgRoomCreated, protocol.RoomState(room)))
	r.broadcastRoomList(room.Kind)
	return nil
}

func (r *Relay) joinRoom(player model.Player, id model.RoomID) error {
	room, started, err := r.matches.JoinRoom(id, player)
	if err != nil {
		return err
	}

	state := protocol.RoomState(room)
	r.sender.SendTo(player.ID, protocol.MustEnvelope(protocol.MsgRoomJoined, state))
	r.broadcast(room, protocol.MustEnvelope(protocol.MsgPlayerJoined, protocol.PlayerEventPayload{
		PlayerID:    string(player.ID),
		DisplayName: player.DisplayName,
	}), player.ID)

	if started {
		r.announceStart(room)
	}
	r.broadcastRoomList(room.Kind)
	return nil
}

func (r *Relay) startBattle(player model.Player) error {
	room, err := r.matches.RoomFor(player.ID)
	if err != nil {
		return err
	}
	room, err = r.matches.Start(room.ID, player.ID)
	if err != nil {
		return err
	}
	r.announceStart(room)
	r.broadcastRoomList(room.Kind)
	return nil
}

func (r *Relay) resetRoom(player model.Player) error {
	room, err := r.matches.RoomFor(player.ID)
	if err != nil {
		return err
	}
	room, err = r.matches.Reset(room.ID, player.ID)
	if err != nil {
		return err
	}

	// A duel reset relaunches the match directly; a battle goes back to
	// the waiting lobby until the host starts it again.
	if room.Status == model.StatusPlaying {
		r.announceStart(room)
	} else {
		r.broadcast(room, protocol.MustEnvelope(protocol.MsgRoomReset, protocol.RoomState(room)))
	}
	r.broadcastRoomList(room.Kind)
	return nil
}

func (r *Relay) gameAction(player model.Player, p protocol.GameActionPayload) error {
	room, err := r.matches.RoomFor(player.ID)
	if err != nil {
		return err
	}

	switch p.Kind {
	case protocol.ActionBoard:
		if err := r.matches.UpdateBoard(room.ID, player.ID, p.Board); err != nil {
			return err
		}
		r.broadcast(room, protocol.MustEnvelope(protocol.MsgPeerUpdate, protocol.PeerUpdatePayload{
			PlayerID: string(player.ID),
			Kind:     protocol.ActionBoard,
			Board:    p.Board,
		}), player.ID)
	case protocol.ActionScore:
		if err := r.matches.UpdateScore(room.ID, player.ID, p.Score); err != nil {
			return err
		}
		r.broadcast(room, protocol.MustEnvelope(protocol.MsgPeerUpdate, protocol.PeerUpdatePayload{
			PlayerID: string(player.ID),
			Kind:     protocol.ActionScore,
			Score:    p.Score,
		}), player.ID)
	case protocol.ActionAttack:
		return r.routeAttack(room, player, p.Rows)
	case protocol.ActionGameOver:
		return r.gameOver(room, player)
	default:
		r.logger.Warn("unknown game action",
			slog.String("player", string(player.ID)),
			slog.String("kind", string(p.Kind)))
	}
	return nil
}

func (r *Relay) routeAttack(room *model.Room, player model.Player, rows int) error {
	if room.Status != model.StatusPlaying {
		return model.ErrMatchNotPlaying
	}
	if rows <= 0 {
		return nil
	}

	target := r.attacks.SelectTarget(room, player.ID)
	if target == nil {
		return nil
	}

	// The whole room learns about the attack; only the target gets the
	// garbage itself.
	r.broadcast(room, protocol.MustEnvelope(protocol.MsgAttack, protocol.AttackPayload{
		From:   string(player.ID),
		Target: string(target.ID),
		Rows:   rows,
	}))
	r.sender.SendTo(target.ID, protocol.MustEnvelope(protocol.MsgGarbage, protocol.GarbagePayload{
		Rows: rows,
		From: string(player.ID),
	}))
	return nil
}

func (r *Relay) gameOver(room *model.Room, player model.Player) error {
	res, err := r.matches.ReportGameOver(room.ID, player.ID)
	if err != nil {
		return err
	}
	r.recordScore(res.Room, player.ID)
	r.announceGameOver(res)
	if res.Finished {
		r.broadcastRoomList(room.Kind)
	}
	return nil
}

// announceGameOver fans out the consequences of one game-over report.
func (r *Relay) announceGameOver(res *match.GameOverResult) {
	room := res.Room

	if res.Eliminated != nil {
		r.broadcast(room, protocol.MustEnvelope(protocol.MsgEliminated, protocol.EliminatedPayload{
			PlayerID: string(res.Eliminated.PlayerID),
			Rank:     res.Eliminated.Rank,
		}))
	}

	if !res.Finished {
		return
	}

	for _, p := range room.Players {
		r.recordScore(room, p.ID)
	}

	if res.DuelWinner != nil {
		tally := make(map[string]int, len(room.WinTally))
		for id, wins := range room.WinTally {
			tally[string(id)] = wins
		}
		var loserID string
		if res.Eliminated != nil {
			loserID = string(res.Eliminated.PlayerID)
		}
		r.broadcast(room, protocol.MustEnvelope(protocol.MsgDuelFinished, protocol.DuelFinishedPayload{
			WinnerID: string(res.DuelWinner.ID),
			LoserID:  loserID,
			WinTally: tally,
		}))
		return
	}

	rankings := make([]protocol.RankingInfo, 0, len(res.Rankings))
	for _, rank := range res.Rankings {
		rankings = append(rankings, protocol.RankingInfo{
			PlayerID:    string(rank.PlayerID),
			DisplayName: rank.DisplayName,
			Rank:        rank.Rank,
		})
	}
	r.broadcast(room, protocol.MustEnvelope(protocol.MsgMatchFinished, protocol.MatchFinishedPayload{
		Rankings: rankings,
	}))
}

func (r *Relay) chat(player model.Player, text string) error {
	if text == "" {
		return nil
	}
	room, err := r.matches.RoomFor(player.ID)
	if err != nil {
		return err
	}
	r.broadcast(room, protocol.MustEnvelope(protocol.MsgChatRelay, protocol.ChatRelayPayload{
		PlayerID:    string(player.ID),
		DisplayName: player.DisplayName,
		Text:        text,
	}))
	return nil
}

func (r *Relay) leave(player model.Player) error {
	res, err := r.matches.Leave(player.ID)
	if err != nil {
		return err
	}

	r.logger.Info("player left room",
		slog.String("room", string(res.RoomID)),
		slog.String("player", string(player.ID)))

	defer r.broadcastRoomList(res.Kind)
	if res.RoomDeleted {
		return nil
	}

	room := res.Room
	r.broadcast(room, protocol.MustEnvelope(protocol.MsgPlayerLeft, protocol.PlayerEventPayload{
		PlayerID:    string(player.ID),
		DisplayName: player.DisplayName,
	}))
	if res.NewHostID != "" {
		r.broadcast(room, protocol.MustEnvelope(protocol.MsgHostChanged, protocol.HostChangedPayload{
			HostID: string(res.NewHostID),
		}))
	}
	if res.GameOver != nil {
		r.announceGameOver(res.GameOver)
	}
	return nil
}

func (r *Relay) sendRoomList(to model.PlayerID, kind model.RoomKind) {
	r.sender.SendTo(to, protocol.MustEnvelope(listMessageType(kind), r.roomList(kind)))
}

// broadcastRoomList pushes the room listing for one kind to every
// connected player who is not in a room, so lobby screens stay current.
func (r *Relay) broadcastRoomList(kind model.RoomKind) {
	env := protocol.MustEnvelope(listMessageType(kind), r.roomList(kind))
	r.sender.ForEach(func(id model.PlayerID) {
		if _, err := r.matches.RoomFor(id); err != nil {
			r.sender.SendTo(id, env)
		}
	})
}

func (r *Relay) roomList(kind model.RoomKind) protocol.RoomListPayload {
	rooms := r.matches.ListRooms(kind)
	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, protocol.RoomInfo{
			RoomID:   string(room.ID),
			Players:  len(room.Players),
			Capacity: room.Capacity,
			Status:   string(room.Status),
		})
	}
	return protocol.RoomListPayload{Rooms: infos}
}

func listMessageType(kind model.RoomKind) protocol.MessageType {
	if kind == model.KindDuel {
		return protocol.MsgDuelList
	}
	return protocol.MsgBattleList
}

func (r *Relay) announceStart(room *model.Room) {
	r.broadcast(room, protocol.MustEnvelope(protocol.MsgGameStarted, protocol.GameStartedPayload{
		Seed:    room.Seed,
		Players: protocol.Members(room),
	}))
}

// recordScore persists a player's score as their account best. Guests
// have no account and are skipped inside the score service.
func (r *Relay) recordScore(room *model.Room, playerID model.PlayerID) {
	p := room.GetPlayer(playerID)
	if p == nil {
		return
	}
	ctx := context.Background()
	r.scores.Record(ctx, r.auth.Username(ctx, playerID), p.Score)
}

// broadcast sends an envelope to every room member except those listed.
func (r *Relay) broadcast(room *model.Room, env protocol.Envelope, except ...model.PlayerID) {
	for _, p := range room.Players {
		skip := false
		for _, ex := range except {
			if p.ID == ex {
				skip = true
				break
			}
		}
		if !skip {
			r.sender.SendTo(p.ID, env)
		}
	}
}

func (r *Relay) sendError(to model.PlayerID, err error) {
	r.sender.SendTo(to, protocol.MustEnvelope(protocol.MsgError, protocol.ErrorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	}))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, model.ErrRoomFull):
		return "room_full"
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, model.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, model.ErrNotHost):
		return "not_host"
	case errors.Is(err, model.ErrMatchAlreadyStarted):
		return "match_already_started"
	case errors.Is(err, model.ErrMatchNotPlaying):
		return "match_not_playing"
	case errors.Is(err, model.ErrInsufficientPlayers):
		return "insufficient_players"
	case errors.Is(err, model.ErrInvalidResetState):
		return "invalid_reset_state"
	case errors.Is(err, model.ErrInvalidCapacity):
		return "invalid_capacity"
	default:
		return "bad_request"
	}
}
