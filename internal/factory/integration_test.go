package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) createPlayer(id, name string) model.Player {
	return model.Player{
		ID:          model.PlayerID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.app.MockClock.Now(),
	}
}

// Test: Complete duel flow from room creation to rematch
func (s *IntegrationSuite) TestCompleteDuelFlow() {
	s.app.MockRandom.QueueString("DUEL01")
	s.app.MockRandom.QueueInt63(1234)

	// Step 1: Create a duel room
	alice := s.createPlayer("alice", "Alice")
	room, err := s.app.MatchController.CreateDuelRoom(alice)
	s.Require().NoError(err)
	s.Equal(model.RoomID("DUEL01"), room.ID)
	s.Equal(model.StatusWaiting, room.Status)

	// Step 2: Second player joins, which starts the match
	bob := s.createPlayer("bob", "Bob")
	room, started, err := s.app.MatchController.JoinRoom(room.ID, bob)
	s.Require().NoError(err)
	s.True(started)
	s.Equal(model.StatusPlaying, room.Status)
	s.Equal(int64(1234), room.Seed)

	// Step 3: Players report scores as they play
	s.Require().NoError(s.app.MatchController.UpdateScore(room.ID, alice.ID, 400))
	s.Require().NoError(s.app.MatchController.UpdateScore(room.ID, bob.ID, 250))

	// Step 4: Bob tops out; Alice wins
	result, err := s.app.MatchController.ReportGameOver(room.ID, bob.ID)
	s.Require().NoError(err)
	s.True(result.Finished)
	s.Require().NotNil(result.DuelWinner)
	s.Equal(alice.ID, result.DuelWinner.ID)
	s.Equal(1, room.WinTally[alice.ID])
	s.Equal(model.StatusFinished, room.Status)

	// Step 5: Rematch restarts immediately with a fresh seed
	s.app.MockRandom.QueueInt63(5678)
	room, err = s.app.MatchController.Reset(room.ID, bob.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusPlaying, room.Status)
	s.Equal(int64(5678), room.Seed)
	s.Equal(0, room.GetPlayer(alice.ID).Score)

	// The win tally survives the rematch
	s.Equal(1, room.WinTally[alice.ID])
}

// Test: Complete battle flow with eliminations and final standings
func (s *IntegrationSuite) TestCompleteBattleFlow() {
	s.app.MockRandom.QueueString("BATTLE")
	s.app.MockRandom.QueueInt63(9999)

	// Step 1: Host creates a battle room
	host := s.createPlayer("host", "Host")
	room, err := s.app.MatchController.CreateBattleRoom(host, 4)
	s.Require().NoError(err)

	// Step 2: Two more players join; battle rooms never auto-start
	p2 := s.createPlayer("p2", "Player Two")
	p3 := s.createPlayer("p3", "Player Three")
	for _, p := range []model.Player{p2, p3} {
		_, started, joinErr := s.app.MatchController.JoinRoom(room.ID, p)
		s.Require().NoError(joinErr)
		s.False(started)
	}

	// Step 3: Only the host can start
	_, err = s.app.MatchController.Start(room.ID, p2.ID)
	s.ErrorIs(err, model.ErrNotHost)

	room, err = s.app.MatchController.Start(room.ID, host.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusPlaying, room.Status)

	// Step 4: Eliminations assign ranks from the bottom up
	result, err := s.app.MatchController.ReportGameOver(room.ID, p3.ID)
	s.Require().NoError(err)
	s.False(result.Finished)
	s.Equal(3, result.Eliminated.Rank)

	result, err = s.app.MatchController.ReportGameOver(room.ID, p2.ID)
	s.Require().NoError(err)
	s.True(result.Finished)

	// Step 5: Final standings cover every player, winner first
	s.Require().Len(result.Rankings, 3)
	s.Equal(host.ID, result.Rankings[0].PlayerID)
	s.Equal(1, result.Rankings[0].Rank)
	s.Equal(p2.ID, result.Rankings[1].PlayerID)
	s.Equal(p3.ID, result.Rankings[2].PlayerID)

	// Step 6: Host resets the room back to waiting
	room, err = s.app.MatchController.Reset(room.ID, host.ID)
	s.Require().NoError(err)
	s.Equal(model.StatusWaiting, room.Status)
	s.Zero(room.Seed)
}

// Test: Registered account flow through auth and the highscore table
func (s *IntegrationSuite) TestRegisteredPlayerScoreFlow() {
	session, err := s.app.AuthService.RegisterPlayer(s.ctx, "alice", "password123", "Alice")
	s.Require().NoError(err)

	// Session round-trip
	validated, err := s.app.AuthService.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.PlayerID, validated.PlayerID)

	// Record a best score under the account's username
	username := s.app.AuthService.Username(s.ctx, session.PlayerID)
	s.Equal("alice", username)
	s.app.ScoreService.Record(s.ctx, username, 1200)
	s.app.ScoreService.Record(s.ctx, username, 800) // lower, ignored

	best, err := s.app.ScoreService.Best(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1200, best)

	entries, err := s.app.ScoreService.Top(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("alice", entries[0].Username)
	s.Equal(1200, entries[0].Score)
}

// Test: A player leaving mid-battle is ranked before removal
func (s *IntegrationSuite) TestLeaveMidBattleCountsAsElimination() {
	s.app.MockRandom.QueueString("BATTLE")
	s.app.MockRandom.QueueInt63(42)

	host := s.createPlayer("host", "Host")
	room, err := s.app.MatchController.CreateBattleRoom(host, 4)
	s.Require().NoError(err)

	p2 := s.createPlayer("p2", "Player Two")
	p3 := s.createPlayer("p3", "Player Three")
	_, _, err = s.app.MatchController.JoinRoom(room.ID, p2)
	s.Require().NoError(err)
	_, _, err = s.app.MatchController.JoinRoom(room.ID, p3)
	s.Require().NoError(err)
	_, err = s.app.MatchController.Start(room.ID, host.ID)
	s.Require().NoError(err)

	// The host leaves mid-match: eliminated, removed, host transferred
	result, err := s.app.MatchController.Leave(host.ID)
	s.Require().NoError(err)
	s.Require().NotNil(result.GameOver)
	s.Equal(3, result.GameOver.Eliminated.Rank)
	s.Equal(p2.ID, result.NewHostID)
	s.Len(result.Room.Players, 2)

	// The leaver can immediately create a new room
	s.app.MockRandom.QueueString("DUEL01")
	_, err = s.app.MatchController.CreateDuelRoom(host)
	s.Require().NoError(err)
}
