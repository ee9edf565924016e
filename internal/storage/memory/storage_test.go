package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "p1", DisplayName: "Alice", CreatedAt: time.Now()}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	got, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
}

func (s *StorageSuite) TestGetMissingPlayer() {
	_, err := s.storage.GetPlayer(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1"}))
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "p1"))

	_, err := s.storage.GetPlayer(s.ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRegisteredPlayerUsernameIndex() {
	rp := &model.RegisteredPlayer{PlayerID: "p1", Username: "alice", PasswordHash: "x"}
	s.Require().NoError(s.storage.SaveRegisteredPlayer(s.ctx, rp))

	got, err := s.storage.GetRegisteredPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.PlayerID)

	_, err = s.storage.GetRegisteredPlayerByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestRecordScoreIfHigher() {
	accepted, err := s.storage.RecordScoreIfHigher(s.ctx, "alice", 100)
	s.Require().NoError(err)
	s.True(accepted)

	accepted, err = s.storage.RecordScoreIfHigher(s.ctx, "alice", 50)
	s.Require().NoError(err)
	s.False(accepted, "lower score must be rejected")

	accepted, err = s.storage.RecordScoreIfHigher(s.ctx, "alice", 100)
	s.Require().NoError(err)
	s.False(accepted, "equal score must be rejected")

	accepted, err = s.storage.RecordScoreIfHigher(s.ctx, "alice", 150)
	s.Require().NoError(err)
	s.True(accepted)

	best, err := s.storage.GetBestScore(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(150, best)
}

func (s *StorageSuite) TestTopScores() {
	for username, score := range map[string]int{"a": 30, "b": 100, "c": 70, "d": 10} {
		_, err := s.storage.RecordScoreIfHigher(s.ctx, username, score)
		s.Require().NoError(err)
	}

	top, err := s.storage.TopScores(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal([]model.ScoreEntry{
		{Username: "b", Score: 100},
		{Username: "c", Score: 70},
		{Username: "a", Score: 30},
	}, top)
}
