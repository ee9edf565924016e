package score

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wanheng20031114/whgame-Tetris/internal/storage/memory"
	"github.com/wanheng20031114/whgame-Tetris/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRecordStoresBest() {
	s.service.Record(s.ctx, "alice", 500)

	best, err := s.service.Best(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(500, best)
}

func (s *ServiceSuite) TestRecordKeepsHigherBest() {
	s.service.Record(s.ctx, "alice", 500)
	s.service.Record(s.ctx, "alice", 300)

	best, err := s.service.Best(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(500, best)
}

func (s *ServiceSuite) TestRecordIgnoresGuests() {
	s.service.Record(s.ctx, "", 500)

	entries, err := s.service.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ServiceSuite) TestRecordIgnoresZeroScore() {
	s.service.Record(s.ctx, "alice", 0)

	best, err := s.service.Best(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, best)
}

func (s *ServiceSuite) TestTopOrdersByScoreDescending() {
	s.service.Record(s.ctx, "alice", 300)
	s.service.Record(s.ctx, "bob", 900)
	s.service.Record(s.ctx, "carol", 600)

	entries, err := s.service.Top(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("bob", entries[0].Username)
	s.Equal("carol", entries[1].Username)
	s.Equal("alice", entries[2].Username)
}

func (s *ServiceSuite) TestTopHonoursLimit() {
	s.service.Record(s.ctx, "alice", 300)
	s.service.Record(s.ctx, "bob", 900)

	entries, err := s.service.Top(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("bob", entries[0].Username)
}

func (s *ServiceSuite) TestBestUnknownUsernameIsZero() {
	best, err := s.service.Best(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal(0, best)
}
