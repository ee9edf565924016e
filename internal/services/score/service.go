package score

import (
	"context"
	"log/slog"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
	"github.com/wanheng20031114/whgame-Tetris/internal/storage"
)

// DefaultLeaderboardSize is how many entries Top returns when the caller
// does not ask for a specific limit.
const DefaultLeaderboardSize = 10

// Service maintains per-account best scores. Guests have no username and
// are skipped entirely.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "score")),
	}
}

// Record stores score as username's best if it beats the previous best.
// A failed write is logged rather than surfaced; losing a highscore update
// must not disturb match teardown.
func (s *Service) Record(ctx context.Context, username string, score int) {
	if username == "" || score <= 0 {
		return
	}

	improved, err := s.storage.RecordScoreIfHigher(ctx, username, score)
	if err != nil {
		s.logger.Error("failed to record score",
			slog.String("username", username),
			slog.Int("score", score),
			slog.String("error", err.Error()))
		return
	}
	if improved {
		s.logger.Info("new personal best",
			slog.String("username", username),
			slog.Int("score", score))
	}
}

// Best returns username's best recorded score, zero if none.
func (s *Service) Best(ctx context.Context, username string) (int, error) {
	return s.storage.GetBestScore(ctx, username)
}

// Top returns the leaderboard, highest score first.
func (s *Service) Top(ctx context.Context, limit int) ([]model.ScoreEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.storage.TopScores(ctx, limit)
}
