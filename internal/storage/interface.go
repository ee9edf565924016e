package storage

import (
	"context"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

// Storage defines the interface for account and high-score persistence.
// Match rooms are deliberately not part of this interface: they are
// single-process volatile state owned by the room store.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// High-score operations, keyed by username
	// RecordScoreIfHigher stores score only if it beats the stored best and
	// reports whether it was accepted
	RecordScoreIfHigher(ctx context.Context, username string, score int) (bool, error)
	GetBestScore(ctx context.Context, username string) (int, error)
	TopScores(ctx context.Context, limit int) ([]model.ScoreEntry, error)
}
