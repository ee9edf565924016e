package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/wanheng20031114/whgame-Tetris/internal/dependencies/clock"
	"github.com/wanheng20031114/whgame-Tetris/internal/dependencies/random"
	"github.com/wanheng20031114/whgame-Tetris/internal/roomstore"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/attack"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/match"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/score"
	"github.com/wanheng20031114/whgame-Tetris/internal/storage"
	"github.com/wanheng20031114/whgame-Tetris/internal/storage/memory"
	redisstorage "github.com/wanheng20031114/whgame-Tetris/internal/storage/redis"
	"github.com/wanheng20031114/whgame-Tetris/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Room state
	Rooms *roomstore.Store

	// Services
	MatchController *match.Controller
	AttackRouter    *attack.Router
	AuthService     *auth.Service
	ScoreService    *score.Service

	// Websocket layer
	Hub              *ws.Hub
	Relay            *ws.Relay
	WebsocketHandler http.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	// Create services
	rooms := roomstore.New()
	matchController := match.NewController(rooms, clk, rnd, logger)
	attackRouter := attack.NewRouter(rnd, logger)
	authService := auth.New(store, clk, authCfg, logger)
	scoreService := score.New(store, logger)

	// Wire the websocket layer
	hub := ws.NewHub(logger)
	relay := ws.NewRelay(hub, matchController, attackRouter, authService, scoreService, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Rooms:            rooms,
		MatchController:  matchController,
		AttackRouter:     attackRouter,
		AuthService:      authService,
		ScoreService:     scoreService,
		Hub:              hub,
		Relay:            relay,
		WebsocketHandler: ws.Handler(hub, relay, logger),
	}
}
