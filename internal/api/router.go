package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wanheng20031114/whgame-Tetris/internal/api/handler"
	"github.com/wanheng20031114/whgame-Tetris/internal/api/middleware"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/score"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	ScoreService *score.Service
	// WebsocketHandler serves the game connection at /ws. Optional so
	// REST-only tests can omit it.
	WebsocketHandler http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	scoreHandler := handler.NewScoreHandler(cfg.ScoreService, cfg.AuthService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Highscore routes
	api.HandleFunc("/scores", scoreHandler.List).Methods(http.MethodGet)
	scoresProtected := api.PathPrefix("/scores").Subrouter()
	scoresProtected.Use(authMiddleware)
	scoresProtected.HandleFunc("/me", scoreHandler.GetMine).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Websocket endpoint; authentication happens inside the handler via
	// the token query parameter.
	if cfg.WebsocketHandler != nil {
		r.Handle("/ws", cfg.WebsocketHandler)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
