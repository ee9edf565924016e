package handler

import (
	"net/http"
	"strconv"

	"github.com/wanheng20031114/whgame-Tetris/internal/api/middleware"
	"github.com/wanheng20031114/whgame-Tetris/internal/api/response"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/score"
)

// ScoreHandler handles highscore endpoints
type ScoreHandler struct {
	scoreService *score.Service
	authService  *auth.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreService *score.Service, authService *auth.Service) *ScoreHandler {
	return &ScoreHandler{
		scoreService: scoreService,
		authService:  authService,
	}
}

// List handles GET /api/v1/scores
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	entries, err := h.scoreService.Top(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}

// GetMine handles GET /api/v1/scores/me
func (h *ScoreHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	username := h.authService.Username(r.Context(), player.ID)
	if username == "" {
		// Guests have no persisted score.
		response.JSON(w, http.StatusOK, response.BestScore{Score: 0})
		return
	}

	best, err := h.scoreService.Best(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BestScore{Username: username, Score: best})
}
