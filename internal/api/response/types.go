package response

import (
	"github.com/wanheng20031114/whgame-Tetris/internal/model"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// ScoreEntry is one leaderboard row
type ScoreEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard is the response for the highscore listing
type Leaderboard struct {
	Entries []ScoreEntry `json:"entries"`
}

// LeaderboardFromModel converts stored score entries
func LeaderboardFromModel(entries []model.ScoreEntry) Leaderboard {
	out := make([]ScoreEntry, len(entries))
	for i, e := range entries {
		out[i] = ScoreEntry{Username: e.Username, Score: e.Score}
	}
	return Leaderboard{Entries: out}
}

// BestScore is the response for a single player's best score
type BestScore struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}
