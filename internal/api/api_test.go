package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanheng20031114/whgame-Tetris/internal/api"
	"github.com/wanheng20031114/whgame-Tetris/internal/api/response"
	"github.com/wanheng20031114/whgame-Tetris/internal/factory"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/score"
	"github.com/wanheng20031114/whgame-Tetris/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
	auth    *auth.Service
	scores  *score.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		ScoreService:     app.ScoreService,
		WebsocketHandler: app.WebsocketHandler,
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
		auth:    app.AuthService,
		scores:  app.ScoreService,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", body, "")

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestPlayerRequiresDisplayName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &registerResp)
	require.NoError(t, err)
	assert.False(t, registerResp.Player.IsGuest)

	// Login
	loginBody := map[string]string{
		"username": "alice",
		"password": "secret123",
	}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	err = json.Unmarshal(rr.Body.Bytes(), &loginResp)
	require.NoError(t, err)
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)
	assert.NotEmpty(t, loginResp.SessionToken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players/register", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "USERNAME_EXISTS")
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	loginBody := map[string]string{
		"username": "alice",
		"password": "wrong",
	}
	rr = ts.request(http.MethodPost, "/api/v1/players/login", loginBody, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, created.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, created.Player.ID, me.ID)
}

func TestGetMeRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, "bogus_token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)

	ctx := context.Background()
	ts.scores.Record(ctx, "alice", 900)
	ts.scores.Record(ctx, "bob", 1200)

	rr := ts.request(http.MethodGet, "/api/v1/scores", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var board response.Leaderboard
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "bob", board.Entries[0].Username)
	assert.Equal(t, 1200, board.Entries[0].Score)
	assert.Equal(t, "alice", board.Entries[1].Username)
}

func TestLeaderboardRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/scores?limit=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/scores?limit=banana", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMyScoreForRegisteredPlayer(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	ts.scores.Record(context.Background(), "alice", 750)

	rr = ts.request(http.MethodGet, "/api/v1/scores/me", nil, created.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var best response.BestScore
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &best))
	assert.Equal(t, "alice", best.Username)
	assert.Equal(t, 750, best.Score)
}

func TestMyScoreForGuestIsZero(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Guest"}
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodGet, "/api/v1/scores/me", nil, created.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var best response.BestScore
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &best))
	assert.Zero(t, best.Score)
}
