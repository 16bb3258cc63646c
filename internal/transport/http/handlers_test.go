package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-ai/internal/config"
	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/service/game"
	"github.com/iamasit07/connect4-ai/internal/service/session"
	"github.com/iamasit07/connect4-ai/internal/transport/http/middleware"
	"github.com/iamasit07/connect4-ai/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// asUser stands in for AuthMiddleware.
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func TestAnalyze(t *testing.T) {
	r := gin.New()
	r.POST("/api/analyze", NewAnalyzeHandler(game.NewService(nil, 4)).Analyze)

	board := domain.NewBoard().ToRows()
	for col := 0; col < 3; col++ {
		board[0][col] = int(domain.Player1)
	}
	board[1][0], board[1][1] = int(domain.Player2), int(domain.Player2)

	w := doJSON(t, r, http.MethodPost, "/api/analyze", gin.H{"board": board, "difficulty": "hard"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Column       int    `json:"column"`
		Depth        int    `json:"depth"`
		GreedyScores []*int `json:"greedyScores"`
		Terminal     bool   `json:"terminal"`
		Cached       bool   `json:"cached"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Column != 3 {
		t.Fatalf("column = %d, want the block at 3", resp.Column)
	}
	if resp.Depth != 4 || resp.Terminal || resp.Cached || len(resp.GreedyScores) != domain.Columns {
		t.Fatalf("unexpected response %s", w.Body.String())
	}
}

func TestAnalyzeBadRequests(t *testing.T) {
	r := gin.New()
	r.POST("/api/analyze", NewAnalyzeHandler(game.NewService(nil, 4)).Analyze)

	floating := domain.NewBoard().ToRows()
	floating[2][2] = 1
	twoAhead := domain.NewBoard().ToRows()
	twoAhead[0][0], twoAhead[0][1] = 1, 1

	tests := []struct {
		name string
		body any
	}{
		{"no board", gin.H{"difficulty": "easy"}},
		{"short board", gin.H{"board": [][]int{{0, 0, 0, 0, 0, 0, 0}}}},
		{"floating piece", gin.H{"board": floating}},
		{"unknown difficulty", gin.H{"board": domain.NewBoard().ToRows(), "difficulty": "godlike"}},
		{"bad player", gin.H{"board": domain.NewBoard().ToRows(), "player": 3}},
		{"wrong side to move", gin.H{"board": twoAhead}},
		{"negative depth", gin.H{"board": domain.NewBoard().ToRows(), "depth": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, r, http.MethodPost, "/api/analyze", tt.body); w.Code != http.StatusBadRequest {
				t.Fatalf("status %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

type fakeGames struct {
	games []postgres.GameRecord
}

func (f *fakeGames) GetGameByID(ctx context.Context, gameID string) (*postgres.GameRecord, error) {
	for i := range f.games {
		if f.games[i].GameID == gameID {
			return &f.games[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGames) GetUserGameHistory(ctx context.Context, userID int64) ([]postgres.GameRecord, error) {
	var out []postgres.GameRecord
	for _, g := range f.games {
		if g.PlayerID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func TestHistory(t *testing.T) {
	repo := &fakeGames{games: []postgres.GameRecord{
		{GameID: "a", PlayerID: 1, Difficulty: domain.DifficultyHard, Winner: domain.Player2, Reason: "timeout", Moves: []int{3}},
		{GameID: "b", PlayerID: 1, Difficulty: domain.DifficultyEasy, Winner: domain.Player1, FirstPlayer: domain.Player1},
		{GameID: "c", PlayerID: 2, Difficulty: domain.DifficultyMedium},
	}}
	h := NewHistoryHandler(repo)

	r := gin.New()
	r.GET("/api/history", asUser(1), h.GetHistory)
	r.GET("/api/history/:id", asUser(1), h.GetGameDetails)

	w := doJSON(t, r, http.MethodGet, "/api/history", nil)
	var items []gameHistoryItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].Result != "loss" || items[1].Result != "win" || !items[1].WentFirst {
		t.Fatalf("history = %+v", items)
	}
	if items[0].Opponent != domain.GetBotName(domain.DifficultyHard) {
		t.Fatalf("opponent = %q", items[0].Opponent)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/history/a", nil); w.Code != http.StatusOK {
		t.Fatalf("own game: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/history/c", nil); w.Code != http.StatusNotFound {
		t.Fatalf("someone else's game: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/history/zzz", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing game: status %d", w.Code)
	}
}

type fakeLive []game.LiveGame

func (f fakeLive) GetActiveGames() []game.LiveGame { return f }

func (f fakeLive) GetLiveGame(gameID string) (game.LiveGame, bool) {
	for _, g := range f {
		if g.GameID == gameID {
			return g, true
		}
	}
	return game.LiveGame{}, false
}

func TestLiveGames(t *testing.T) {
	now := time.Now()
	r := gin.New()
	r.GET("/api/live", NewLiveHandler(fakeLive{
		{GameID: "new", Username: "bob", StartedAt: now},
		{GameID: "old", Username: "alice", Difficulty: domain.DifficultyHard, StartedAt: now.Add(-time.Minute)},
	}).GetLiveGames)

	w := doJSON(t, r, http.MethodGet, "/api/live", nil)
	var resp []liveGameResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 || resp[0].GameID != "old" || resp[0].Difficulty != "hard" {
		t.Fatalf("live = %+v", resp)
	}
}

func TestLiveGameDetail(t *testing.T) {
	board := domain.NewBoard()
	board[0][3] = domain.Player1
	r := gin.New()
	r.GET("/api/live/:id", NewLiveHandler(fakeLive{
		{GameID: "g1", Username: "maria", Board: board, CurrentPlayer: domain.Player2, MoveCount: 1},
	}).GetLiveGame)

	w := doJSON(t, r, http.MethodGet, "/api/live/g1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp liveGameDetail
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.GameID != "g1" || resp.CurrentTurn != 2 || len(resp.Board) != domain.Rows || resp.Board[0][3] != 1 {
		t.Fatalf("detail = %+v", resp)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/live/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status %d", w.Code)
	}
}

type memoryUsers struct {
	users []*postgres.User
}

func (m *memoryUsers) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	u := &postgres.User{ID: int64(len(m.users) + 1), Username: username, PasswordHash: passwordHash, Rating: 1000}
	m.users = append(m.users, u)
	return u.ID, nil
}

func (m *memoryUsers) GetUserByUsername(ctx context.Context, username string) (*postgres.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetUserByID(ctx context.Context, userID int64) (*postgres.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetLeaderboard(ctx context.Context, limit int) ([]postgres.PlayerStats, error) {
	out := make([]postgres.PlayerStats, 0)
	for i, u := range m.users {
		out = append(out, postgres.PlayerStats{Rank: i + 1, Username: u.Username, Rating: u.Rating})
	}
	return out, nil
}

func TestRegisterLoginMe(t *testing.T) {
	prevCfg, prevCost := config.AppConfig, auth.PasswordCost
	config.AppConfig = &config.Config{JWTSecret: "test", JWTExpiration: time.Hour}
	auth.PasswordCost = bcrypt.MinCost
	t.Cleanup(func() {
		config.AppConfig = prevCfg
		auth.PasswordCost = prevCost
	})

	users := &memoryUsers{}
	authService := session.NewAuthService(users, nil)
	h := NewAuthHandler(authService, users)

	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/leaderboard", h.Leaderboard)
	r.GET("/api/auth/me", middleware.AuthMiddleware(authService), h.Me)

	creds := gin.H{"username": "maria", "password": "Secr3t!pass"}
	if w := doJSON(t, r, http.MethodPost, "/api/auth/register", creds); w.Code != http.StatusCreated {
		t.Fatalf("register: status %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/api/auth/register", creds); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"username": "maria", "password": "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d", w.Code)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login response %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d: %s", w.Code, w.Body.String())
	}
	var me map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil || me["username"] != "maria" {
		t.Fatalf("me = %v", me)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/leaderboard?limit=abc", nil); w.Code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", w.Code)
	}
}
