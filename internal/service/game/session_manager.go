package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/repository/redis"
)

type ConnectionManagerInterface interface {
	SendMessage(userID int64, message domain.ServerMessage) error
}

type GameRepository interface {
	SaveGame(ctx context.Context, rec postgres.GameRecord) (int, error)
}

type MoveCache interface {
	Get(ctx context.Context, board domain.Board, player domain.PlayerID, depth int) (redis.CachedMove, bool, error)
	Put(ctx context.Context, board domain.Board, player domain.PlayerID, depth int, move redis.CachedMove) error
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session    map[string]*GameSession // gameID → GameSession
	UserToGame map[int64]string        // userID → gameID
	mu         sync.RWMutex
	repo       GameRepository
	cache      MoveCache
	botDelay   time.Duration
	// firstPlayer picks who opens each game
	firstPlayer func() domain.PlayerID
}

// NewSessionManager accepts a nil repo (games are not saved) and a nil cache.
func NewSessionManager(repo GameRepository, cache MoveCache, botDelay time.Duration) *SessionManager {
	return &SessionManager{
		Session:     make(map[string]*GameSession),
		UserToGame:  make(map[int64]string),
		repo:        repo,
		cache:       cache,
		botDelay:    botDelay,
		firstPlayer: randomFirstPlayer,
	}
}

func randomFirstPlayer() domain.PlayerID {
	if rand.Intn(2) == 0 {
		return domain.Player1
	}
	return domain.Player2
}

// CreateSession starts a game for the user against the bot of the given
// difficulty. An active game the user still has is abandoned first.
func (sm *SessionManager) CreateSession(userID int64, username string, difficulty domain.Difficulty, conn ConnectionManagerInterface) *GameSession {
	if old, ok := sm.GetSessionByUserID(userID); ok {
		old.Abandon()
		sm.RemoveSession(old.GameID)
	}

	session := NewGameSession(userID, username, difficulty, sm.firstPlayer(), sm)

	sm.mu.Lock()
	sm.Session[session.GameID] = session
	sm.UserToGame[userID] = session.GameID
	sm.mu.Unlock()

	log.Printf("[SESSION] Created session %s: %s (ID: %d) vs %s (%s)",
		session.GameID, username, userID, session.BotName, difficulty)

	session.Start(conn)
	return session
}

func (sm *SessionManager) GetSessionByUserID(userID int64) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	gameID, exists := sm.UserToGame[userID]
	if !exists {
		return nil, false
	}

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) GetSessionByGameID(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.removeSessionLocked(gameID)
}

// removeSessionLocked removes session from maps without acquiring lock (caller must hold it)
func (sm *SessionManager) removeSessionLocked(gameID string) error {
	session, exists := sm.Session[gameID]
	if !exists {
		return fmt.Errorf("session not found")
	}

	log.Printf("[SESSION] Removing session %s", gameID)

	if sm.UserToGame[session.UserID] == gameID {
		delete(sm.UserToGame, session.UserID)
	}
	delete(sm.Session, gameID)

	return nil
}

// Restart replaces the user's game with a fresh one at the same difficulty.
func (sm *SessionManager) Restart(userID int64, conn ConnectionManagerInterface) (*GameSession, error) {
	old, ok := sm.GetSessionByUserID(userID)
	if !ok {
		return nil, fmt.Errorf("no game to restart")
	}
	log.Printf("[SESSION] Restarting game %s for user %d", old.GameID, userID)
	return sm.CreateSession(userID, old.Username, old.Difficulty, conn), nil
}

// HandleDisconnect abandons the user's active game and drops the session.
func (sm *SessionManager) HandleDisconnect(userID int64) {
	session, ok := sm.GetSessionByUserID(userID)
	if !ok {
		return
	}
	log.Printf("[SESSION] User %d disconnected from game %s", userID, session.GameID)
	session.Abandon()
	sm.RemoveSession(session.GameID)
}

// LiveGame is a snapshot of an active session for the live games listing.
type LiveGame struct {
	GameID        string
	Username      string
	BotName       string
	Difficulty    domain.Difficulty
	MoveCount     int
	Paused        bool
	StartedAt     time.Time
	Board         domain.Board
	CurrentPlayer domain.PlayerID
}

func (gs *GameSession) liveLocked() LiveGame {
	return LiveGame{
		GameID:        gs.GameID,
		Username:      gs.Username,
		BotName:       gs.BotName,
		Difficulty:    gs.Difficulty,
		MoveCount:     gs.Game.MoveCount,
		Paused:        gs.Paused,
		StartedAt:     gs.CreatedAt,
		Board:         gs.Game.Board,
		CurrentPlayer: gs.Game.CurrentPlayer,
	}
}

func (sm *SessionManager) GetActiveGames() []LiveGame {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, s := range sm.Session {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	games := make([]LiveGame, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		if !s.Game.IsFinished() {
			games = append(games, s.liveLocked())
		}
		s.mu.Unlock()
	}
	return games
}

// GetLiveGame returns the current position of one unfinished game.
func (sm *SessionManager) GetLiveGame(gameID string) (LiveGame, bool) {
	session, ok := sm.GetSessionByGameID(gameID)
	if !ok {
		return LiveGame{}, false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Game.IsFinished() {
		return LiveGame{}, false
	}
	return session.liveLocked(), true
}

// CleanupOldSessions drops finished sessions older than an hour and unfinished
// ones older than a day.
func (sm *SessionManager) CleanupOldSessions() int {
	return sm.cleanupOldSessions(time.Now())
}

func (sm *SessionManager) cleanupOldSessions(now time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	for gameID, session := range sm.Session {
		session.mu.Lock()
		finished := session.Game.IsFinished()
		stale := (finished && now.Sub(session.FinishedAt) > 1*time.Hour) ||
			(!finished && now.Sub(session.CreatedAt) > 24*time.Hour)
		if stale {
			session.stopTurnTimer()
		}
		session.mu.Unlock()

		if stale {
			sm.removeSessionLocked(gameID)
			count++
		}
	}

	if count > 0 {
		log.Printf("[SESSION] Memory cleanup: Removed %d stale game sessions", count)
	}
	return count
}
