package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/repository/redis"
	"github.com/iamasit07/connect4-ai/internal/service/bot"
	"github.com/iamasit07/connect4-ai/pkg/uid"
)

const (
	ReasonFourInARow = "four_in_a_row"
	ReasonDraw       = "draw"
	ReasonTimeout    = "timeout"
	ReasonAbandoned  = "abandoned"
)

// GameSession is one human (Player1) against the computer (Player2).
type GameSession struct {
	GameID      string
	UserID      int64
	Username    string
	BotName     string
	Difficulty  domain.Difficulty
	FirstPlayer domain.PlayerID
	Game        *domain.Game
	Reason      string
	Paused      bool
	CreatedAt   time.Time
	FinishedAt  time.Time

	conn         ConnectionManagerInterface
	turnTimer    *time.Timer
	turnDeadline time.Time
	remaining    time.Duration // human clock left when paused
	turnSeq      int           // invalidates stale turn timers
	botPending   bool
	mu           sync.Mutex
	manager      *SessionManager
}

func NewGameSession(userID int64, username string, difficulty domain.Difficulty, firstPlayer domain.PlayerID, sm *SessionManager) *GameSession {
	return &GameSession{
		GameID:      uid.GenerateGameID(),
		UserID:      userID,
		Username:    username,
		BotName:     domain.GetBotName(difficulty),
		Difficulty:  difficulty,
		FirstPlayer: firstPlayer,
		Game:        domain.NewGame(firstPlayer),
		CreatedAt:   time.Now(),
		manager:     sm,
	}
}

// Start announces the game and starts whichever side opens.
func (gs *GameSession) Start(conn ConnectionManagerInterface) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.conn = conn
	gs.sendStateLocked()
	gs.beginTurnLocked()
}

// Resync sends the current position again, for a reconnecting client.
func (gs *GameSession) Resync(conn ConnectionManagerInterface) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.conn = conn
	gs.sendStateLocked()
}

func (gs *GameSession) sendStateLocked() {
	gs.send(domain.ServerMessage{
		Type:          "game_start",
		GameID:        gs.GameID,
		Opponent:      gs.BotName,
		Difficulty:    string(gs.Difficulty),
		YourPlayer:    int(domain.Player1),
		CurrentTurn:   int(gs.Game.CurrentPlayer),
		Board:         gs.Game.Board.ToRows(),
		TimeRemaining: gs.humanSecondsLocked(),
	})
}

func (gs *GameSession) send(msg domain.ServerMessage) {
	if gs.conn == nil {
		return
	}
	if err := gs.conn.SendMessage(gs.UserID, msg); err != nil {
		log.Printf("[SESSION] Failed to send %s to user %d: %v", msg.Type, gs.UserID, err)
	}
}

// humanSecondsLocked is the human's clock in whole seconds, zero on the computer's turn.
func (gs *GameSession) humanSecondsLocked() int {
	if gs.Game.IsFinished() || gs.Game.CurrentPlayer != domain.Player1 {
		return 0
	}
	switch {
	case gs.Paused && gs.remaining > 0:
		return int(gs.remaining.Seconds())
	case gs.turnTimer != nil:
		return int(time.Until(gs.turnDeadline).Seconds())
	}
	return int(domain.TurnTimeLimit(gs.Difficulty).Seconds())
}

func (gs *GameSession) beginTurnLocked() {
	if gs.Game.IsFinished() || gs.Paused {
		return
	}
	if gs.Game.CurrentPlayer == domain.Player1 {
		gs.startTurnTimerLocked(domain.TurnTimeLimit(gs.Difficulty))
		return
	}
	gs.scheduleBotMoveLocked()
}

func (gs *GameSession) startTurnTimerLocked(d time.Duration) {
	gs.stopTurnTimer()
	seq := gs.turnSeq
	gs.turnDeadline = time.Now().Add(d)
	gs.turnTimer = time.AfterFunc(d, func() {
		gs.handleTurnTimeout(seq)
	})
}

// stopTurnTimer must be called with gs.mu held.
func (gs *GameSession) stopTurnTimer() {
	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
		gs.turnTimer = nil
	}
	gs.turnSeq++
}

func (gs *GameSession) handleTurnTimeout(seq int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if seq != gs.turnSeq || gs.Game.IsFinished() || gs.Paused || gs.Game.CurrentPlayer != domain.Player1 {
		return
	}

	log.Printf("[SESSION] User %d ran out of time in game %s", gs.UserID, gs.GameID)
	gs.turnTimer = nil
	gs.Game.Forfeit(domain.Player2, domain.StatusTimeout)
	gs.finishLocked(ReasonTimeout)
}

func (gs *GameSession) scheduleBotMoveLocked() {
	if gs.botPending {
		return
	}
	gs.botPending = true

	delay := time.Duration(0)
	if gs.manager != nil {
		delay = gs.manager.botDelay
	}
	go func() {
		// Small delay to feel natural
		time.Sleep(delay)
		if err := gs.HandleBotMove(); err != nil {
			log.Printf("[BOT] Error handling bot move in game %s: %v", gs.GameID, err)
		}
	}()
}

// HandleMove plays the human's disk.
func (gs *GameSession) HandleMove(userID int64, column int) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if userID != gs.UserID {
		return fmt.Errorf("player not found in game")
	}
	if gs.Paused {
		return domain.ErrGamePaused
	}

	row, err := gs.Game.MakeMove(domain.Player1, column)
	if err != nil {
		return err
	}

	gs.stopTurnTimer()
	gs.afterMoveLocked(domain.Player1, column, row)
	return nil
}

// HandleBotMove searches on a snapshot of the board without holding the lock,
// then plays the result if the game is still waiting for it.
func (gs *GameSession) HandleBotMove() error {
	gs.mu.Lock()
	gs.botPending = false
	if gs.Game.IsFinished() || gs.Paused || gs.Game.CurrentPlayer != domain.Player2 {
		gs.mu.Unlock()
		return nil
	}
	board := gs.Game.Board
	moveCount := gs.Game.MoveCount
	gs.mu.Unlock()

	column := gs.chooseColumn(board)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() || gs.Paused || gs.Game.CurrentPlayer != domain.Player2 || gs.Game.MoveCount != moveCount {
		return nil
	}
	if !domain.IsColumnPlayable(gs.Game.Board, column) {
		log.Printf("[BOT] Column %d no longer playable in game %s, searching again", column, gs.GameID)
		column = bot.CalculateBestMove(gs.Game.Board, domain.Player2, gs.Difficulty)
	}

	row, err := gs.Game.MakeMove(domain.Player2, column)
	if err != nil {
		return err
	}

	gs.afterMoveLocked(domain.Player2, column, row)
	return nil
}

// chooseColumn runs the bot for the difficulty, going through the move cache
// for the searching bots.
func (gs *GameSession) chooseColumn(board domain.Board) int {
	var cache MoveCache
	if gs.manager != nil && gs.Difficulty != domain.DifficultyEasy {
		cache = gs.manager.cache
	}
	depth := bot.DepthFor(gs.Difficulty)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if cache != nil {
		cached, found, err := cache.Get(ctx, board, domain.Player2, depth)
		if err != nil {
			log.Printf("[REDIS] Move cache read failed: %v", err)
		}
		if found && domain.IsColumnPlayable(board, cached.Column) {
			return cached.Column
		}
	}

	result := bot.Decide(board, domain.Player2, gs.Difficulty)

	if cache != nil && result.HasColumn() {
		if err := cache.Put(ctx, board, domain.Player2, depth, redis.CachedMove{Column: result.Column, Score: result.Score}); err != nil {
			log.Printf("[REDIS] Move cache write failed: %v", err)
		}
	}
	return result.Column
}

func (gs *GameSession) afterMoveLocked(player domain.PlayerID, column, row int) {
	gs.send(domain.ServerMessage{
		Type:          "move_made",
		Column:        column,
		Row:           row,
		Player:        int(player),
		Board:         gs.Game.Board.ToRows(),
		NextTurn:      int(gs.Game.CurrentPlayer),
		TimeRemaining: gs.nextTurnSecondsLocked(),
	})

	switch gs.Game.Status {
	case domain.StatusWon:
		gs.finishLocked(ReasonFourInARow)
	case domain.StatusDraw:
		gs.finishLocked(ReasonDraw)
	default:
		gs.beginTurnLocked()
	}
}

func (gs *GameSession) nextTurnSecondsLocked() int {
	if gs.Game.IsFinished() || gs.Game.CurrentPlayer != domain.Player1 {
		return 0
	}
	return int(domain.TurnTimeLimit(gs.Difficulty).Seconds())
}

// Pause freezes the human's clock and holds the computer's move.
func (gs *GameSession) Pause() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return domain.ErrGameFinished
	}
	if gs.Paused {
		return nil
	}

	gs.remaining = 0
	if gs.Game.CurrentPlayer == domain.Player1 && gs.turnTimer != nil {
		gs.remaining = max(time.Until(gs.turnDeadline), 0)
	}
	gs.stopTurnTimer()
	gs.Paused = true

	log.Printf("[SESSION] Game %s paused", gs.GameID)
	gs.send(domain.ServerMessage{
		Type:          "paused",
		GameID:        gs.GameID,
		TimeRemaining: int(gs.remaining.Seconds()),
	})
	return nil
}

func (gs *GameSession) Resume() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return domain.ErrGameFinished
	}
	if !gs.Paused {
		return nil
	}
	gs.Paused = false

	if gs.Game.CurrentPlayer == domain.Player1 {
		d := gs.remaining
		if d <= 0 {
			d = domain.TurnTimeLimit(gs.Difficulty)
		}
		gs.startTurnTimerLocked(d)
	} else {
		gs.scheduleBotMoveLocked()
	}
	gs.remaining = 0

	log.Printf("[SESSION] Game %s resumed", gs.GameID)
	gs.send(domain.ServerMessage{
		Type:          "resumed",
		GameID:        gs.GameID,
		CurrentTurn:   int(gs.Game.CurrentPlayer),
		Board:         gs.Game.Board.ToRows(),
		TimeRemaining: gs.humanSecondsLocked(),
	})
	return nil
}

// Abandon ends an active game as a computer win. Finished games are left alone.
func (gs *GameSession) Abandon() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		return
	}
	log.Printf("[SESSION] Game %s abandoned by user %d", gs.GameID, gs.UserID)
	gs.Game.Forfeit(domain.Player2, domain.StatusAbandoned)
	gs.finishLocked(ReasonAbandoned)
}

func (gs *GameSession) IsFinished() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.Game.IsFinished()
}

func (gs *GameSession) winnerNameLocked() string {
	switch gs.Game.Winner {
	case domain.Player1:
		return gs.Username
	case domain.Player2:
		return gs.BotName
	}
	return "draw"
}

func (gs *GameSession) finishLocked(reason string) {
	gs.stopTurnTimer()
	gs.Paused = false
	gs.FinishedAt = time.Now()
	gs.Reason = reason

	log.Printf("[SESSION] Game %s over: %s (%s)", gs.GameID, gs.winnerNameLocked(), reason)
	gs.send(domain.ServerMessage{
		Type:   "game_over",
		GameID: gs.GameID,
		Winner: gs.winnerNameLocked(),
		Reason: reason,
		Board:  gs.Game.Board.ToRows(),
	})

	gs.saveGameAsync(gs.recordLocked())
}

func (gs *GameSession) recordLocked() postgres.GameRecord {
	return postgres.GameRecord{
		GameID:          gs.GameID,
		PlayerID:        gs.UserID,
		PlayerUsername:  gs.Username,
		Difficulty:      gs.Difficulty,
		FirstPlayer:     gs.FirstPlayer,
		Winner:          gs.Game.Winner,
		Reason:          gs.Reason,
		Moves:           gs.Game.PlayedColumns(),
		Board:           gs.Game.Board.ToRows(),
		TotalMoves:      gs.Game.MoveCount,
		DurationSeconds: int(gs.FinishedAt.Sub(gs.CreatedAt).Seconds()),
		CreatedAt:       gs.CreatedAt,
		FinishedAt:      gs.FinishedAt,
	}
}

// Saves game data to database in background to avoid blocking game_over messages
func (gs *GameSession) saveGameAsync(rec postgres.GameRecord) {
	if gs.manager == nil || gs.manager.repo == nil {
		return
	}
	repo := gs.manager.repo

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rating, err := repo.SaveGame(ctx, rec)
		if err != nil {
			log.Printf("[SESSION] Error saving game %s: %v", rec.GameID, err)
			return
		}
		log.Printf("[SESSION] Game %s saved, %s is now rated %d", rec.GameID, rec.PlayerUsername, rating)
	}()
}
