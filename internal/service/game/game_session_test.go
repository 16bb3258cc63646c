package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/repository/redis"
)

type fakeConn struct {
	msgs chan domain.ServerMessage
}

func newFakeConn() *fakeConn {
	return &fakeConn{msgs: make(chan domain.ServerMessage, 64)}
}

func (f *fakeConn) SendMessage(userID int64, message domain.ServerMessage) error {
	select {
	case f.msgs <- message:
	default:
	}
	return nil
}

type fakeRepo struct {
	saved chan postgres.GameRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(chan postgres.GameRecord, 8)}
}

func (r *fakeRepo) SaveGame(ctx context.Context, rec postgres.GameRecord) (int, error) {
	select {
	case r.saved <- rec:
	default:
	}
	return 1000, nil
}

type fakeCache struct {
	mu    sync.Mutex
	moves map[string]redis.CachedMove
	puts  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{moves: make(map[string]redis.CachedMove)}
}

func cacheKey(board domain.Board, player domain.PlayerID, depth int) string {
	return fmt.Sprintf("%d:%d:%s", player, depth, board.Key())
}

func (c *fakeCache) Get(ctx context.Context, board domain.Board, player domain.PlayerID, depth int) (redis.CachedMove, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.moves[cacheKey(board, player, depth)]
	return m, ok, nil
}

func (c *fakeCache) Put(ctx context.Context, board domain.Board, player domain.PlayerID, depth int, move redis.CachedMove) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moves[cacheKey(board, player, depth)] = move
	c.puts++
	return nil
}

func waitFor(t *testing.T, conn *fakeConn, msgType string) domain.ServerMessage {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg := <-conn.msgs:
			if msg.Type == msgType {
				return msg
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func waitSaved(t *testing.T, repo *fakeRepo) postgres.GameRecord {
	t.Helper()
	select {
	case rec := <-repo.saved:
		return rec
	case <-time.After(5 * time.Second):
		t.Fatalf("game was not saved")
	}
	return postgres.GameRecord{}
}

func newManager(repo GameRepository, cache MoveCache, first domain.PlayerID, delay time.Duration) *SessionManager {
	sm := NewSessionManager(repo, cache, delay)
	sm.firstPlayer = func() domain.PlayerID { return first }
	return sm
}

func TestHumanMoveGetsComputerReply(t *testing.T) {
	conn := newFakeConn()
	sm := newManager(nil, nil, domain.Player1, 0)
	gs := sm.CreateSession(1, "alice", domain.DifficultyMedium, conn)

	start := waitFor(t, conn, "game_start")
	if start.CurrentTurn != int(domain.Player1) || start.Opponent != domain.GetBotName(domain.DifficultyMedium) {
		t.Fatalf("unexpected game_start %+v", start)
	}
	if start.TimeRemaining != 30 {
		t.Fatalf("medium clock = %d, want 30", start.TimeRemaining)
	}

	if err := gs.HandleMove(1, 3); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	human := waitFor(t, conn, "move_made")
	if human.Player != int(domain.Player1) || human.Column != 3 || human.Row != 0 {
		t.Fatalf("unexpected human move %+v", human)
	}

	reply := waitFor(t, conn, "move_made")
	if reply.Player != int(domain.Player2) {
		t.Fatalf("expected the computer's move, got %+v", reply)
	}
	if reply.NextTurn != int(domain.Player1) || reply.TimeRemaining != 30 {
		t.Fatalf("turn not handed back: %+v", reply)
	}
}

func TestComputerOpensWhenItMovesFirst(t *testing.T) {
	conn := newFakeConn()
	sm := newManager(nil, nil, domain.Player2, 0)
	sm.CreateSession(1, "alice", domain.DifficultyHard, conn)

	start := waitFor(t, conn, "game_start")
	if start.CurrentTurn != int(domain.Player2) {
		t.Fatalf("expected the computer to open, got %+v", start)
	}
	move := waitFor(t, conn, "move_made")
	if move.Player != int(domain.Player2) || move.Row != 0 {
		t.Fatalf("unexpected opening move %+v", move)
	}
	if move.NextTurn != int(domain.Player1) || move.TimeRemaining != 15 {
		t.Fatalf("turn not handed to the human: %+v", move)
	}
}

func TestMoveRejections(t *testing.T) {
	conn := newFakeConn()
	sm := newManager(nil, nil, domain.Player2, 200*time.Millisecond)
	gs := sm.CreateSession(1, "alice", domain.DifficultyEasy, conn)

	if err := gs.HandleMove(1, 0); !errors.Is(err, domain.ErrNotYourTurn) {
		t.Fatalf("move on the computer's turn: got %v", err)
	}
	if err := gs.HandleMove(2, 0); err == nil {
		t.Fatalf("stranger's move accepted")
	}

	waitFor(t, conn, "move_made")
	if err := gs.HandleMove(1, 9); !errors.Is(err, domain.ErrInvalidMove) {
		t.Fatalf("bad column: got %v", err)
	}
}

func TestPauseAndResume(t *testing.T) {
	conn := newFakeConn()
	sm := newManager(nil, nil, domain.Player1, 0)
	gs := sm.CreateSession(1, "alice", domain.DifficultyEasy, conn)

	if err := gs.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	paused := waitFor(t, conn, "paused")
	if paused.TimeRemaining <= 0 || paused.TimeRemaining > 60 {
		t.Fatalf("paused clock %d", paused.TimeRemaining)
	}
	if err := gs.HandleMove(1, 3); !errors.Is(err, domain.ErrGamePaused) {
		t.Fatalf("move while paused: got %v", err)
	}

	if err := gs.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	resumed := waitFor(t, conn, "resumed")
	if resumed.CurrentTurn != int(domain.Player1) || resumed.TimeRemaining <= 0 {
		t.Fatalf("unexpected resumed %+v", resumed)
	}
	if err := gs.HandleMove(1, 3); err != nil {
		t.Fatalf("move after resume: %v", err)
	}
}

func TestPauseHoldsComputerMove(t *testing.T) {
	conn := newFakeConn()
	sm := newManager(nil, nil, domain.Player2, 50*time.Millisecond)
	gs := sm.CreateSession(1, "alice", domain.DifficultyEasy, conn)
	if err := gs.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	gs.mu.Lock()
	moves := gs.Game.MoveCount
	gs.mu.Unlock()
	if moves != 0 {
		t.Fatalf("computer moved while paused")
	}

	if err := gs.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	move := waitFor(t, conn, "move_made")
	if move.Player != int(domain.Player2) {
		t.Fatalf("expected the computer's move after resume, got %+v", move)
	}
}

func TestTurnTimeoutEndsGame(t *testing.T) {
	conn := newFakeConn()
	repo := newFakeRepo()
	sm := newManager(repo, nil, domain.Player1, 0)
	gs := sm.CreateSession(1, "alice", domain.DifficultyHard, conn)

	gs.mu.Lock()
	seq := gs.turnSeq
	gs.mu.Unlock()

	gs.handleTurnTimeout(seq - 1)
	if gs.IsFinished() {
		t.Fatalf("stale timer ended the game")
	}

	gs.handleTurnTimeout(seq)
	over := waitFor(t, conn, "game_over")
	if over.Reason != ReasonTimeout || over.Winner != domain.GetBotName(domain.DifficultyHard) {
		t.Fatalf("unexpected game_over %+v", over)
	}

	rec := waitSaved(t, repo)
	if rec.Winner != domain.Player2 || rec.Reason != ReasonTimeout || rec.PlayerID != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestWinningMoveIsSaved(t *testing.T) {
	conn := newFakeConn()
	repo := newFakeRepo()
	sm := newManager(repo, nil, domain.Player1, 0)
	gs := sm.CreateSession(1, "alice", domain.DifficultyMedium, conn)

	gs.mu.Lock()
	for col := 0; col < 3; col++ {
		gs.Game.Board = domain.Place(gs.Game.Board, 0, col, domain.Player1)
		gs.Game.Board = domain.Place(gs.Game.Board, 1, col, domain.Player2)
	}
	gs.mu.Unlock()

	if err := gs.HandleMove(1, 3); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	over := waitFor(t, conn, "game_over")
	if over.Winner != "alice" || over.Reason != ReasonFourInARow {
		t.Fatalf("unexpected game_over %+v", over)
	}

	rec := waitSaved(t, repo)
	if rec.Winner != domain.Player1 || rec.Score() != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(rec.Moves) != 1 || rec.Moves[0] != 3 {
		t.Fatalf("moves = %v", rec.Moves)
	}
	if err := gs.HandleMove(1, 4); !errors.Is(err, domain.ErrGameFinished) {
		t.Fatalf("move after the end: got %v", err)
	}
}

func TestAbandonAndRestart(t *testing.T) {
	conn := newFakeConn()
	repo := newFakeRepo()
	sm := newManager(repo, nil, domain.Player1, 0)
	first := sm.CreateSession(1, "alice", domain.DifficultyEasy, conn)

	second, err := sm.Restart(1, conn)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if second.GameID == first.GameID || second.Difficulty != domain.DifficultyEasy {
		t.Fatalf("restart did not create a fresh game")
	}
	if rec := waitSaved(t, repo); rec.GameID != first.GameID || rec.Reason != ReasonAbandoned {
		t.Fatalf("unexpected record %+v", rec)
	}
	if got, ok := sm.GetSessionByUserID(1); !ok || got != second {
		t.Fatalf("user is not mapped to the new game")
	}
	if _, ok := sm.GetSessionByGameID(first.GameID); ok {
		t.Fatalf("old session still registered")
	}

	second.Abandon()
	second.Abandon()
	waitSaved(t, repo)
	select {
	case rec := <-repo.saved:
		t.Fatalf("game saved twice: %+v", rec)
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := sm.Restart(99, conn); err == nil {
		t.Fatalf("restart without a game should fail")
	}
}

func TestComputerUsesMoveCache(t *testing.T) {
	conn := newFakeConn()
	cache := newFakeCache()
	cache.Put(context.Background(), domain.NewBoard(), domain.Player2, 3, redis.CachedMove{Column: 6, Score: 1})

	sm := newManager(nil, cache, domain.Player2, 0)
	sm.CreateSession(1, "alice", domain.DifficultyMedium, conn)

	move := waitFor(t, conn, "move_made")
	if move.Column != 6 {
		t.Fatalf("column = %d, want the cached 6", move.Column)
	}
}

func TestActiveGamesAndCleanup(t *testing.T) {
	conn := newFakeConn()
	sm := newManager(nil, nil, domain.Player1, 0)
	sm.CreateSession(1, "alice", domain.DifficultyEasy, conn)
	done := sm.CreateSession(2, "bob", domain.DifficultyHard, conn)
	done.Abandon()

	live := sm.GetActiveGames()
	if len(live) != 1 || live[0].Username != "alice" {
		t.Fatalf("live games = %+v", live)
	}
	if _, ok := sm.GetLiveGame(done.GameID); ok {
		t.Fatalf("finished game reported as live")
	}
	if _, ok := sm.GetLiveGame("missing"); ok {
		t.Fatalf("unknown game reported as live")
	}
	one, ok := sm.GetLiveGame(live[0].GameID)
	if !ok || one.Board != domain.NewBoard() || one.CurrentPlayer != domain.Player1 {
		t.Fatalf("live game = %+v", one)
	}

	if n := sm.cleanupOldSessions(time.Now()); n != 0 {
		t.Fatalf("fresh sessions removed: %d", n)
	}
	if n := sm.cleanupOldSessions(time.Now().Add(2 * time.Hour)); n != 1 {
		t.Fatalf("removed %d sessions after two hours, want the finished one", n)
	}
	if n := sm.cleanupOldSessions(time.Now().Add(25 * time.Hour)); n != 1 {
		t.Fatalf("removed %d sessions after a day, want the active one", n)
	}
	if len(sm.Session) != 0 || len(sm.UserToGame) != 0 {
		t.Fatalf("maps not emptied")
	}
}

func TestDisconnectAbandons(t *testing.T) {
	conn := newFakeConn()
	repo := newFakeRepo()
	sm := newManager(repo, nil, domain.Player1, 0)
	sm.CreateSession(1, "alice", domain.DifficultyMedium, conn)

	sm.HandleDisconnect(1)
	if rec := waitSaved(t, repo); rec.Reason != ReasonAbandoned {
		t.Fatalf("reason = %s", rec.Reason)
	}
	if _, ok := sm.GetSessionByUserID(1); ok {
		t.Fatalf("session kept after disconnect")
	}
}
