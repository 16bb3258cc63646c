package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iamasit07/connect4-ai/internal/domain"
)

var gameColumns = []string{
	"game_id", "player_id", "player_username", "difficulty", "first_player", "winner", "reason",
	"moves", "board_state", "total_moves", "duration_seconds", "rating_after", "created_at", "finished_at",
}

func newMock(t *testing.T) (*GameRepo, *UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGameRepo(db), NewUserRepo(db), mock
}

func sampleRecord() GameRecord {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return GameRecord{
		GameID:          "g-1",
		PlayerID:        7,
		PlayerUsername:  "alice",
		Difficulty:      domain.DifficultyMedium,
		FirstPlayer:     domain.Player1,
		Winner:          domain.Player1,
		Reason:          "four in a row",
		Moves:           []int{3, 3, 4, 4, 5, 5, 6},
		Board:           domain.NewBoard().ToRows(),
		TotalMoves:      7,
		DurationSeconds: 42,
		CreatedAt:       start,
		FinishedAt:      start.Add(42 * time.Second),
	}
}

func TestSaveGameUpdatesStatsAndRating(t *testing.T) {
	repo, _, mock := newMock(t)
	rec := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT rating FROM players WHERE id = $1 FOR UPDATE;")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(1200))
	mock.ExpectExec("INSERT INTO games").
		WithArgs("g-1", int64(7), "alice", "medium", 1, 1, "four in a row",
			sqlmock.AnyArg(), sqlmock.AnyArg(), 7, 42, 1216, rec.CreatedAt, rec.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE players").
		WithArgs(int64(7), true, false, 1216).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rating, err := repo.SaveGame(context.Background(), rec)
	if err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if rating != 1216 {
		t.Fatalf("rating = %d, want 1216", rating)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveGameTwiceKeepsStats(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT rating FROM players").
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(1000))
	mock.ExpectExec("INSERT INTO games").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rating, err := repo.SaveGame(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if rating != 1000 {
		t.Fatalf("rating = %d, want the unchanged 1000", rating)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetGameByID(t *testing.T) {
	repo, _, mock := newMock(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM games WHERE game_id = \\$1").
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows(gameColumns).AddRow(
			"g-1", int64(7), "alice", "hard", int64(2), int64(2), "four in a row",
			"{3,2,3}", []byte(`[[1,2,0,0,0,0,0]]`), int64(3), int64(12), int64(990), created, created.Add(time.Minute)))

	rec, err := repo.GetGameByID(context.Background(), "g-1")
	if err != nil {
		t.Fatalf("GetGameByID: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a record")
	}
	if rec.Difficulty != domain.DifficultyHard || rec.Winner != domain.Player2 || rec.FirstPlayer != domain.Player2 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(rec.Moves) != 3 || rec.Moves[0] != 3 || rec.Moves[1] != 2 {
		t.Fatalf("moves = %v", rec.Moves)
	}
	if len(rec.Board) != 1 || rec.Board[0][1] != 2 {
		t.Fatalf("board = %v", rec.Board)
	}
	if rec.Score() != 0 {
		t.Fatalf("a computer win scores %v for the player", rec.Score())
	}
}

func TestGetGameByIDNotFound(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectQuery("FROM games WHERE game_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(gameColumns))

	rec, err := repo.GetGameByID(context.Background(), "missing")
	if err != nil || rec != nil {
		t.Fatalf("GetGameByID = (%v, %v), want (nil, nil)", rec, err)
	}
}

func TestListFinishedGames(t *testing.T) {
	repo, _, mock := newMock(t)
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(gameColumns).
		AddRow("a", int64(1), "alice", "easy", int64(1), int64(0), "draw", "{}", nil, int64(42), int64(300), int64(1000), since, since).
		AddRow("b", int64(2), "bob", "medium", int64(2), int64(1), "four in a row", "{3}", nil, int64(1), int64(5), int64(1016), since, since)
	mock.ExpectQuery("WHERE finished_at >= \\$1").WithArgs(since).WillReturnRows(rows)

	games, err := repo.ListFinishedGames(context.Background(), since)
	if err != nil {
		t.Fatalf("ListFinishedGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games", len(games))
	}
	if games[0].Score() != 0.5 || games[1].Score() != 1 {
		t.Fatalf("scores %v %v", games[0].Score(), games[1].Score())
	}
	if games[0].Board != nil || len(games[0].Moves) != 0 {
		t.Fatalf("empty game decoded as %+v", games[0])
	}
}

func TestUserRepo(t *testing.T) {
	_, users, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO players").
		WithArgs("alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	id, err := users.CreateUser(context.Background(), "alice", "hash")
	if err != nil || id != 11 {
		t.Fatalf("CreateUser = (%d, %v)", id, err)
	}

	mock.ExpectQuery("FROM players WHERE username").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	user, err := users.GetUserByUsername(context.Background(), "nobody")
	if err != nil || user != nil {
		t.Fatalf("GetUserByUsername = (%v, %v), want (nil, nil)", user, err)
	}

	mock.ExpectQuery("FROM players").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"rank", "username", "rating", "games_won", "games_drawn", "losses"}).
			AddRow(1, "alice", 1300, 5, 1, 2))
	board, err := users.GetLeaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Username != "alice" || board[0].Losses != 2 {
		t.Fatalf("leaderboard = %+v", board)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
