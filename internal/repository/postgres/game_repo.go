package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/lib/pq"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameRecord is a finished game against the computer.
type GameRecord struct {
	GameID          string            `json:"game_id"`
	PlayerID        int64             `json:"player_id"`
	PlayerUsername  string            `json:"player_username"`
	Difficulty      domain.Difficulty `json:"difficulty"`
	FirstPlayer     domain.PlayerID   `json:"first_player"`
	Winner          domain.PlayerID   `json:"winner"`
	Reason          string            `json:"reason"`
	Moves           []int             `json:"moves"`
	Board           [][]int           `json:"board,omitempty"`
	TotalMoves      int               `json:"total_moves"`
	DurationSeconds int               `json:"duration_seconds"`
	RatingAfter     int               `json:"rating_after"`
	CreatedAt       time.Time         `json:"created_at"`
	FinishedAt      time.Time         `json:"finished_at"`
}

// Score is the game result for the human, 1 win, 0.5 draw, 0 loss.
func (r *GameRecord) Score() float64 {
	switch r.Winner {
	case domain.Player1:
		return 1.0
	case domain.Empty:
		return 0.5
	}
	return 0.0
}

// SaveGame stores a finished game and updates the player's stats and rating in
// one transaction. It returns the player's new rating.
func (r *GameRepo) SaveGame(ctx context.Context, rec GameRecord) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rating int
	err = tx.QueryRowContext(ctx, `SELECT rating FROM players WHERE id = $1 FOR UPDATE;`, rec.PlayerID).Scan(&rating)
	if err != nil {
		return 0, fmt.Errorf("failed to lock player %d: %w", rec.PlayerID, err)
	}
	rec.RatingAfter = domain.RatingAfterBotGame(rating, rec.Difficulty, rec.Score())

	boardJSON, err := json.Marshal(rec.Board)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO games (game_id, player_id, player_username, difficulty, first_player, winner, reason, moves, board_state, total_moves, duration_seconds, rating_after, created_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (game_id) DO NOTHING;
	`
	res, err := tx.ExecContext(ctx, query,
		rec.GameID, rec.PlayerID, rec.PlayerUsername, string(rec.Difficulty), int(rec.FirstPlayer), int(rec.Winner),
		rec.Reason, pq.Array(toInt64s(rec.Moves)), boardJSON, rec.TotalMoves, rec.DurationSeconds, rec.RatingAfter,
		rec.CreatedAt, rec.FinishedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// already saved, leave the stats alone
		return rating, nil
	}

	statsQuery := `
	UPDATE players
	SET games_played = games_played + 1,
	    games_won = games_won + CASE WHEN $2 THEN 1 ELSE 0 END,
	    games_drawn = games_drawn + CASE WHEN $3 THEN 1 ELSE 0 END,
	    rating = $4
	WHERE id = $1;
	`
	won := rec.Winner == domain.Player1
	drawn := rec.Winner == domain.Empty
	if _, err := tx.ExecContext(ctx, statsQuery, rec.PlayerID, won, drawn, rec.RatingAfter); err != nil {
		return 0, fmt.Errorf("failed to update player stats in transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return rec.RatingAfter, nil
}

const gameSelectFields = `game_id, player_id, player_username, difficulty, first_player, winner, reason, moves, board_state, total_moves, duration_seconds, rating_after, created_at, finished_at`

func scanGame(row interface{ Scan(dest ...any) error }) (*GameRecord, error) {
	var rec GameRecord
	var difficulty string
	var firstPlayer, winner int
	var moves pq.Int64Array
	var boardJSON []byte

	err := row.Scan(
		&rec.GameID,
		&rec.PlayerID,
		&rec.PlayerUsername,
		&difficulty,
		&firstPlayer,
		&winner,
		&rec.Reason,
		&moves,
		&boardJSON,
		&rec.TotalMoves,
		&rec.DurationSeconds,
		&rec.RatingAfter,
		&rec.CreatedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Difficulty = domain.Difficulty(difficulty)
	rec.FirstPlayer = domain.PlayerID(firstPlayer)
	rec.Winner = domain.PlayerID(winner)
	rec.Moves = make([]int, len(moves))
	for i, m := range moves {
		rec.Moves[i] = int(m)
	}
	if len(boardJSON) > 0 {
		if err := json.Unmarshal(boardJSON, &rec.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
		}
	}
	return &rec, nil
}

// GetGameByID returns nil, nil when the game does not exist.
func (r *GameRepo) GetGameByID(ctx context.Context, gameID string) (*GameRecord, error) {
	query := `SELECT ` + gameSelectFields + ` FROM games WHERE game_id = $1;`
	rec, err := scanGame(r.DB.QueryRowContext(ctx, query, gameID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return rec, nil
}

// GetUserGameHistory lists a player's games, newest first.
func (r *GameRepo) GetUserGameHistory(ctx context.Context, userID int64) ([]GameRecord, error) {
	query := `SELECT ` + gameSelectFields + ` FROM games WHERE player_id = $1 ORDER BY finished_at DESC;`
	return r.queryGames(ctx, query, userID)
}

// ListFinishedGames lists every game finished at or after since, oldest first.
func (r *GameRepo) ListFinishedGames(ctx context.Context, since time.Time) ([]GameRecord, error) {
	query := `SELECT ` + gameSelectFields + ` FROM games WHERE finished_at >= $1 ORDER BY finished_at ASC;`
	return r.queryGames(ctx, query, since)
}

func (r *GameRepo) queryGames(ctx context.Context, query string, args ...any) ([]GameRecord, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]GameRecord, 0)
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read game rows: %w", err)
	}
	return games, nil
}

func toInt64s(moves []int) []int64 {
	out := make([]int64, len(moves))
	for i, m := range moves {
		out[i] = int64(m)
	}
	return out
}
