// Package export writes finished games to parquet, one row per ply.
package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/service/bot"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const schemaName = "connect4_move_v1"

// MoveRow is one ply of a finished game.
//
// BoardKey is the position before the move (see domain.Board.Key). Score is
// the computer's heuristic evaluation of the position after it. Outcome is
// the final result for the human: 1 win, 0.5 draw, 0 loss.
type MoveRow struct {
	GameID     string  `parquet:"game_id,dict"`
	Ply        int32   `parquet:"ply"`
	Difficulty string  `parquet:"difficulty,dict"`
	BoardKey   string  `parquet:"board_key"`
	Column     int32   `parquet:"column"`
	Player     int32   `parquet:"player"`
	Score      int32   `parquet:"score"`
	Outcome    float32 `parquet:"outcome"`
	Reason     string  `parquet:"reason,dict"`
}

type GameLister interface {
	ListFinishedGames(ctx context.Context, since time.Time) ([]postgres.GameRecord, error)
}

// RowsForGame replays the recorded moves from the empty board.
func RowsForGame(rec postgres.GameRecord) ([]MoveRow, error) {
	game := domain.NewGame(rec.FirstPlayer)
	rows := make([]MoveRow, 0, len(rec.Moves))

	for ply, column := range rec.Moves {
		before := game.Board
		player := game.CurrentPlayer
		if _, err := game.MakeMove(player, column); err != nil {
			return nil, fmt.Errorf("game %s ply %d column %d: %w", rec.GameID, ply, column, err)
		}
		rows = append(rows, MoveRow{
			GameID:     rec.GameID,
			Ply:        int32(ply),
			Difficulty: string(rec.Difficulty),
			BoardKey:   before.Key(),
			Column:     int32(column),
			Player:     int32(player),
			Score:      int32(bot.ScorePosition(game.Board, domain.Player2)),
			Outcome:    float32(rec.Score()),
			Reason:     rec.Reason,
		})
	}
	return rows, nil
}

// Export writes every game finished since the given time to outPath and
// returns the number of games written. Games whose moves do not replay are skipped.
func Export(ctx context.Context, games GameLister, since time.Time, outPath string) (int, error) {
	records, err := games.ListFinishedGames(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}

	var rows []MoveRow
	written := 0
	for _, rec := range records {
		gameRows, err := RowsForGame(rec)
		if err != nil {
			log.Printf("[EXPORT] Skipping %v", err)
			continue
		}
		rows = append(rows, gameRows...)
		written++
	}

	if err := WriteMovesParquet(outPath, rows); err != nil {
		return 0, err
	}
	log.Printf("[EXPORT] Wrote %d games (%d moves) to %s", written, len(rows), outPath)
	return written, nil
}

func WriteMovesParquet(outPath string, rows []MoveRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Write to a temp file and rename atomically.
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaName),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func ReadMovesParquet(path string) ([]MoveRow, error) {
	rows, err := parquet.ReadFile[MoveRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

// Verify reads an exported file back and checks that every row decodes to a
// legal position with the row's player to move and its column open.
// It returns the number of rows checked.
func Verify(path string) (int, error) {
	rows, err := ReadMovesParquet(path)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		board, err := domain.ParseBoardKey(row.BoardKey)
		if err != nil {
			return i, fmt.Errorf("row %d (game %s ply %d): %w", i, row.GameID, row.Ply, err)
		}
		if err := board.CheckTurn(domain.PlayerID(row.Player)); err != nil {
			return i, fmt.Errorf("row %d (game %s ply %d): %w", i, row.GameID, row.Ply, err)
		}
		if !domain.IsColumnPlayable(board, int(row.Column)) {
			return i, fmt.Errorf("row %d (game %s ply %d) column %d: %w", i, row.GameID, row.Ply, row.Column, domain.ErrInvalidMove)
		}
	}
	return len(rows), nil
}
