package bot

import (
	"github.com/iamasit07/connect4-ai/internal/domain"
)

// PickBestMove is the one-ply greedy player: it drops botPlayer's disk in
// every legal column and keeps the column whose resulting position scores
// highest. Ties keep the lower column. A full board yields NoColumn.
func PickBestMove(board domain.Board, botPlayer domain.PlayerID) SearchResult {
	best := SearchResult{Column: NoColumn, Score: negInf}

	for _, col := range domain.LegalColumns(board) {
		testBoard, _, err := domain.SimulateMove(board, col, botPlayer)
		if err != nil {
			continue
		}
		score := int64(ScorePosition(testBoard, botPlayer))
		if score > best.Score {
			best = SearchResult{Column: col, Score: score}
		}
	}

	if best.Column == NoColumn {
		best.Score = MINIMAX_DRAW
	}
	return best
}

// GreedyScores returns ScorePosition after a botPlayer drop in each column,
// nil entries for full columns.
func GreedyScores(board domain.Board, botPlayer domain.PlayerID) []*int {
	scores := make([]*int, domain.Columns)
	for _, col := range domain.LegalColumns(board) {
		testBoard, _, err := domain.SimulateMove(board, col, botPlayer)
		if err != nil {
			continue
		}
		score := ScorePosition(testBoard, botPlayer)
		scores[col] = &score
	}
	return scores
}
