package bot

import (
	"github.com/iamasit07/connect4-ai/internal/domain"
)

const (
	WINDOW_FOUR_SCORE      = 100 // four of our own
	WINDOW_THREE_SCORE     = 5   // three of ours and a gap
	WINDOW_TWO_SCORE       = 2   // two of ours and two gaps
	WINDOW_OPP_THREE_SCORE = -4  // opponent three with a gap
	CENTER_COLUMN_WEIGHT   = 3   // per own piece in the center column
)

// ScoreWindow scores one window for piece. The opponent case is added on
// top of the own-piece cases; a window can never match both.
func ScoreWindow(window domain.Window, piece domain.PlayerID) int {
	score := 0
	own := window.Count(piece)
	empty := window.Count(domain.Empty)
	opp := window.Count(piece.Opponent())

	switch {
	case own == 4:
		score += WINDOW_FOUR_SCORE
	case own == 3 && empty == 1:
		score += WINDOW_THREE_SCORE
	case own == 2 && empty == 2:
		score += WINDOW_TWO_SCORE
	}

	if opp == 3 && empty == 1 {
		score += WINDOW_OPP_THREE_SCORE
	}

	return score
}

// ScorePosition sums ScoreWindow over every window of the board and adds the
// center column bonus. It does not look at whose turn it is.
func ScorePosition(board domain.Board, piece domain.PlayerID) int {
	score := 0

	for row := 0; row < domain.Rows; row++ {
		if board[row][domain.CenterColumn] == piece {
			score += CENTER_COLUMN_WEIGHT
		}
	}

	domain.ForEachWindow(board, func(w domain.Window) bool {
		score += ScoreWindow(w, piece)
		return true
	})

	return score
}
