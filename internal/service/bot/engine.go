package bot

import (
	"github.com/iamasit07/connect4-ai/internal/domain"
)

// CalculateBestMove selects the best move based on difficulty
func CalculateBestMove(board domain.Board, botPlayer domain.PlayerID, difficulty domain.Difficulty) int {
	return Decide(board, botPlayer, difficulty).Column
}

// Decide returns the column and score the bot of the given difficulty settles on.
func Decide(board domain.Board, botPlayer domain.PlayerID, difficulty domain.Difficulty) SearchResult {
	switch difficulty {
	case domain.DifficultyEasy:
		return PickBestMove(board, botPlayer)
	case domain.DifficultyHard:
		return Search(board, botPlayer, SearchDepth, nil)
	default:
		return calculateMediumMove(board, botPlayer)
	}
}

// DepthFor is the search depth used by difficulty; easy is a single greedy ply.
func DepthFor(difficulty domain.Difficulty) int {
	switch difficulty {
	case domain.DifficultyEasy:
		return 1
	case domain.DifficultyHard:
		return SearchDepth
	default:
		return MEDIUM_DEPTH
	}
}

// Analysis is what the analyze endpoint reports for a position.
type Analysis struct {
	SearchResult
	Depth        int         `json:"depth"`
	Stats        SearchStats `json:"stats"`
	GreedyScores []*int      `json:"greedyScores"`
	Terminal     bool        `json:"terminal"`
	Winner       int         `json:"winner"`
}

// Analyze searches the board to depth for botPlayer and records the greedy
// per-column scores alongside.
func Analyze(board domain.Board, botPlayer domain.PlayerID, depth int) Analysis {
	a := Analysis{
		Depth:        depth,
		GreedyScores: GreedyScores(board, botPlayer),
		Terminal:     domain.IsTerminal(board),
		Winner:       int(domain.Winner(board)),
	}
	a.SearchResult = Search(board, botPlayer, depth, &a.Stats)
	return a
}
