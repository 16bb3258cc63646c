package bot

import (
	"math"

	"github.com/iamasit07/connect4-ai/internal/domain"
)

const (
	// NoColumn marks a result that carries only a score: leaves, terminal
	// boards and depth 0 searches.
	NoColumn = -1

	// The win outweighs the loss tenfold; keep the two asymmetric.
	MINIMAX_WIN  int64 = 100_000_000_000_000
	MINIMAX_LOSS int64 = -10_000_000_000_000
	MINIMAX_DRAW int64 = 0

	negInf int64 = math.MinInt64
	posInf int64 = math.MaxInt64
)

// SearchResult is the column chosen at the root of a search and its backed-up score.
type SearchResult struct {
	Column int   `json:"column"`
	Score  int64 `json:"score"`
}

// HasColumn is false for leaf results.
func (r SearchResult) HasColumn() bool {
	return r.Column != NoColumn
}

// SearchStats counts work done by one search. A nil *SearchStats is valid.
type SearchStats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Cutoffs int `json:"cutoffs"`
}

func (s *SearchStats) node() {
	if s != nil {
		s.Nodes++
	}
}

func (s *SearchStats) leaf() {
	if s != nil {
		s.Leaves++
	}
}

func (s *SearchStats) cutoff() {
	if s != nil {
		s.Cutoffs++
	}
}

// Search runs Minimax from the root with an unbounded window, maximizing for botPlayer.
func Search(board domain.Board, botPlayer domain.PlayerID, depth int, stats *SearchStats) SearchResult {
	return Minimax(board, depth, negInf, posInf, true, botPlayer, stats)
}

// Minimax is a depth-limited minimax with alpha-beta pruning. botPlayer is
// the maximizing side; maximizing says whose move it is at this node. Each
// child gets its own copy of the board, so siblings never see each other's moves.
func Minimax(board domain.Board, depth int, alpha, beta int64, maximizing bool, botPlayer domain.PlayerID, stats *SearchStats) SearchResult {
	stats.node()

	// Terminal check comes first so the loops below always have a legal column.
	if depth <= 0 || domain.IsTerminal(board) {
		stats.leaf()
		return SearchResult{Column: NoColumn, Score: leafScore(board, botPlayer)}
	}

	validColumns := domain.LegalColumns(board)

	if maximizing {
		value := negInf
		bestColumn := NoColumn
		for _, col := range validColumns {
			child := domain.Place(board, domain.NextOpenRow(board, col), col, botPlayer)
			score := Minimax(child, depth-1, alpha, beta, false, botPlayer, stats).Score

			if score > value {
				value = score
				bestColumn = col
			}

			alpha = max(alpha, value)
			if alpha >= beta {
				stats.cutoff()
				break
			}
		}
		return SearchResult{Column: bestColumn, Score: value}
	}

	opponent := botPlayer.Opponent()
	value := posInf
	bestColumn := NoColumn
	for _, col := range validColumns {
		child := domain.Place(board, domain.NextOpenRow(board, col), col, opponent)
		score := Minimax(child, depth-1, alpha, beta, true, botPlayer, stats).Score

		if score < value {
			value = score
			bestColumn = col
		}

		beta = min(beta, value)
		if alpha >= beta {
			stats.cutoff()
			break
		}
	}
	return SearchResult{Column: bestColumn, Score: value}
}

// leafScore scores a node where the search stops, from botPlayer's side.
func leafScore(board domain.Board, botPlayer domain.PlayerID) int64 {
	switch {
	case domain.IsWinFor(board, botPlayer):
		return MINIMAX_WIN
	case domain.IsWinFor(board, botPlayer.Opponent()):
		return MINIMAX_LOSS
	case len(domain.LegalColumns(board)) == 0:
		return MINIMAX_DRAW
	}
	return int64(ScorePosition(board, botPlayer))
}
