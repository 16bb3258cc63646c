package bot

import (
	"github.com/iamasit07/connect4-ai/internal/domain"
)

const MEDIUM_DEPTH = 3

func calculateMediumMove(board domain.Board, botPlayer domain.PlayerID) SearchResult {
	return Search(board, botPlayer, MEDIUM_DEPTH, nil)
}
