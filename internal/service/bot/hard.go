package bot

import (
	"github.com/iamasit07/connect4-ai/internal/domain"
)

// SearchDepth is the ply budget of the computer's regular move.
const SearchDepth = 5

// ChooseComputerMove picks botPlayer's column with a SearchDepth-ply alpha-beta
// search. The board is a snapshot; callers check the column is still legal on
// their live board before playing it.
func ChooseComputerMove(board domain.Board, botPlayer domain.PlayerID) int {
	return Search(board, botPlayer, SearchDepth, nil).Column
}
