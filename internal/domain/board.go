package domain

import (
	"fmt"
	"strings"
)

// Board is the 6x7 grid. Row 0 is the floor, so pieces stack upwards
// from index 0. Being an array, assigning a Board copies every cell.
type Board [Rows][Columns]PlayerID

func NewBoard() Board {
	return Board{}
}

// IsColumnPlayable reports whether column is on the board and its top cell is empty.
func IsColumnPlayable(board Board, column int) bool {
	if column < 0 || column >= Columns {
		return false
	}
	return board[Rows-1][column] == Empty
}

// NextOpenRow returns the lowest empty row of column. Callers must check
// IsColumnPlayable first; asking for a full column panics.
func NextOpenRow(board Board, column int) int {
	if column >= 0 && column < Columns {
		for row := 0; row < Rows; row++ {
			if board[row][column] == Empty {
				return row
			}
		}
	}
	panic(fmt.Errorf("next open row of column %d: %w", column, ErrColumnFull))
}

// Place returns a copy of board with (row, column) set to player.
func Place(board Board, row, column int, player PlayerID) Board {
	board[row][column] = player
	return board
}

// DropDisk drops player's disk into column of the board in place and
// returns the row it landed on.
func DropDisk(board *Board, column int, player PlayerID) (int, error) {
	if column < 0 || column >= Columns {
		return -1, ErrInvalidMove
	}
	if !IsColumnPlayable(*board, column) {
		return -1, ErrColumnFull
	}
	row := NextOpenRow(*board, column)
	board[row][column] = player
	return row, nil
}

func IsBoardFull(board Board) bool {
	for c := 0; c < Columns; c++ {
		if board[Rows-1][c] == Empty {
			return false
		}
	}
	return true
}

// LegalColumns lists the playable columns in ascending order. The search
// relies on this order for its tie-breaks.
func LegalColumns(board Board) []int {
	validMoves := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if IsColumnPlayable(board, col) {
			validMoves = append(validMoves, col)
		}
	}
	return validMoves
}

// SimulateMove drops player's disk into a copy of board and returns the copy
// and the landing row. The errors are those of DropDisk.
func SimulateMove(board Board, column int, player PlayerID) (Board, int, error) {
	row, err := DropDisk(&board, column, player)
	if err != nil {
		return board, -1, err
	}
	return board, row, nil
}

// CountPieces counts the cells holding player.
func (b Board) CountPieces(player PlayerID) int {
	count := 0
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if b[row][col] == player {
				count++
			}
		}
	}
	return count
}

// CheckTurn reports whether player can be the side to move on b: the mover
// holds as many disks as the opponent or one fewer.
func (b Board) CheckTurn(player PlayerID) error {
	if player != Player1 && player != Player2 {
		return ErrInvalidPlayer
	}
	own, opp := b.CountPieces(player), b.CountPieces(player.Opponent())
	if own != opp && own != opp-1 {
		return fmt.Errorf("%w: player %d has %d disks against %d", ErrWrongSideToMove, player, own, opp)
	}
	return nil
}

// Validate checks cell values and that no column has a gap below a piece.
func (b Board) Validate() error {
	for col := 0; col < Columns; col++ {
		seenEmpty := false
		for row := 0; row < Rows; row++ {
			switch b[row][col] {
			case Empty:
				seenEmpty = true
			case Player1, Player2:
				if seenEmpty {
					return fmt.Errorf("%w: floating piece at row %d column %d", ErrInvalidBoard, row, col)
				}
			default:
				return fmt.Errorf("%w: unknown cell value %d at row %d column %d", ErrInvalidBoard, b[row][col], row, col)
			}
		}
	}
	return nil
}

// Key encodes the board as 42 digits, row 0 first. It is used as a cache key.
func (b Board) Key() string {
	var sb strings.Builder
	sb.Grow(Rows * Columns)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			sb.WriteByte(byte('0' + b[row][col]))
		}
	}
	return sb.String()
}

// ParseBoardKey is the inverse of Board.Key.
func ParseBoardKey(key string) (Board, error) {
	var b Board
	if len(key) != Rows*Columns {
		return b, fmt.Errorf("%w: key length %d", ErrInvalidBoard, len(key))
	}
	for i := 0; i < len(key); i++ {
		b[i/Columns][i%Columns] = PlayerID(key[i] - '0')
	}
	return b, b.Validate()
}

// BoardFromRows builds a board from rows listed bottom-up, the layout used by the API.
func BoardFromRows(rows [][]int) (Board, error) {
	var b Board
	if len(rows) != Rows {
		return b, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidBoard, Rows, len(rows))
	}
	for r, row := range rows {
		if len(row) != Columns {
			return b, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidBoard, r, len(row), Columns)
		}
		for c, v := range row {
			b[r][c] = PlayerID(v)
		}
	}
	return b, b.Validate()
}

// ToRows returns the board as int rows, bottom-up.
func (b Board) ToRows() [][]int {
	out := make([][]int, Rows)
	for r := range b {
		out[r] = make([]int, Columns)
		for c := range b[r] {
			out[r][c] = int(b[r][c])
		}
	}
	return out
}

// String prints the board top row first, the way it looks on screen.
func (b Board) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			switch b[row][col] {
			case Player1:
				sb.WriteByte('X')
			case Player2:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
