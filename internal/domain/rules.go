package domain

// Window is four contiguous cells along a row, column or diagonal.
type Window [ToWin]PlayerID

// Count returns how many cells of w hold player.
func (w Window) Count(player PlayerID) int {
	n := 0
	for _, cell := range w {
		if cell == player {
			n++
		}
	}
	return n
}

// direction steps (deltaRow, deltaCol) with the valid starting ranges for a window
var windowDirections = []struct {
	deltaRow, deltaCol int
	rowFrom, rowTo     int
	colFrom, colTo     int
}{
	{0, 1, 0, Rows, 0, Columns - ToWin + 1},             // horizontal
	{1, 0, 0, Rows - ToWin + 1, 0, Columns},             // vertical
	{1, 1, 0, Rows - ToWin + 1, 0, Columns - ToWin + 1}, // diagonal /
	{-1, 1, ToWin - 1, Rows, 0, Columns - ToWin + 1},    // diagonal \
}

// ForEachWindow calls fn for every window on the board: 24 horizontal,
// 21 vertical and 12 along each diagonal family. Returning false stops the walk.
func ForEachWindow(board Board, fn func(w Window) bool) {
	for _, d := range windowDirections {
		for row := d.rowFrom; row < d.rowTo; row++ {
			for col := d.colFrom; col < d.colTo; col++ {
				var w Window
				for i := 0; i < ToWin; i++ {
					w[i] = board[row+i*d.deltaRow][col+i*d.deltaCol]
				}
				if !fn(w) {
					return
				}
			}
		}
	}
}

// IsWinFor reports whether player has four in a row anywhere on the board.
func IsWinFor(board Board, player PlayerID) bool {
	won := false
	ForEachWindow(board, func(w Window) bool {
		if w.Count(player) == ToWin {
			won = true
			return false
		}
		return true
	})
	return won
}

// Winner returns the player holding a four in a row, or Empty.
func Winner(board Board) PlayerID {
	if IsWinFor(board, Player1) {
		return Player1
	}
	if IsWinFor(board, Player2) {
		return Player2
	}
	return Empty
}

// IsTerminal is true when either side has won or no column is playable.
func IsTerminal(board Board) bool {
	return IsWinFor(board, Player1) || IsWinFor(board, Player2) || len(LegalColumns(board)) == 0
}

// CheckWin only looks at lines through (row, column), which is enough right after
// a disk landed there.
func CheckWin(board Board, row, column int, player PlayerID) bool {
	directions := [][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal /
		{1, -1}, // diagonal \
	}

	for _, dir := range directions {
		total := 1 +
			CountDiskInDirection(board, row, column, dir[0], dir[1], player) +
			CountDiskInDirection(board, row, column, -dir[0], -dir[1], player)
		if total >= ToWin {
			return true
		}
	}
	return false
}

// this counts the number of disks in a specific direction
func CountDiskInDirection(board Board, row, column int, deltaRow, deltaCol int, player PlayerID) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for r >= 0 && r < Rows && c >= 0 && c < Columns && board[r][c] == player {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}
