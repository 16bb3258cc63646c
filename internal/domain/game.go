package domain

// Move is one dropped disk.
type Move struct {
	Player PlayerID `json:"player"`
	Column int      `json:"column"`
	Row    int      `json:"row"`
}

type Game struct {
	Board         Board
	CurrentPlayer PlayerID
	Status        GameStatus
	Winner        PlayerID
	MoveCount     int
	Moves         []Move
}

func NewGame(firstPlayer PlayerID) *Game {
	if firstPlayer != Player2 {
		firstPlayer = Player1
	}
	return &Game{
		Board:         NewBoard(),
		CurrentPlayer: firstPlayer,
		Status:        StatusActive,
		Winner:        Empty,
	}
}

func (g *Game) MakeMove(player PlayerID, column int) (int, error) {
	if g.Status != StatusActive {
		return -1, ErrGameFinished
	}

	if player != g.CurrentPlayer {
		return -1, ErrNotYourTurn
	}

	row, err := DropDisk(&g.Board, column, player)
	if err != nil {
		return -1, err
	}

	g.MoveCount++
	g.Moves = append(g.Moves, Move{Player: player, Column: column, Row: row})

	if CheckWin(g.Board, row, column, player) {
		g.Status = StatusWon
		g.Winner = player
		return row, nil
	}

	if IsBoardFull(g.Board) {
		g.Status = StatusDraw
		return row, nil
	}

	g.CurrentPlayer = player.Opponent()
	return row, nil
}

// Forfeit ends an active game in favour of winner with the given status.
func (g *Game) Forfeit(winner PlayerID, status GameStatus) {
	if g.Status != StatusActive {
		return
	}
	g.Status = status
	g.Winner = winner
}

func (g *Game) IsFinished() bool {
	return g.Status != StatusActive
}

// PlayedColumns lists the played columns in order.
func (g *Game) PlayedColumns() []int {
	cols := make([]int, len(g.Moves))
	for i, m := range g.Moves {
		cols[i] = m.Column
	}
	return cols
}
