package domain

import (
	"strings"
	"time"
)

var BotNames = map[Difficulty]string{
	DifficultyEasy:   "Alice",
	DifficultyMedium: "Bob",
	DifficultyHard:   "Charles",
}

// bot ratings used as the opponent rating when a player's Elo is updated
var BotRatings = map[Difficulty]int{
	DifficultyEasy:   800,
	DifficultyMedium: 1200,
	DifficultyHard:   1600,
}

func GetBotName(difficulty Difficulty) string {
	if name, ok := BotNames[difficulty]; ok {
		return name
	}
	return "BOT"
}

// IsBotName reports whether username would read as one of the computer players.
func IsBotName(username string) bool {
	if strings.EqualFold(username, "BOT") {
		return true
	}
	for _, name := range BotNames {
		if strings.EqualFold(username, name) {
			return true
		}
	}
	return false
}

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1 // human
	Player2 PlayerID = 2 // computer
)

// Opponent returns the other piece. Empty maps to Empty.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return Empty
}

const (
	Rows         = 6
	Columns      = 7
	ToWin        = 4
	CenterColumn = Columns / 2
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the difficulty names case-insensitively.
// An empty string selects medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium, "":
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", ErrUnknownDifficulty
}

// LocalTimeLimit is each player's time bank in a two-player game on one screen.
const LocalTimeLimit = 120 * time.Second

// TurnTimeLimit is how long the human has for each move against the given bot.
func TurnTimeLimit(difficulty Difficulty) time.Duration {
	switch difficulty {
	case DifficultyEasy:
		return 60 * time.Second
	case DifficultyHard:
		return 15 * time.Second
	default:
		return 30 * time.Second
	}
}

// to represent the game status
type GameStatus string

const (
	StatusActive    GameStatus = "active"
	StatusWon       GameStatus = "won"
	StatusDraw      GameStatus = "draw"
	StatusTimeout   GameStatus = "timeout"
	StatusAbandoned GameStatus = "abandoned"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove       Error = "invalid move"
	ErrColumnFull        Error = "column is full"
	ErrInvalidBoard      Error = "invalid board"
	ErrGameFinished      Error = "game is finished"
	ErrNotYourTurn       Error = "not your turn"
	ErrGamePaused        Error = "game is paused"
	ErrUnknownDifficulty Error = "unknown difficulty"
	ErrInvalidPlayer     Error = "invalid player"
	ErrWrongSideToMove   Error = "wrong side to move"
)
