package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/tui"
)

func main() {
	difficultyFlag := flag.String("difficulty", "medium", "computer strength: easy, medium or hard")
	firstFlag := flag.String("first", "random", "who opens: human, computer or random")
	modeFlag := flag.String("mode", "computer", "computer, or local for two players at one keyboard")
	name1 := flag.String("p1", "Player 1", "first player's name in local mode")
	name2 := flag.String("p2", "Player 2", "second player's name in local mode")
	flag.Parse()

	var model tui.Model
	switch *modeFlag {
	case "local":
		model = tui.NewLocal(*name1, *name2)
	case "computer":
		model = computerGame(*difficultyFlag, *firstFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown -mode value %q\n", *modeFlag)
		os.Exit(2)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func computerGame(difficultyFlag, firstFlag string) tui.Model {
	difficulty, err := domain.ParseDifficulty(difficultyFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %q\n", err, difficultyFlag)
		os.Exit(2)
	}

	var first domain.PlayerID
	switch firstFlag {
	case "human":
		first = domain.Player1
	case "computer":
		first = domain.Player2
	case "random":
		first = domain.Player1
		if rand.Intn(2) == 1 {
			first = domain.Player2
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -first value %q\n", firstFlag)
		os.Exit(2)
	}
	return tui.New(difficulty, first)
}
