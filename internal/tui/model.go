// Package tui is a terminal game of Connect Four, against the computer or
// between two people sharing the keyboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/service/bot"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	playerOneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	playerTwoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// computerMoveMsg carries the computer's column back from its search.
// gen ties the result to the game it was computed for.
type computerMoveMsg struct {
	column int
	gen    int
}

type tickMsg struct {
	gen int
}

type Model struct {
	game        *domain.Game
	difficulty  domain.Difficulty
	firstPlayer domain.PlayerID
	local       bool      // two people, no computer
	names       [3]string // indexed by PlayerID
	clock       [3]time.Duration
	tickEvery   time.Duration
	cursor      int
	thinking    bool
	paused      bool
	held        *int // computer move that arrived while paused
	gen         int
	status      string
}

// New starts a game against the computer. The human is Player1 and has
// domain.TurnTimeLimit for every move.
func New(difficulty domain.Difficulty, firstPlayer domain.PlayerID) Model {
	m := Model{
		difficulty:  difficulty,
		firstPlayer: firstPlayer,
		names:       [3]string{"", "You", domain.GetBotName(difficulty)},
		tickEvery:   time.Second,
		cursor:      domain.CenterColumn,
	}
	m.reset()
	return m
}

// NewLocal starts a game between two people at one keyboard. Each has a
// domain.LocalTimeLimit bank that runs only on their own turns.
func NewLocal(name1, name2 string) Model {
	m := Model{
		firstPlayer: domain.Player1,
		local:       true,
		names:       [3]string{"", name1, name2},
		tickEvery:   time.Second,
		cursor:      domain.CenterColumn,
	}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.game = domain.NewGame(m.firstPlayer)
	m.paused = false
	m.held = nil
	if m.local {
		m.clock = [3]time.Duration{0, domain.LocalTimeLimit, domain.LocalTimeLimit}
		m.thinking = false
		return
	}
	m.clock = [3]time.Duration{}
	m.thinking = m.game.CurrentPlayer == domain.Player2
	if !m.thinking {
		m.clock[domain.Player1] = domain.TurnTimeLimit(m.difficulty)
	}
}

func (m Model) Init() tea.Cmd {
	if m.thinking {
		return tea.Batch(m.tick(), m.search())
	}
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tickEvery, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// search runs the computer on a copy of the board off the update loop.
func (m Model) search() tea.Cmd {
	board, difficulty, gen := m.game.Board, m.difficulty, m.gen
	return func() tea.Msg {
		return computerMoveMsg{column: bot.CalculateBestMove(board, domain.Player2, difficulty), gen: gen}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m.handleTick(msg)
	case computerMoveMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.thinking = false
		if m.paused {
			col := msg.column
			m.held = &col
			return m, nil
		}
		m.playComputer(msg.column)
	}
	return m, nil
}

// handleTick runs the clock of the side to move. The chain of ticks stops
// when the game ends or a restart bumps gen.
func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || m.game.IsFinished() {
		return m, nil
	}
	turn := m.game.CurrentPlayer
	if m.paused || !m.humanTurn() {
		return m, m.tick()
	}

	m.clock[turn] -= m.tickEvery
	if m.clock[turn] > 0 {
		return m, m.tick()
	}
	m.clock[turn] = 0
	m.game.Forfeit(turn.Opponent(), domain.StatusTimeout)
	m.status = m.names[turn] + " ran out of time"
	return m, nil
}

func (m Model) humanTurn() bool {
	return m.local || m.game.CurrentPlayer == domain.Player1
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.cursor = max(m.cursor-1, 0)
	case "right", "l":
		m.cursor = min(m.cursor+1, domain.Columns-1)
	case "1", "2", "3", "4", "5", "6", "7":
		m.cursor = int(key[0] - '1')
	case "enter", " ":
		return m.drop()
	case "p":
		return m.togglePause()
	case "r":
		m.gen++
		m.reset()
		m.status = "New game"
		return m, m.Init()
	}
	return m, nil
}

func (m Model) drop() (tea.Model, tea.Cmd) {
	switch {
	case m.game.IsFinished():
		m.status = "Game over, press r to play again"
		return m, nil
	case m.paused:
		m.status = "Paused, press p to resume"
		return m, nil
	case !m.humanTurn():
		m.status = "Wait for the computer"
		return m, nil
	}

	if _, err := m.game.MakeMove(m.game.CurrentPlayer, m.cursor); err != nil {
		m.status = fmt.Sprintf("Column %d: %v", m.cursor+1, err)
		return m, nil
	}
	m.status = ""
	if m.game.IsFinished() || m.local {
		return m, nil
	}
	m.thinking = true
	return m, m.search()
}

func (m Model) togglePause() (tea.Model, tea.Cmd) {
	if m.game.IsFinished() {
		return m, nil
	}
	m.paused = !m.paused
	if m.paused {
		m.status = "Paused"
		return m, nil
	}
	m.status = ""
	if m.held != nil {
		col := *m.held
		m.held = nil
		m.playComputer(col)
	}
	return m, nil
}

func (m *Model) playComputer(column int) {
	if _, err := m.game.MakeMove(domain.Player2, column); err != nil {
		m.status = fmt.Sprintf("Computer move failed: %v", err)
		return
	}
	m.clock[domain.Player1] = domain.TurnTimeLimit(m.difficulty)
}

func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Connect Four vs %s (%s)", m.names[domain.Player2], m.difficulty)
	if m.local {
		title = fmt.Sprintf("Connect Four: %s vs %s", m.names[domain.Player1], m.names[domain.Player2])
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	marker := make([]string, domain.Columns)
	for col := range marker {
		marker[col] = " "
	}
	if !m.game.IsFinished() {
		marker[m.cursor] = "v"
	}
	b.WriteString(" " + strings.Join(marker, " ") + "\n")
	b.WriteString(renderBoard(m.game.Board))
	b.WriteString(" 1 2 3 4 5 6 7\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.clockLine())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(helpStyle.Render("←/→ or 1-7 choose  enter drop  p pause  r restart  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusLine() string {
	g := m.game
	switch {
	case g.Status == domain.StatusWon && g.Winner == domain.Player1 && !m.local:
		return "You win!"
	case g.Status == domain.StatusWon, g.Status == domain.StatusTimeout:
		return m.names[g.Winner] + " wins."
	case g.Status == domain.StatusDraw:
		return "Draw."
	case m.paused:
		return "Paused"
	case m.thinking:
		return m.names[domain.Player2] + " is thinking..."
	case m.local:
		return m.names[g.CurrentPlayer] + "'s turn"
	case g.CurrentPlayer == domain.Player1:
		return "Your turn"
	}
	return m.names[domain.Player2] + " to move"
}

func (m Model) clockLine() string {
	if m.local {
		return fmt.Sprintf("%s %s   %s %s",
			m.names[domain.Player1], formatClock(m.clock[domain.Player1]),
			m.names[domain.Player2], formatClock(m.clock[domain.Player2]))
	}
	if m.game.IsFinished() || m.game.CurrentPlayer != domain.Player1 {
		return ""
	}
	return "Time left " + formatClock(m.clock[domain.Player1])
}

func formatClock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// renderBoard draws the top row first, so row 0 ends up at the bottom.
func renderBoard(board domain.Board) string {
	var b strings.Builder
	for row := domain.Rows - 1; row >= 0; row-- {
		b.WriteString("|")
		for col := 0; col < domain.Columns; col++ {
			b.WriteString(cell(board[row][col]))
			b.WriteString("|")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cell(p domain.PlayerID) string {
	switch p {
	case domain.Player1:
		return playerOneStyle.Render("X")
	case domain.Player2:
		return playerTwoStyle.Render("O")
	}
	return emptyStyle.Render(".")
}
