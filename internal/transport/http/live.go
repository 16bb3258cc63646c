package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-ai/internal/service/game"
)

type LiveGameLister interface {
	GetActiveGames() []game.LiveGame
	GetLiveGame(gameID string) (game.LiveGame, bool)
}

type LiveHandler struct {
	Sessions LiveGameLister
}

func NewLiveHandler(sessions LiveGameLister) *LiveHandler {
	return &LiveHandler{Sessions: sessions}
}

type liveGameResponse struct {
	GameID     string `json:"gameId"`
	Player     string `json:"player"`
	Opponent   string `json:"opponent"`
	Difficulty string `json:"difficulty"`
	MoveCount  int    `json:"moveCount"`
	Paused     bool   `json:"paused"`
	StartedAt  string `json:"startedAt"`
}

type liveGameDetail struct {
	liveGameResponse
	Board       [][]int `json:"board"`
	CurrentTurn int     `json:"currentTurn"`
}

func toLiveResponse(g game.LiveGame) liveGameResponse {
	return liveGameResponse{
		GameID:     g.GameID,
		Player:     g.Username,
		Opponent:   g.BotName,
		Difficulty: string(g.Difficulty),
		MoveCount:  g.MoveCount,
		Paused:     g.Paused,
		StartedAt:  g.StartedAt.Format(time.RFC3339),
	}
}

// GetLiveGames lists the games in progress, oldest first.
func (h *LiveHandler) GetLiveGames(c *gin.Context) {
	activeGames := h.Sessions.GetActiveGames()
	sort.Slice(activeGames, func(i, j int) bool {
		return activeGames[i].StartedAt.Before(activeGames[j].StartedAt)
	})

	response := make([]liveGameResponse, 0, len(activeGames))
	for _, g := range activeGames {
		response = append(response, toLiveResponse(g))
	}

	c.JSON(http.StatusOK, response)
}

// GetLiveGame shows the board of one game in progress, floor row first.
func (h *LiveHandler) GetLiveGame(c *gin.Context) {
	g, ok := h.Sessions.GetLiveGame(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, liveGameDetail{
		liveGameResponse: toLiveResponse(g),
		Board:            g.Board.ToRows(),
		CurrentTurn:      int(g.CurrentPlayer),
	})
}
