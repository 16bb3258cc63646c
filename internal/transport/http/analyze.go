package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/service/game"
)

type AnalyzeHandler struct {
	Service *game.Service
}

func NewAnalyzeHandler(service *game.Service) *AnalyzeHandler {
	return &AnalyzeHandler{Service: service}
}

type analyzeRequest struct {
	Board      [][]int `json:"board" binding:"required"`
	Difficulty string  `json:"difficulty"`
	Depth      int     `json:"depth"`
	Player     int     `json:"player"`
}

// Analyze returns the move the computer would play in the posted position.
// The board is a list of rows, floor first. Player defaults to the computer.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Depth < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "depth must not be negative"})
		return
	}

	board, err := domain.BoardFromRows(req.Board)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player := domain.Player2
	if req.Player != 0 {
		player = domain.PlayerID(req.Player)
	}

	result, err := h.Service.Analyze(c.Request.Context(), board, player, difficulty, req.Depth)
	if errors.Is(err, domain.ErrInvalidBoard) || errors.Is(err, domain.ErrInvalidPlayer) ||
		errors.Is(err, domain.ErrWrongSideToMove) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze position"})
		return
	}

	c.JSON(http.StatusOK, result)
}
