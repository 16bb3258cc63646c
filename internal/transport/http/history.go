package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/transport/http/middleware"
)

type GameHistoryReader interface {
	GetGameByID(ctx context.Context, gameID string) (*postgres.GameRecord, error)
	GetUserGameHistory(ctx context.Context, userID int64) ([]postgres.GameRecord, error)
}

type HistoryHandler struct {
	GameRepo GameHistoryReader
}

func NewHistoryHandler(gameRepo GameHistoryReader) *HistoryHandler {
	return &HistoryHandler{GameRepo: gameRepo}
}

type gameHistoryItem struct {
	ID           string    `json:"id"`
	Opponent     string    `json:"opponent"`
	Difficulty   string    `json:"difficulty"`
	Result       string    `json:"result"` // "win", "loss", "draw"
	EndReason    string    `json:"endReason"`
	MovesCount   int       `json:"movesCount"`
	RatingAfter  int       `json:"ratingAfter"`
	CreatedAt    time.Time `json:"createdAt"`
	WentFirst    bool      `json:"wentFirst"`
	DurationSecs int       `json:"durationSeconds"`
}

func resultFor(rec *postgres.GameRecord) string {
	switch rec.Winner {
	case domain.Player1:
		return "win"
	case domain.Player2:
		return "loss"
	}
	return "draw"
}

func toHistoryItem(rec *postgres.GameRecord) gameHistoryItem {
	return gameHistoryItem{
		ID:           rec.GameID,
		Opponent:     domain.GetBotName(rec.Difficulty),
		Difficulty:   string(rec.Difficulty),
		Result:       resultFor(rec),
		EndReason:    rec.Reason,
		MovesCount:   rec.TotalMoves,
		RatingAfter:  rec.RatingAfter,
		CreatedAt:    rec.CreatedAt,
		WentFirst:    rec.FirstPlayer == domain.Player1,
		DurationSecs: rec.DurationSeconds,
	}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	records, err := h.GameRepo.GetUserGameHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	history := make([]gameHistoryItem, 0, len(records))
	for i := range records {
		history = append(history, toHistoryItem(&records[i]))
	}
	c.JSON(http.StatusOK, history)
}

// GetGameDetails returns one of the caller's games with its moves and final board.
func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserID)

	rec, err := h.GameRepo.GetGameByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if rec == nil || rec.PlayerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game":  toHistoryItem(rec),
		"moves": rec.Moves,
		"board": rec.Board,
	})
}
