package game

import (
	"context"
	"log"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/redis"
	"github.com/iamasit07/connect4-ai/internal/service/bot"
)

// Service is the entry point for stateless position analysis (facade)
type Service struct {
	Cache    MoveCache
	MaxDepth int
}

func NewService(cache MoveCache, maxDepth int) *Service {
	return &Service{
		Cache:    cache,
		MaxDepth: maxDepth,
	}
}

// AnalysisResult is bot.Analysis plus whether the chosen move came from the cache.
type AnalysisResult struct {
	bot.Analysis
	Cached bool `json:"cached"`
}

// Analyze searches board for player. depth 0 uses the difficulty's depth;
// any depth is capped at MaxDepth.
func (s *Service) Analyze(ctx context.Context, board domain.Board, player domain.PlayerID, difficulty domain.Difficulty, depth int) (AnalysisResult, error) {
	if err := board.Validate(); err != nil {
		return AnalysisResult{}, err
	}
	if err := board.CheckTurn(player); err != nil {
		return AnalysisResult{}, err
	}

	if depth <= 0 {
		depth = bot.DepthFor(difficulty)
	}
	if s.MaxDepth > 0 && depth > s.MaxDepth {
		depth = s.MaxDepth
	}

	if s.Cache != nil {
		cached, found, err := s.Cache.Get(ctx, board, player, depth)
		if err != nil {
			log.Printf("[REDIS] Move cache read failed: %v", err)
		}
		if found {
			return AnalysisResult{
				Analysis: bot.Analysis{
					SearchResult: bot.SearchResult{Column: cached.Column, Score: cached.Score},
					Depth:        depth,
					GreedyScores: bot.GreedyScores(board, player),
					Terminal:     domain.IsTerminal(board),
					Winner:       int(domain.Winner(board)),
				},
				Cached: true,
			}, nil
		}
	}

	analysis := bot.Analyze(board, player, depth)

	if s.Cache != nil {
		move := redis.CachedMove{Column: analysis.Column, Score: analysis.Score}
		if err := s.Cache.Put(ctx, board, player, depth, move); err != nil {
			log.Printf("[REDIS] Move cache write failed: %v", err)
		}
	}
	return AnalysisResult{Analysis: analysis}, nil
}
