package domain

import "math"

const KFactor = 32.0

// CalculateElo returns the new rating for player A.
// score is 1.0 for a win, 0.5 for a draw, and 0.0 for a loss.
func CalculateElo(ratingA, ratingB int, score float64) int {
	expectedScoreA := 1.0 / (1.0 + math.Pow(10.0, float64(ratingB-ratingA)/400.0))
	newRating := float64(ratingA) + KFactor*(score-expectedScoreA)

	if newRating < 0 {
		return 0
	}
	return int(math.Round(newRating))
}

// ResultScore maps a finished game to the Elo score of player.
func ResultScore(g *Game, player PlayerID) float64 {
	switch {
	case g.Status == StatusDraw:
		return 0.5
	case g.Winner == player:
		return 1.0
	}
	return 0.0
}

// RatingAfterBotGame updates a player's rating against the bot of the given difficulty.
func RatingAfterBotGame(rating int, difficulty Difficulty, score float64) int {
	botRating, ok := BotRatings[difficulty]
	if !ok {
		botRating = BotRatings[DifficultyMedium]
	}
	return CalculateElo(rating, botRating, score)
}
