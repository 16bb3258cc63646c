package uid

import "github.com/google/uuid"

// GenerateGameID returns a random UUID for a new game.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateTokenID returns a random UUID used as a token's jti.
func GenerateTokenID() string {
	return uuid.NewString()
}
