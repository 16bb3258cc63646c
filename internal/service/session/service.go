package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/pkg/auth"
)

const blockedTokenKeyPrefix = "blocked_token:"

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrReservedUsername   = errors.New("username is reserved for a computer player")
)

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*postgres.User, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// AuthService handles registration, login and token checks.
type AuthService struct {
	users UserRepository
	cache CacheRepository // Optional, can be nil
}

func NewAuthService(users UserRepository, cache CacheRepository) *AuthService {
	return &AuthService{
		users: users,
		cache: cache,
	}
}

// Register creates the account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, *postgres.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return "", nil, fmt.Errorf("username must be between 3 and 32 characters")
	}
	if domain.IsBotName(username) {
		return "", nil, ErrReservedUsername
	}
	if err := auth.ValidatePassword(username, password); err != nil {
		return "", nil, err
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return "", nil, err
	}

	token, _, err := auth.GenerateJWT(userID, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Printf("[AUTH] Registered %s (ID: %d)", username, userID)
	return token, &postgres.User{ID: userID, Username: username, Rating: 1000}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *postgres.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := auth.GenerateJWT(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

// Logout blocks the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.cache == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, blockedTokenKeyPrefix+claims.ID, "1", ttl)
}

// ValidateToken checks the signature and the logout blocklist.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateJWT(tokenString)
	if err != nil {
		return nil, err
	}
	if s.isBlocked(ctx, claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) isBlocked(ctx context.Context, tokenID string) bool {
	if s.cache == nil || tokenID == "" {
		return false
	}
	val, err := s.cache.Get(ctx, blockedTokenKeyPrefix+tokenID)
	return err == nil && val != ""
}
