package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                 string
	Environment          string
	AllowedOrigins       []string
	FrontendURL          string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	MoveCacheTTL         time.Duration
	JWTSecret            string
	JWTExpiration        time.Duration
	BotMoveDelay         time.Duration
	AnalyzeMaxDepth      int
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")
	environment := GetEnv("ENVIRONMENT", "development")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && trimmed != frontendURL {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	// Database Config
	dbURL := GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))
	dbMaxOpenConns := GetEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	dbMaxIdleConns := GetEnvAsInt("DB_MAX_IDLE_CONNS", 25)
	dbConnMaxLifetimeMin := GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	// Redis move cache, optional
	redisURL := GetEnv("REDIS_URL", "localhost:6379")
	redisPassword := GetEnv("REDIS_PASSWORD", "")
	moveCacheTTLMin := GetEnvAsInt("MOVE_CACHE_TTL_MINUTES", 60)

	// Security
	jwtSecret := GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production")
	jwtExpirationHours := GetEnvAsInt("JWT_EXPIRATION_HOURS", 72)

	// Computer player
	botMoveDelayMs := GetEnvAsInt("BOT_MOVE_DELAY_MS", 500)
	analyzeMaxDepth := GetEnvAsInt("ANALYZE_MAX_DEPTH", 7)
	if analyzeMaxDepth < 1 {
		log.Printf("ANALYZE_MAX_DEPTH must be at least 1, got %d, using 1", analyzeMaxDepth)
		analyzeMaxDepth = 1
	}

	AppConfig = &Config{
		Port:                 port,
		Environment:          environment,
		AllowedOrigins:       allowedOrigins,
		FrontendURL:          frontendURL,
		DatabaseURL:          dbURL,
		DBMaxOpenConns:       dbMaxOpenConns,
		DBMaxIdleConns:       dbMaxIdleConns,
		DBConnMaxLifetimeMin: dbConnMaxLifetimeMin,
		RedisURL:             redisURL,
		RedisPassword:        redisPassword,
		MoveCacheTTL:         time.Duration(moveCacheTTLMin) * time.Minute,
		JWTSecret:            jwtSecret,
		JWTExpiration:        time.Duration(jwtExpirationHours) * time.Hour,
		BotMoveDelay:         time.Duration(botMoveDelayMs) * time.Millisecond,
		AnalyzeMaxDepth:      analyzeMaxDepth,
	}

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
