package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-ai/internal/config"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/iamasit07/connect4-ai/internal/repository/redis"
	"github.com/iamasit07/connect4-ai/internal/service/cleanup"
	"github.com/iamasit07/connect4-ai/internal/service/game"
	"github.com/iamasit07/connect4-ai/internal/service/session"
	transportHttp "github.com/iamasit07/connect4-ai/internal/transport/http"
	"github.com/iamasit07/connect4-ai/internal/transport/http/middleware"
	"github.com/iamasit07/connect4-ai/internal/transport/websocket"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("[DB] Running database migrations...")
	if err := postgres.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	gameRepo := postgres.NewGameRepo(db)
	userRepo := postgres.NewUserRepo(db)

	if err := redis.InitRedis(cfg); err != nil {
		log.Printf("Failed to initialize Redis: %v", err)
	}
	defer redis.CloseRedis()

	// both stay nil interfaces when Redis is down
	var tokenCache session.CacheRepository
	var moveCache game.MoveCache
	if redis.IsRedisEnabled() && redis.RedisClient != nil {
		redisCache := redis.NewRedisCache(redis.RedisClient)
		tokenCache = redisCache
		moveCache = redis.NewMoveCache(redisCache, cfg.MoveCacheTTL)
	}

	gameService := game.NewService(moveCache, cfg.AnalyzeMaxDepth)
	sessionManager := game.NewSessionManager(gameRepo, moveCache, cfg.BotMoveDelay)
	authService := session.NewAuthService(userRepo, tokenCache)
	connManager := websocket.NewConnectionManager()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cleanup.NewWorker(sessionManager).Start(ctx)

	analyzeHandler := transportHttp.NewAnalyzeHandler(gameService)
	authHandler := transportHttp.NewAuthHandler(authService, userRepo)
	historyHandler := transportHttp.NewHistoryHandler(gameRepo)
	liveHandler := transportHttp.NewLiveHandler(sessionManager)
	wsHandler := websocket.NewHandler(connManager, sessionManager, authService, cfg.AllowedOrigins)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	authMW := middleware.AuthMiddleware(authService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": connManager.Count()})
	})

	// Public routes
	router.POST("/api/analyze", analyzeHandler.Analyze)
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)
	router.GET("/api/leaderboard", authHandler.Leaderboard)

	protected := router.Group("/")
	protected.Use(authMW)
	{
		protected.POST("/api/auth/logout", authHandler.Logout)
		protected.GET("/api/auth/me", authHandler.Me)

		protected.GET("/api/history", historyHandler.GetHistory)
		protected.GET("/api/history/:id", historyHandler.GetGameDetails)
		protected.GET("/api/live", liveHandler.GetLiveGames)
		protected.GET("/api/live/:id", liveHandler.GetLiveGame)
	}

	// auth happens inside the websocket handler with the init message
	router.GET("/ws", func(c *gin.Context) {
		wsHandler.HandleWebSocket(c.Writer, c.Request)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
