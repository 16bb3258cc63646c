package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/iamasit07/connect4-ai/internal/config"
	"github.com/iamasit07/connect4-ai/internal/export"
	"github.com/iamasit07/connect4-ai/internal/repository/postgres"
	"github.com/joho/godotenv"
)

func main() {
	outPath := flag.String("out", "data/games.parquet", "output parquet file")
	window := flag.Duration("since", 0, "only export games finished within this window, e.g. 168h (0 exports everything)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.LoadConfig()

	db, err := postgres.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	var since time.Time
	if *window > 0 {
		since = time.Now().Add(-*window)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := export.Export(ctx, postgres.NewGameRepo(db), since, *outPath)
	if err != nil {
		log.Fatalf("[EXPORT] Failed: %v", err)
	}
	rows, err := export.Verify(*outPath)
	if err != nil {
		log.Fatalf("[EXPORT] Written file does not verify: %v", err)
	}
	log.Printf("[EXPORT] Done, %d games, %d rows verified", n, rows)
}
