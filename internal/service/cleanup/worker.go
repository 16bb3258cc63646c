package cleanup

import (
	"context"
	"log"
	"time"
)

// SessionSweeper drops stale in-memory game sessions and reports how many went.
type SessionSweeper interface {
	CleanupOldSessions() int
}

type Worker struct {
	SessionManager SessionSweeper
	Interval       time.Duration
}

func NewWorker(sm SessionSweeper) *Worker {
	return &Worker{SessionManager: sm, Interval: 1 * time.Hour}
}

// Start runs one cleanup immediately and then every Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.runCleanup()

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] Background worker stopped")
				return
			case <-ticker.C:
				w.runCleanup()
			}
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

// runCleanup executes the actual cleanup logic
func (w *Worker) runCleanup() {
	log.Println("[CLEANUP] Starting scheduled cleanup task...")

	if removed := w.SessionManager.CleanupOldSessions(); removed > 0 {
		log.Printf("[CLEANUP] Removed %d stale game sessions", removed)
	}
}
