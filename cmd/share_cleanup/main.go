package main

import (
	"log"
	"os"
	"time"

	"filemanager/internal/database"
	"filemanager/internal/domain"
)

// Shares expire lazily when a guest touches them; this job sweeps the ones
// nobody ever came back for, so listings and statistics stay honest.
// Intended to run from cron.
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	res := db.Model(&domain.FileShare{}).
		Where("status = ? AND expire_time IS NOT NULL AND expire_time <= ?", domain.ShareStatusActive, time.Now()).
		Updates(map[string]any{"status": domain.ShareStatusExpired, "update_time": time.Now()})
	if res.Error != nil {
		log.Fatalf("expire shares failed: %v", res.Error)
	}

	log.Printf("share cleanup completed: expired=%d", res.RowsAffected)
}
