package main

import (
	"log"

	"github.com/warterbili/InterviewManager-system/internal/cli"
	"github.com/warterbili/InterviewManager-system/internal/config"
	"github.com/warterbili/InterviewManager-system/internal/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.Initialize(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	cli.Execute(db, cfg)
}
