package main

import (
	"log"
	"os"

	"github.com/todopath/todopath/internal/config"
	"github.com/todopath/todopath/internal/server"
	"github.com/todopath/todopath/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[todopath] ", log.LstdFlags)

	cfg, err := config.ResolveServerConfig()
	if err != nil {
		logger.Fatalf("Failed to resolve server config: %v", err)
	}

	manager, err := store.NewManager(cfg.DataDir)
	if err != nil {
		logger.Fatalf("Failed to create database manager: %v", err)
	}

	logger.Printf("Starting todopath server on %s (data: %s)", cfg.Addr, cfg.DataDir)

	if err := server.New(cfg.Addr, manager, logger).ListenAndServe(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
