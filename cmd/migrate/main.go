package main

import (
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/squadplanner/squadbot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	m, err := migrate.New("file://migrations", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Error initializing migrations: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("Error closing migration resources: %v, %v", sourceErr, dbErr)
		}
	}()

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Error running migrations: %v", err)
		}
		log.Println("Migrations applied")
	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		log.Println("Rolled back one migration")
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Error reading migration version: %v", err)
		}
		log.Printf("Version: %d (dirty: %v)", version, dirty)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	log.Println("Usage: migrate <up|down|version>")
}
