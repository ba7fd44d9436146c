// Command migrate applies the database schema.
package main

import (
	"fmt"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	// Connect already migrates outside production; run it explicitly so the
	// command also works against production databases.
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Println("migrations applied")
	return nil
}
