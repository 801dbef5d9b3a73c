package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"borderland-arena/internal/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const usage = "Usage: go run ./cmd/migrate [up|down|drop|version|seed]"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "up", "down", "drop", "version":
		if err := runMigration(dbURL, command); err != nil {
			log.Fatalf("Migration %s failed: %v", command, err)
		}

	case "seed":
		ctx := context.Background()
		conn, err := pgx.Connect(ctx, dbURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close(ctx)

		inserted, err := seedQuestions(ctx, conn)
		if err != nil {
			log.Fatalf("Failed to seed questions: %v", err)
		}
		fmt.Printf("✅ Seeded %d sample questions\n", inserted)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func runMigration(dbURL, command string) error {
	m, err := migrations.New(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "drop":
		err = m.Drop()
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return nil
		}
		if verr != nil {
			return verr
		}
		fmt.Printf("Version %d (dirty: %t)\n", version, dirty)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("Schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("✅ Migration %s completed successfully\n", command)
	return nil
}
