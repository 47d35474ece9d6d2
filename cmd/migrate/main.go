package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cartify/internal/config"
	"cartify/internal/db"
	"cartify/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "Roll back the most recent migration instead of applying all")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatalf("roll back migration: %v", err)
		}
		logger.Println("last migration rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
