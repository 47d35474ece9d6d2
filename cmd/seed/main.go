package main

import (
	"context"
	"log"
	"os"

	"cartify/internal/config"
	"cartify/internal/db"
	categoryrepo "cartify/internal/repository/category"
	productrepo "cartify/internal/repository/product"
	"cartify/internal/seed"
	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	categories := categorysvc.New(categoryrepo.NewPostgres(pool, logger), nil, logger)
	products := productsvc.New(productrepo.NewPostgres(pool, logger), nil, cfg.Payments.Currency, logger)

	if err := seed.Apply(ctx, categories, products); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
