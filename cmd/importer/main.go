package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cartify/internal/config"
	"cartify/internal/db"
	"cartify/internal/importer"
	categoryrepo "cartify/internal/repository/category"
	productrepo "cartify/internal/repository/product"
	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV (name,slug,description,price,currency,category,in_stock,image_url)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	products := productsvc.New(productrepo.NewPostgres(pool, logger), nil, cfg.Payments.Currency, logger)
	categories := categorysvc.New(categoryrepo.NewPostgres(pool, logger), nil, logger)
	imp := importer.NewCSVImporter(f, products, categories)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
