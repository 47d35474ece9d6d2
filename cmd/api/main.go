package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cartify/internal/auth"
	"cartify/internal/cache"
	"cartify/internal/config"
	"cartify/internal/db"
	"cartify/internal/httpserver"
	"cartify/internal/messaging"
	"cartify/internal/migrate"
	"cartify/internal/payment"
	cartrepo "cartify/internal/repository/cart"
	categoryrepo "cartify/internal/repository/category"
	orderrepo "cartify/internal/repository/order"
	productrepo "cartify/internal/repository/product"
	sessionrepo "cartify/internal/repository/session"
	webhookrepo "cartify/internal/repository/webhook"
	accountsvc "cartify/internal/service/account"
	cartsvc "cartify/internal/service/cart"
	categorysvc "cartify/internal/service/category"
	ordersvc "cartify/internal/service/order"
	productsvc "cartify/internal/service/product"
	webhooksvc "cartify/internal/service/webhook"
	"cartify/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const serviceName = "cartify-api"

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Fatalf("init tracer: %v", err)
	}
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Fatalf("init meter: %v", err)
	}
	metrics, err := telemetry.NewMetrics(otel.Meter(serviceName))
	if err != nil {
		logger.Fatalf("init metrics: %v", err)
	}

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	publisher, err := messaging.New(cfg)
	if err != nil {
		logger.Fatalf("init event publisher: %v", err)
	}
	defer publisher.Close()

	var catalogCache cache.CatalogCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable at %s, catalog cache disabled: %v", cfg.RedisAddr, err)
		} else {
			catalogCache = cache.NewRedisCache(rdb, cfg.CatalogCacheTTL)
		}
	}

	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger))
	authClient := auth.NewClient(cfg.Auth, sessionrepo.NewPostgres(dbpool, logger), logger)
	accountService := accountsvc.New(authClient, cartService, logger)
	productService := productsvc.New(productrepo.NewPostgres(dbpool, logger), catalogCache, cfg.Payments.Currency, logger)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool, logger), catalogCache, logger)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), publisher, metrics, cfg.Payments.Currency, logger)
	paymentService := payment.NewService(payment.NewRazorpay(cfg.Payments, logger), cfg.Payments.KeySecret, cfg.Payments.Currency, logger)
	webhookService := webhooksvc.New(webhookrepo.NewPostgres(dbpool, logger), publisher, metrics, cfg.WebhookSecret, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AccountSvc:     accountService,
		ProductSvc:     productService,
		CategorySvc:    categoryService,
		CartSvc:        cartService,
		OrderSvc:       orderService,
		PaymentSvc:     paymentService,
		WebhookSvc:     webhookService,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsHandler: metricsHandler,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	if err := shutdownMeter(ctx); err != nil {
		logger.Printf("meter shutdown: %v", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		logger.Printf("tracer shutdown: %v", err)
	}
}
