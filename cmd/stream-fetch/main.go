package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/elly-uk/streaming-data-project/internal/article"
	"github.com/elly-uk/streaming-data-project/internal/config"
	"github.com/elly-uk/streaming-data-project/internal/db"
	"github.com/elly-uk/streaming-data-project/internal/event"
	"github.com/elly-uk/streaming-data-project/internal/fetch"
	"github.com/elly-uk/streaming-data-project/internal/guardian"
	"github.com/elly-uk/streaming-data-project/internal/handler"
	"github.com/elly-uk/streaming-data-project/internal/ratelimit"
)

func main() {
	once := flag.Bool("once", false, "run a single invocation and exit")
	search := flag.String("search", "", "search term for -once mode")
	from := flag.String("from", "", "from-date filter for -once mode")
	flag.Parse()

	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "[stream-fetch] ", log.LstdFlags|log.Lshortfile)

	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// Optional Mongo audit log of published articles
	var archive article.Repository
	var mongoDisconnect func(context.Context) error
	if cfg.MongoURI != "" {
		mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatalf("failed to connect to db: %v", err)
		}
		mongoDisconnect = mongoClient.Disconnect

		archive, err = article.NewMongoArticleRepository(mongoClient.Database(cfg.MongoDBName), logger)
		if err != nil {
			logger.Fatalf("failed to init article repository: %v", err)
		}
		logger.Println("publish archive enabled")
	}

	// Queue publisher (RabbitMQ)
	publisher, err := event.NewRabbitPublisher(
		cfg.RabbitURI,
		cfg.RabbitExchange,
		cfg.RabbitRoutingKey,
		logger,
	)
	if err != nil {
		logger.Fatalf("failed to init rabbit publisher: %v", err)
	}
	defer publisher.Close()

	// Guardian client
	httpClient := &http.Client{Timeout: cfg.Timeout}
	guardianClient := guardian.NewClient(cfg.GuardianAPIURL, httpClient)

	svc := fetch.NewService(
		cfg.GuardianAPIKey,
		cfg.RabbitRoutingKey,
		guardianClient,
		publisher,
		archive,
		logger,
	)

	limiter := ratelimit.NewLimiter(cfg.RateLimitMax, cfg.RateLimitPeriod)
	h := handler.New(svc, limiter, cfg.DefaultSearchTerm, logger)

	if *once {
		res := h.Handle(ctx, handler.Event{SearchTerm: *search, DateFrom: *from})
		logger.Printf("invocation finished: status=%d body=%s", res.StatusCode, res.Body)
		if res.StatusCode != 200 {
			os.Exit(1)
		}
		return
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Routes(h),
	}

	go func() {
		logger.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	logger.Println("service started")

	// Block until we receive a signal / ctx cancelled
	<-ctx.Done()
	logger.Println("shutdown signal received, shutting down...")

	// Unified shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("HTTP server shutdown error: %v", err)
	}

	if mongoDisconnect != nil {
		if err := mongoDisconnect(shutdownCtx); err != nil {
			logger.Printf("mongo disconnect error: %v", err)
		}
	}

	logger.Println("shutdown complete")
}
