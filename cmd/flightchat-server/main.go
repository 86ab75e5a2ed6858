// Package main provides the HTTP API server for flightchat.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogoair/flightchat/internal/chat"
	"github.com/gogoair/flightchat/internal/config"
	"github.com/gogoair/flightchat/internal/ingest"
	"github.com/gogoair/flightchat/internal/llm"
	"github.com/gogoair/flightchat/internal/metrics"
	"github.com/gogoair/flightchat/internal/server"
	"github.com/gogoair/flightchat/internal/store"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending database migrations on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogs := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() { _ = closeLogs() }()

	slog.Info("starting flightchat-server", "host", cfg.Host, "port", cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, store.DBConfig{
		DSN:          cfg.PostgresDSN,
		MaxOpenConns: cfg.PostgresMaxConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if *migrate {
		applied, err := store.MigrateUp(ctx, db, 0)
		if err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "count", applied)
	}

	collector := metrics.NewCollector()

	embedder, err := llm.NewEmbedder(cfg, collector)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	model, err := llm.NewModel(ctx, cfg, collector)
	if err != nil {
		slog.Error("failed to create model", "error", err)
		os.Exit(1)
	}

	repo := store.NewRepository(db)
	embeddings := store.NewEmbeddingStore(db, collector)
	clock := chat.LocalClock(cfg.Timezone)

	chatSvc := chat.NewService(chat.Deps{
		Store:     repo,
		Retriever: chat.NewRetriever(embedder, embeddings, cfg.RetrievalLimit),
		Resolver:  chat.NewIntentResolver(model, clock),
		Generator: chat.NewSQLGenerator(model, clock),
		Executor:  store.NewExecutor(db, collector),
		Detector:  chat.NewLanguageDetector(model),
		Reporter:  chat.NewReporter(model),
		Now:       clock,
	})
	ingestSvc := ingest.NewService(embedder, embeddings, clock)

	srv := server.New(chatSvc, ingestSvc, repo, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // long for multi-call LLM turns
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("API available", "url", fmt.Sprintf("http://%s:%d/api/v1/conversations", cfg.Host, cfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
