// Package cli provides the command-line interface for flightchat.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogoair/flightchat/internal/chat"
	"github.com/gogoair/flightchat/internal/config"
	"github.com/gogoair/flightchat/internal/ingest"
	"github.com/gogoair/flightchat/internal/llm"
	"github.com/gogoair/flightchat/internal/metrics"
	"github.com/gogoair/flightchat/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and database pool
	cfg      config.Config
	database *sql.DB
	repo     *store.Repository

	// Lazy-initialized LLM components
	embedder  *llm.Embedder
	model     *llm.Model
	collector = metrics.NewCollector()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flightchat",
	Short: "Conversational flight-pricing assistant",
	Long: `Flightchat answers natural-language questions about flight prices by
generating SQL against the fares database, executing it, and narrating the
result in the language of the question.

Conversations are persisted, so follow-up questions keep their context.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		database, err = store.Open(ctx, store.DBConfig{
			DSN:          cfg.PostgresDSN,
			MaxOpenConns: cfg.PostgresMaxConns,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		repo = store.NewRepository(database)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if database != nil {
			if err := database.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// initLLM lazily creates the embedder and chat model. Commands that only
// touch the database never pay for provider setup.
func initLLM(ctx context.Context) error {
	if embedder != nil {
		return nil
	}

	var err error
	embedder, err = llm.NewEmbedder(cfg, collector)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	model, err = llm.NewModel(ctx, cfg, collector)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	return nil
}

// getPipeline wires the full turn pipeline.
func getPipeline(ctx context.Context) (*chat.Service, error) {
	if err := initLLM(ctx); err != nil {
		return nil, err
	}

	clock := chat.LocalClock(cfg.Timezone)
	embeddings := store.NewEmbeddingStore(database, collector)
	return chat.NewService(chat.Deps{
		Store:     repo,
		Retriever: chat.NewRetriever(embedder, embeddings, cfg.RetrievalLimit),
		Resolver:  chat.NewIntentResolver(model, clock),
		Generator: chat.NewSQLGenerator(model, clock),
		Executor:  store.NewExecutor(database, collector),
		Detector:  chat.NewLanguageDetector(model),
		Reporter:  chat.NewReporter(model),
		Now:       clock,
	}), nil
}

// getIngestService wires the schema-document ingestion service.
func getIngestService(ctx context.Context) (*ingest.Service, error) {
	if err := initLLM(ctx); err != nil {
		return nil, err
	}
	embeddings := store.NewEmbeddingStore(database, collector)
	return ingest.NewService(embedder, embeddings, chat.LocalClock(cfg.Timezone)), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(flightsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(migrateCmd)
}
