package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogoair/flightchat/internal/ingest"
)

var ingestCollection string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Load a schema description file into the vector store",
	Long: `Load a schema description file into the vector store that backs
retrieval. The file is split into blank-line separated chunks; each chunk
is embedded and stored under the configured collection.

Examples:
  flightchat ingest schema.txt
  flightchat ingest schema.txt --collection ai_agent_gogo`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "vector store collection (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	svc, err := getIngestService(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	collection := ingestCollection
	if collection == "" {
		collection = cfg.Collection
	}

	// Interactive progress bar only on a real terminal.
	if term.IsTerminal(int(os.Stdout.Fd())) {
		result, err := RunIngestProgress(func(onProgress func(done, total int)) (*ingest.Result, error) {
			return svc.Ingest(ctx, string(data), ingest.Options{
				Collection: collection,
				OnProgress: onProgress,
			})
		})
		if err != nil {
			return err
		}
		printIngestResult(result)
		return nil
	}

	result, err := svc.Ingest(ctx, string(data), ingest.Options{Collection: collection})
	if err != nil {
		return err
	}
	printIngestResult(result)
	return nil
}

func printIngestResult(result *ingest.Result) {
	if result == nil {
		return
	}
	fmt.Printf("Chunks stored: %d/%d\n", result.ChunksInserted, result.ChunksTotal)
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e)
	}
}
