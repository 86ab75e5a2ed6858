// Package ingest loads schema description documents into the vector store
// that backs retrieval.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCollection is the vector-store collection retrieval reads from.
const DefaultCollection = "ai_agent_gogo"

// BatchEmbedder embeds many texts in one round trip.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentStore persists embedded documents.
type DocumentStore interface {
	InsertDocument(ctx context.Context, collection, document string, embedding []float32, createdAt time.Time) error
}

// Options configures one ingestion run.
type Options struct {
	// Collection to store documents under (default DefaultCollection).
	Collection string
	// Concurrency sets number of parallel insert workers (default 4).
	Concurrency int
	// OnProgress is called after every stored chunk (optional).
	OnProgress func(done, total int)
}

// Result summarizes an ingestion run.
type Result struct {
	ChunksTotal    int
	ChunksInserted int
	Errors         []string
}

// Service chunks, embeds and stores schema documents.
type Service struct {
	embedder BatchEmbedder
	store    DocumentStore
	now      func() time.Time
}

// NewService creates an ingestion service. A nil clock defaults to time.Now.
func NewService(embedder BatchEmbedder, store DocumentStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{embedder: embedder, store: store, now: now}
}

// SplitDocument splits a schema description into blank-line separated chunks.
// Each chunk should describe one table or one coherent piece of context so
// similarity search can return it on its own.
func SplitDocument(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

// Ingest chunks the text, embeds all chunks in one batch and stores them
// under the collection. Individual insert failures are collected, not fatal;
// an embedding failure aborts the whole run.
func (s *Service) Ingest(ctx context.Context, text string, opts Options) (*Result, error) {
	chunks := SplitDocument(text)
	if len(chunks) == 0 {
		return nil, errors.New("no content to ingest")
	}

	collection := opts.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	slog.Info("starting schema ingestion", "chunks", len(chunks), "collection", collection)

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	var (
		inserted atomic.Int32
		done     atomic.Int32
		errorsMu sync.Mutex
		failures []string
	)

	work := make(chan int, len(chunks))
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}

				if err := s.store.InsertDocument(ctx, collection, chunks[idx], embeddings[idx], s.now()); err != nil {
					errorsMu.Lock()
					failures = append(failures, fmt.Sprintf("chunk %d: %v", idx, err))
					errorsMu.Unlock()
				} else {
					inserted.Add(1)
				}

				completed := int(done.Add(1))
				if opts.OnProgress != nil {
					opts.OnProgress(completed, len(chunks))
				}
			}
		}()
	}

	for idx := range chunks {
		work <- idx
	}
	close(work)
	wg.Wait()

	slog.Info("schema ingestion complete",
		"inserted", inserted.Load(), "errors", len(failures))

	return &Result{
		ChunksTotal:    len(chunks),
		ChunksInserted: int(inserted.Load()),
		Errors:         failures,
	}, nil
}
