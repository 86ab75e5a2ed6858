package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/metrics"
	"github.com/gogoair/flightchat/internal/models"
)

// EmbeddingStore reads and writes schema snippets with pgvector embeddings.
type EmbeddingStore struct {
	db      *sql.DB
	metrics *metrics.Collector
}

// NewEmbeddingStore creates an embedding store.
func NewEmbeddingStore(db *sql.DB, mc *metrics.Collector) *EmbeddingStore {
	return &EmbeddingStore{db: db, metrics: mc}
}

// SearchSimilar returns the limit documents most similar to the query
// embedding, ordered by cosine similarity descending. Scores are in [0,1].
func (s *EmbeddingStore) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.ContextDocument, error) {
	query := `
SELECT document, 1 - (embedding <=> $1::vector) AS similarity_score
FROM schema_embeddings
ORDER BY similarity_score DESC
LIMIT $2`

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, VectorLiteral(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]models.ContextDocument, 0, limit)
	for rows.Next() {
		var doc models.ContextDocument
		if err := rows.Scan(&doc.Document, &doc.Score); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embedding rows: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTiming(metrics.OpDBSearch, time.Since(start))
	}
	return docs, nil
}

// InsertDocument stores one document with its embedding under a collection.
func (s *EmbeddingStore) InsertDocument(ctx context.Context, collection, document string, embedding []float32, createdAt time.Time) error {
	query := `
INSERT INTO schema_embeddings (id, collection, document, embedding, created_at)
VALUES ($1, $2, $3, $4::vector, $5)`
	if _, err := s.db.ExecContext(ctx, query, uuid.New(), collection, document, VectorLiteral(embedding), createdAt); err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}

// VectorLiteral renders an embedding in pgvector's input syntax.
func VectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
