package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogoair/flightchat/internal/models"
)

// Retriever fetches the schema snippets most relevant to a question.
type Retriever struct {
	embedder Embedder
	search   DocumentSearcher
	limit    int
}

// NewRetriever creates a retriever returning at most limit documents.
func NewRetriever(embedder Embedder, search DocumentSearcher, limit int) *Retriever {
	if limit <= 0 {
		limit = 10
	}
	return &Retriever{embedder: embedder, search: search, limit: limit}
}

// Retrieve embeds the question and returns the best matches by cosine
// similarity, highest score first. Embedding-service errors propagate.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.ContextDocument, error) {
	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	docs, err := r.search.SearchSimilar(ctx, embedding, r.limit)
	if err != nil {
		return nil, fmt.Errorf("search schema documents: %w", err)
	}
	return docs, nil
}

// joinDocuments renders retrieved snippets as prompt context.
func joinDocuments(docs []models.ContextDocument) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Document)
	}
	return strings.Join(parts, "\n\n")
}
