// Package chat implements the conversational flight-pricing pipeline:
// question + history → retrieval-augmented SQL → execution → report.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/llm"
	"github.com/gogoair/flightchat/internal/models"
)

// Generator is the chat model surface the pipeline calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (llm.Response, error)
	GenerateWithHistory(ctx context.Context, system string, history []models.Turn, user string) (llm.Response, error)
}

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentSearcher finds stored schema documents similar to an embedding.
type DocumentSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.ContextDocument, error)
}

// QueryRunner executes one generated SQL statement.
type QueryRunner interface {
	Run(ctx context.Context, statement string) ([]map[string]any, error)
}

// ConversationStore is the persistence surface the pipeline needs.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv models.Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	CreateMessage(ctx context.Context, msg models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	DeleteMessages(ctx context.Context, conversationID uuid.UUID) error
}

// Clock supplies timestamps for created_at fields and date-sensitive prompts.
type Clock func() time.Time

// LocalClock returns a clock pinned to the named timezone, falling back to
// the system location when the name cannot be loaded.
func LocalClock(name string) Clock {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using system location", "timezone", name, "error", err)
		return time.Now
	}
	return func() time.Time { return time.Now().In(loc) }
}
