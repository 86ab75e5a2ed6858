package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository provides conversation and message persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository on an open connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck verifies database connectivity.
func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// DB exposes the underlying pool for components that run their own
// statements (executor, migrations).
func (r *Repository) DB() *sql.DB {
	return r.db
}

// CreateConversation inserts a new conversation row.
func (r *Repository) CreateConversation(ctx context.Context, conv models.Conversation) error {
	query := `
INSERT INTO conversations (id, title, created_by, created_at)
VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, conv.ID, conv.Title, conv.CreatedBy, conv.CreatedAt); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// GetConversation fetches one conversation by id.
// Returns ErrNotFound when the id does not exist.
func (r *Repository) GetConversation(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	query := `
SELECT id, title, created_by, created_at
FROM conversations
WHERE id = $1 AND deleted_at IS NULL`

	var conv models.Conversation
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID,
		&conv.Title,
		&conv.CreatedBy,
		&conv.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Conversation{}, ErrNotFound
		}
		return models.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns all conversations, newest first.
func (r *Repository) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, created_by, created_at
FROM conversations
WHERE deleted_at IS NULL
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedBy, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}
	return conversations, nil
}

// CreateMessage inserts one message row. Token usage and metadata are stored
// as JSONB.
func (r *Repository) CreateMessage(ctx context.Context, msg models.Message) error {
	usage, err := marshalJSONB(msg.TokenUsage)
	if err != nil {
		return fmt.Errorf("encode token usage: %w", err)
	}
	metadata, err := marshalJSONB(msg.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := `
INSERT INTO messages (id, conversation_id, content, message_type, token_usage, metadata, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.Content, string(msg.Type), usage, metadata, msg.CreatedBy, msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListMessages returns the messages of a conversation ordered by creation
// time ascending, as required for model context reconstruction.
func (r *Repository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, conversation_id, content, message_type, token_usage, metadata, created_by, created_at
FROM messages
WHERE conversation_id = $1 AND deleted_at IS NULL
ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			msg      models.Message
			msgType  string
			usage    []byte
			metadata []byte
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Content, &msgType, &usage, &metadata, &msg.CreatedBy, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.Type = models.MessageType(msgType)
		if len(usage) > 0 {
			if err := json.Unmarshal(usage, &msg.TokenUsage); err != nil {
				return nil, fmt.Errorf("decode token usage: %w", err)
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &msg.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return messages, nil
}

// DeleteMessages removes all messages of a conversation.
func (r *Repository) DeleteMessages(ctx context.Context, conversationID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = $1`, conversationID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

// marshalJSONB encodes a map for a JSONB column, keeping NULL for nil maps.
func marshalJSONB[M ~map[string]V, V any](m M) (any, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return data, nil
}
