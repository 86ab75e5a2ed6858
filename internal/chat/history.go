package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/models"
)

// History is the per-turn view of a conversation's messages. A fresh History
// is created for every turn; the in-memory cache is never shared between
// requests.
type History struct {
	store          ConversationStore
	conversationID uuid.UUID
	messages       []models.Message
}

// NewHistory creates an empty history backed by the given store.
func NewHistory(store ConversationStore) *History {
	return &History{store: store}
}

// Load fills the cache with the conversation's messages, ordered by creation
// time ascending. A zero conversation id loads an empty history.
func (h *History) Load(ctx context.Context, conversationID uuid.UUID) error {
	h.conversationID = conversationID
	if conversationID == uuid.Nil {
		h.messages = nil
		return nil
	}

	messages, err := h.store.ListMessages(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	h.messages = messages
	return nil
}

// Append persists the message and adds it to the cache. The cache is only
// extended after the write succeeds.
func (h *History) Append(ctx context.Context, msg models.Message) error {
	if err := h.store.CreateMessage(ctx, msg); err != nil {
		return err
	}
	h.messages = append(h.messages, msg)
	return nil
}

// Clear deletes the conversation's messages and empties the cache.
func (h *History) Clear(ctx context.Context) error {
	if h.conversationID == uuid.Nil {
		h.messages = nil
		return nil
	}
	if err := h.store.DeleteMessages(ctx, h.conversationID); err != nil {
		return err
	}
	h.messages = nil
	return nil
}

// Turns converts the cached messages into role/content pairs for model
// context reconstruction. An unknown message type is an error, never a
// silent default role.
func (h *History) Turns() ([]models.Turn, error) {
	turns := make([]models.Turn, 0, len(h.messages))
	for _, msg := range h.messages {
		role, err := msg.Type.Role()
		if err != nil {
			return nil, fmt.Errorf("rebuild history: %w", err)
		}
		turns = append(turns, models.Turn{Role: role, Content: msg.Content})
	}
	return turns, nil
}
