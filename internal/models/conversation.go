// Package models defines data structures for the flightchat assistant.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes user questions from assistant answers.
type MessageType string

const (
	// MessageTypeQuestion is a message written by the user.
	MessageTypeQuestion MessageType = "question"

	// MessageTypeAnswer is a message produced by the assistant.
	MessageTypeAnswer MessageType = "answer"
)

// Valid reports whether t is one of the two known message types.
func (t MessageType) Valid() bool {
	return t == MessageTypeQuestion || t == MessageTypeAnswer
}

// Role maps the message type to the chat role used when rebuilding model
// context. The mapping is exhaustive; unknown types are an error rather than
// a silent default.
func (t MessageType) Role() (string, error) {
	switch t {
	case MessageTypeQuestion:
		return "user", nil
	case MessageTypeAnswer:
		return "assistant", nil
	default:
		return "", fmt.Errorf("unknown message type: %q", t)
	}
}

// TokenUsage holds token counts reported by the model provider.
type TokenUsage map[string]int

// Conversation represents a persistent chat session.
type Conversation struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedBy string     `json:"created_by"`
	UpdatedBy *string    `json:"updated_by,omitempty"`
	DeletedBy *string    `json:"deleted_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Message represents a single chat message within a conversation.
// Messages are append-only; history ordering is by CreatedAt ascending.
type Message struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID uuid.UUID      `json:"conversation_id"`
	Content        string         `json:"content"`
	Type           MessageType    `json:"message_type"`
	TokenUsage     TokenUsage     `json:"token_usage,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Turn is a (role, content) pair ready for model context reconstruction.
type Turn struct {
	Role    string
	Content string
}
