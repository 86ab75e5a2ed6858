// Package server provides the REST API for the flight assistant.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/chat"
	"github.com/gogoair/flightchat/internal/ingest"
	"github.com/gogoair/flightchat/internal/models"
)

// ChatService runs one conversational turn.
type ChatService interface {
	HandleTurn(ctx context.Context, conversationID, message string) (chat.TurnResult, error)
}

// Ingestor loads schema documents into the vector store.
type Ingestor interface {
	Ingest(ctx context.Context, text string, opts ingest.Options) (*ingest.Result, error)
}

// Store is the read surface the listing endpoints need.
type Store interface {
	HealthCheck(ctx context.Context) error
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	ListFlights(ctx context.Context, limit, offset int) ([]models.FlightPrice, error)
}

// Server wires the chat pipeline and the store behind HTTP handlers.
type Server struct {
	chat     ChatService
	ingestor Ingestor
	store    Store
	logger   *slog.Logger
}

// New creates a server.
func New(chatSvc ChatService, ingestor Ingestor, store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{chat: chatSvc, ingestor: ingestor, store: store, logger: logger}
}

// Handler returns the routed handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/conversations", s.handleAsk)
	mux.HandleFunc("GET /api/v1/conversations", s.handleListConversations)
	mux.HandleFunc("GET /api/v1/conversations/{id}", s.handleGetConversation)
	mux.HandleFunc("GET /api/v1/flights", s.handleListFlights)
	mux.HandleFunc("POST /api/v1/flights/vector-store", s.handleIngest)
	mux.HandleFunc("GET /health", s.handleHealth)

	return LoggingMiddleware(s.logger)(mux)
}
