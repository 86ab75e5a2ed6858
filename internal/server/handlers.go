package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/ingest"
	"github.com/gogoair/flightchat/internal/models"
	"github.com/gogoair/flightchat/internal/store"
)

// failedAskingModel is the only error body the chat endpoint returns. SQL,
// provider errors and stack traces stay in the logs.
const failedAskingModel = "failed asking the model"

type askRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type ingestRequest struct {
	Document   string `json:"document"`
	Collection string `json:"collection"`
}

type conversationDetail struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []models.Message    `json:"messages"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeMessage(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.chat.HandleTurn(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		s.logger.Error("turn failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, failedAskingModel)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.store.ListConversations(r.Context())
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed listing conversations")
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.logger.Error("get conversation failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed loading conversation")
		return
	}

	messages, err := s.store.ListMessages(r.Context(), id)
	if err != nil {
		s.logger.Error("list messages failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed loading conversation")
		return
	}

	writeJSON(w, http.StatusOK, conversationDetail{Conversation: conv, Messages: messages})
}

func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	flights, err := s.store.ListFlights(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list flights failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed listing flights")
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Document) == "" {
		writeMessage(w, http.StatusBadRequest, "document is required")
		return
	}

	result, err := s.ingestor.Ingest(r.Context(), req.Document, ingest.Options{Collection: req.Collection})
	if err != nil {
		s.logger.Error("ingestion failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed ingesting document")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeMessage(w, http.StatusOK, "ok")
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
