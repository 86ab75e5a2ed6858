package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/llm"
	"github.com/gogoair/flightchat/internal/models"
	"github.com/gogoair/flightchat/internal/store"
)

// invalidSQLAnswer is persisted as the assistant's reply when generation
// produced nothing executable, so the conversation keeps a coherent
// question/answer rhythm even on a failed turn.
const invalidSQLAnswer = "Maaf, kami tidak dapat memproses pertanyaan itu. Silakan coba lagi dengan pertanyaan seputar tiket dan penerbangan ya."

// TurnResult is what a completed turn returns to the transport layer.
type TurnResult struct {
	ConversationID uuid.UUID         `json:"conversation_id"`
	Content        string            `json:"content"`
	TokenUsage     models.TokenUsage `json:"token_usage"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Deps are the collaborators a Service needs.
type Deps struct {
	Store     ConversationStore
	Retriever *Retriever
	Resolver  *IntentResolver
	Generator *SQLGenerator
	Executor  QueryRunner
	Detector  *LanguageDetector
	Reporter  *Reporter
	Now       Clock
}

// Service runs one conversational turn end to end.
type Service struct {
	store     ConversationStore
	retriever *Retriever
	resolver  *IntentResolver
	generator *SQLGenerator
	executor  QueryRunner
	detector  *LanguageDetector
	reporter  *Reporter
	now       Clock
}

// NewService creates the turn pipeline. A nil clock defaults to Jakarta time.
func NewService(deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = LocalClock("Asia/Jakarta")
	}
	return &Service{
		store:     deps.Store,
		retriever: deps.Retriever,
		resolver:  deps.Resolver,
		generator: deps.Generator,
		executor:  deps.Executor,
		detector:  deps.Detector,
		reporter:  deps.Reporter,
		now:       now,
	}
}

// HandleTurn processes one user message: load or create the conversation,
// persist the question, retrieve schema context, resolve intent, generate
// and validate SQL, execute it, narrate the result (or the database's
// rejection), and persist the answer.
//
// A database rejection of the generated statement is a recoverable turn:
// the error explanation becomes the answer and HandleTurn returns nil. A
// validation failure persists a generic answer and returns ErrInvalidSQL.
func (s *Service) HandleTurn(ctx context.Context, conversationID, message string) (TurnResult, error) {
	if strings.TrimSpace(message) == "" {
		return TurnResult{}, errors.New("empty message")
	}

	conv, err := s.loadOrCreateConversation(ctx, conversationID, message)
	if err != nil {
		return TurnResult{}, err
	}

	history := NewHistory(s.store)
	if err := history.Load(ctx, conv.ID); err != nil {
		return TurnResult{}, err
	}

	// Prior turns are captured before the question is persisted so the
	// current message appears exactly once in model context.
	priorTurns, err := history.Turns()
	if err != nil {
		return TurnResult{}, err
	}

	question := models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Content:        message,
		Type:           models.MessageTypeQuestion,
		CreatedBy:      conv.CreatedBy,
		CreatedAt:      s.now(),
	}
	if err := history.Append(ctx, question); err != nil {
		return TurnResult{}, fmt.Errorf("persist question: %w", err)
	}

	docs, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		return TurnResult{}, err
	}
	schemaContext := joinDocuments(docs)

	intent, err := s.resolver.Resolve(ctx, message, priorTurns, schemaContext)
	if err != nil {
		return TurnResult{}, err
	}

	statement, err := s.generator.Generate(ctx, intent, schemaContext)
	if err != nil {
		return TurnResult{}, err
	}

	if !ValidateSQL(statement) {
		slog.Warn("generated statement failed validation",
			"conversation_id", conv.ID, "statement_length", len(statement))
		fallback := models.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			Content:        invalidSQLAnswer,
			Type:           models.MessageTypeAnswer,
			CreatedBy:      conv.CreatedBy,
			CreatedAt:      s.now(),
		}
		if err := history.Append(ctx, fallback); err != nil {
			return TurnResult{}, fmt.Errorf("persist fallback answer: %w", err)
		}
		return TurnResult{}, fmt.Errorf("%w: %q", ErrInvalidSQL, statement)
	}

	var report llm.Response
	rows, runErr := s.executor.Run(ctx, statement)
	if runErr != nil {
		var sqlErr *store.SQLError
		if !errors.As(runErr, &sqlErr) {
			return TurnResult{}, fmt.Errorf("execute statement: %w", runErr)
		}
		slog.Warn("generated statement rejected by database",
			"conversation_id", conv.ID, "code", sqlErr.Code)
		report, err = s.reporter.ComposeError(ctx, message, sqlErr.Message)
		if err != nil {
			return TurnResult{}, err
		}
	} else {
		language, err := s.detector.Detect(ctx, message)
		if err != nil {
			return TurnResult{}, err
		}
		report, err = s.reporter.Compose(ctx, message, rows, language, priorTurns)
		if err != nil {
			return TurnResult{}, err
		}
	}

	answer := models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Content:        report.Content,
		Type:           models.MessageTypeAnswer,
		TokenUsage:     report.Usage,
		CreatedBy:      conv.CreatedBy,
		CreatedAt:      s.now(),
	}
	if err := history.Append(ctx, answer); err != nil {
		return TurnResult{}, fmt.Errorf("persist answer: %w", err)
	}

	return TurnResult{
		ConversationID: conv.ID,
		Content:        report.Content,
		TokenUsage:     report.Usage,
		CreatedAt:      answer.CreatedAt,
	}, nil
}

// loadOrCreateConversation resolves the conversation for a turn. An empty,
// malformed or unknown id starts a new conversation titled with the message.
func (s *Service) loadOrCreateConversation(ctx context.Context, id, title string) (models.Conversation, error) {
	if id != "" {
		parsed, parseErr := uuid.Parse(id)
		if parseErr == nil {
			conv, err := s.store.GetConversation(ctx, parsed)
			if err == nil {
				return conv, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return models.Conversation{}, err
			}
		}
	}

	conv := models.Conversation{
		ID:        uuid.New(),
		Title:     title,
		CreatedBy: "user",
		CreatedAt: s.now(),
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}
