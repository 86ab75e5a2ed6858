package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gogoair/flightchat/internal/llm"
	"github.com/gogoair/flightchat/internal/models"
	"github.com/gogoair/flightchat/internal/store"
)

func contains(s, substr string) bool { return strings.Contains(s, substr) }

type historyCall struct {
	system  string
	history []models.Turn
	user    string
}

// fakeModel dispatches on distinctive phrases of each prompt template.
type fakeModel struct {
	generateCalls []string
	historyCalls  []historyCall

	intentOut   string
	sqlOut      string
	languageOut string
	reportOut   llm.Response
	errorOut    llm.Response
}

func (m *fakeModel) Generate(_ context.Context, prompt string) (llm.Response, error) {
	m.generateCalls = append(m.generateCalls, prompt)
	switch {
	case contains(prompt, "expert SQL developer"):
		return llm.Response{Content: m.sqlOut}, nil
	case contains(prompt, "language detection model"):
		return llm.Response{Content: m.languageOut}, nil
	case contains(prompt, "data analyst"):
		return m.errorOut, nil
	}
	return llm.Response{}, fmt.Errorf("unexpected prompt: %.60s", prompt)
}

func (m *fakeModel) GenerateWithHistory(_ context.Context, system string, history []models.Turn, user string) (llm.Response, error) {
	m.historyCalls = append(m.historyCalls, historyCall{system: system, history: history, user: user})
	switch {
	case contains(system, "QUERY_INTENT"):
		return llm.Response{Content: m.intentOut}, nil
	case contains(system, "reporting assistant"):
		return m.reportOut, nil
	}
	return llm.Response{}, fmt.Errorf("unexpected system prompt: %.60s", system)
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.vector, e.err
}

type fakeSearcher struct {
	docs []models.ContextDocument
	err  error
}

func (s *fakeSearcher) SearchSimilar(context.Context, []float32, int) ([]models.ContextDocument, error) {
	return s.docs, s.err
}

type fakeRunner struct {
	rows  []map[string]any
	err   error
	calls []string
}

func (r *fakeRunner) Run(_ context.Context, statement string) ([]map[string]any, error) {
	r.calls = append(r.calls, statement)
	if r.err != nil {
		return nil, r.err
	}
	return r.rows, nil
}

func testClock() Clock {
	return func() time.Time { return time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC) }
}

func newTestService(st *fakeStore, model *fakeModel, runner *fakeRunner) *Service {
	clock := testClock()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	search := &fakeSearcher{docs: []models.ContextDocument{
		{Document: "Table flight_prices stores fares per flight and class.", Score: 0.9},
	}}
	return NewService(Deps{
		Store:     st,
		Retriever: NewRetriever(embedder, search, 10),
		Resolver:  NewIntentResolver(model, clock),
		Generator: NewSQLGenerator(model, clock),
		Executor:  runner,
		Detector:  NewLanguageDetector(model),
		Reporter:  NewReporter(model),
		Now:       clock,
	})
}

func answersOf(st *fakeStore) []models.Message {
	out := make([]models.Message, 0)
	for _, msg := range st.messages {
		if msg.Type == models.MessageTypeAnswer {
			out = append(out, msg)
		}
	}
	return out
}

func TestHandleTurnNewConversation(t *testing.T) {
	st := newFakeStore()
	model := &fakeModel{
		intentOut:   "QUERY_INTENT: tampilkan semua tiket yang tersedia",
		sqlOut:      "```sql\nSELECT * FROM flight_prices;\n```",
		languageOut: "Indonesian\n",
		reportOut: llm.Response{
			Content: "Ini dia semua tiketnya! Mau lihat rute tertentu?",
			Usage:   models.TokenUsage{"total_tokens": 42},
		},
	}
	runner := &fakeRunner{rows: []map[string]any{{"flight_number": "GA123", "base_price": "1250000.00"}}}
	svc := newTestService(st, model, runner)

	result, err := svc.HandleTurn(context.Background(), "", "Tampilkan semua TIKET")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}

	if result.ConversationID == uuid.Nil {
		t.Error("no conversation id returned")
	}
	if result.Content != model.reportOut.Content {
		t.Errorf("content = %q", result.Content)
	}
	if result.TokenUsage["total_tokens"] != 42 {
		t.Errorf("token usage = %v", result.TokenUsage)
	}

	conv, ok := st.conversations[result.ConversationID]
	if !ok {
		t.Fatal("conversation was not persisted")
	}
	if conv.Title != "Tampilkan semua TIKET" {
		t.Errorf("title = %q, want the first message", conv.Title)
	}

	if len(runner.calls) != 1 || runner.calls[0] != "SELECT * FROM flight_prices;" {
		t.Errorf("executed statements = %v", runner.calls)
	}

	if len(st.messages) != 2 {
		t.Fatalf("persisted messages = %d, want question + answer", len(st.messages))
	}
	if st.messages[0].Type != models.MessageTypeQuestion || st.messages[1].Type != models.MessageTypeAnswer {
		t.Errorf("message types = %q, %q", st.messages[0].Type, st.messages[1].Type)
	}
	if st.messages[1].TokenUsage["total_tokens"] != 42 {
		t.Errorf("answer usage = %v", st.messages[1].TokenUsage)
	}
}

func TestHandleTurnOutOfDomainRecovers(t *testing.T) {
	st := newFakeStore()
	decline := "maaf kami tidak mengetahui jawaban mengenai permintaan anda. silahkan bertanya seputar tiket dan penerbangan ya."
	model := &fakeModel{
		intentOut: "QUERY_INTENT: siapa presiden singapura",
		sqlOut:    "SELECT presiden FROM negara WHERE nama = 'Singapura';",
		errorOut:  llm.Response{Content: decline, Usage: models.TokenUsage{"total_tokens": 18}},
	}
	runner := &fakeRunner{err: &store.SQLError{Code: "42P01", Message: `relation "negara" does not exist`}}
	svc := newTestService(st, model, runner)

	result, err := svc.HandleTurn(context.Background(), "", "siapa presiden singapura")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v, want recovered turn", err)
	}
	if result.Content != decline {
		t.Errorf("content = %q", result.Content)
	}

	// One execution attempt, no retry, and no language detection on the
	// error path: only the SQL prompt and the error report hit Generate.
	if len(runner.calls) != 1 {
		t.Errorf("execution attempts = %d, want 1", len(runner.calls))
	}
	if len(model.generateCalls) != 2 {
		t.Errorf("generate calls = %d, want sql + error report", len(model.generateCalls))
	}

	answers := answersOf(st)
	if len(answers) != 1 {
		t.Fatalf("answer messages = %d, want exactly 1", len(answers))
	}
	if answers[0].Content != decline {
		t.Errorf("persisted answer = %q", answers[0].Content)
	}
}

func TestHandleTurnFollowUpCarriesHistory(t *testing.T) {
	st := newFakeStore()
	conv := models.Conversation{
		ID:        uuid.New(),
		Title:     "Ada penerbangan dari Jakarta ke Bali?",
		CreatedBy: "user",
		CreatedAt: time.Date(2025, 8, 28, 9, 0, 0, 0, time.UTC),
	}
	st.conversations[conv.ID] = conv
	seedMessage(st, conv.ID, "Ada penerbangan dari Jakarta ke Bali?", models.MessageTypeQuestion, conv.CreatedAt)
	seedMessage(st, conv.ID, "Ada beberapa pilihan penerbangan.", models.MessageTypeAnswer, conv.CreatedAt.Add(time.Minute))

	model := &fakeModel{
		intentOut:   "QUERY_INTENT: tiket termurah dari Jakarta ke Bali",
		sqlOut:      "SELECT * FROM flight_prices fp ORDER BY fp.base_price ASC LIMIT 1;",
		languageOut: "Indonesian",
		reportOut:   llm.Response{Content: "Yang paling murah GA123!", Usage: models.TokenUsage{"total_tokens": 25}},
	}
	runner := &fakeRunner{rows: []map[string]any{{"flight_number": "GA123"}}}
	svc := newTestService(st, model, runner)

	result, err := svc.HandleTurn(context.Background(), conv.ID.String(), "yang paling murah?")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if result.ConversationID != conv.ID {
		t.Errorf("conversation id = %s, want existing %s", result.ConversationID, conv.ID)
	}
	if len(st.conversations) != 1 {
		t.Errorf("a new conversation was created: %d total", len(st.conversations))
	}

	if len(model.historyCalls) < 1 {
		t.Fatal("intent resolution never called")
	}
	intentCall := model.historyCalls[0]
	if len(intentCall.history) != 2 {
		t.Fatalf("intent history length = %d, want the 2 prior turns", len(intentCall.history))
	}
	if intentCall.history[0].Role != "user" || intentCall.history[1].Role != "assistant" {
		t.Errorf("history roles = %q, %q", intentCall.history[0].Role, intentCall.history[1].Role)
	}
	if intentCall.user != "yang paling murah?" {
		t.Errorf("final turn = %q", intentCall.user)
	}

	// The generated SQL prompt must carry the resolved intent, route
	// included, not the bare follow-up words.
	if len(model.generateCalls) < 1 || !contains(model.generateCalls[0], "tiket termurah dari Jakarta ke Bali") {
		t.Errorf("sql prompt does not carry resolved intent")
	}

	if len(st.messages) != 4 {
		t.Errorf("persisted messages = %d, want 4", len(st.messages))
	}
}

func TestHandleTurnInvalidSQLPersistsFallback(t *testing.T) {
	st := newFakeStore()
	model := &fakeModel{
		intentOut: "QUERY_INTENT: sesuatu yang aneh",
		sqlOut:    "Maaf, aku tidak bisa membuat query untuk itu.",
	}
	runner := &fakeRunner{}
	svc := newTestService(st, model, runner)

	_, err := svc.HandleTurn(context.Background(), "", "pertanyaan aneh")
	if !errors.Is(err, ErrInvalidSQL) {
		t.Fatalf("HandleTurn() error = %v, want ErrInvalidSQL", err)
	}

	if len(runner.calls) != 0 {
		t.Errorf("invalid statement was executed: %v", runner.calls)
	}
	answers := answersOf(st)
	if len(answers) != 1 {
		t.Fatalf("answer messages = %d, want the fallback", len(answers))
	}
	if answers[0].Content != invalidSQLAnswer {
		t.Errorf("fallback content = %q", answers[0].Content)
	}
}

func TestHandleTurnInfrastructureErrorIsFatal(t *testing.T) {
	st := newFakeStore()
	model := &fakeModel{
		intentOut: "QUERY_INTENT: tampilkan semua tiket",
		sqlOut:    "SELECT * FROM flight_prices;",
	}
	runner := &fakeRunner{err: errors.New("connection refused")}
	svc := newTestService(st, model, runner)

	_, err := svc.HandleTurn(context.Background(), "", "Tampilkan semua TIKET")
	if err == nil {
		t.Fatal("expected error for infrastructure failure")
	}
	if len(answersOf(st)) != 0 {
		t.Error("infrastructure failure must not persist an answer")
	}
}

func TestHandleTurnEmptyMessage(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeModel{}, &fakeRunner{})
	if _, err := svc.HandleTurn(context.Background(), "", "   "); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestHandleTurnUnknownConversationIDStartsFresh(t *testing.T) {
	st := newFakeStore()
	model := &fakeModel{
		intentOut:   "QUERY_INTENT: tampilkan semua tiket",
		sqlOut:      "SELECT * FROM flight_prices;",
		languageOut: "Indonesian",
		reportOut:   llm.Response{Content: "Ini tiketnya."},
	}
	svc := newTestService(st, model, &fakeRunner{rows: []map[string]any{}})

	result, err := svc.HandleTurn(context.Background(), uuid.NewString(), "Tampilkan semua TIKET")
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if _, ok := st.conversations[result.ConversationID]; !ok {
		t.Error("unknown id did not create a fresh conversation")
	}
}
