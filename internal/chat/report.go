package chat

import (
	"context"
	"fmt"

	"github.com/gogoair/flightchat/internal/llm"
	"github.com/gogoair/flightchat/internal/models"
)

// Reporter narrates query results back to the user.
type Reporter struct {
	model Generator
}

// NewReporter creates a reporter.
func NewReporter(model Generator) *Reporter {
	return &Reporter{model: model}
}

// Compose turns raw result rows into a friendly answer in the detected
// language. The conversation history rides along so follow-up phrasing
// stays coherent.
func (r *Reporter) Compose(ctx context.Context, question string, rows []map[string]any, language string, history []models.Turn) (llm.Response, error) {
	system := reportSystemPrompt(formatRows(rows), language)

	resp, err := r.model.GenerateWithHistory(ctx, system, history, question)
	if err != nil {
		return llm.Response{}, fmt.Errorf("compose report: %w", err)
	}
	return resp, nil
}

// ComposeError explains a rejected statement to the user without exposing
// internals, typically a polite note that the question is out of scope.
func (r *Reporter) ComposeError(ctx context.Context, question, errorMessage string) (llm.Response, error) {
	resp, err := r.model.Generate(ctx, errorReportPrompt(question, errorMessage))
	if err != nil {
		return llm.Response{}, fmt.Errorf("compose error report: %w", err)
	}
	return resp, nil
}
