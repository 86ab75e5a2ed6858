package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogoair/flightchat/internal/models"
)

const intentMarker = "QUERY_INTENT:"

// IntentResolver condenses a question plus its conversation history into one
// self-contained data request. It is stateless across calls; history arrives
// as an argument every time.
type IntentResolver struct {
	model Generator
	now   Clock
}

// NewIntentResolver creates an intent resolver.
func NewIntentResolver(model Generator, now Clock) *IntentResolver {
	return &IntentResolver{model: model, now: now}
}

// Resolve runs a single model call with the schema context as system prompt,
// the history as prior turns and the question as the final turn.
func (r *IntentResolver) Resolve(ctx context.Context, question string, history []models.Turn, schemaContext string) (string, error) {
	system := intentSystemPrompt(schemaContext, r.now().Format("2006-01-02"))

	resp, err := r.model.GenerateWithHistory(ctx, system, history, question)
	if err != nil {
		return "", fmt.Errorf("resolve intent: %w", err)
	}

	intent, found := extractIntent(resp.Content)
	if !found {
		// Tolerant fallback, but worth flagging: the prompt asked for the
		// marker and the model ignored it.
		slog.Warn("intent marker missing from model output", "output_length", len(resp.Content))
	}
	return intent, nil
}

// extractIntent takes everything after the QUERY_INTENT: marker, or the whole
// output when the marker is absent.
func extractIntent(output string) (string, bool) {
	if idx := strings.Index(output, intentMarker); idx >= 0 {
		return strings.TrimSpace(output[idx+len(intentMarker):]), true
	}
	return strings.TrimSpace(output), false
}
