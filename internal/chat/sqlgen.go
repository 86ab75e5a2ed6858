package chat

import (
	"context"
	"fmt"
	"strings"
)

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "WITH"}

// leadingArtifacts are prefixes models habitually put in front of the
// statement. Stripped case-insensitively, repeatedly, so stacked markers
// like "answer: ```sql" come off too.
var leadingArtifacts = []string{
	"answer:",
	"sql:",
	"query:",
	"result:",
	"```sql",
	"```",
	"ai:",
	"system:",
	"assistant:",
	"jawaban:",
}

// blockedMarkers are conversational markers that disqualify an output even
// when it happens to start with a SQL keyword.
var blockedMarkers = []string{"AI:", "ASSISTANT:", "JAWABAN:", "SYSTEM:"}

// SQLGenerator turns a resolved intent into a cleaned SQL statement.
type SQLGenerator struct {
	model Generator
	now   Clock
}

// NewSQLGenerator creates a SQL generator.
func NewSQLGenerator(model Generator, now Clock) *SQLGenerator {
	return &SQLGenerator{model: model, now: now}
}

// Generate runs a single history-free model call and returns the cleaned
// statement. Callers validate with ValidateSQL before executing.
func (g *SQLGenerator) Generate(ctx context.Context, intent, schemaContext string) (string, error) {
	prompt := sqlPrompt(schemaContext, intent, g.now().Format("2006-01-02"))

	resp, err := g.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	return CleanSQL(resp.Content), nil
}

// CleanSQL normalizes raw model output into something executable: literal
// escape sequences become real whitespace, known leading artifacts and code
// fences are stripped, and when the remainder still does not start with a
// SQL keyword the text is truncated to the first keyword occurrence.
func CleanSQL(raw string) string {
	s := strings.ReplaceAll(raw, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.TrimSpace(s)

	for stripped := true; stripped; {
		stripped = false
		lower := strings.ToLower(s)
		for _, artifact := range leadingArtifacts {
			if strings.HasPrefix(lower, artifact) {
				s = strings.TrimSpace(s[len(artifact):])
				stripped = true
				break
			}
		}
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))

	if !startsWithSQLKeyword(s) {
		if idx := firstKeywordIndex(s); idx > 0 {
			s = s[idx:]
		}
	}
	return s
}

// ValidateSQL reports whether a cleaned statement is executable: it must
// start with a SQL keyword and carry no conversational markers. A false
// result is fatal for the turn (ErrInvalidSQL), never retried.
func ValidateSQL(statement string) bool {
	trimmed := strings.TrimSpace(statement)
	if !startsWithSQLKeyword(trimmed) {
		return false
	}

	upper := strings.ToUpper(trimmed)
	for _, marker := range blockedMarkers {
		if strings.Contains(upper, marker) {
			return false
		}
	}
	return true
}

func startsWithSQLKeyword(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// firstKeywordIndex returns the earliest position of any SQL keyword, or -1.
func firstKeywordIndex(s string) int {
	upper := strings.ToUpper(s)
	idx := -1
	for _, kw := range sqlKeywords {
		if i := strings.Index(upper, kw); i >= 0 && (idx == -1 || i < idx) {
			idx = i
		}
	}
	return idx
}
