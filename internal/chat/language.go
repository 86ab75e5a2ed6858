package chat

import (
	"context"
	"fmt"
	"strings"
)

// LanguageDetector identifies the language of a question so the report can
// answer in kind.
type LanguageDetector struct {
	model Generator
}

// NewLanguageDetector creates a language detector.
func NewLanguageDetector(model Generator) *LanguageDetector {
	return &LanguageDetector{model: model}
}

// Detect returns the bare language name ("Indonesian", "English", ...).
// The output is trimmed but not validated against a closed set.
func (d *LanguageDetector) Detect(ctx context.Context, text string) (string, error) {
	resp, err := d.model.Generate(ctx, languagePrompt(text))
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
