package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/gogoair/flightchat/internal/models"
)

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding service unavailable")}
	r := NewRetriever(embedder, &fakeSearcher{}, 10)

	if _, err := r.Retrieve(context.Background(), "Tampilkan semua TIKET"); err == nil {
		t.Fatal("expected embedder error to propagate")
	}
}

func TestRetrieveReturnsDocuments(t *testing.T) {
	docs := []models.ContextDocument{
		{Document: "Table flight_prices ...", Score: 0.92},
		{Document: "Table airports ...", Score: 0.85},
	}
	r := NewRetriever(&fakeEmbedder{vector: []float32{0.1}}, &fakeSearcher{docs: docs}, 10)

	got, err := r.Retrieve(context.Background(), "tiket ke Bali")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("documents = %d, want 2", len(got))
	}
}

func TestJoinDocuments(t *testing.T) {
	got := joinDocuments([]models.ContextDocument{
		{Document: "first"},
		{Document: "second"},
	})
	if got != "first\n\nsecond" {
		t.Errorf("joinDocuments() = %q", got)
	}
}
