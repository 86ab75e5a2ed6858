package chat

import (
	"context"
	"testing"
	"time"

	"github.com/gogoair/flightchat/internal/models"
)

func TestExtractIntent(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		want      string
		wantFound bool
	}{
		{
			name:      "marker at start",
			output:    "QUERY_INTENT: tampilkan semua tiket",
			want:      "tampilkan semua tiket",
			wantFound: true,
		},
		{
			name:      "marker mid output",
			output:    "Baik, ini rangkumannya.\nQUERY_INTENT: tiket termurah dari Jakarta ke Bali",
			want:      "tiket termurah dari Jakarta ke Bali",
			wantFound: true,
		},
		{
			name:      "marker missing falls back to raw output",
			output:    "  tiket dari CGK ke DPS bulan depan  ",
			want:      "tiket dari CGK ke DPS bulan depan",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractIntent(tt.output)
			if got != tt.want || found != tt.wantFound {
				t.Errorf("extractIntent(%q) = (%q, %v), want (%q, %v)",
					tt.output, got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func TestResolvePassesHistoryAndDate(t *testing.T) {
	model := &fakeModel{intentOut: "QUERY_INTENT: tiket termurah"}
	clock := func() time.Time { return time.Date(2025, 8, 28, 10, 0, 0, 0, time.UTC) }
	resolver := NewIntentResolver(model, clock)

	history := []models.Turn{
		{Role: "user", Content: "Ada penerbangan dari Jakarta ke Bali?"},
		{Role: "assistant", Content: "Ada beberapa pilihan."},
	}

	intent, err := resolver.Resolve(context.Background(), "yang paling murah?", history, "Table flight_prices ...")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if intent != "tiket termurah" {
		t.Errorf("intent = %q", intent)
	}

	if len(model.historyCalls) != 1 {
		t.Fatalf("model calls = %d, want 1", len(model.historyCalls))
	}
	call := model.historyCalls[0]
	if len(call.history) != 2 {
		t.Errorf("history length = %d, want 2", len(call.history))
	}
	if call.user != "yang paling murah?" {
		t.Errorf("user turn = %q", call.user)
	}
	if !contains(call.system, "2025-08-28") {
		t.Errorf("system prompt missing current date:\n%s", call.system)
	}
	if !contains(call.system, "Table flight_prices ...") {
		t.Errorf("system prompt missing schema context")
	}
}
