package chat

import "testing"

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean",
			raw:  "SELECT * FROM flight_prices;",
			want: "SELECT * FROM flight_prices;",
		},
		{
			name: "answer prefix",
			raw:  "answer: SELECT * FROM flight_prices;",
			want: "SELECT * FROM flight_prices;",
		},
		{
			name: "answer prefix uppercase",
			raw:  "ANSWER: SELECT code FROM airports;",
			want: "SELECT code FROM airports;",
		},
		{
			name: "code fence",
			raw:  "```sql\nSELECT 1;\n```",
			want: "SELECT 1;",
		},
		{
			name: "stacked markers",
			raw:  "Jawaban: sql: ```sql\nSELECT code FROM airports;\n```",
			want: "SELECT code FROM airports;",
		},
		{
			name: "literal escapes",
			raw:  `\nSELECT\t* FROM flight_prices;`,
			want: "SELECT\t* FROM flight_prices;",
		},
		{
			name: "keyword mid string",
			raw:  "Here is the best query for that SELECT code FROM airports;",
			want: "SELECT code FROM airports;",
		},
		{
			name: "with statement",
			raw:  "query: WITH cheapest AS (SELECT 1) SELECT * FROM cheapest;",
			want: "WITH cheapest AS (SELECT 1) SELECT * FROM cheapest;",
		},
		{
			name: "no sql at all",
			raw:  "Maaf, aku tidak bisa menjawab itu.",
			want: "Maaf, aku tidak bisa menjawab itu.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSQL(tt.raw); got != tt.want {
				t.Errorf("CleanSQL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateSQL(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      bool
	}{
		{name: "bare select", statement: "SELECT * FROM flight_prices;", want: true},
		{name: "lowercase select", statement: "select code from airports;", want: true},
		{name: "with cte", statement: "WITH c AS (SELECT 1) SELECT * FROM c;", want: true},
		{name: "insert", statement: "INSERT INTO airports (code) VALUES ('CGK');", want: true},
		{name: "empty", statement: "", want: false},
		{name: "prose", statement: "I would be happy to help with that.", want: false},
		{name: "drop", statement: "DROP TABLE flight_prices;", want: false},
		{name: "assistant marker", statement: "SELECT 1; ASSISTANT: done", want: false},
		{name: "assistant marker without keyword", statement: "ASSISTANT: here you go", want: false},
		{name: "jawaban marker", statement: "SELECT 1; JAWABAN: selesai", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSQL(tt.statement); got != tt.want {
				t.Errorf("ValidateSQL(%q) = %v, want %v", tt.statement, got, tt.want)
			}
		})
	}
}
