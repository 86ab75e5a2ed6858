package models

// ContextDocument is a schema/document snippet returned by similarity search.
// Score is cosine similarity in [0,1]; retrieval results are ordered by Score
// descending.
type ContextDocument struct {
	Document string  `json:"document"`
	Score    float64 `json:"score"`
}
