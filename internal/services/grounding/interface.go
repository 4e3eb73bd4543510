// File: internal/services/grounding/interface.go
package grounding

import "context"

// Passage is one knowledge-base excerpt found for a query.
type Passage struct {
	ID    string
	Title string
	URI   string
	Text  string
	Score float32
}

// Retriever finds passages relevant to a user question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Passage, error)
	Close() error
}

// Embedder turns text into a query vector.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher is a vector store driver.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]Passage, error)
	Close() error
}

// Logger interface for grounding operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
