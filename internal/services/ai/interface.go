// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Request is one counselor turn.
type Request struct {
	// History is the recent conversation, oldest first, excluding Text.
	History []domain.Message
	Text    string
	User    domain.UserProfile
}

// Reply is the counselor's answer. Sources are deduplicated by URI.
type Reply struct {
	Text    string
	Sources []domain.Source
}

// Counselor produces replies for the family counselor persona.
type Counselor interface {
	Reply(ctx context.Context, req Request) (*Reply, error)
}

// EmbeddingProvider handles text embeddings
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Logger interface for AI operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
