// File: internal/services/grounding/retriever.go
package grounding

import (
	"context"
	"strings"
	"time"
)

// VectorRetriever embeds the query and searches a vector store.
type VectorRetriever struct {
	embedder Embedder
	searcher VectorSearcher
	timeout  time.Duration
	logger   Logger
}

func NewVectorRetriever(embedder Embedder, searcher VectorSearcher, timeout time.Duration, logger Logger) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, searcher: searcher, timeout: timeout, logger: logger}
}

// Retrieve returns at most topK passages with distinct URIs, best first.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Passage, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK < 1 {
		return nil, nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	vector, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, NewQueryError("embed", "failed to embed query", err)
	}

	found, err := r.searcher.Search(ctx, vector, topK)
	if err != nil {
		return nil, NewQueryError("search", "vector search failed", err)
	}

	passages := uniquePassages(found, topK)
	r.logger.Debug("grounding passages retrieved",
		"requested", topK,
		"found", len(found),
		"kept", len(passages),
		"duration_ms", time.Since(start).Milliseconds())
	return passages, nil
}

func (r *VectorRetriever) Close() error {
	return r.searcher.Close()
}

// uniquePassages drops passages without text and repeats of a URI.
func uniquePassages(found []Passage, limit int) []Passage {
	seen := make(map[string]bool, len(found))
	out := make([]Passage, 0, len(found))
	for _, p := range found {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		if p.URI == "" {
			p.URI = "kb://" + p.ID
		}
		if seen[p.URI] {
			continue
		}
		seen[p.URI] = true
		if p.Title == "" {
			p.Title = p.URI
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// NoopRetriever never finds anything.
type NoopRetriever struct{}

func (NoopRetriever) Retrieve(context.Context, string, int) ([]Passage, error) { return nil, nil }
func (NoopRetriever) Close() error                                            { return nil }
