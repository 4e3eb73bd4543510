// File: internal/services/grounding/pinecone.go
package grounding

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeSearcher queries one Pinecone index namespace.
type PineconeSearcher struct {
	index  *pinecone.IndexConnection
	logger Logger
}

func NewPineconeSearcher(cfg *Config, logger Logger) (*PineconeSearcher, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.PineconeAPIKey})
	if err != nil {
		return nil, NewConnectionError("connect", "failed to create pinecone client", err)
	}

	index, err := client.Index(pinecone.NewIndexConnParams{
		Host:      cfg.IndexHost,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, NewConnectionError("connect", "failed to open pinecone index", err)
	}

	logger.Info("Pinecone index connection ready", "host", cfg.IndexHost, "namespace", cfg.Namespace)
	return &PineconeSearcher{index: index, logger: logger}, nil
}

func (p *PineconeSearcher) Search(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	res, err := p.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	passages := make([]Passage, 0, len(res.Matches))
	for _, match := range res.Matches {
		if match == nil || match.Vector == nil {
			continue
		}
		passages = append(passages, passageFromMetadata(match.Vector.Id, match.Score, match.Vector.Metadata))
	}
	return passages, nil
}

func (p *PineconeSearcher) Close() error {
	return p.index.Close()
}

func passageFromMetadata(id string, score float32, md *structpb.Struct) Passage {
	fields := md.GetFields()
	p := Passage{
		ID:    id,
		Score: score,
		Title: fields["title"].GetStringValue(),
		URI:   fields["uri"].GetStringValue(),
		Text:  fields["text"].GetStringValue(),
	}
	if p.Text == "" {
		p.Text = fields["content"].GetStringValue()
	}
	return p
}
