// File: internal/services/grounding/qdrant.go
package grounding

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

const defaultQdrantPort = 6334

// QdrantSearcher queries one Qdrant collection over gRPC.
type QdrantSearcher struct {
	client     *qdrant.Client
	collection string
	logger     Logger
}

func NewQdrantSearcher(cfg *Config, logger Logger) (*QdrantSearcher, error) {
	host, port, useTLS, err := parseQdrantURL(cfg.URL)
	if err != nil {
		return nil, NewConfigError(err.Error())
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, NewConnectionError("connect", "failed to create qdrant client", err)
	}

	logger.Info("Qdrant client initialized", "host", host, "port", port, "collection", cfg.Collection)
	return &QdrantSearcher{client: client, collection: cfg.Collection, logger: logger}, nil
}

func (q *QdrantSearcher) Search(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	limit := uint64(topK)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	passages := make([]Passage, 0, len(points))
	for _, point := range points {
		passages = append(passages, passageFromQdrant(point))
	}
	return passages, nil
}

func (q *QdrantSearcher) Close() error {
	return q.client.Close()
}

func passageFromQdrant(point *qdrant.ScoredPoint) Passage {
	p := Passage{Score: point.GetScore()}
	if id := point.GetId(); id != nil {
		if u := id.GetUuid(); u != "" {
			p.ID = u
		} else {
			p.ID = strconv.FormatUint(id.GetNum(), 10)
		}
	}

	payload := point.GetPayload()
	p.Title = payload["title"].GetStringValue()
	p.URI = payload["uri"].GetStringValue()
	p.Text = payload["text"].GetStringValue()
	if p.Text == "" {
		p.Text = payload["content"].GetStringValue()
	}
	return p
}

// parseQdrantURL accepts "host", "host:port" or a full http(s) URL.
func parseQdrantURL(raw string) (host string, port int, useTLS bool, err error) {
	if raw == "" {
		return "", 0, false, fmt.Errorf("qdrant URL is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	port = defaultQdrantPort
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid port: %w", err)
		}
	}
	return u.Hostname(), port, u.Scheme == "https", nil
}
