// File: internal/services/grounding/factory.go
package grounding

// NewRetriever builds the retriever selected by cfg.Driver.
func NewRetriever(cfg *Config, embedder Embedder, logger Logger) (Retriever, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	var searcher VectorSearcher
	switch cfg.Driver {
	case DriverNone:
		logger.Info("grounding disabled")
		return NoopRetriever{}, nil
	case DriverQdrant:
		s, err := NewQdrantSearcher(cfg, logger)
		if err != nil {
			return nil, err
		}
		searcher = s
	case DriverPinecone:
		s, err := NewPineconeSearcher(cfg, logger)
		if err != nil {
			return nil, err
		}
		searcher = s
	}

	if embedder == nil {
		_ = searcher.Close()
		return nil, NewConfigError("an embedder is required for vector grounding")
	}
	return NewVectorRetriever(embedder, searcher, cfg.Timeout, logger), nil
}
