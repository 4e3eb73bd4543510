// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/grounding"
)

// OpenAIProvider talks to any OpenAI-compatible endpoint. By default that
// is Gemini's compatibility layer.
type OpenAIProvider struct {
	config        *Config
	client        *openai.Client
	knowledgeBase string
	retriever     grounding.Retriever
	logger        Logger
}

type ProviderOption func(*OpenAIProvider)

// WithRetriever enables knowledge-base grounding for replies.
func WithRetriever(r grounding.Retriever) ProviderOption {
	return func(p *OpenAIProvider) { p.retriever = r }
}

func WithKnowledgeBase(text string) ProviderOption {
	return func(p *OpenAIProvider) {
		if strings.TrimSpace(text) != "" {
			p.knowledgeBase = text
		}
	}
}

func NewOpenAIProvider(config *Config, logger Logger, opts ...ProviderOption) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &AIError{Type: ErrTypeValidation, Operation: "config", Message: err.Error()}
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")

	p := &OpenAIProvider{
		config:        config,
		client:        openai.NewClientWithConfig(clientConfig),
		knowledgeBase: DefaultKnowledgeBase(),
		retriever:     grounding.NoopRetriever{},
		logger:        logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Reply answers one turn. A missing API key fails with a CONFIG error
// before any network call.
func (p *OpenAIProvider) Reply(ctx context.Context, req Request) (*Reply, error) {
	if p.config.APIKey == "" {
		return nil, NewConfigError("API key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	passages := p.retrieve(ctx, req.Text)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: BuildSystemInstruction(req.User, p.knowledgeBase, passages),
	})
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Text,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Text,
	})

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, classify("completion", p.config.Model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &AIError{
			Type:      ErrTypeProvider,
			Operation: "completion",
			Model:     p.config.Model,
			Message:   "empty completion response",
		}
	}

	sources := make([]domain.Source, 0, len(passages))
	for _, passage := range passages {
		sources = append(sources, domain.Source{Title: passage.Title, URI: passage.URI})
	}

	p.logger.Debug("counselor reply received",
		"user", req.User,
		"history", len(req.History),
		"passages", len(passages),
		"duration_ms", time.Since(start).Milliseconds())

	return &Reply{
		Text:    resp.Choices[0].Message.Content,
		Sources: domain.DedupSources(sources),
	}, nil
}

// retrieve never fails the turn; lookup errors only drop the sources.
func (p *OpenAIProvider) retrieve(ctx context.Context, query string) []grounding.Passage {
	if p.config.TopK == 0 {
		return nil
	}
	passages, err := p.retriever.Retrieve(ctx, query, p.config.TopK)
	if err != nil {
		p.logger.Warn("grounding lookup failed, answering without sources", "error", err)
		return nil
	}
	return passages
}

func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if p.config.APIKey == "" {
		return nil, NewConfigError("API key is not configured")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.config.EmbeddingModel),
	})
	if err != nil {
		return nil, classify("embedding", p.config.EmbeddingModel, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &AIError{
			Type:      ErrTypeProvider,
			Operation: "embedding",
			Model:     p.config.EmbeddingModel,
			Message:   "empty embedding response",
		}
	}
	return resp.Data[0].Embedding, nil
}

// SetRetriever installs a retriever after construction. The retriever
// usually embeds with this same provider, so it cannot exist earlier.
func (p *OpenAIProvider) SetRetriever(r grounding.Retriever) {
	if r != nil {
		p.retriever = r
	}
}

func chatRole(r domain.Role) string {
	if r == domain.RoleUser {
		return openai.ChatMessageRoleUser
	}
	return openai.ChatMessageRoleAssistant
}
