// File: internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/handlers"
	"github.com/iyunix/go-counselor/internal/ratelimit"
	"github.com/iyunix/go-counselor/internal/repository/history"
	"github.com/iyunix/go-counselor/internal/repository/slot"
	"github.com/iyunix/go-counselor/internal/services"
	"github.com/iyunix/go-counselor/internal/services/ai"
	"github.com/iyunix/go-counselor/internal/services/chat"
	"github.com/iyunix/go-counselor/internal/services/grounding"
	"github.com/iyunix/go-counselor/internal/services/session"
)

const (
	loadTimeout = 10 * time.Second

	minShutdownTimeout = 15 * time.Second
	shutdownSlack      = 5 * time.Second
)

// Application aggregates all services and handlers
type Application struct {
	Config       *config.Config
	Logger       services.Logger
	Slot         slot.Slot
	History      *history.Repository
	Store        *session.Store
	Counselor    *ai.OpenAIProvider
	Retriever    grounding.Retriever
	Orchestrator *chat.Orchestrator
	ChatHandler  *handlers.ChatHandler
	PageHandler  *handlers.PageHandler
	LogHandler   *handlers.LogHandler
	MessageLimit *ratelimit.MemoryRateLimiter
}

// New wires every component and hydrates the store from storage.
func New(cfg *config.Config, logger services.Logger) (*Application, error) {
	a := &Application{Config: cfg, Logger: logger}

	var err error
	if a.Slot, err = ProvideSlot(cfg); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	a.History = history.NewRepository(a.Slot, logger)
	a.Store = session.NewStore(a.History, logger)

	if a.Counselor, err = ProvideCounselor(cfg, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("counselor: %w", err)
	}
	if a.Retriever, err = ProvideRetriever(cfg, a.Counselor, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("grounding: %w", err)
	}
	a.Counselor.SetRetriever(a.Retriever)

	if a.Orchestrator, err = ProvideOrchestrator(cfg, a.Store, a.Counselor, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	a.ChatHandler = handlers.NewChatHandler(a.Store, a.Orchestrator, logger)
	a.PageHandler = handlers.NewPageHandler(a.ChatHandler)
	a.LogHandler = handlers.NewLogHandler(logger)
	a.MessageLimit = ratelimit.NewMemoryRateLimiter(ProvideRateLimitConfig(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	st := a.Store.Hydrate(a.History.Load(ctx))
	logger.Info("application ready",
		"storage", cfg.StorageDriver,
		"grounding", cfg.GroundingDriver,
		"user", st.CurrentUser,
		"session_id", st.CurrentSessionID,
		"api_key_configured", cfg.GeminiAPIKey != "")
	return a, nil
}

// ShutdownTimeout is how long the server waits for open requests before the
// slot is closed. A message request lasts up to the chat reply timeout, so
// the wait covers it and the reply is still saved.
func ShutdownTimeout(cfg *config.Config) time.Duration {
	d := ProvideChatConfig(cfg).ReplyTimeout + shutdownSlack
	if d < minShutdownTimeout {
		return minShutdownTimeout
	}
	return d
}

// Close releases storage and grounding connections.
func (a *Application) Close() error {
	var errs []error
	if a.MessageLimit != nil {
		a.MessageLimit.Close()
	}
	if a.Retriever != nil {
		errs = append(errs, a.Retriever.Close())
	}
	if a.Slot != nil {
		errs = append(errs, a.Slot.Close())
	}
	return errors.Join(errs...)
}

// Provider functions

func ProvideSlot(cfg *config.Config) (slot.Slot, error) {
	slotType, err := slot.ParseSlotType(cfg.StorageDriver)
	if err != nil {
		return nil, err
	}

	var opts []slot.Option
	switch slotType {
	case slot.SlotTypeSQLite, slot.SlotTypeFile:
		opts = append(opts, slot.WithPath(cfg.StoragePath))
	case slot.SlotTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		opts = append(opts, slot.WithRedisClient(client), slot.WithRedisPrefix("counselor:"))
	}
	return slot.NewSlot(slotType, opts...)
}

func ProvideAIConfig(cfg *config.Config) *ai.Config {
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.GeminiAPIKey
	if cfg.LLMBaseURL != "" {
		aiConfig.BaseURL = cfg.LLMBaseURL
	}
	if cfg.LLMModel != "" {
		aiConfig.Model = cfg.LLMModel
	}
	if cfg.EmbeddingModel != "" {
		aiConfig.EmbeddingModel = cfg.EmbeddingModel
	}
	aiConfig.Temperature = cfg.LLMTemperature
	if cfg.ReplyTimeout > 0 {
		aiConfig.Timeout = cfg.ReplyTimeout
	}
	aiConfig.TopK = cfg.GroundingTopK
	return aiConfig
}

func ProvideCounselor(cfg *config.Config, logger services.Logger) (*ai.OpenAIProvider, error) {
	kb, err := ai.LoadKnowledgeBase(cfg.KnowledgeBasePath)
	if err != nil {
		return nil, err
	}
	return ai.NewOpenAIProvider(ProvideAIConfig(cfg), logger, ai.WithKnowledgeBase(kb))
}

func ProvideGroundingConfig(cfg *config.Config) (*grounding.Config, error) {
	driver, err := grounding.ParseDriver(cfg.GroundingDriver)
	if err != nil {
		return nil, err
	}
	gc := grounding.DefaultConfig()
	gc.Driver = driver
	gc.URL = cfg.QdrantURL
	gc.APIKey = cfg.QdrantAPIKey
	if cfg.QdrantCollection != "" {
		gc.Collection = cfg.QdrantCollection
	}
	gc.PineconeAPIKey = cfg.PineconeAPIKey
	gc.IndexHost = cfg.PineconeIndexHost
	gc.Namespace = cfg.PineconeNamespace
	if cfg.GroundingTopK > 0 {
		gc.TopK = cfg.GroundingTopK
	}
	return gc, nil
}

func ProvideRetriever(cfg *config.Config, embedder grounding.Embedder, logger services.Logger) (grounding.Retriever, error) {
	gc, err := ProvideGroundingConfig(cfg)
	if err != nil {
		return nil, err
	}
	return grounding.NewRetriever(gc, embedder, logger)
}

func ProvideChatConfig(cfg *config.Config) *chat.Config {
	chatConfig := chat.DefaultConfig()
	if cfg.HistoryWindow >= 0 {
		chatConfig.HistoryWindow = cfg.HistoryWindow
	}
	if cfg.ReplyTimeout > 0 {
		// leave headroom for grounding on top of the model call
		chatConfig.ReplyTimeout = cfg.ReplyTimeout + 15*time.Second
	}
	return chatConfig
}

func ProvideOrchestrator(cfg *config.Config, store *session.Store, counselor ai.Counselor, logger services.Logger) (*chat.Orchestrator, error) {
	return chat.NewOrchestrator(ProvideChatConfig(cfg), store, counselor, logger)
}

func ProvideRateLimitConfig(cfg *config.Config) *ratelimit.Config {
	rlConfig := ratelimit.DefaultMessageConfig()
	rlConfig.MaxAttempts = cfg.MessageRateLimit
	if cfg.MessageRateWindow > 0 {
		rlConfig.WindowSize = cfg.MessageRateWindow
	}
	return rlConfig
}
