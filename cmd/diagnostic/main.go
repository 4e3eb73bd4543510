// File: cmd/diagnostic/main.go
//
// Usage:
//
//	diagnostic llm [question]        one counselor turn through the configured model
//	diagnostic grounding [question]  embedding + vector search timings
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/iyunix/go-counselor/internal/app"
	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services"
	"github.com/iyunix/go-counselor/internal/services/ai"
	"github.com/iyunix/go-counselor/internal/services/grounding"
)

const testRuns = 5

func main() {
	mode := "llm"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	question := "Como posso perdoar meu cônjuge?"
	if len(os.Args) > 2 {
		question = strings.Join(os.Args[2:], " ")
	}

	cfg := config.Load()
	logger := services.NewLogger("go_counselor_diagnostic")

	counselor, err := app.ProvideCounselor(cfg, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize counselor: %v", err)
	}
	retriever, err := app.ProvideRetriever(cfg, counselor, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize grounding: %v", err)
	}
	defer retriever.Close()
	counselor.SetRetriever(retriever)

	switch mode {
	case "llm":
		runLLM(counselor, question)
	case "grounding":
		runGrounding(cfg, counselor, retriever, question)
	default:
		log.Fatalf("unknown mode %q (want llm or grounding)", mode)
	}
}

func runLLM(counselor *ai.OpenAIProvider, question string) {
	log.Printf("Question: %q", question)

	start := time.Now()
	reply, err := counselor.Reply(context.Background(), ai.Request{
		History: []domain.Message{domain.NewWelcomeMessage(domain.DefaultProfile, time.Now())},
		Text:    question,
		User:    domain.DefaultProfile,
	})
	if err != nil {
		log.Fatalf("Reply failed: %v", err)
	}
	log.Printf("[TIMING] Reply took %s", time.Since(start))

	fmt.Println(reply.Text)
	for _, src := range reply.Sources {
		fmt.Printf("  - %s (%s)\n", src.Title, src.URI)
	}
}

func runGrounding(cfg *config.Config, counselor *ai.OpenAIProvider, retriever grounding.Retriever, question string) {
	if cfg.GroundingDriver == "" || cfg.GroundingDriver == "none" {
		log.Fatalf("GROUNDING_DRIVER is not set; nothing to test")
	}

	startEmbedding := time.Now()
	if _, err := counselor.CreateEmbedding(context.Background(), question); err != nil {
		log.Fatalf("FATAL: Failed to create embedding: %v", err)
	}
	log.Printf("[TIMING] Embedding creation took: %s", time.Since(startEmbedding))

	var total time.Duration
	for i := 1; i <= testRuns; i++ {
		start := time.Now()
		passages, err := retriever.Retrieve(context.Background(), question, cfg.GroundingTopK)
		if err != nil {
			log.Printf("ERROR: Query run #%d failed: %v", i, err)
			continue
		}
		d := time.Since(start)
		total += d
		log.Printf("[TIMING] Query run #%d took: %s (found %d passages)", i, d, len(passages))
		if i == 1 {
			for _, p := range passages {
				fmt.Printf("  %.3f  %s (%s)\n", p.Score, p.Title, p.URI)
			}
		}
	}
	log.Printf("Average query latency over %d runs: %s", testRuns, total/testRuns)
}
