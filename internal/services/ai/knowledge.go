// File: internal/services/ai/knowledge.go
package ai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed knowledge_base.md
var embeddedKnowledgeBase string

// DefaultKnowledgeBase returns the built-in couples' handbook summary.
func DefaultKnowledgeBase() string {
	return embeddedKnowledgeBase
}

// LoadKnowledgeBase reads path, or returns the built-in text when path is empty.
func LoadKnowledgeBase(path string) (string, error) {
	if path == "" {
		return embeddedKnowledgeBase, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read knowledge base: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("knowledge base %s is empty", path)
	}
	return text, nil
}
