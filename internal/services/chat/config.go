// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// HistoryWindow is how many earlier messages are sent with each turn.
	HistoryWindow int
	// ReplyTimeout bounds one counselor call.
	ReplyTimeout time.Duration
	// SuggestionThreshold hides suggested questions once a session has this
	// many messages.
	SuggestionThreshold int
}

func (c *Config) Validate() error {
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history_window cannot be negative")
	}
	if c.ReplyTimeout <= 0 {
		return fmt.Errorf("reply_timeout must be positive")
	}
	if c.SuggestionThreshold < 1 {
		return fmt.Errorf("suggestion_threshold must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		HistoryWindow:       10,
		ReplyTimeout:        90 * time.Second,
		SuggestionThreshold: 4,
	}
}
