// File: internal/services/grounding/config.go
package grounding

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Driver string

const (
	DriverNone     Driver = "none"
	DriverQdrant   Driver = "qdrant"
	DriverPinecone Driver = "pinecone"
)

// ParseDriver maps GROUNDING_DRIVER values; empty means none.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case "", DriverNone:
		return DriverNone, nil
	case DriverQdrant, DriverPinecone:
		return d, nil
	default:
		return "", fmt.Errorf("unknown grounding driver %q", s)
	}
}

type Config struct {
	Driver Driver

	// Qdrant
	URL        string
	APIKey     string
	Collection string

	// Pinecone
	PineconeAPIKey string
	IndexHost      string
	Namespace      string

	TopK    int
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Driver:     DriverNone,
		Collection: "apostila",
		TopK:       4,
		Timeout:    10 * time.Second,
	}
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverNone:
	case DriverQdrant:
		if c.URL == "" {
			return errors.New("qdrant URL is required")
		}
		if c.Collection == "" {
			return errors.New("qdrant collection name is required")
		}
	case DriverPinecone:
		if c.PineconeAPIKey == "" {
			return errors.New("pinecone API key is required")
		}
		if c.IndexHost == "" {
			return errors.New("pinecone index host is required")
		}
	default:
		return fmt.Errorf("unknown grounding driver %q", c.Driver)
	}

	if c.TopK < 1 {
		return errors.New("top k must be at least 1")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
