package slot

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Option is a functional option for configuring a slot driver.
type Option func(*slotConfig)

type slotConfig struct {
	path        string
	db          *gorm.DB
	redisClient *redis.Client
	redisPrefix string
}

// WithPath sets the sqlite database file or the directory of the file driver.
func WithPath(path string) Option {
	return func(c *slotConfig) {
		c.path = path
	}
}

// WithGormDB reuses an already opened gorm connection for the sqlite driver.
func WithGormDB(db *gorm.DB) Option {
	return func(c *slotConfig) {
		c.db = db
	}
}

// WithRedisClient sets the client used by the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *slotConfig) {
		c.redisClient = client
	}
}

// WithRedisPrefix namespaces redis keys.
func WithRedisPrefix(prefix string) Option {
	return func(c *slotConfig) {
		c.redisPrefix = prefix
	}
}
