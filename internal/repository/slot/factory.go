package slot

import "fmt"

// SlotType selects a storage driver.
type SlotType string

const (
	SlotTypeMemory SlotType = "memory"
	SlotTypeFile   SlotType = "file"
	SlotTypeSQLite SlotType = "sqlite"
	SlotTypeRedis  SlotType = "redis"
)

// ParseSlotType maps a configuration string to a driver, defaulting to sqlite.
func ParseSlotType(s string) (SlotType, error) {
	switch SlotType(s) {
	case "", SlotTypeSQLite:
		return SlotTypeSQLite, nil
	case SlotTypeMemory, SlotTypeFile, SlotTypeRedis:
		return SlotType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSlotType, s)
	}
}

// NewSlot creates a Slot for the given driver type.
// sqlite needs WithPath or WithGormDB, file needs WithPath, redis needs WithRedisClient.
func NewSlot(slotType SlotType, opts ...Option) (Slot, error) {
	config := &slotConfig{}
	for _, opt := range opts {
		opt(config)
	}

	switch slotType {
	case SlotTypeMemory:
		return NewMemorySlot(), nil

	case SlotTypeFile:
		if config.path == "" {
			return nil, fmt.Errorf("%w: file driver requires a directory", ErrInvalidConfig)
		}
		return NewFileSlot(config.path), nil

	case SlotTypeSQLite:
		db := config.db
		if db == nil {
			if config.path == "" {
				return nil, fmt.Errorf("%w: sqlite driver requires a path", ErrInvalidConfig)
			}
			var err error
			db, err = OpenSQLite(config.path)
			if err != nil {
				return nil, err
			}
		}
		return NewGormSlot(db)

	case SlotTypeRedis:
		if config.redisClient == nil {
			return nil, fmt.Errorf("%w: redis driver requires a client", ErrInvalidConfig)
		}
		return NewRedisSlot(config.redisClient, config.redisPrefix), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlotType, slotType)
	}
}
