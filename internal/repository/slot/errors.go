package slot

import "errors"

var (
	ErrEmpty           = errors.New("slot is empty")
	ErrInvalidConfig   = errors.New("invalid slot configuration")
	ErrInvalidSlotType = errors.New("invalid slot type")
	ErrInvalidKey      = errors.New("invalid slot key")
)
