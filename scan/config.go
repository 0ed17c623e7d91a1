package scan

import (
	"errors"
	"fmt"
)

var (
	ErrMaxKeys    = errors.New("key count must be between 1 and 64")
	ErrBufferSize = errors.New("buffer size must be a power of two between 1 and 256")
	ErrMask       = errors.New("invalid key mask")
	ErrTiming     = errors.New("long press timing must be between 1 and 256 ticks")
)

// Config holds the compile-time constants of a scanner. It is not mutable once
// a Scanner has been built from it.
type Config struct {
	// MaxKeys is the number of inputs (1-64). It selects the Code width.
	MaxKeys int
	// BufferSize is the event buffer capacity, a power of two.
	BufferSize int
	// LongPress enables long press detection.
	LongPress bool
	// ShiftMask marks keys whose release toggles the shift bit.
	ShiftMask Code
	// SingleShotMask marks keys that emit an inverted code once on long
	// press instead of repeating.
	SingleShotMask Code
	// PressDelay is the number of stable ticks before the first long press.
	PressDelay int
	// RepeatInterval is the number of stable ticks between repeats.
	RepeatInterval int
}

// DefaultConfig returns the configuration of the nine key front panel the
// driver was first written for.
func DefaultConfig() Config {
	return Config{
		MaxKeys:        11,
		BufferSize:     8,
		LongPress:      true,
		ShiftMask:      0x0100,
		SingleShotMask: 0x0001 | 0x0002,
		PressDelay:     40,
		RepeatInterval: 5,
	}
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if c.MaxKeys < 1 || c.MaxKeys > MaxKeys {
		return fmt.Errorf("max keys %d: %w", c.MaxKeys, ErrMaxKeys)
	}
	if c.BufferSize < 1 || c.BufferSize > 256 || c.BufferSize&(c.BufferSize-1) != 0 {
		return fmt.Errorf("buffer size %d: %w", c.BufferSize, ErrBufferSize)
	}
	keys := keyMask(c.MaxKeys)
	if c.ShiftMask&^keys != 0 {
		return fmt.Errorf("shift mask %#x beyond %d keys: %w", uint64(c.ShiftMask), c.MaxKeys, ErrMask)
	}
	if c.SingleShotMask&^keys != 0 {
		return fmt.Errorf("single shot mask %#x beyond %d keys: %w", uint64(c.SingleShotMask), c.MaxKeys, ErrMask)
	}
	// the complement of a full-width level is None
	if c.LongPress && c.SingleShotMask != 0 && Width(c.MaxKeys) == c.MaxKeys {
		if m := c.Mask(); (c.SingleShotMask|c.ShiftMask)&m == m {
			return fmt.Errorf("single shot and shift masks %#x cover the code width: %w", uint64(c.SingleShotMask|c.ShiftMask), ErrMask)
		}
	}
	if c.LongPress {
		if c.PressDelay < 1 || c.PressDelay > 256 {
			return fmt.Errorf("press delay %d: %w", c.PressDelay, ErrTiming)
		}
		if c.RepeatInterval < 1 || c.RepeatInterval > 256 {
			return fmt.Errorf("repeat interval %d: %w", c.RepeatInterval, ErrTiming)
		}
	}
	return nil
}

// Width returns the Code width in bits for this configuration.
func (c Config) Width() int {
	return Width(c.MaxKeys)
}

// Mask returns all ones over the Code width. Inverted codes are confined to it.
func (c Config) Mask() Code {
	return widthMask(c.Width())
}
