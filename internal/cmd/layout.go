package cmd

import (
	"fmt"

	"github.com/Alia5/keyscan/keymap"
	"github.com/Alia5/keyscan/scan"
)

// Layout is the scanner configuration shared by every command that builds a
// scanner.
type Layout struct {
	MaxKeys        int            `help:"Number of inputs (1-64); selects the key code width" default:"11" env:"KEYSCAN_MAX_KEYS"`
	BufferSize     int            `help:"Event buffer capacity, a power of two" default:"8" env:"KEYSCAN_BUFFER_SIZE"`
	LongPress      bool           `help:"Enable long press detection" default:"true" negatable:"" env:"KEYSCAN_LONG_PRESS"`
	Shift          []string       `help:"Keys whose short press toggles the shift modifier" default:"fun" env:"KEYSCAN_SHIFT"`
	SingleShot     []string       `help:"Keys that emit their inverted code once on long press instead of repeating" default:"up,dn" env:"KEYSCAN_SINGLE_SHOT"`
	PressDelay     int            `help:"Stable ticks before the first long press" default:"40" env:"KEYSCAN_PRESS_DELAY"`
	RepeatInterval int            `help:"Stable ticks between long press repeats" default:"5" env:"KEYSCAN_REPEAT_INTERVAL"`
	Keys           map[string]int `help:"Key name to bit position assignments, replacing the default layout" env:"KEYSCAN_KEYS"`
}

// Build resolves the key names and returns the scanner configuration.
func (l *Layout) Build() (scan.Config, *keymap.Layout, error) {
	keys := l.Keys
	if len(keys) == 0 {
		keys = keymap.Default
	}
	km, err := keymap.New(keys)
	if err != nil {
		return scan.Config{}, nil, fmt.Errorf("key layout: %w", err)
	}
	shift, err := km.ParseList(l.Shift)
	if err != nil {
		return scan.Config{}, nil, fmt.Errorf("shift keys: %w", err)
	}
	single, err := km.ParseList(l.SingleShot)
	if err != nil {
		return scan.Config{}, nil, fmt.Errorf("single shot keys: %w", err)
	}
	cfg := scan.Config{
		MaxKeys:        l.MaxKeys,
		BufferSize:     l.BufferSize,
		LongPress:      l.LongPress,
		ShiftMask:      shift,
		SingleShotMask: single,
		PressDelay:     l.PressDelay,
		RepeatInterval: l.RepeatInterval,
	}
	if err := cfg.Validate(); err != nil {
		return scan.Config{}, nil, err
	}
	return cfg, km, nil
}
