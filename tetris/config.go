package tetris

import (
	"fmt"
	"time"
)

// every archetype has to fit at the spawn point.
const (
	minWidth  = 8
	minHeight = 4
)

type Config struct {
	Width, Height int
	// Speed is the time between two ticks.
	Speed time.Duration
	// Seed feeds the piece generator. Zero picks a random seed.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		Width:  10,
		Height: 20,
		Speed:  300 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Width < minWidth || c.Height < minHeight:
		return fmt.Errorf("%w: grid must be at least %dx%d, got %dx%d", ErrInvalidConfig, minWidth, minHeight, c.Width, c.Height)
	case c.Speed <= 0:
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, c.Speed)
	}
	return nil
}
