package domain

import (
	"fmt"
	"strings"
)

// Level is the coarse three-step scale used for both priority and stress.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel accepts any casing of low, medium or high.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelHigh:
		return LevelHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Rank orders levels: high 3, medium 2, low 1, unset 0.
func (l Level) Rank() int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether l is one of the three known levels.
func (l Level) IsValid() bool {
	return l.Rank() > 0
}

func (l Level) String() string {
	return string(l)
}
