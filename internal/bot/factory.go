package bot

import (
	"fmt"

	"coinche/internal/bot/brain"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBot{}, nil
	case BotLevelGood:
		return &GoodBot{Memory: brain.NewMemory()}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
