package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig tunes tables and bots. Zero fields fall back to defaults.
type GameConfig struct {
	TargetScore int `json:"target_score"`
	LogSize     int `json:"log_size"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human table.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	BotMinDelaySeconds      int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int `json:"bot_max_delay_seconds"`

	VoiceIssuer string `json:"voice_issuer"`
	VoiceDomain string `json:"voice_domain"`
	VoiceSecret string `json:"voice_secret"`
}

const (
	defaultTargetScore      = 1501
	defaultLogSize          = 80
	defaultBotAutoFillDelay = 10
	defaultBotMinDelay      = 1
	defaultBotMaxDelay      = 3
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
// Later calls return the result of the first one.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ReadGameConfig parses a config file without touching the global one.
func ReadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

// GetGameConfig returns the global game configuration, or defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return cfg
}

// Defaults is the configuration used when no file is given.
func Defaults() *GameConfig {
	c := &GameConfig{}
	c.applyDefaults()
	return c
}

func (c *GameConfig) applyDefaults() {
	if c.TargetScore <= 0 {
		c.TargetScore = defaultTargetScore
	}
	if c.LogSize <= 0 {
		c.LogSize = defaultLogSize
	}
	if c.BotAutoFillDelaySeconds <= 0 {
		c.BotAutoFillDelaySeconds = defaultBotAutoFillDelay
	}
	if c.BotMinDelaySeconds <= 0 {
		c.BotMinDelaySeconds = defaultBotMinDelay
	}
	if c.BotMaxDelaySeconds <= 0 {
		c.BotMaxDelaySeconds = defaultBotMaxDelay
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = c.BotMinDelaySeconds
	}
}
