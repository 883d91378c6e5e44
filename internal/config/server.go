package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig configures the standalone websocket server.
type ServerConfig struct {
	Addr            string
	DatabaseURL     string
	AutoMigrate     bool
	SessionSecret   string
	OriginAllowlist []string
	GameConfigPath  string
	LogLevel        string
	DevLog          bool
	ShutdownSeconds int
}

// LoadServerConfig reads the environment, after loading a .env file if one exists.
func LoadServerConfig() ServerConfig {
	_ = godotenv.Load()
	return ServerConfig{
		Addr:            getenv("ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AutoMigrate:     asBool(getenv("AUTO_MIGRATE", "true")),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		OriginAllowlist: splitList(os.Getenv("ORIGIN_ALLOWLIST")),
		GameConfigPath:  os.Getenv("GAME_CONFIG"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		DevLog:          asBool(os.Getenv("DEV_LOG")),
		ShutdownSeconds: AtoiDefault(os.Getenv("SHUTDOWN_TIMEOUT_SEC"), 10),
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// AtoiDefault parses n, returning def for empty or malformed input.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
