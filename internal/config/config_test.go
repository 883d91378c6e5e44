package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadGameConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte(`{"target_score": 1001, "bot_min_delay_seconds": 5, "voice_issuer": "iss"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := ReadGameConfig(path)
	if err != nil {
		t.Fatalf("ReadGameConfig: %v", err)
	}
	if c.TargetScore != 1001 || c.LogSize != defaultLogSize || c.VoiceIssuer != "iss" {
		t.Fatalf("config = %+v", c)
	}
	if c.BotMinDelaySeconds != 5 || c.BotMaxDelaySeconds != 5 {
		t.Fatalf("bot delays = %d..%d, want 5..5", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
}

func TestReadGameConfigErrors(t *testing.T) {
	if _, err := ReadGameConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0o600)
	if _, err := ReadGameConfig(path); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	if c.TargetScore != 1501 || c.LogSize != 80 || c.BotMinDelaySeconds > c.BotMaxDelaySeconds {
		t.Fatalf("defaults = %+v", c)
	}
}

func TestLoadServerConfigFromEnv(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("ADDR", ":9000")
	t.Setenv("AUTO_MIGRATE", "no")
	t.Setenv("ORIGIN_ALLOWLIST", " http://a.test , ,http://b.test")
	t.Setenv("DEV_LOG", "1")
	t.Setenv("LOG_LEVEL", "")

	c := LoadServerConfig()
	if c.Addr != ":9000" || c.AutoMigrate || !c.DevLog || c.LogLevel != "info" {
		t.Fatalf("config = %+v", c)
	}
	if len(c.OriginAllowlist) != 2 || c.OriginAllowlist[1] != "http://b.test" {
		t.Fatalf("allowlist = %q", c.OriginAllowlist)
	}
}

func TestAtoiDefault(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 7},
		{"12", 12},
		{" 3 ", 3},
		{"x", 7},
	}
	for _, tt := range tests {
		if got := AtoiDefault(tt.in, 7); got != tt.want {
			t.Fatalf("AtoiDefault(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
