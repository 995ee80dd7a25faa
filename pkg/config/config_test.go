package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg := LoadConfig(writeConfig(t, "app:\n  name: test\n"))

	if cfg.Server.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "moveinsync.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Checkpoint.Type != "sqlite" {
		t.Errorf("Expected default checkpoint type sqlite, got %s", cfg.Checkpoint.Type)
	}
	if cfg.Prompts.Dir != "./prompts" {
		t.Errorf("Expected default prompts dir, got %s", cfg.Prompts.Dir)
	}
}

func TestGetDefaultProvider(t *testing.T) {
	content := `
providers:
  openai:
    api_key: sk-test
    model: gpt-4o-mini
    enabled: false
  googleai:
    api_key: g-test
    model: gemini-2.0-flash
    enabled: true
`
	cfg := LoadConfig(writeConfig(t, content))

	name, p := cfg.GetDefaultProvider()
	if name != "googleai" {
		t.Errorf("Expected googleai, got %s", name)
	}
	if p.Model != "gemini-2.0-flash" {
		t.Errorf("Unexpected model: %s", p.Model)
	}
}

func TestGetTelegramConfig(t *testing.T) {
	// Enabled without a token is not usable.
	cfg := LoadConfig(writeConfig(t, "gateways:\n  telegram:\n    enabled: true\n"))
	if _, ok := cfg.GetTelegramConfig(); ok {
		t.Error("Telegram config without token should not be returned")
	}

	cfg = LoadConfig(writeConfig(t, "gateways:\n  telegram:\n    enabled: true\n    token: abc123\n"))
	tg, ok := cfg.GetTelegramConfig()
	if !ok || tg.Token != "abc123" {
		t.Errorf("Expected enabled telegram config, got ok=%v token=%q", ok, tg.Token)
	}
}
