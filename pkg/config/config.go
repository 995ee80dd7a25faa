package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig                 `yaml:"app"`
	Server       ServerConfig              `yaml:"server"`
	Gateways     map[string]GatewayConfig  `yaml:"gateways"`
	Providers    map[string]ProviderConfig `yaml:"providers"`
	Database     DatabaseConfig            `yaml:"database"`
	Checkpoint   CheckpointConfig          `yaml:"checkpoint"`
	Speech       SpeechConfig              `yaml:"speech"`
	Prompts      PromptsConfig             `yaml:"prompts"`
	Confirmation ConfirmationConfig        `yaml:"confirmation"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	DataDir string `yaml:"data_dir"`
}

type ServerConfig struct {
	Port    int  `yaml:"port"`
	Enabled bool `yaml:"enabled"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
	Seed bool   `yaml:"seed"`
}

type CheckpointConfig struct {
	Type string `yaml:"type"` // sqlite or memory
	Path string `yaml:"path"`
}

type SpeechConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Voice   string `yaml:"voice"`
}

type PromptsConfig struct {
	Dir string `yaml:"dir"`
}

type ConfirmationConfig struct {
	// TTLMinutes expires suspended confirmations through the deny path.
	// Zero disables expiry entirely.
	TTLMinutes int `yaml:"ttl_minutes"`
}

func LoadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "movi"
	}
	if c.App.DataDir == "" {
		c.App.DataDir = "data"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Database.Path == "" {
		c.Database.Path = "moveinsync.db"
	}
	if c.Checkpoint.Type == "" {
		c.Checkpoint.Type = "sqlite"
	}
	if c.Checkpoint.Path == "" {
		c.Checkpoint.Path = "threads.db"
	}
	if c.Prompts.Dir == "" {
		c.Prompts.Dir = "./prompts"
	}
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
