package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// OpenAIConfig holds the completion and embedding provider settings.
// The two completion models map to the report analysis tiers.
type OpenAIConfig struct {
	APIKey     string `json:"api_key"`
	ChatURL    string `json:"chat_url"`
	LargeModel string `json:"large_model"` // deep analysis tier
	SmallModel string `json:"small_model"` // basic analysis tier, also the fallback
	Embedding  struct {
		URL       string `json:"url"`
		Model     string `json:"model"`
		Dimension int    `json:"dimension"`
	} `json:"embedding"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Subpath   string `json:"subpath"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	OpenAI OpenAIConfig `json:"openai"`
	Qdrant struct {
		URL        string `json:"url"`
		Collection string `json:"collection"`
		APIKey     string `json:"api_key"`
	} `json:"qdrant"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		if c.OpenAI.Embedding.Dimension == 0 {
			c.OpenAI.Embedding.Dimension = 1536
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
