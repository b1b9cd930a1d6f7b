// Package config loads server and generator settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the settings for `figure3d serve`.
type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	ModelsDir string `env:"FIGURE_MODELS_DIR" envDefault:"models"`
	PublicDir string `env:"FIGURE_PUBLIC_DIR" envDefault:"public"`
	LogLevel  string `env:"FIGURE_LOG_LEVEL" envDefault:"info"`

	Gemini Gemini
}

// Gemini configures the prompt-to-recipe generator. An empty APIKey selects the
// keyword generator.
type Gemini struct {
	APIKey          string  `env:"GEMINI_API_KEY"`
	Model           string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-lite"`
	Temperature     float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.7"`
	MaxOutputTokens int32   `env:"GEMINI_MAX_OUTPUT_TOKENS" envDefault:"2048"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads dotenvPath (missing file is fine) into the environment, then
// parses Config. Variables already set in the environment win.
func Load(dotenvPath string) (Config, error) {
	var cfg Config
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
