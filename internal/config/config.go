// Package config loads VoidRed's settings: built-in defaults, then an
// optional YAML file, then VOIDRED_* environment variables (a .env file in
// the working directory is honoured).
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/voidred/internal/game"
)

type Config struct {
	Catalog   string      `yaml:"catalog"` // empty = embedded catalog
	Seed      int64       `yaml:"seed"`    // 0 = clock seed
	Rules     game.Rules  `yaml:"rules"`
	Pacing    game.Pacing `yaml:"pacing"`
	Headless  bool        `yaml:"headless"`
	Server    Server      `yaml:"server"`
	LogLevel  string      `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"` // console | json
}

type Server struct {
	Addr         string   `yaml:"addr"`          // TCP game host
	WebAddr      string   `yaml:"web_addr"`      // HTTP + websocket bridge
	AllowedHosts []string `yaml:"allowed_hosts"` // extra hosts the bridge may dial
	RateLimit    float64  `yaml:"rate_limit"`
	RateBurst    int      `yaml:"rate_burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rules:  game.DefaultRules(),
		Pacing: game.DefaultPacing(),
		Server: Server{
			Addr:      ":7777",
			WebAddr:   ":8080",
			RateLimit: 5,
			RateBurst: 10,
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config YAML: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VOIDRED_CATALOG"); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv("VOIDRED_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("VOIDRED_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("VOIDRED_SCORING"); v != "" {
		c.Rules.Scoring = v
	}
	if v := os.Getenv("VOIDRED_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VOIDRED_HEADLESS: %w", err)
		}
		c.Headless = headless
	}
	if v := os.Getenv("VOIDRED_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VOIDRED_WEB_ADDR"); v != "" {
		c.Server.WebAddr = v
	}
	if v := os.Getenv("VOIDRED_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("VOIDRED_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate checks the rules, pacing and logging settings.
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := c.Pacing.Validate(); err != nil {
		return fmt.Errorf("pacing: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server rate limits must not be negative")
	}
	return nil
}

// EffectivePacing returns the configured delays, or none when headless.
func (c Config) EffectivePacing() game.Pacing {
	if c.Headless {
		return game.Pacing{}
	}
	return c.Pacing
}

// SetupLogging configures the global zerolog logger to write to w.
func (c Config) SetupLogging(w io.Writer) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
