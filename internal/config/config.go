package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GeminiConfig holds the settings for the hosted Gemini endpoints.
type GeminiConfig struct {
	APIKey string
	Model  string `yaml:"model"`

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string `yaml:"base_url"`
}

// Config is the full runtime configuration.
//
// Env vars win over the optional yaml config file; the file exists so
// deployments can pin the table name, role candidates and limits without
// a wall of env vars.
type Config struct {
	// DatabaseURL is the store connection string. Required: without a store
	// there is nothing to serve.
	DatabaseURL string

	Addr  string `yaml:"addr"`
	Table string `yaml:"table"`

	// FetchLimit bounds the dataset snapshot query.
	FetchLimit int `yaml:"fetch_limit"`

	// SampleSize bounds the data sample embedded into chat prompts.
	SampleSize int `yaml:"sample_size"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`

	Gemini GeminiConfig `yaml:"gemini"`

	// RoleCandidates overrides the per-role physical column candidates
	// (role name -> ordered candidate list).
	RoleCandidates map[string][]string `yaml:"role_candidates"`

	LogMode string `yaml:"log_mode"`
}

// Load reads the optional yaml file named by MOVIEDASH_CONFIG, then applies
// environment variables on top. DATABASE_URL is the only hard requirement.
func Load() (Config, error) {
	cfg := Config{
		Addr:           ":8080",
		FetchLimit:     500,
		SampleSize:     20,
		RequestTimeout: 30 * time.Second,
		LogMode:        "dev",
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
	}

	if path := strings.TrimSpace(os.Getenv("MOVIEDASH_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read MOVIEDASH_CONFIG file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse MOVIEDASH_CONFIG file: %w", err)
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if v := strings.TrimSpace(os.Getenv("MOVIEDASH_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("MOVIEDASH_TABLE")); v != "" {
		cfg.Table = v
	}
	var err error
	if cfg.FetchLimit, err = envInt("MOVIEDASH_FETCH_LIMIT", cfg.FetchLimit); err != nil {
		return Config{}, err
	}
	if cfg.SampleSize, err = envInt("MOVIEDASH_SAMPLE_SIZE", cfg.SampleSize); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = envFloat("AI_RATE_LIMIT_RPS", cfg.RateLimitRPS); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(os.Getenv("MOVIEDASH_LOG_MODE")); v != "" {
		cfg.LogMode = v
	}

	// Absence of the key is not fatal: the assistant degrades to disabled.
	cfg.Gemini.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		cfg.Gemini.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")); v != "" {
		cfg.Gemini.BaseURL = v
	}

	return cfg, nil
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envDuration(varName string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
