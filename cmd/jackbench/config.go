// config.go - Configuration management for the lottery benchmark
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the benchmark configuration
type Config struct {
	// Scheme settings
	DomainSize int      `json:"domain_size"`
	K          uint64   `json:"k"`
	Users      int      `json:"users"`
	Rounds     int      `json:"rounds"`
	Schemes    []string `json:"schemes"`

	// Logging
	LogLevel string `json:"log_level"`

	// Performance
	MaxConcurrency int `json:"max_concurrency"`

	// Output
	BoardPath string `json:"board_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DomainSize:     1024,
		K:              512,
		Users:          32,
		Rounds:         16,
		Schemes:        []string{"jack", "jack-pre", "bls-h"},
		LogLevel:       "info",
		MaxConcurrency: 4,
		BoardPath:      "",
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DomainSize < 2 || c.DomainSize&(c.DomainSize-1) != 0 {
		return fmt.Errorf("domain_size must be a power of two >= 2")
	}
	if c.K < 2 {
		return fmt.Errorf("k must be at least 2")
	}
	if c.Users <= 0 {
		return fmt.Errorf("users must be positive")
	}
	if c.Rounds <= 0 || c.Rounds > c.DomainSize-1 {
		return fmt.Errorf("rounds must be in [1, domain_size-1]")
	}
	if len(c.Schemes) == 0 {
		return fmt.Errorf("at least one scheme must be selected")
	}
	for _, s := range c.Schemes {
		switch s {
		case "jack", "jack-pre", "bls-h":
		default:
			return fmt.Errorf("unknown scheme %q", s)
		}
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	return nil
}
