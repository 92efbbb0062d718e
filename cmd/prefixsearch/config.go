package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration. Flags override it.
type fileConfig struct {
	ChunkSize int    `yaml:"chunk_size"`
	BlockSize int    `yaml:"block_size"`
	Verbose   bool   `yaml:"verbose"`
	TempDir   string `yaml:"temp_dir"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ChunkSize < 0 || cfg.BlockSize < 0 {
		return cfg, fmt.Errorf("chunk_size and block_size must not be negative")
	}
	return cfg, nil
}
