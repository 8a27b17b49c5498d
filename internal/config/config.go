// Package config reads the optional ry.yaml host configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "ry.yaml"

// Config holds host-side settings. Everything is optional; the zero
// value is a valid configuration.
type Config struct {
	// ModulePaths are extra directories appended to the module search path.
	ModulePaths []string `yaml:"module_paths"`
	// HistoryFile overrides the REPL history location (~/.ry_history).
	HistoryFile string `yaml:"history_file"`
}

// Load reads a configuration file. A missing file is not an error: the
// zero configuration is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromDir loads the configuration file from the given directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}
