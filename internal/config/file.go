package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Render returns cfg as YAML in the layout of config.yaml.
func Render(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration to path on fs, creating
// parent directories as needed. An existing file is never overwritten.
func WriteDefault(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("config file already exists: %s: %w", path, os.ErrExist)
	}

	return Save(fs, path, Default())
}

// Save writes cfg to path on fs, creating parent directories as needed and
// replacing any existing file.
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := Render(cfg)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
