// Package file provides the TOML-backed settings store. Configuration
// lives in a single file inside the notebook config directory.
package file

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// configFileName is the settings file inside the config directory.
const configFileName = "config.toml"

// ConfigStore loads and saves notebook settings as TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a store rooted at configDir. If configDir is
// empty, defaults to ~/.notebook.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".notebook")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, configFileName),
	}, nil
}

// Path returns the settings file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads the settings file. A missing file yields zero-value
// settings, not an error: every field has a workable default.
func (s *ConfigStore) Load() (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings domain.Settings

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &settings, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save writes the settings file with owner-only permissions, since it may
// hold API keys.
func (s *ConfigStore) Save(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0600)
}
