package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragent/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFileName is the settings file inside the config directory.
const ConfigFileName = "config.toml"

// ConfigStore is a TOML file read into dot-notation keys: the table
// [llm] provider = "x" reads as "llm.provider". Every Set rewrites the
// file with nested tables.
type ConfigStore struct {
	*kv.Values

	// writeMu serialises Set and Save so the file matches the map.
	writeMu sync.Mutex
	path    string
}

// NewConfigStore opens configDir/config.toml, creating the directory.
// An empty configDir means ~/.ragent.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(home, ".ragent")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{Values: kv.New(), path: filepath.Join(configDir, ConfigFileName)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value and rewrites the file. The previous value is
// restored when the write fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev, existed := s.Put(key, value)
	if err := s.write(); err != nil {
		if existed {
			s.Put(key, prev)
		} else {
			s.Delete(key)
		}
		return err
	}
	return nil
}

// Save rewrites the file from the current values.
func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write()
}

// Load replaces the values with the file's contents. A missing file
// loads as empty.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	var nested map[string]any
	if err := toml.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	s.Replace(kv.Flatten(nested))
	return nil
}

// Path returns the settings file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// write replaces the file atomically with owner-only permissions.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(kv.Nest(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
