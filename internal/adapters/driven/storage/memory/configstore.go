package memory

import (
	"github.com/custodia-labs/ragent/internal/adapters/driven/config/kv"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in process. Save and Load are no-ops.
type ConfigStore struct {
	*kv.Values
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{Values: kv.New()}
}

// Set stores value.
func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return nil
}

func (s *ConfigStore) Save() error  { return nil }
func (s *ConfigStore) Load() error  { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }
