package twofactor

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage is an in-process Storage for tests and local development.
type MemoryStorage struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{configs: make(map[string]*Config)}
}

func (s *MemoryStorage) Get(_ context.Context, userID string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConfig(cfg), nil
}

func (s *MemoryStorage) Save(_ context.Context, userID string, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[userID] = cloneConfig(cfg)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.configs, userID)
	return nil
}

// cloneConfig prevents callers from mutating stored state through shared
// slices.
func cloneConfig(cfg *Config) *Config {
	cp := *cfg
	cp.BackupCodeHashes = slices.Clone(cfg.BackupCodeHashes)
	if cfg.EnabledAt != nil {
		at := *cfg.EnabledAt
		cp.EnabledAt = &at
	}
	return &cp
}
