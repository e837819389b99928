package config

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Manager keeps the active configuration and the sources it came from.
type Manager struct {
	Service Service
	current atomic.Pointer[Config]
	loadMu  sync.Mutex
}

func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	config, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(config)
	return config, nil
}

// Get returns the active configuration, nil before the first Load.
func (m *Manager) Get() *Config {
	return m.current.Load()
}
