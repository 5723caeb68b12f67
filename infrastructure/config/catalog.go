package config

import (
	"fmt"
	"os"
	"sync/atomic"

	domainconfig "hazboun-backend/domain/config"
)

// CatalogProvider holds the domain catalog in force. The catalog is the
// built-in one, optionally overlaid by a YAML file and by the generation
// bound overrides from the environment. It can be reloaded at runtime.
type CatalogProvider struct {
	current     atomic.Pointer[domainconfig.DomainConfig]
	generation  atomic.Uint64
	environment string
	path        string
	minGen      int
	maxGen      int
}

// NewCatalogProvider builds the catalog for cfg.
func NewCatalogProvider(cfg *Config) (*CatalogProvider, error) {
	p := &CatalogProvider{
		environment: cfg.Environment,
		path:        cfg.CatalogFile,
		minGen:      cfg.MinGeneration,
		maxGen:      cfg.MaxGeneration,
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Current returns the catalog in force. Callers must not modify it.
func (p *CatalogProvider) Current() *domainconfig.DomainConfig {
	return p.current.Load()
}

// Generation increases every time a new catalog is installed.
func (p *CatalogProvider) Generation() uint64 {
	return p.generation.Load()
}

// Path is the overlay file, or empty when only the built-in catalog is used.
func (p *CatalogProvider) Path() string {
	return p.path
}

// Reload rebuilds the catalog. On error the current catalog stays in force.
func (p *CatalogProvider) Reload() error {
	next, err := p.build()
	if err != nil {
		return err
	}
	p.current.Store(next)
	p.generation.Add(1)
	return nil
}

func (p *CatalogProvider) build() (*domainconfig.DomainConfig, error) {
	cat := domainconfig.LoadDomainConfig(p.environment)

	if p.path != "" {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p.path, err)
		}
		cat, err = domainconfig.Overlay(cat, data)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p.path, err)
		}
	}

	if p.minGen > 0 {
		cat.MinGeneration = p.minGen
	}
	if p.maxGen > 0 {
		cat.MaxGeneration = p.maxGen
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
