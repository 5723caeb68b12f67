package fixtures

import "hazboun-backend/domain/config"

// StaticCatalog serves a fixed domain catalog.
type StaticCatalog struct {
	Config *config.DomainConfig
}

// Catalog returns a provider for the built-in catalog.
func Catalog() StaticCatalog {
	return StaticCatalog{Config: config.DefaultDomainConfig()}
}

// Current implements ports.CatalogProvider.
func (c StaticCatalog) Current() *config.DomainConfig { return c.Config }
