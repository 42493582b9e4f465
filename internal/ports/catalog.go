package ports

import "update-center/internal/types"

// CatalogSourcePort loads the update-center catalog: host releases per
// product line and every extension with its releases.
type CatalogSourcePort interface {
	LoadCatalog(path string) (types.CatalogFile, error)
}

// InstalledStatePort loads the description of a running host.
type InstalledStatePort interface {
	LoadInstalled(path string) (types.InstalledFile, error)
}
