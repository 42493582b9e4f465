package types

// CatalogFile is the on-disk catalog consumed by the loader. Version
// expressions are kept verbatim; the core resolves them against the host
// releases of each product line.
type CatalogFile struct {
	Format     string            `yaml:"format"`
	Host       HostRecord        `yaml:"host"`
	Extensions []ExtensionRecord `yaml:"extensions"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

type HostRecord struct {
	Key      string                        `yaml:"key"`
	Releases map[ProductLine][]HostRelease `yaml:"releases"`
	Dev      map[ProductLine]string        `yaml:"dev,omitempty"`
}

type HostRelease struct {
	Version     string `yaml:"version"`
	Display     string `yaml:"display,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Archived    bool   `yaml:"archived,omitempty"`
	DownloadURL string `yaml:"download_url,omitempty"`
	Changelog   string `yaml:"changelog_url,omitempty"`
}

type ExtensionRecord struct {
	Key      string             `yaml:"key"`
	Kind     ArtifactKind       `yaml:"kind,omitempty"`
	Name     string             `yaml:"name,omitempty"`
	Category string             `yaml:"category,omitempty"`
	Releases []ExtensionRelease `yaml:"releases"`
	Dev      *ExtensionRelease  `yaml:"dev,omitempty"`
}

type ExtensionRelease struct {
	Version      string                 `yaml:"version"`
	Display      string                 `yaml:"display,omitempty"`
	Date         string                 `yaml:"date,omitempty"`
	Public       *bool                  `yaml:"public,omitempty"`
	Archived     bool                   `yaml:"archived,omitempty"`
	Description  string                 `yaml:"description,omitempty"`
	DownloadURL  string                 `yaml:"download_url,omitempty"`
	Changelog    string                 `yaml:"changelog_url,omitempty"`
	Requires     []string               `yaml:"requires,omitempty"`
	HostVersions map[ProductLine]string `yaml:"host_versions,omitempty"`
}

// InstalledFile describes the running host and the extensions installed on it.
type InstalledFile struct {
	HostVersion string            `yaml:"host_version"`
	Product     ProductLine       `yaml:"product"`
	Extensions  map[string]string `yaml:"extensions,omitempty"`
}
