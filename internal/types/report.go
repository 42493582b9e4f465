package types

// Report types are the rendered form of resolver results. They carry plain
// strings so writers never need the core model.

type ReleaseRef struct {
	Key         string `yaml:"key" json:"key"`
	Version     string `yaml:"version" json:"version"`
	Display     string `yaml:"display,omitempty" json:"display,omitempty"`
	DownloadURL string `yaml:"download_url,omitempty" json:"download_url,omitempty"`
}

type ExtensionUpdateEntry struct {
	Release      ReleaseRef   `yaml:"release" json:"release"`
	Status       UpdateStatus `yaml:"status" json:"status"`
	Dependencies []ReleaseRef `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

type HostUpgradeEntry struct {
	Version      string       `yaml:"version" json:"version"`
	Product      ProductLine  `yaml:"product" json:"product"`
	Date         string       `yaml:"date,omitempty" json:"date,omitempty"`
	HasWarnings  bool         `yaml:"has_warnings" json:"has_warnings"`
	Compatible   []string     `yaml:"compatible,omitempty" json:"compatible,omitempty"`
	Incompatible []string     `yaml:"incompatible,omitempty" json:"incompatible,omitempty"`
	ToUpgrade    []ReleaseRef `yaml:"to_upgrade,omitempty" json:"to_upgrade,omitempty"`
}

type Report struct {
	Query       string                 `yaml:"query" json:"query"`
	HostVersion string                 `yaml:"host_version" json:"host_version"`
	Product     ProductLine            `yaml:"product" json:"product"`
	Extensions  []ExtensionUpdateEntry `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Releases    []ReleaseRef           `yaml:"releases,omitempty" json:"releases,omitempty"`
	HostUpdates []HostUpgradeEntry     `yaml:"host_updates,omitempty" json:"host_updates,omitempty"`
	Keys        []string               `yaml:"keys,omitempty" json:"keys,omitempty"`
	Versions    []string               `yaml:"versions,omitempty" json:"versions,omitempty"`
}
