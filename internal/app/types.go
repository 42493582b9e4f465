package app

import "update-center/internal/types"

// QueryRequest locates the catalog and describes the running host. Explicit
// HostVersion and Product values override the installed-state file.
type QueryRequest struct {
	CatalogPath     string
	InstalledPath   string
	HostVersion     string
	Product         types.ProductLine
	Extensions      map[string]string
	IncludeArchived bool
}

type InstallSetRequest struct {
	QueryRequest
	Key        string
	MinVersion string
}

type RemovableRequest struct {
	QueryRequest
	Key string
}

type ResolveRangeRequest struct {
	CatalogPath string
	Product     types.ProductLine
	Expression  string
	ArtifactKey string
}

type ValidateRequest struct {
	CatalogPath string
	Strict      bool
}

type ValidateResult struct {
	HostKey   string
	Artifacts int
	Releases  int
	Warnings  []string
}

type OutputRequest struct {
	Path   string
	Format types.ReportFormat
}
