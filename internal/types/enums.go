package types

// ProductLine is one of the host's parallel release tracks. The string value
// is the namespace suffix used in catalogs and compatibility declarations.
type ProductLine string

const (
	// ProductLineLegacy is the combined line used before the split.
	ProductLineLegacy    ProductLine = "sqVersions"
	ProductLineCommunity ProductLine = "sqcb"
	ProductLineServer    ProductLine = "sqs"
)

// ProductLines lists every known product line in declaration order.
var ProductLines = []ProductLine{
	ProductLineLegacy,
	ProductLineCommunity,
	ProductLineServer,
}

func (p ProductLine) Valid() bool {
	switch p {
	case ProductLineLegacy, ProductLineCommunity, ProductLineServer:
		return true
	default:
		return false
	}
}

type ArtifactKind string

const (
	ArtifactKindHost      ArtifactKind = "host"
	ArtifactKindExtension ArtifactKind = "extension"
	ArtifactKindScanner   ArtifactKind = "scanner"
)

// UpdateStatus classifies an extension release relative to a host version.
type UpdateStatus string

const (
	UpdateStatusCompatible                     UpdateStatus = "COMPATIBLE"
	UpdateStatusIncompatible                   UpdateStatus = "INCOMPATIBLE"
	UpdateStatusRequiresHostUpgrade            UpdateStatus = "REQUIRES_HOST_UPGRADE"
	UpdateStatusDependenciesRequireHostUpgrade UpdateStatus = "DEPENDENCIES_REQUIRE_HOST_UPGRADE"
)

type ReportFormat string

const (
	ReportFormatYAML ReportFormat = "yaml"
	ReportFormatJSON ReportFormat = "json"
)

// ReleaseVisibility carries the publication flags a release policy decides on.
type ReleaseVisibility struct {
	Public   bool
	Archived bool
	Dev      bool
}
