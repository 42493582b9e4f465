package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"update-center/internal/types"
)

// CatalogFormatV1 is the only catalog format understood by the loader.
const CatalogFormatV1 = "update-center/v1"

var validExtensionKinds = map[types.ArtifactKind]struct{}{
	"":                          {},
	types.ArtifactKindExtension: {},
	types.ArtifactKindScanner:   {},
}

type CatalogValidator struct{}

func NewCatalogValidator() CatalogValidator {
	return CatalogValidator{}
}

// ValidateCatalog checks the structure of a decoded catalog before any graph
// is built. Cross-references are left to the builder.
func (v CatalogValidator) ValidateCatalog(ctx context.Context, file types.CatalogFile) error {
	assert.NotEmpty(ctx, file.Format, "format must be set")
	assert.NotEmpty(ctx, file.Host.Key, "host.key must be set")
	if file.Format != CatalogFormatV1 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported catalog format: %s", file.Format))
	}
	if len(file.Host.Releases) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("host.releases must not be empty")
	}
	for product, releases := range file.Host.Releases {
		if !product.Valid() {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown product line %q in host releases", product))
		}
		for _, release := range releases {
			if strings.TrimSpace(release.Version) == "" {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("host release on %s missing version", product))
			}
		}
	}

	seen := map[string]struct{}{file.Host.Key: {}}
	for _, record := range file.Extensions {
		if err := validateExtension(record); err != nil {
			return err
		}
		if _, ok := seen[record.Key]; ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("duplicate artifact key: %s", record.Key))
		}
		seen[record.Key] = struct{}{}
	}
	log.Ctx(ctx).Debug().Int("extensions", len(file.Extensions)).Msg("catalog validated")
	return nil
}

func validateExtension(record types.ExtensionRecord) error {
	if strings.TrimSpace(record.Key) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("extension key must not be empty")
	}
	if _, ok := validExtensionKinds[record.Kind]; !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("extension %s has invalid kind %s", record.Key, record.Kind))
	}
	if len(record.Releases) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("extension %s has no releases", record.Key))
	}
	releases := record.Releases
	if record.Dev != nil {
		releases = append(append([]types.ExtensionRelease(nil), releases...), *record.Dev)
	}
	for _, release := range releases {
		if strings.TrimSpace(release.Version) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("extension %s has a release without version", record.Key))
		}
		if record.Kind != types.ArtifactKindScanner && len(release.HostVersions) == 0 {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("extension %s %s declares no host versions", record.Key, release.Version))
		}
		if _, err := ParseRequirements(release.Requires, record.Key+":"+release.Version); err != nil {
			return err
		}
	}
	return nil
}
