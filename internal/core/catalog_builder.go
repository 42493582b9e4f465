package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"update-center/internal/types"
)

// Catalog is a loaded dependency graph together with the range resolvers
// used to expand its host version expressions.
type Catalog struct {
	Graph  *DependencyGraph
	Ranges map[types.ProductLine]RangeResolver
	// Warnings lists requirements dropped by a lenient build.
	Warnings []string
}

// ResolveForProduct expands expression against the host releases of product.
func (c Catalog) ResolveForProduct(expression string, product types.ProductLine, artifactKey string) ([]Version, error) {
	resolver, ok := c.Ranges[product]
	if !ok {
		resolver = NewRangeResolver(nil)
	}
	return resolver.Resolve(expression, artifactKey)
}

// CatalogBuilder turns a decoded catalog file into a Catalog. A strict
// builder fails on the first broken requirement; a lenient one logs it and
// carries on without the edge.
type CatalogBuilder struct {
	Strict bool
}

func NewCatalogBuilder(strict bool) CatalogBuilder {
	return CatalogBuilder{Strict: strict}
}

func (b CatalogBuilder) Build(ctx context.Context, file types.CatalogFile) (Catalog, error) {
	assert.NotEmpty(ctx, file.Host.Key, "host.key must be set")

	graph := NewDependencyGraph()
	if err := graph.CreateArtifact(file.Host.Key, types.ArtifactKindHost); err != nil {
		return Catalog{}, err
	}
	if err := addHostReleases(graph, file.Host); err != nil {
		return Catalog{}, err
	}

	catalog := Catalog{Graph: graph, Ranges: map[types.ProductLine]RangeResolver{}}
	for _, product := range types.ProductLines {
		var universe []Version
		for _, release := range graph.HostReleases(product, true) {
			universe = append(universe, release.Version)
		}
		catalog.Ranges[product] = NewRangeResolver(universe)
	}

	pending := map[ReleaseID][]string{}
	for _, record := range file.Extensions {
		if err := b.addExtension(catalog, record, pending); err != nil {
			return Catalog{}, err
		}
	}

	ids := make([]ReleaseID, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		release, _ := graph.Release(id)
		source := release.ArtifactKey + ":" + release.Version.Name()
		requirements, err := ParseRequirements(pending[id], source)
		if err != nil {
			return Catalog{}, err
		}
		for _, requirement := range requirements {
			err := graph.AddOutgoingDependency(ctx, id, requirement.Key, requirement.MinVersion)
			if err == nil {
				continue
			}
			if b.Strict || IsDependencyCycle(err) {
				return Catalog{}, err
			}
			log.Ctx(ctx).Warn().Err(err).Str("release", source).Msg("requirement dropped")
			catalog.Warnings = append(catalog.Warnings, err.Error())
		}
	}

	artifacts, releases := graph.Size()
	log.Ctx(ctx).Debug().
		Int("artifacts", artifacts).
		Int("releases", releases).
		Int("warnings", len(catalog.Warnings)).
		Msg("graph built")
	return catalog, nil
}

func addHostReleases(graph *DependencyGraph, host types.HostRecord) error {
	for _, product := range types.ProductLines {
		for _, record := range host.Releases[product] {
			date, err := parseReleaseDate(record.Date)
			if err != nil {
				return err
			}
			if _, err := graph.AddRelease(host.Key, ReleaseInput{
				Version:        record.Version,
				DisplayVersion: record.Display,
				Product:        product,
				Public:         true,
				Archived:       record.Archived,
				Date:           date,
				DownloadURL:    record.DownloadURL,
				ChangelogURL:   record.Changelog,
			}); err != nil {
				return err
			}
		}
		if dev := strings.TrimSpace(host.Dev[product]); dev != "" {
			if _, err := graph.SetDevRelease(host.Key, ReleaseInput{Version: dev, Product: product}); err != nil {
				return err
			}
		}
	}
	for product := range host.Releases {
		if !product.Valid() {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown product line %q in host releases", product))
		}
	}
	return nil
}

func (b CatalogBuilder) addExtension(catalog Catalog, record types.ExtensionRecord, pending map[ReleaseID][]string) error {
	kind := record.Kind
	if kind == "" {
		kind = types.ArtifactKindExtension
	}
	if kind == types.ArtifactKindHost {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("extension %s cannot be declared as host", record.Key))
	}
	graph := catalog.Graph
	if err := graph.CreateArtifact(record.Key, kind); err != nil {
		return err
	}
	if err := graph.DescribeArtifact(record.Key, record.Name, record.Category); err != nil {
		return err
	}

	add := func(release types.ExtensionRelease, dev bool) error {
		input, err := extensionInput(catalog, record.Key, kind, release)
		if err != nil {
			return err
		}
		var id ReleaseID
		if dev {
			id, err = graph.SetDevRelease(record.Key, input)
		} else {
			id, err = graph.AddRelease(record.Key, input)
		}
		if err != nil {
			return err
		}
		if len(release.Requires) > 0 {
			pending[id] = release.Requires
		}
		return nil
	}
	for _, release := range record.Releases {
		if err := add(release, false); err != nil {
			return err
		}
	}
	if record.Dev != nil {
		return add(*record.Dev, true)
	}
	return nil
}

func extensionInput(catalog Catalog, key string, kind types.ArtifactKind, release types.ExtensionRelease) (ReleaseInput, error) {
	date, err := parseReleaseDate(release.Date)
	if err != nil {
		return ReleaseInput{}, err
	}
	public := true
	if release.Public != nil {
		public = *release.Public
	}
	input := ReleaseInput{
		Version:              release.Version,
		DisplayVersion:       release.Display,
		RequiredHostVersions: map[types.ProductLine][]Version{},
		Public:               public,
		Archived:             release.Archived,
		Date:                 date,
		DownloadURL:          release.DownloadURL,
		ChangelogURL:         release.Changelog,
		Description:          release.Description,
	}
	if kind == types.ArtifactKindScanner {
		return input, nil
	}
	for product, expression := range release.HostVersions {
		if !product.Valid() {
			return ReleaseInput{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unknown product line %q in %s %s", product, key, release.Version))
		}
		versions, err := catalog.ResolveForProduct(expression, product, key)
		if err != nil {
			return ReleaseInput{}, err
		}
		input.RequiredHostVersions[product] = versions
	}
	return input, nil
}

// parseReleaseDate accepts a calendar date or a full timestamp. Empty input
// yields the zero time.
func parseReleaseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	layouts := []string{
		time.DateOnly,
		time.RFC3339Nano,
		time.RFC3339,
		time.DateTime,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid release date: %s", value))
}
