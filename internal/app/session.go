package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"update-center/internal/core"
	"update-center/internal/policies"
	"update-center/internal/ports"
	"update-center/internal/shared"
	"update-center/internal/types"
)

// session is one loaded catalog with a resolver bound to a host.
type session struct {
	catalog  core.Catalog
	state    core.InstallState
	resolver *core.CompatibilityResolver
}

func (s Service) loadCatalog(ctx context.Context, path string, strict bool) (core.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return core.Catalog{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog path is required")
	}
	file, err := s.Catalogs.LoadCatalog(path)
	if err != nil {
		return core.Catalog{}, err
	}
	if err := core.NewCatalogValidator().ValidateCatalog(ctx, file); err != nil {
		return core.Catalog{}, err
	}
	log.Ctx(ctx).Debug().Str("catalog", path).Int("extensions", len(file.Extensions)).Msg("catalog loaded")
	return core.NewCatalogBuilder(strict).Build(ctx, file)
}

func (s Service) openSession(ctx context.Context, req QueryRequest) (session, error) {
	catalog, err := s.loadCatalog(ctx, req.CatalogPath, false)
	if err != nil {
		return session{}, err
	}
	state, err := s.installState(req)
	if err != nil {
		return session{}, err
	}
	var policy ports.ReleasePolicyPort = policies.NewReleasePolicy(req.IncludeArchived)
	resolver := core.NewCompatibilityResolver(catalog.Graph, state, core.WithReleaseFilter(policy.Offers))
	log.Ctx(ctx).Debug().
		Str("host_version", state.HostVersion.Name()).
		Str("product", string(state.Product)).
		Strs("installed", shared.SortedKeys(state.Installed)).
		Msg("session opened")
	return session{catalog: catalog, state: state, resolver: resolver}, nil
}

func (s Service) installState(req QueryRequest) (core.InstallState, error) {
	installed := types.InstalledFile{Extensions: map[string]string{}}
	if path := strings.TrimSpace(req.InstalledPath); path != "" {
		loaded, err := s.Installed.LoadInstalled(path)
		if err != nil {
			return core.InstallState{}, err
		}
		installed = loaded
	}
	hostVersion := shared.FirstNonEmpty(req.HostVersion, installed.HostVersion)
	if hostVersion == "" {
		return core.InstallState{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("host version is required (--host-version or installed state file)")
	}
	product := installed.Product
	if req.Product != "" {
		product = req.Product
	}
	if product == "" {
		product = types.ProductLineLegacy
	}
	if !product.Valid() {
		return core.InstallState{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown product line: " + string(product))
	}

	state := core.InstallState{
		HostVersion: core.ParseVersion(hostVersion),
		Product:     product,
		Installed:   map[string]core.Version{},
	}
	for key, version := range installed.Extensions {
		state.Installed[key] = core.ParseVersion(version)
	}
	for key, version := range req.Extensions {
		state.Installed[key] = core.ParseVersion(version)
	}
	return state, nil
}

func (s session) report(query string) types.Report {
	return types.Report{
		Query:       query,
		HostVersion: s.state.HostVersion.Name(),
		Product:     s.state.Product,
	}
}
