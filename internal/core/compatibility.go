package core

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"update-center/internal/types"
)

// InstallState describes the running host and the extensions installed on it.
type InstallState struct {
	HostVersion Version
	Product     types.ProductLine
	Installed   map[string]Version
}

// ReleaseFilter decides whether a release may be offered as an install or
// upgrade target.
type ReleaseFilter func(types.ReleaseVisibility) bool

type ResolverOption func(*CompatibilityResolver)

// WithReleaseFilter restricts the releases offered to the user. Releases
// already installed are classified whether or not the filter accepts them.
func WithReleaseFilter(filter ReleaseFilter) ResolverOption {
	return func(r *CompatibilityResolver) {
		r.filter = filter
	}
}

// ExtensionUpdate is one candidate release with its classification and the
// extra releases that must be downloaded along with it.
type ExtensionUpdate struct {
	Release      Release
	Status       types.UpdateStatus
	Dependencies []Release
}

// CompatibilityResolver answers availability, upgrade and install-closure
// queries against a finished graph. It never mutates the graph.
type CompatibilityResolver struct {
	graph     *DependencyGraph
	state     InstallState
	installed map[string]Version
	filter    ReleaseFilter
}

func NewCompatibilityResolver(graph *DependencyGraph, state InstallState, opts ...ResolverOption) *CompatibilityResolver {
	installed := make(map[string]Version, len(state.Installed))
	for key, v := range state.Installed {
		installed[key] = v
	}
	state.Installed = installed
	r := &CompatibilityResolver{
		graph:     graph,
		state:     state,
		installed: installed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the install state the resolver was built with.
func (r *CompatibilityResolver) State() InstallState {
	out := r.state
	out.Installed = make(map[string]Version, len(r.installed))
	for key, v := range r.installed {
		out.Installed[key] = v
	}
	return out
}

// adjustedHostVersion drops the qualifier of the installed host: snapshots
// and release candidates support the same extensions as the final release.
func (r *CompatibilityResolver) adjustedHostVersion() Version {
	return r.state.HostVersion.StripQualifier()
}

func (r *CompatibilityResolver) offered(release Release) bool {
	if r.filter == nil {
		return true
	}
	return r.filter(release.Visibility())
}

func (r *CompatibilityResolver) isInstalledArtifact(key string) bool {
	_, ok := r.installed[key]
	return ok
}

func (r *CompatibilityResolver) isInstalledRelease(release Release) bool {
	v, ok := r.installed[release.ArtifactKey]
	return ok && v.Equal(release.Version)
}

// supports reports whether release runs on hostVersion. Scanners declare no
// host compatibility and run everywhere.
func (r *CompatibilityResolver) supports(release Release, hostVersion Version, product types.ProductLine) bool {
	artifact, ok := r.graph.artifacts[release.ArtifactKey]
	if ok && !artifact.NeedsHostVersion() {
		return true
	}
	return release.SupportsHost(hostVersion, product)
}

// LatestCompatibleRelease returns the greatest offered release of key that
// runs on the installed host.
func (r *CompatibilityResolver) LatestCompatibleRelease(key string) (Release, bool) {
	host := r.adjustedHostVersion()
	var result Release
	found := false
	for _, release := range r.graph.Releases(key) {
		if r.offered(release) && r.supports(release, host, r.state.Product) {
			result = release
			found = true
		}
	}
	return result, found
}

// latestRequiringHostUpgrade returns the greatest offered release of key
// that declares a host version newer than the installed one.
func (r *CompatibilityResolver) latestRequiringHostUpgrade(key string) (Release, bool) {
	host := r.adjustedHostVersion()
	var result Release
	found := false
	for _, release := range r.graph.Releases(key) {
		if r.offered(release) && release.requiresNewerHost(host, r.state.Product) {
			result = release
			found = true
		}
	}
	return result, found
}

// Classify picks the best release of key for the installed host.
func (r *CompatibilityResolver) Classify(key string) (ExtensionUpdate, error) {
	if _, ok := r.graph.artifacts[key]; !ok {
		return ExtensionUpdate{}, errArtifactNotFound("The artifact '%s' is missing.", key)
	}
	if release, ok := r.LatestCompatibleRelease(key); ok {
		return ExtensionUpdate{Release: release, Status: types.UpdateStatusCompatible}, nil
	}
	if release, ok := r.latestRequiringHostUpgrade(key); ok {
		return ExtensionUpdate{Release: release, Status: types.UpdateStatusRequiresHostUpgrade}, nil
	}
	last, _ := r.graph.LastRelease(key)
	return ExtensionUpdate{Release: last, Status: types.UpdateStatusIncompatible}, nil
}

// ClassifyRelease classifies one release against the installed host.
func (r *CompatibilityResolver) ClassifyRelease(id ReleaseID) types.UpdateStatus {
	release, ok := r.graph.Release(id)
	if !ok {
		return types.UpdateStatusIncompatible
	}
	host := r.adjustedHostVersion()
	switch {
	case r.supports(release, host, r.state.Product):
		return types.UpdateStatusCompatible
	case release.requiresNewerHost(host, r.state.Product):
		return types.UpdateStatusRequiresHostUpgrade
	default:
		return types.UpdateStatusIncompatible
	}
}

// ResolveInstallSet returns every release to download to install key at
// minVersion or later: the best compatible release, its dependencies, and
// installed dependents that must move along. Installed releases are left out.
func (r *CompatibilityResolver) ResolveInstallSet(ctx context.Context, key string, minVersion string) ([]Release, error) {
	closure := newInstallClosure()
	if err := r.resolveInto(closure, key, ParseVersion(minVersion)); err != nil {
		return nil, err
	}
	out := closure.releases()
	log.Ctx(ctx).Debug().
		Str("artifact", key).
		Int("releases", len(out)).
		Msg("install set resolved")
	return out, nil
}

// dependenciesOf returns the install closure of release without release
// itself.
func (r *CompatibilityResolver) dependenciesOf(release Release) ([]Release, error) {
	closure := newInstallClosure()
	closure.choose(release.ArtifactKey, release.Version)
	if err := r.expand(closure, release); err != nil {
		return nil, err
	}
	return closure.releases(), nil
}

func (r *CompatibilityResolver) resolveInto(closure *installClosure, key string, minimum Version) error {
	if _, ok := r.graph.artifacts[key]; !ok {
		return errArtifactNotFound("Needed artifact '%s' version %s not found.", key, minimum.Name())
	}
	if chosen, ok := closure.chosen(key); ok {
		// Every edge reaching key must accept the release already picked.
		if chosen.Compare(minimum) < 0 {
			return errIncompatibleVersion("Artifact %s is needed to be installed at version greater or equal %s", key, minimum.Name())
		}
		return nil
	}
	release, ok := r.LatestCompatibleRelease(key)
	if !ok || release.Version.Compare(minimum) < 0 {
		return errIncompatibleVersion("Artifact %s is needed to be installed at version greater or equal %s", key, minimum.Name())
	}
	closure.choose(key, release.Version)
	if !r.isInstalledRelease(release) {
		closure.add(release)
	}
	return r.expand(closure, release)
}

func (r *CompatibilityResolver) expand(closure *installClosure, release Release) error {
	for _, dependency := range r.graph.Outgoing(release.ID) {
		if err := r.resolveInto(closure, dependency.ArtifactKey, dependency.Version); err != nil {
			return err
		}
	}
	for _, dependent := range r.graph.Incoming(release.ID) {
		if !r.isInstalledArtifact(dependent.ArtifactKey) {
			continue
		}
		if err := r.resolveInto(closure, dependent.ArtifactKey, dependent.Version); err != nil {
			return err
		}
	}
	return nil
}

// FindAvailable lists extensions that are not installed yet, with the best
// release each can offer.
func (r *CompatibilityResolver) FindAvailable(ctx context.Context) ([]ExtensionUpdate, error) {
	var out []ExtensionUpdate
	for _, artifact := range r.graph.Artifacts() {
		if artifact.Kind != types.ArtifactKindExtension || r.isInstalledArtifact(artifact.Key) {
			continue
		}
		if release, ok := r.LatestCompatibleRelease(artifact.Key); ok {
			update, err := r.withDependencies(release)
			if err != nil {
				return nil, err
			}
			out = append(out, update)
			continue
		}
		if release, ok := r.latestRequiringHostUpgrade(artifact.Key); ok {
			out = append(out, ExtensionUpdate{Release: release, Status: types.UpdateStatusRequiresHostUpgrade})
		}
	}
	log.Ctx(ctx).Debug().Int("available", len(out)).Msg("available extensions computed")
	return out, nil
}

// withDependencies attaches the install closure of a compatible release, or
// downgrades it when a dependency cannot run on the installed host.
func (r *CompatibilityResolver) withDependencies(release Release) (ExtensionUpdate, error) {
	dependencies, err := r.dependenciesOf(release)
	if IsIncompatibleVersion(err) {
		return ExtensionUpdate{Release: release, Status: types.UpdateStatusDependenciesRequireHostUpgrade}, nil
	}
	if err != nil {
		return ExtensionUpdate{}, err
	}
	return ExtensionUpdate{Release: release, Status: types.UpdateStatusCompatible, Dependencies: dependencies}, nil
}

// FindUpgrades lists every offered release newer than an installed one.
func (r *CompatibilityResolver) FindUpgrades(ctx context.Context) ([]ExtensionUpdate, error) {
	var out []ExtensionUpdate
	for _, key := range r.installedKeys() {
		installedVersion := r.installed[key]
		if _, ok := r.graph.artifacts[key]; !ok {
			log.Ctx(ctx).Info().
				Str("artifact", key).
				Str("version", installedVersion.Name()).
				Msg("installed extension not found in catalog")
			continue
		}
		for _, release := range r.graph.ReleasesGreaterThan(key, installedVersion) {
			if !r.offered(release) {
				continue
			}
			status := r.ClassifyRelease(release.ID)
			if status != types.UpdateStatusCompatible {
				out = append(out, ExtensionUpdate{Release: release, Status: status})
				continue
			}
			update, err := r.withDependencies(release)
			if err != nil {
				return nil, err
			}
			out = append(out, update)
		}
	}
	log.Ctx(ctx).Debug().Int("upgrades", len(out)).Msg("extension upgrades computed")
	return out, nil
}

// FindRemovable returns key followed by every installed artifact that
// depends, directly or not, on the installed release of key.
func (r *CompatibilityResolver) FindRemovable(key string) ([]string, error) {
	installedVersion, ok := r.installed[key]
	if !ok {
		return nil, errArtifactNotFound("The artifact '%s' is not installed.", key)
	}
	release, ok := r.graph.FindRelease(key, installedVersion)
	if !ok {
		return nil, errArtifactNotFound("Installed artifact '%s' version %s not found.", key, installedVersion.Name())
	}
	var out []string
	seen := map[string]bool{}
	var walk func(release Release)
	walk = func(release Release) {
		if seen[release.ArtifactKey] {
			return
		}
		seen[release.ArtifactKey] = true
		out = append(out, release.ArtifactKey)
		for _, dependent := range r.graph.Incoming(release.ID) {
			if r.isInstalledRelease(dependent) {
				walk(dependent)
			}
		}
	}
	walk(release)
	return out, nil
}

// installedKeys returns installed extension keys in ascending order, the
// host excluded.
func (r *CompatibilityResolver) installedKeys() []string {
	keys := make([]string, 0, len(r.installed))
	for key := range r.installed {
		if key == r.graph.HostKey() {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// installClosure accumulates releases, remembering the version picked for
// each artifact so later edges are checked against it.
type installClosure struct {
	picked map[string]Version
	out    []Release
}

func newInstallClosure() *installClosure {
	return &installClosure{picked: map[string]Version{}}
}

func (c *installClosure) chosen(key string) (Version, bool) {
	v, ok := c.picked[key]
	return v, ok
}

func (c *installClosure) choose(key string, v Version) {
	c.picked[key] = v
}

func (c *installClosure) add(release Release) {
	c.out = append(c.out, release)
}

func (c *installClosure) releases() []Release {
	out := append([]Release(nil), c.out...)
	SortReleasesByKey(out)
	return out
}
