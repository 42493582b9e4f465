package core

import (
	"sort"
	"time"

	"update-center/internal/types"
)

// ReleaseID is the stable arena index of a release inside a DependencyGraph.
type ReleaseID int

// ReleaseInput is what a loader hands to AddRelease.
type ReleaseInput struct {
	Version              string
	DisplayVersion       string
	Product              types.ProductLine
	RequiredHostVersions map[types.ProductLine][]Version
	Public               bool
	Archived             bool
	Date                 time.Time
	DownloadURL          string
	ChangelogURL         string
	Description          string
}

// Release is one published version of an artifact. Values returned by the
// graph are copies; mutating them never affects the graph.
type Release struct {
	ID             ReleaseID
	ArtifactKey    string
	Version        Version
	DisplayVersion string
	// Product is only set for host releases, which belong to one line.
	Product              types.ProductLine
	RequiredHostVersions map[types.ProductLine][]Version
	Public               bool
	Archived             bool
	Dev                  bool
	Date                 time.Time
	DownloadURL          string
	ChangelogURL         string
	Description          string
}

// SupportsHost reports whether any declared host version for product is
// compatible with hostVersion, ignoring qualifiers.
func (r Release) SupportsHost(hostVersion Version, product types.ProductLine) bool {
	for _, required := range r.RequiredHostVersions[product] {
		if required.IsCompatibleWith(hostVersion) {
			return true
		}
	}
	return false
}

// RequiredHostVersionsFor returns the sorted host versions declared for product.
func (r Release) RequiredHostVersionsFor(product types.ProductLine) []Version {
	return append([]Version(nil), r.RequiredHostVersions[product]...)
}

func (r Release) LastRequiredHostVersion(product types.ProductLine) (Version, bool) {
	versions := r.RequiredHostVersions[product]
	if len(versions) == 0 {
		return Version{}, false
	}
	return versions[len(versions)-1], true
}

func (r Release) MinimumRequiredHostVersion(product types.ProductLine) (Version, bool) {
	versions := r.RequiredHostVersions[product]
	if len(versions) == 0 {
		return Version{}, false
	}
	return versions[0], true
}

// requiresNewerHost reports whether a declared host version for product is
// strictly greater than hostVersion.
func (r Release) requiresNewerHost(hostVersion Version, product types.ProductLine) bool {
	for _, required := range r.RequiredHostVersions[product] {
		if required.Compare(hostVersion) > 0 {
			return true
		}
	}
	return false
}

// Display returns the display version, defaulting to the version name.
func (r Release) Display() string {
	if r.DisplayVersion != "" {
		return r.DisplayVersion
	}
	return r.Version.Name()
}

func (r Release) Visibility() types.ReleaseVisibility {
	return types.ReleaseVisibility{Public: r.Public, Archived: r.Archived, Dev: r.Dev}
}

// sameIdentity compares the (artifact key, version, product line) triple.
func (r Release) sameIdentity(other Release) bool {
	return r.ArtifactKey == other.ArtifactKey && r.Version.Equal(other.Version) && r.Product == other.Product
}

func (r Release) clone() Release {
	out := r
	out.RequiredHostVersions = make(map[types.ProductLine][]Version, len(r.RequiredHostVersions))
	for product, versions := range r.RequiredHostVersions {
		out.RequiredHostVersions[product] = append([]Version(nil), versions...)
	}
	return out
}

// Artifact is an extension, scanner or the host itself. Identity and
// ordering are by key only.
type Artifact struct {
	Key      string
	Kind     types.ArtifactKind
	Name     string
	Category string
	releases []ReleaseID
	dev      []ReleaseID
}

// NeedsArtifact reports whether the artifact ships an installable binary.
func (a Artifact) NeedsArtifact() bool {
	return a.Kind != types.ArtifactKindScanner
}

// NeedsHostVersion reports whether releases declare host compatibility.
func (a Artifact) NeedsHostVersion() bool {
	return a.Kind != types.ArtifactKindScanner
}

// ReleaseIDs returns release ids in ascending version order, dev releases excluded.
func (a Artifact) ReleaseIDs() []ReleaseID {
	return append([]ReleaseID(nil), a.releases...)
}

// DevReleaseIDs returns the pre-release ids, at most one per product line.
func (a Artifact) DevReleaseIDs() []ReleaseID {
	return append([]ReleaseID(nil), a.dev...)
}

func (a Artifact) clone() Artifact {
	out := a
	out.releases = a.ReleaseIDs()
	out.dev = a.DevReleaseIDs()
	return out
}

// sortReleases orders releases by version, then product line.
func sortReleases(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		if c := releases[i].Version.Compare(releases[j].Version); c != 0 {
			return c < 0
		}
		return releases[i].Product < releases[j].Product
	})
}

// SortReleasesByKey orders releases by artifact key, then version.
func SortReleasesByKey(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		if releases[i].ArtifactKey != releases[j].ArtifactKey {
			return releases[i].ArtifactKey < releases[j].ArtifactKey
		}
		return releases[i].Version.Compare(releases[j].Version) < 0
	})
}

// The scans below walk an artifact's releases in version order. Release
// sets are small, so nothing is indexed.

// Releases returns every non-dev release of key in ascending order.
func (g *DependencyGraph) Releases(key string) []Release {
	artifact, ok := g.artifacts[key]
	if !ok {
		return nil
	}
	out := make([]Release, 0, len(artifact.releases))
	for _, id := range artifact.releases {
		out = append(out, g.releases[id].clone())
	}
	return out
}

// HostReleases returns the host releases of one product line, dev releases
// included when withDev is set.
func (g *DependencyGraph) HostReleases(product types.ProductLine, withDev bool) []Release {
	host, ok := g.artifacts[g.hostKey]
	if !ok {
		return nil
	}
	ids := host.releases
	if withDev {
		ids = append(append([]ReleaseID(nil), host.releases...), host.dev...)
	}
	var out []Release
	for _, id := range ids {
		if g.releases[id].Product == product {
			out = append(out, g.releases[id].clone())
		}
	}
	sortReleases(out)
	return out
}

// LastRelease returns the greatest release of key.
func (g *DependencyGraph) LastRelease(key string) (Release, bool) {
	releases := g.Releases(key)
	if len(releases) == 0 {
		return Release{}, false
	}
	return releases[len(releases)-1], true
}

// FindRelease returns the release of key whose version equals v.
func (g *DependencyGraph) FindRelease(key string, v Version) (Release, bool) {
	for _, release := range g.Releases(key) {
		if release.Version.Equal(v) {
			return release, true
		}
	}
	return Release{}, false
}

// MinimalRelease returns the smallest release of key whose version is at
// least minimum, ignoring qualifiers.
func (g *DependencyGraph) MinimalRelease(key string, minimum Version) (Release, bool) {
	for _, release := range g.Releases(key) {
		if release.Version.CompareIgnoringQualifier(minimum) >= 0 {
			return release, true
		}
	}
	return Release{}, false
}

// ReleasesGreaterThan returns the releases of key strictly greater than v.
func (g *DependencyGraph) ReleasesGreaterThan(key string, v Version) []Release {
	var out []Release
	for _, release := range g.Releases(key) {
		if release.Version.Compare(v) > 0 {
			out = append(out, release)
		}
	}
	return out
}

// LastCompatibleRelease returns the greatest release of key supporting the
// host version on product.
func (g *DependencyGraph) LastCompatibleRelease(key string, hostVersion Version, product types.ProductLine) (Release, bool) {
	return g.scanCompatible(key, hostVersion, product, nil, true)
}

// FirstCompatibleRelease returns the smallest release of key supporting the
// host version on product.
func (g *DependencyGraph) FirstCompatibleRelease(key string, hostVersion Version, product types.ProductLine) (Release, bool) {
	return g.scanCompatible(key, hostVersion, product, nil, false)
}

// LastCompatibleReleaseIfUpgrade returns the greatest release of key that
// declares a host version newer than hostVersion on product.
func (g *DependencyGraph) LastCompatibleReleaseIfUpgrade(key string, hostVersion Version, product types.ProductLine) (Release, bool) {
	var result Release
	found := false
	for _, release := range g.Releases(key) {
		if release.requiresNewerHost(hostVersion, product) {
			result = release
			found = true
		}
	}
	return result, found
}

func (g *DependencyGraph) scanCompatible(key string, hostVersion Version, product types.ProductLine, accept func(Release) bool, last bool) (Release, bool) {
	var result Release
	found := false
	for _, release := range g.Releases(key) {
		if accept != nil && !accept(release) {
			continue
		}
		if !release.SupportsHost(hostVersion, product) {
			continue
		}
		result = release
		found = true
		if !last {
			break
		}
	}
	return result, found
}
