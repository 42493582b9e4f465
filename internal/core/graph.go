package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"update-center/internal/types"
)

// obsoleteLicenseKey is the legacy license artifact, now bundled with the
// host. Requirements on it never produce an edge.
const obsoleteLicenseKey = "license"

// DependencyGraph holds every known artifact and the dependency edges
// between their releases. Releases live in an arena addressed by ReleaseID;
// edges are two adjacency maps kept as mutual inverses. The graph stays
// acyclic: an edge closing a cycle is rejected when inserted.
type DependencyGraph struct {
	hostKey   string
	artifacts map[string]*Artifact
	releases  []Release
	outgoing  map[ReleaseID][]ReleaseID
	incoming  map[ReleaseID][]ReleaseID
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		artifacts: map[string]*Artifact{},
		outgoing:  map[ReleaseID][]ReleaseID{},
		incoming:  map[ReleaseID][]ReleaseID{},
	}
}

// CreateArtifact registers a new artifact. Only one host artifact may exist.
func (g *DependencyGraph) CreateArtifact(key string, kind types.ArtifactKind) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("artifact key is empty")
	}
	if _, ok := g.artifacts[key]; ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg(fmt.Sprintf("artifact already exists: %s", key))
	}
	switch kind {
	case types.ArtifactKindHost:
		if g.hostKey != "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("host artifact already defined: %s", g.hostKey))
		}
		g.hostKey = key
	case types.ArtifactKindExtension, types.ArtifactKindScanner:
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown artifact kind %q for %s", kind, key))
	}
	g.artifacts[key] = &Artifact{Key: key, Kind: kind}
	return nil
}

// DescribeArtifact sets the display metadata of an existing artifact.
func (g *DependencyGraph) DescribeArtifact(key string, name string, category string) error {
	artifact, err := g.artifact(key)
	if err != nil {
		return err
	}
	artifact.Name = name
	artifact.Category = category
	return nil
}

// AddRelease appends a release to the artifact, keeping version order.
func (g *DependencyGraph) AddRelease(key string, input ReleaseInput) (ReleaseID, error) {
	return g.addRelease(key, input, false)
}

// SetDevRelease registers the artifact's pre-release for input.Product,
// replacing any previous one on that line.
func (g *DependencyGraph) SetDevRelease(key string, input ReleaseInput) (ReleaseID, error) {
	return g.addRelease(key, input, true)
}

func (g *DependencyGraph) addRelease(key string, input ReleaseInput, dev bool) (ReleaseID, error) {
	artifact, err := g.artifact(key)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(input.Version) == "" {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("release version is empty for %s", key))
	}
	if artifact.Kind == types.ArtifactKindHost && !input.Product.Valid() {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("host release %s has no valid product line", input.Version))
	}
	release := Release{
		ID:                   ReleaseID(len(g.releases)),
		ArtifactKey:          key,
		Version:              ParseVersion(input.Version),
		DisplayVersion:       input.DisplayVersion,
		Product:              input.Product,
		RequiredHostVersions: map[types.ProductLine][]Version{},
		Public:               input.Public,
		Archived:             input.Archived,
		Dev:                  dev,
		Date:                 input.Date,
		DownloadURL:          input.DownloadURL,
		ChangelogURL:         input.ChangelogURL,
		Description:          input.Description,
	}
	for product, versions := range input.RequiredHostVersions {
		for _, v := range versions {
			release.RequiredHostVersions[product] = InsertVersion(release.RequiredHostVersions[product], v)
		}
	}

	if dev {
		kept := artifact.dev[:0]
		for _, id := range artifact.dev {
			if g.releases[id].Product != input.Product {
				kept = append(kept, id)
			}
		}
		g.releases = append(g.releases, release)
		artifact.dev = append(kept, release.ID)
		return release.ID, nil
	}

	for _, id := range artifact.releases {
		if g.releases[id].sameIdentity(release) {
			return 0, errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(fmt.Sprintf("release already exists: %s %s", key, input.Version))
		}
	}
	g.releases = append(g.releases, release)
	artifact.releases = append(artifact.releases, release.ID)
	sort.SliceStable(artifact.releases, func(i, j int) bool {
		a, b := g.releases[artifact.releases[i]], g.releases[artifact.releases[j]]
		if c := a.Version.Compare(b.Version); c != 0 {
			return c < 0
		}
		return a.Product < b.Product
	})
	return release.ID, nil
}

// AddRequiredHostVersions appends host versions to a release's declaration
// for product. Declarations only grow.
func (g *DependencyGraph) AddRequiredHostVersions(id ReleaseID, product types.ProductLine, versions ...Version) error {
	if err := g.checkID(id); err != nil {
		return err
	}
	release := &g.releases[id]
	for _, v := range versions {
		release.RequiredHostVersions[product] = InsertVersion(release.RequiredHostVersions[product], v)
	}
	return nil
}

// AddOutgoingDependency links from to the smallest release of targetKey at
// or above minVersion and rejects the edge when it closes a cycle.
func (g *DependencyGraph) AddOutgoingDependency(ctx context.Context, from ReleaseID, targetKey string, minVersion string) error {
	if err := g.checkID(from); err != nil {
		return err
	}
	source := g.releases[from]
	targetKey = strings.TrimSpace(targetKey)
	if targetKey == obsoleteLicenseKey {
		log.Ctx(ctx).Debug().
			Str("artifact", source.ArtifactKey).
			Str("version", source.Version.Name()).
			Msg("ignoring requirement on obsolete license artifact")
		return nil
	}

	target, ok := g.artifacts[targetKey]
	if !ok || len(target.releases) == 0 {
		return errArtifactNotFound("The artifact '%s' required by '%s' is missing.", targetKey, source.ArtifactKey)
	}
	required, ok := g.MinimalRelease(targetKey, ParseVersion(minVersion))
	if !ok {
		latest, _ := g.LastRelease(targetKey)
		return errIncompatibleVersion("The artifact '%s' is in version %s whereas the artifact '%s' requires a least a version %s.",
			targetKey, latest.Version.Name(), source.ArtifactKey, strings.TrimSpace(minVersion))
	}

	if !g.link(from, required.ID) {
		return nil
	}
	if path, cyclic := g.cyclePath(from); cyclic {
		g.unlink(from, required.ID)
		keys := make([]string, 0, len(path))
		for _, id := range path {
			keys = append(keys, g.releases[id].ArtifactKey)
		}
		return errDependencyCycle(keys)
	}
	return nil
}

// link adds the edge both ways. It reports false when the edge existed.
func (g *DependencyGraph) link(from ReleaseID, to ReleaseID) bool {
	for _, existing := range g.outgoing[from] {
		if existing == to {
			return false
		}
	}
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return true
}

func (g *DependencyGraph) unlink(from ReleaseID, to ReleaseID) {
	g.outgoing[from] = removeID(g.outgoing[from], to)
	g.incoming[to] = removeID(g.incoming[to], from)
}

// cyclePath walks outgoing edges depth-first from start, tracking the
// releases on the current path. When a release reappears on the path the
// ordered path is returned. start itself is not on the path, so the chain
// begins at the target of the new edge and ends back at its source, the
// same order the update center has always reported.
func (g *DependencyGraph) cyclePath(start ReleaseID) ([]ReleaseID, bool) {
	var path []ReleaseID
	cleared := map[ReleaseID]bool{}
	var visit func(id ReleaseID) bool
	visit = func(id ReleaseID) bool {
		for _, next := range g.outgoing[id] {
			if containsID(path, next) {
				return true
			}
			if cleared[next] {
				continue
			}
			path = append(path, next)
			if visit(next) {
				return true
			}
			path = path[:len(path)-1]
			cleared[next] = true
		}
		return false
	}
	if visit(start) {
		return path, true
	}
	return nil, false
}

// HostKey returns the key of the host artifact, empty when none was created.
func (g *DependencyGraph) HostKey() string {
	return g.hostKey
}

// Artifact returns a copy of the artifact registered under key.
func (g *DependencyGraph) Artifact(key string) (Artifact, bool) {
	artifact, ok := g.artifacts[key]
	if !ok {
		return Artifact{}, false
	}
	return artifact.clone(), true
}

// Artifacts returns copies of every artifact, sorted by key.
func (g *DependencyGraph) Artifacts() []Artifact {
	out := make([]Artifact, 0, len(g.artifacts))
	for _, artifact := range g.artifacts {
		out = append(out, artifact.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// Release returns a copy of the release with the given id.
func (g *DependencyGraph) Release(id ReleaseID) (Release, bool) {
	if g.checkID(id) != nil {
		return Release{}, false
	}
	return g.releases[id].clone(), true
}

// Outgoing returns the releases id depends on.
func (g *DependencyGraph) Outgoing(id ReleaseID) []Release {
	return g.collect(g.outgoing[id])
}

// Incoming returns the releases depending on id.
func (g *DependencyGraph) Incoming(id ReleaseID) []Release {
	return g.collect(g.incoming[id])
}

// RemovalSet returns key followed by every artifact that, transitively,
// depends on the last release of key.
func (g *DependencyGraph) RemovalSet(key string) ([]string, error) {
	if _, ok := g.artifacts[key]; !ok {
		return nil, errArtifactNotFound("The artifact '%s' is missing.", key)
	}
	var out []string
	seen := map[string]bool{}
	var walk func(key string)
	walk = func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, key)
		last, ok := g.LastRelease(key)
		if !ok {
			return
		}
		for _, dependent := range g.Incoming(last.ID) {
			walk(dependent.ArtifactKey)
		}
	}
	walk(key)
	return out, nil
}

// Size returns the number of artifacts and releases, dev releases included.
func (g *DependencyGraph) Size() (artifacts int, releases int) {
	return len(g.artifacts), len(g.releases)
}

func (g *DependencyGraph) collect(ids []ReleaseID) []Release {
	out := make([]Release, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.releases[id].clone())
	}
	SortReleasesByKey(out)
	return out
}

func (g *DependencyGraph) artifact(key string) (*Artifact, error) {
	artifact, ok := g.artifacts[key]
	if !ok {
		return nil, errArtifactNotFound("The artifact '%s' is missing.", key)
	}
	return artifact, nil
}

func (g *DependencyGraph) checkID(id ReleaseID) error {
	if id < 0 || int(id) >= len(g.releases) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown release id %d", id))
	}
	return nil
}

func containsID(ids []ReleaseID, id ReleaseID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []ReleaseID, id ReleaseID) []ReleaseID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
