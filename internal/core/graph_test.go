package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"update-center/internal/types"
)

const testHostKey = "sonar"

// graphFixture builds graphs release by release for tests.
type graphFixture struct {
	t     *testing.T
	graph *DependencyGraph
}

func newGraphFixture(t *testing.T, hostVersions ...string) graphFixture {
	t.Helper()
	graph := NewDependencyGraph()
	require.NoError(t, graph.CreateArtifact(testHostKey, types.ArtifactKindHost))
	for _, v := range hostVersions {
		_, err := graph.AddRelease(testHostKey, ReleaseInput{Version: v, Product: types.ProductLineLegacy, Public: true})
		require.NoError(t, err)
	}
	return graphFixture{t: t, graph: graph}
}

func (f graphFixture) artifact(key string) {
	f.t.Helper()
	if _, ok := f.graph.Artifact(key); ok {
		return
	}
	require.NoError(f.t, f.graph.CreateArtifact(key, types.ArtifactKindExtension))
}

// release adds key@version supporting the given legacy host versions.
func (f graphFixture) release(key string, version string, hostVersions ...string) ReleaseID {
	f.t.Helper()
	f.artifact(key)
	id, err := f.graph.AddRelease(key, ReleaseInput{
		Version: version,
		Public:  true,
		RequiredHostVersions: map[types.ProductLine][]Version{
			types.ProductLineLegacy: ParseVersions(hostVersions...),
		},
	})
	require.NoError(f.t, err)
	return id
}

func (f graphFixture) depends(from ReleaseID, key string, minVersion string) {
	f.t.Helper()
	require.NoError(f.t, f.graph.AddOutgoingDependency(f.t.Context(), from, key, minVersion))
}

func releaseLabels(releases []Release) []string {
	out := make([]string, 0, len(releases))
	for _, release := range releases {
		out = append(out, release.ArtifactKey+"@"+release.Version.Name())
	}
	return out
}

func TestCreateArtifactRejectsDuplicates(t *testing.T) {
	graph := NewDependencyGraph()
	require.NoError(t, graph.CreateArtifact("foo", types.ArtifactKindExtension))

	err := graph.CreateArtifact("foo", types.ArtifactKindScanner)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(err))

	require.NoError(t, graph.CreateArtifact("sonar", types.ArtifactKindHost))
	err = graph.CreateArtifact("other-host", types.ArtifactKindHost)
	require.Error(t, err)
	assert.Equal(t, "sonar", graph.HostKey())

	err = graph.CreateArtifact(" ", types.ArtifactKindExtension)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestAddReleaseKeepsVersionOrder(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	f.release("foo", "1.10", "2.1")
	f.release("foo", "1.2", "2.1")
	f.release("foo", "1.9-RC1", "2.1")

	if diff := cmp.Diff([]string{"foo@1.2", "foo@1.9-RC1", "foo@1.10"}, releaseLabels(f.graph.Releases("foo"))); diff != "" {
		t.Fatalf("unexpected releases (-want +got):\n%s", diff)
	}

	_, err := f.graph.AddRelease("foo", ReleaseInput{Version: "1.2.0"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(err))

	_, err = f.graph.AddRelease("missing", ReleaseInput{Version: "1.0"})
	assert.True(t, IsArtifactNotFound(err))
}

func TestHostReleasesArePerProductLine(t *testing.T) {
	graph := NewDependencyGraph()
	require.NoError(t, graph.CreateArtifact(testHostKey, types.ArtifactKindHost))
	for _, input := range []ReleaseInput{
		{Version: "10.0", Product: types.ProductLineCommunity},
		{Version: "10.0", Product: types.ProductLineServer},
		{Version: "2025.1", Product: types.ProductLineServer},
	} {
		_, err := graph.AddRelease(testHostKey, input)
		require.NoError(t, err)
	}
	_, err := graph.SetDevRelease(testHostKey, ReleaseInput{Version: "10.1-SNAPSHOT", Product: types.ProductLineCommunity})
	require.NoError(t, err)
	_, err = graph.SetDevRelease(testHostKey, ReleaseInput{Version: "10.2-SNAPSHOT", Product: types.ProductLineCommunity})
	require.NoError(t, err)

	_, err = graph.AddRelease(testHostKey, ReleaseInput{Version: "10.0"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	if diff := cmp.Diff([]string{"sonar@10.0", "sonar@2025.1"}, releaseLabels(graph.HostReleases(types.ProductLineServer, false))); diff != "" {
		t.Fatalf("unexpected server releases (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sonar@10.0", "sonar@10.2-SNAPSHOT"}, releaseLabels(graph.HostReleases(types.ProductLineCommunity, true))); diff != "" {
		t.Fatalf("unexpected community releases (-want +got):\n%s", diff)
	}
	host, ok := graph.Artifact(testHostKey)
	require.True(t, ok)
	assert.Len(t, host.DevReleaseIDs(), 1)
}

func TestAddRequiredHostVersionsIsAppendOnly(t *testing.T) {
	f := newGraphFixture(t, "2.1", "2.2")
	id := f.release("foo", "1.0", "2.2")
	require.NoError(t, f.graph.AddRequiredHostVersions(id, types.ProductLineLegacy, ParseVersions("2.1", "2.2")...))

	release, ok := f.graph.Release(id)
	require.True(t, ok)
	if diff := cmp.Diff([]string{"2.1", "2.2"}, versionNames(release.RequiredHostVersionsFor(types.ProductLineLegacy))); diff != "" {
		t.Fatalf("unexpected host versions (-want +got):\n%s", diff)
	}

	err := f.graph.AddRequiredHostVersions(ReleaseID(99), types.ProductLineLegacy)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestReadAPIReturnsCopies(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	id := f.release("foo", "1.0", "2.1")

	release, _ := f.graph.Release(id)
	release.RequiredHostVersions[types.ProductLineLegacy][0] = ParseVersion("9.9")
	release.RequiredHostVersions[types.ProductLineServer] = ParseVersions("1.0")

	again, _ := f.graph.Release(id)
	if diff := cmp.Diff([]string{"2.1"}, versionNames(again.RequiredHostVersionsFor(types.ProductLineLegacy))); diff != "" {
		t.Fatalf("graph mutated through copy (-want +got):\n%s", diff)
	}
	assert.Empty(t, again.RequiredHostVersionsFor(types.ProductLineServer))
}

func TestAddOutgoingDependency(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	bar := f.release("bar", "1.0", "2.1")
	f.release("foo", "1.0", "2.1")
	foo11 := f.release("foo", "1.1", "2.1")
	f.release("foo", "1.2", "2.1")

	f.depends(bar, "foo", "1.1-SNAPSHOT")

	if diff := cmp.Diff([]string{"foo@1.1"}, releaseLabels(f.graph.Outgoing(bar))); diff != "" {
		t.Fatalf("unexpected outgoing (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bar@1.0"}, releaseLabels(f.graph.Incoming(foo11))); diff != "" {
		t.Fatalf("unexpected incoming (-want +got):\n%s", diff)
	}

	f.depends(bar, "foo", "1.1")
	assert.Len(t, f.graph.Outgoing(bar), 1)
}

func TestAddOutgoingDependencyErrors(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	bar := f.release("bar", "1.0", "2.1")
	f.release("foo", "1.0", "2.1")
	f.release("foo", "1.1", "2.1")
	f.artifact("empty")

	err := f.graph.AddOutgoingDependency(t.Context(), bar, "missing", "1.0")
	require.Error(t, err)
	assert.True(t, IsArtifactNotFound(err))
	assert.Equal(t, "The artifact 'missing' required by 'bar' is missing.", err.Error())

	err = f.graph.AddOutgoingDependency(t.Context(), bar, "empty", "1.0")
	assert.True(t, IsArtifactNotFound(err))

	err = f.graph.AddOutgoingDependency(t.Context(), bar, "foo", "2.0")
	require.Error(t, err)
	assert.True(t, IsIncompatibleVersion(err))
	assert.Equal(t, "The artifact 'foo' is in version 1.1 whereas the artifact 'bar' requires a least a version 2.0.", err.Error())
	assert.Empty(t, f.graph.Outgoing(bar))
}

func TestAddOutgoingDependencyIgnoresLicense(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	bar := f.release("bar", "1.0", "2.1")

	require.NoError(t, f.graph.AddOutgoingDependency(t.Context(), bar, "license", "1.0"))
	assert.Empty(t, f.graph.Outgoing(bar))
}

func TestAddOutgoingDependencyDetectsCycle(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	bar := f.release("bar", "1.0", "2.1")
	foo := f.release("foo", "1.1", "2.1")

	f.depends(bar, "foo", "1.1")
	err := f.graph.AddOutgoingDependency(t.Context(), foo, "bar", "1.0")
	require.Error(t, err)
	assert.True(t, IsDependencyCycle(err))
	assert.Equal(t, errbuilder.CodeFailedPrecondition, CodeOf(err))
	assert.Equal(t, "There is a dependency cycle between artifacts 'bar', 'foo' that must be cut.", err.Error())

	assert.Empty(t, f.graph.Outgoing(foo), "cyclic edge must be rolled back")
	assert.Empty(t, f.graph.Incoming(bar))
}

func TestAddOutgoingDependencyLongCycle(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	a := f.release("a", "1.0", "2.1")
	b := f.release("b", "1.0", "2.1")
	c := f.release("c", "1.0", "2.1")

	f.depends(a, "b", "1.0")
	f.depends(b, "c", "1.0")
	err := f.graph.AddOutgoingDependency(t.Context(), c, "a", "1.0")
	require.Error(t, err)
	assert.Equal(t, "There is a dependency cycle between artifacts 'a', 'b', 'c' that must be cut.", err.Error())
}

func TestDiamondIsNotACycle(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	top := f.release("top", "1.0", "2.1")
	left := f.release("left", "1.0", "2.1")
	right := f.release("right", "1.0", "2.1")
	f.release("base", "1.0", "2.1")

	f.depends(left, "base", "1.0")
	f.depends(right, "base", "1.0")
	f.depends(top, "left", "1.0")
	f.depends(top, "right", "1.0")

	assert.Len(t, f.graph.Outgoing(top), 2)
}

func TestRemovalSet(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	f.release("foo", "1.0", "2.1")
	bar := f.release("bar", "1.0", "2.1")
	baz := f.release("baz", "1.0", "2.1")
	f.release("other", "1.0", "2.1")

	f.depends(bar, "foo", "1.0")
	f.depends(baz, "bar", "1.0")

	got, err := f.graph.RemovalSet("foo")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"foo", "bar", "baz"}, got); diff != "" {
		t.Fatalf("unexpected removal set (-want +got):\n%s", diff)
	}

	_, err = f.graph.RemovalSet("missing")
	assert.True(t, IsArtifactNotFound(err))
}

func TestArtifactsSortedByKey(t *testing.T) {
	f := newGraphFixture(t)
	f.artifact("zeta")
	f.artifact("alpha")

	var keys []string
	for _, artifact := range f.graph.Artifacts() {
		keys = append(keys, artifact.Key)
	}
	if diff := cmp.Diff([]string{"alpha", "sonar", "zeta"}, keys); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
}

func TestCompatibleReleaseScans(t *testing.T) {
	f := newGraphFixture(t, "2.1", "2.2", "2.3")
	f.release("foo", "1.0", "2.1", "2.2")
	f.release("foo", "1.1", "2.1", "2.2", "2.3")
	f.release("foo", "1.2", "2.3")

	host := ParseVersion("2.2")
	last, ok := f.graph.LastCompatibleRelease("foo", host, types.ProductLineLegacy)
	require.True(t, ok)
	assert.Equal(t, "1.1", last.Version.Name())

	first, ok := f.graph.FirstCompatibleRelease("foo", host, types.ProductLineLegacy)
	require.True(t, ok)
	assert.Equal(t, "1.0", first.Version.Name())

	upgrade, ok := f.graph.LastCompatibleReleaseIfUpgrade("foo", host, types.ProductLineLegacy)
	require.True(t, ok)
	assert.Equal(t, "1.2", upgrade.Version.Name())

	_, ok = f.graph.LastCompatibleRelease("foo", host, types.ProductLineServer)
	assert.False(t, ok)

	minimal, ok := f.graph.MinimalRelease("foo", ParseVersion("1.1-RC1"))
	require.True(t, ok)
	assert.Equal(t, "1.1", minimal.Version.Name())

	if diff := cmp.Diff([]string{"foo@1.1", "foo@1.2"}, releaseLabels(f.graph.ReleasesGreaterThan("foo", ParseVersion("1.0")))); diff != "" {
		t.Fatalf("unexpected greater releases (-want +got):\n%s", diff)
	}
}

func TestArtifactKindFlags(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	f.release("foo", "1.0", "2.1")
	require.NoError(t, f.graph.CreateArtifact("cli", types.ArtifactKindScanner))

	tests := []struct {
		key         string
		needsBinary bool
		needsHost   bool
	}{
		{key: testHostKey, needsBinary: true, needsHost: true},
		{key: "foo", needsBinary: true, needsHost: true},
		{key: "cli", needsBinary: false, needsHost: false},
	}
	for _, tt := range tests {
		artifact, ok := f.graph.Artifact(tt.key)
		require.True(t, ok, tt.key)
		assert.Equal(t, tt.needsBinary, artifact.NeedsArtifact(), tt.key)
		assert.Equal(t, tt.needsHost, artifact.NeedsHostVersion(), tt.key)
	}
}

func TestRequiredHostVersionBounds(t *testing.T) {
	f := newGraphFixture(t, "2.1", "2.2", "2.3")
	id := f.release("foo", "1.0", "2.2", "2.1", "2.3")
	release, ok := f.graph.Release(id)
	require.True(t, ok)

	last, ok := release.LastRequiredHostVersion(types.ProductLineLegacy)
	require.True(t, ok)
	assert.Equal(t, "2.3", last.Name())

	minimum, ok := release.MinimumRequiredHostVersion(types.ProductLineLegacy)
	require.True(t, ok)
	assert.Equal(t, "2.1", minimum.Name())

	_, ok = release.LastRequiredHostVersion(types.ProductLineServer)
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	f := newGraphFixture(t, "2.1")
	bar := f.release("bar", "1.0", "2.1")
	err := f.graph.AddOutgoingDependency(t.Context(), bar, "missing", "1.0")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrorKindArtifactNotFound, kind)

	_, ok = KindOf(assert.AnError)
	assert.False(t, ok)
}
