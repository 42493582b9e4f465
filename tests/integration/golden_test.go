package integration

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"update-center/internal/adapters"
	"update-center/internal/app"
	"update-center/internal/core"
	"update-center/internal/policies"
	"update-center/internal/types"
	"update-center/tests/testutil"
)

// TestGoldenReports runs every query against the sample fixtures and
// compares the rendered reports against committed golden files. If the
// golden files do not exist yet (first run), they are written so they can
// be committed.
//
// To update golden files after an intentional change, delete the
// testdata/golden/ directory and re-run the test.
func TestGoldenReports(t *testing.T) {
	root := testutil.RepoRoot(t)
	goldenDir := filepath.Join(root, "tests", "integration", "testdata", "golden")
	outDir := t.TempDir()

	query := app.QueryRequest{
		CatalogPath:   testutil.Fixture(t, "catalog-sample.yaml"),
		InstalledPath: testutil.Fixture(t, "installed-sample.yaml"),
	}
	service := app.NewService()
	reports := map[string]func() (types.Report, error){
		"available.yaml": func() (types.Report, error) { return service.Available(t.Context(), query) },
		"upgrades.yaml":  func() (types.Report, error) { return service.Upgrades(t.Context(), query) },
		"install-set.yaml": func() (types.Report, error) {
			return service.InstallSet(t.Context(), app.InstallSetRequest{QueryRequest: query, Key: "javaext", MinVersion: "1.1"})
		},
		"host-upgrades.yaml": func() (types.Report, error) { return service.HostUpgrades(t.Context(), query) },
		"removable.yaml": func() (types.Report, error) {
			return service.Removable(t.Context(), app.RemovableRequest{QueryRequest: query, Key: "java"})
		},
	}

	for name, run := range reports {
		t.Run(name, func(t *testing.T) {
			report, err := run()
			require.NoError(t, err)

			actualPath := filepath.Join(outDir, name)
			writer := adapters.NewReportFileAdapter(actualPath, types.ReportFormatYAML, nil)
			require.NoError(t, writer.WriteReport(report))
			actual, err := os.ReadFile(actualPath)
			require.NoError(t, err)

			goldenPath := filepath.Join(goldenDir, name)
			if _, statErr := os.Stat(goldenPath); os.IsNotExist(statErr) {
				// Golden file doesn't exist yet -- write it.
				require.NoError(t, os.MkdirAll(goldenDir, 0o755))
				require.NoError(t, os.WriteFile(goldenPath, actual, 0o644))
				t.Logf("golden file written: %s (commit it)", goldenPath)
				return
			}

			expected, err := os.ReadFile(goldenPath)
			require.NoError(t, err)
			assert.Equal(t, string(expected), string(actual),
				"golden mismatch for %s -- delete testdata/golden/ and re-run to regenerate", name)
		})
	}
}

// TestCatalogGraphStructure loads the sample catalog through the file
// adapters and checks structural properties of the resulting graph.
func TestCatalogGraphStructure(t *testing.T) {
	file, err := adapters.NewCatalogFileAdapter().LoadCatalog(testutil.Fixture(t, "catalog-sample.yaml"))
	require.NoError(t, err)
	require.NoError(t, core.NewCatalogValidator().ValidateCatalog(t.Context(), file))

	catalog, err := core.NewCatalogBuilder(true).Build(t.Context(), file)
	require.NoError(t, err)
	graph := catalog.Graph

	t.Run("artifacts are sorted", func(t *testing.T) {
		keys := make([]string, 0)
		for _, artifact := range graph.Artifacts() {
			keys = append(keys, artifact.Key)
		}
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		assert.Equal(t, sorted, keys, "artifacts must be sorted by key")
	})

	t.Run("dependency edges are mirrored", func(t *testing.T) {
		for _, artifact := range graph.Artifacts() {
			for _, release := range graph.Releases(artifact.Key) {
				for _, target := range graph.Outgoing(release.ID) {
					assert.Contains(t, graph.Incoming(target.ID), release,
						"%s@%s missing from incoming of %s@%s",
						release.ArtifactKey, release.Version.Name(), target.ArtifactKey, target.Version.Name())
				}
			}
		}
	})

	t.Run("dev host release resolves as latest", func(t *testing.T) {
		latest, err := catalog.ResolveForProduct("LATEST", types.ProductLineLegacy, "fixture")
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.Equal(t, "10.3-SNAPSHOT", latest[0].Name())
	})

	t.Run("policy hides archived releases", func(t *testing.T) {
		policy := policies.NewReleasePolicy(false)
		resolver := core.NewCompatibilityResolver(graph, core.InstallState{
			HostVersion: core.ParseVersion("10.0"),
			Product:     types.ProductLineLegacy,
		}, core.WithReleaseFilter(policy.Offers))

		_, ok := resolver.LatestCompatibleRelease("legacy")
		assert.False(t, ok)

		available, err := resolver.FindAvailable(t.Context())
		require.NoError(t, err)
		keys := make([]string, 0, len(available))
		for _, update := range available {
			keys = append(keys, update.Release.ArtifactKey)
		}
		if diff := cmp.Diff([]string{"java", "javaext", "php"}, keys); diff != "" {
			t.Fatalf("unexpected available keys (-want +got):\n%s", diff)
		}
	})
}

// TestLenientCatalogWarnings builds a catalog whose requirements point at
// missing artifacts and checks the lenient build keeps the release.
func TestLenientCatalogWarnings(t *testing.T) {
	path := testutil.WriteFile(t, "catalog.yaml", `
format: update-center/v1
host:
  key: sonar
  releases:
    sqVersions:
      - version: "10.0"
extensions:
  - key: foo
    releases:
      - version: "1.0"
        requires:
          - ghost:1.0
        host_versions:
          sqVersions: "10.0"
`)
	service := app.NewService()

	result, err := service.Validate(t.Context(), app.ValidateRequest{CatalogPath: path})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Artifacts)
	assert.Equal(t, []string{"The artifact 'ghost' required by 'foo' is missing."}, result.Warnings)

	_, err = service.Validate(t.Context(), app.ValidateRequest{CatalogPath: path, Strict: true})
	require.Error(t, err)
	assert.True(t, core.IsArtifactNotFound(err))
}
