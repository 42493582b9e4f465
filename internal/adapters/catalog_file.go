package adapters

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"update-center/internal/ports"
	"update-center/internal/shared"
	"update-center/internal/types"
)

type CatalogFileAdapter struct{}

func NewCatalogFileAdapter() CatalogFileAdapter {
	return CatalogFileAdapter{}
}

func (a CatalogFileAdapter) LoadCatalog(path string) (types.CatalogFile, error) {
	var catalog types.CatalogFile
	if err := readYAML(path, "catalog", &catalog); err != nil {
		return types.CatalogFile{}, err
	}
	if strings.TrimSpace(catalog.Format) == "" {
		return types.CatalogFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("catalog %s has no format", path))
	}
	if strings.TrimSpace(catalog.Host.Key) == "" {
		return types.CatalogFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("catalog %s has no host key", path))
	}
	for i := range catalog.Extensions {
		for j := range catalog.Extensions[i].Releases {
			release := &catalog.Extensions[i].Releases[j]
			release.Requires = shared.TrimNonEmpty(release.Requires)
		}
		if dev := catalog.Extensions[i].Dev; dev != nil {
			dev.Requires = shared.TrimNonEmpty(dev.Requires)
		}
	}
	return catalog, nil
}

type InstalledFileAdapter struct{}

func NewInstalledFileAdapter() InstalledFileAdapter {
	return InstalledFileAdapter{}
}

// LoadInstalled reads an installed-state file. A missing product line means
// the legacy combined line.
func (a InstalledFileAdapter) LoadInstalled(path string) (types.InstalledFile, error) {
	var installed types.InstalledFile
	if err := readYAML(path, "installed state", &installed); err != nil {
		return types.InstalledFile{}, err
	}
	if strings.TrimSpace(installed.HostVersion) == "" {
		return types.InstalledFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("installed state %s has no host_version", path))
	}
	if installed.Product == "" {
		installed.Product = types.ProductLineLegacy
	}
	if !installed.Product.Valid() {
		return types.InstalledFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("installed state %s has unknown product %q", path, installed.Product))
	}
	if installed.Extensions == nil {
		installed.Extensions = map[string]string{}
	}
	return installed, nil
}

func readYAML(path string, what string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("%s file not found: %s", what, path)).
			WithCause(err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse %s yaml", what)).
			WithCause(err)
	}
	return nil
}

var (
	_ ports.CatalogSourcePort  = CatalogFileAdapter{}
	_ ports.InstalledStatePort = InstalledFileAdapter{}
)
