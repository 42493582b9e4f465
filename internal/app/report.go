package app

import (
	"time"

	"update-center/internal/core"
	"update-center/internal/types"
)

// WriteReport renders report with the configured writer.
func (s Service) WriteReport(out OutputRequest, report types.Report) error {
	return s.Reports(out.Path, out.Format).WriteReport(report)
}

func releaseRef(release core.Release) types.ReleaseRef {
	return types.ReleaseRef{
		Key:         release.ArtifactKey,
		Version:     release.Version.Name(),
		Display:     displayIfDifferent(release),
		DownloadURL: release.DownloadURL,
	}
}

func displayIfDifferent(release core.Release) string {
	if release.Display() == release.Version.Name() {
		return ""
	}
	return release.Display()
}

func releaseRefs(releases []core.Release) []types.ReleaseRef {
	if len(releases) == 0 {
		return nil
	}
	out := make([]types.ReleaseRef, 0, len(releases))
	for _, release := range releases {
		out = append(out, releaseRef(release))
	}
	return out
}

func extensionEntries(updates []core.ExtensionUpdate) []types.ExtensionUpdateEntry {
	out := make([]types.ExtensionUpdateEntry, 0, len(updates))
	for _, update := range updates {
		out = append(out, types.ExtensionUpdateEntry{
			Release:      releaseRef(update.Release),
			Status:       update.Status,
			Dependencies: releaseRefs(update.Dependencies),
		})
	}
	return out
}

func hostUpgradeEntries(upgrades []core.HostUpgrade) []types.HostUpgradeEntry {
	out := make([]types.HostUpgradeEntry, 0, len(upgrades))
	for _, upgrade := range upgrades {
		entry := types.HostUpgradeEntry{
			Version:      upgrade.Release.Version.Name(),
			Product:      upgrade.Release.Product,
			HasWarnings:  upgrade.HasWarnings(),
			Compatible:   upgrade.Compatible,
			Incompatible: upgrade.Incompatible,
			ToUpgrade:    releaseRefs(upgrade.ToUpgrade),
		}
		if !upgrade.Release.Date.IsZero() {
			entry.Date = upgrade.Release.Date.Format(time.DateOnly)
		}
		out = append(out, entry)
	}
	return out
}
