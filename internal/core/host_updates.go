package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"update-center/internal/types"
)

// HostUpgrade is the impact of moving the host to Release on the installed
// extensions.
type HostUpgrade struct {
	Release Release
	// Compatible lists extensions whose installed release already runs on
	// the new host.
	Compatible []string
	// ToUpgrade holds, per extension, the greatest later release that runs
	// on the new host.
	ToUpgrade    []Release
	Incompatible []string
}

func (u HostUpgrade) HasWarnings() bool {
	return u.IsIncompatible() || u.RequiresExtensionUpgrades()
}

func (u HostUpgrade) IsIncompatible() bool {
	return len(u.Incompatible) > 0
}

func (u HostUpgrade) RequiresExtensionUpgrades() bool {
	return len(u.ToUpgrade) > 0
}

// FindHostUpgrades lists host releases newer than the installed one on the
// active product line. A community installation is also offered the latest
// commercial release once the community track stopped publishing.
func (r *CompatibilityResolver) FindHostUpgrades(ctx context.Context) ([]HostUpgrade, error) {
	var candidates []Release
	for _, release := range r.graph.HostReleases(r.state.Product, false) {
		if r.offered(release) && release.Version.Compare(r.state.HostVersion) > 0 {
			candidates = append(candidates, release)
		}
	}
	if r.state.Product == types.ProductLineCommunity {
		if release, ok := r.commercialJump(); ok {
			candidates = append(candidates, release)
		}
	}

	out := make([]HostUpgrade, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, r.hostUpgrade(ctx, candidate))
	}
	log.Ctx(ctx).Debug().Int("host_upgrades", len(out)).Msg("host upgrades computed")
	return out, nil
}

// commercialJump returns the latest commercial release a community
// installation may move to.
func (r *CompatibilityResolver) commercialJump() (Release, bool) {
	if r.state.HostVersion.IsPatchRelease() {
		return Release{}, false
	}
	var latest Release
	found := false
	for _, release := range r.graph.HostReleases(types.ProductLineServer, false) {
		if r.offered(release) {
			latest = release
			found = true
		}
	}
	if !found {
		return Release{}, false
	}
	if latest.Date.IsZero() {
		return latest, true
	}
	for _, community := range r.graph.HostReleases(types.ProductLineCommunity, false) {
		if !community.Date.IsZero() && !community.Date.Before(latest.Date) {
			return Release{}, false
		}
	}
	return latest, true
}

func (r *CompatibilityResolver) hostUpgrade(ctx context.Context, candidate Release) HostUpgrade {
	update := HostUpgrade{Release: candidate}
	target := candidate.Version
	product := candidate.Product
	for _, key := range r.installedKeys() {
		installedVersion := r.installed[key]
		if _, ok := r.graph.artifacts[key]; !ok {
			log.Ctx(ctx).Info().
				Str("artifact", key).
				Str("version", installedVersion.Name()).
				Msg("installed extension not found in catalog")
			continue
		}
		if current, ok := r.graph.FindRelease(key, installedVersion); ok && r.supports(current, target, product) {
			update.Compatible = append(update.Compatible, key)
			continue
		}
		var upgrade Release
		found := false
		for _, release := range r.graph.ReleasesGreaterThan(key, installedVersion) {
			if r.offered(release) && r.supports(release, target, product) {
				upgrade = release
				found = true
			}
		}
		if found {
			update.ToUpgrade = append(update.ToUpgrade, upgrade)
		} else {
			update.Incompatible = append(update.Incompatible, key)
		}
	}
	return update
}
