package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"update-center/internal/types"
)

// Available lists extensions that can be installed on the host.
func (s Service) Available(ctx context.Context, req QueryRequest) (types.Report, error) {
	sess, err := s.openSession(ctx, req)
	if err != nil {
		return types.Report{}, err
	}
	updates, err := sess.resolver.FindAvailable(ctx)
	if err != nil {
		return types.Report{}, err
	}
	report := sess.report("available")
	report.Extensions = extensionEntries(updates)
	return report, nil
}

// Upgrades lists newer releases of the installed extensions.
func (s Service) Upgrades(ctx context.Context, req QueryRequest) (types.Report, error) {
	sess, err := s.openSession(ctx, req)
	if err != nil {
		return types.Report{}, err
	}
	updates, err := sess.resolver.FindUpgrades(ctx)
	if err != nil {
		return types.Report{}, err
	}
	report := sess.report("upgrades")
	report.Extensions = extensionEntries(updates)
	return report, nil
}

// InstallSet returns every release to download to install one extension.
func (s Service) InstallSet(ctx context.Context, req InstallSetRequest) (types.Report, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return types.Report{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("artifact key is required")
	}
	minVersion := strings.TrimSpace(req.MinVersion)
	if minVersion == "" {
		minVersion = "0"
	}
	sess, err := s.openSession(ctx, req.QueryRequest)
	if err != nil {
		return types.Report{}, err
	}
	releases, err := sess.resolver.ResolveInstallSet(ctx, key, minVersion)
	if err != nil {
		return types.Report{}, err
	}
	report := sess.report("install-set")
	report.Releases = releaseRefs(releases)
	return report, nil
}

// HostUpgrades lists host upgrades with their impact on installed extensions.
func (s Service) HostUpgrades(ctx context.Context, req QueryRequest) (types.Report, error) {
	sess, err := s.openSession(ctx, req)
	if err != nil {
		return types.Report{}, err
	}
	upgrades, err := sess.resolver.FindHostUpgrades(ctx)
	if err != nil {
		return types.Report{}, err
	}
	report := sess.report("host-upgrades")
	report.HostUpdates = hostUpgradeEntries(upgrades)
	return report, nil
}

// Removable lists the installed extensions to remove along with key.
func (s Service) Removable(ctx context.Context, req RemovableRequest) (types.Report, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return types.Report{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("artifact key is required")
	}
	sess, err := s.openSession(ctx, req.QueryRequest)
	if err != nil {
		return types.Report{}, err
	}
	keys, err := sess.resolver.FindRemovable(key)
	if err != nil {
		return types.Report{}, err
	}
	log.Ctx(ctx).Debug().Str("artifact", key).Int("removable", len(keys)).Msg("removal closure computed")
	report := sess.report("removable")
	report.Keys = keys
	return report, nil
}
