package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Validate loads the catalog and builds its graph, reporting what a lenient
// load would have dropped. Strict validation fails on the first broken
// requirement instead.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	catalog, err := s.loadCatalog(ctx, req.CatalogPath, req.Strict)
	if err != nil {
		return ValidateResult{}, err
	}
	artifacts, releases := catalog.Graph.Size()
	for _, warning := range catalog.Warnings {
		log.Ctx(ctx).Warn().Msg(warning)
	}
	return ValidateResult{
		HostKey:   catalog.Graph.HostKey(),
		Artifacts: artifacts,
		Releases:  releases,
		Warnings:  catalog.Warnings,
	}, nil
}
