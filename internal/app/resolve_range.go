package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"update-center/internal/types"
)

// ResolveRange expands a host version expression against the catalog's
// host releases of one product line.
func (s Service) ResolveRange(ctx context.Context, req ResolveRangeRequest) (types.Report, error) {
	expression := strings.TrimSpace(req.Expression)
	if expression == "" {
		return types.Report{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("version expression is required")
	}
	product := req.Product
	if product == "" {
		product = types.ProductLineLegacy
	}
	if !product.Valid() {
		return types.Report{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown product line: " + string(product))
	}
	key := req.ArtifactKey
	if key == "" {
		key = "command line"
	}
	catalog, err := s.loadCatalog(ctx, req.CatalogPath, false)
	if err != nil {
		return types.Report{}, err
	}
	versions, err := catalog.ResolveForProduct(expression, product, key)
	if err != nil {
		return types.Report{}, err
	}
	report := types.Report{Query: "resolve-range", Product: product}
	for _, v := range versions {
		report.Versions = append(report.Versions, v.Name())
	}
	return report, nil
}
