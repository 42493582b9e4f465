package ports

import "update-center/internal/types"

type ReleasePolicyPort interface {
	Offers(visibility types.ReleaseVisibility) bool
}
