package policies

import "update-center/internal/types"

// ReleasePolicy decides which releases may be offered as install or upgrade
// targets. It never hides a release from range resolution or from the
// classification of what is already installed.
type ReleasePolicy struct {
	IncludeArchived  bool
	IncludeNonPublic bool
	IncludeDev       bool
}

// NewReleasePolicy returns the default policy: public, non-archived, final
// releases only, unless includeArchived widens it.
func NewReleasePolicy(includeArchived bool) ReleasePolicy {
	return ReleasePolicy{IncludeArchived: includeArchived}
}

func (p ReleasePolicy) Offers(visibility types.ReleaseVisibility) bool {
	if visibility.Archived && !p.IncludeArchived {
		return false
	}
	if !visibility.Public && !p.IncludeNonPublic {
		return false
	}
	if visibility.Dev && !p.IncludeDev {
		return false
	}
	return true
}
