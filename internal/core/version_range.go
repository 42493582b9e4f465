package core

import (
	"strings"
)

const (
	latestKeyword  = "LATEST"
	wildcardSuffix = ".*"
	wildcardTag    = "*"
)

// RangeResolver turns version expressions such as "[6.7,LATEST]" or
// "2.4.*, 3.0" into concrete versions drawn from a known universe of host
// releases for one product line.
type RangeResolver struct {
	universe []Version
}

// NewRangeResolver copies and sorts the universe so callers keep ownership
// of their slice.
func NewRangeResolver(universe []Version) RangeResolver {
	var sorted []Version
	for _, v := range universe {
		sorted = InsertVersion(sorted, v)
	}
	return RangeResolver{universe: sorted}
}

// Universe returns a copy of the known versions in ascending order.
func (r RangeResolver) Universe() []Version {
	return append([]Version(nil), r.universe...)
}

// Resolve expands a comma-separated expression into a sorted, duplicate-free
// set of versions. artifactKey only feeds error messages.
func (r RangeResolver) Resolve(expression string, artifactKey string) ([]Version, error) {
	var out []Version
	for _, token := range splitPatterns(expression) {
		resolved, err := r.resolveToken(token, artifactKey)
		if err != nil {
			return nil, err
		}
		for _, v := range resolved {
			out = InsertVersion(out, v)
		}
	}
	return out, nil
}

func (r RangeResolver) resolveToken(token string, artifactKey string) ([]Version, error) {
	if !strings.HasPrefix(token, "[") {
		v, err := r.resolveSingle(token, artifactKey)
		if err != nil {
			return nil, err
		}
		return []Version{v}, nil
	}
	if !strings.HasSuffix(token, "]") {
		return nil, errVersionRange("Invalid version range '%s' (in %s): expected [LOW,HIGH].", token, artifactKey)
	}
	low, high, ok := strings.Cut(token[1:len(token)-1], ",")
	low = strings.TrimSpace(low)
	high = strings.TrimSpace(high)
	if !ok || low == "" || high == "" || strings.Contains(high, ",") {
		return nil, errVersionRange("Invalid version range '%s' (in %s): expected [LOW,HIGH].", token, artifactKey)
	}
	if low == latestKeyword {
		return nil, errVersionRange("Cannot use LATEST keyword at the start of a range in '%s' (in %s). Use 'LATEST' instead.",
			token, artifactKey)
	}
	if strings.HasSuffix(low, wildcardSuffix) {
		return nil, errVersionRange("Cannot use a wildcard version at the start of a range in '%s' (in %s). "+
			"If you want to mark this range as compatible with any MAJOR.MINOR.* version, use the MAJOR.MINOR version instead "+
			"(e.g.: '[6.7,6.7.*]', '[6.7,LATEST]').", token, artifactKey)
	}
	lowVersion := ParseVersion(low)
	highVersion, err := r.resolveSingle(high, artifactKey)
	if err != nil {
		return nil, err
	}

	var out []Version
	for _, v := range r.universe {
		if v.Compare(lowVersion) < 0 || v.Compare(highVersion) > 0 {
			continue
		}
		switch {
		case v.Equal(lowVersion):
			out = append(out, v.WithFromString(low))
		case v.Equal(highVersion):
			out = append(out, v.WithFromString(high))
		default:
			out = append(out, v.WithFromString(""))
		}
	}
	return out, nil
}

// resolveSingle handles LATEST, PREFIX.* and exact version tokens.
func (r RangeResolver) resolveSingle(token string, artifactKey string) (Version, error) {
	switch {
	case token == latestKeyword:
		latest, ok := MaxVersion(r.universe)
		if !ok {
			return Version{}, errVersionRange("Unable to resolve LATEST (in %s): no known release.", artifactKey)
		}
		return latest.WithFromString(latestKeyword), nil
	case strings.HasSuffix(token, wildcardSuffix):
		prefix := strings.TrimSuffix(token, wildcardSuffix)
		var best Version
		found := false
		for _, v := range r.universe {
			stripped := v.StripQualifier().Name()
			// Match whole components only: 2.4.* covers 2.4 and 2.4.2, not 2.40.
			if stripped != prefix && !strings.HasPrefix(stripped, prefix+".") {
				continue
			}
			if !found || v.Compare(best) > 0 {
				best = v
				found = true
			}
		}
		if !found {
			return Version{}, errVersionRange("Unable to find a release for wildcard version '%s' (in %s).", token, artifactKey)
		}
		return best.WithFromString(wildcardTag), nil
	default:
		return ParseVersion(token), nil
	}
}

// splitPatterns splits on commas that are not enclosed in brackets.
func splitPatterns(expression string) []string {
	var out []string
	var current strings.Builder
	depth := 0
	flush := func() {
		if token := strings.TrimSpace(current.String()); token != "" {
			out = append(out, token)
		}
		current.Reset()
	}
	for _, r := range expression {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		current.WriteRune(r)
	}
	flush()
	return out
}
