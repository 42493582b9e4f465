package core

import (
	"sort"
	"strings"
)

// versionPartWidth is the zero-padding width applied to each numeric
// component so that plain string comparison orders "1.10" after "1.9".
const versionPartWidth = 4

const versionComponents = 4

// Version is an immutable update-center version: up to four dotted numeric
// components plus an optional qualifier after the first "-". Parsing never
// fails; malformed input degrades to zero components.
type Version struct {
	name       string
	fromString string
	qualifier  string
	parts      [versionComponents]string
	normalized [versionComponents]string
}

// ParseVersion builds a Version from text such as "1.2.3.4-RC1".
func ParseVersion(text string) Version {
	name := strings.TrimSpace(text)
	numbers, qualifier, _ := strings.Cut(name, "-")
	v := Version{name: name, qualifier: qualifier}
	for i := range v.parts {
		v.parts[i] = "0"
	}
	split := splitNonEmpty(numbers, ".")
	for i := 0; i < len(split) && i < versionComponents; i++ {
		v.parts[i] = split[i]
	}
	for i := range v.parts {
		v.normalized[i] = leftPad(v.parts[i])
	}
	return v
}

// ParseVersions parses each value, keeping input order.
func ParseVersions(values ...string) []Version {
	out := make([]Version, 0, len(values))
	for _, value := range values {
		out = append(out, ParseVersion(value))
	}
	return out
}

func (v Version) Name() string       { return v.name }
func (v Version) String() string     { return v.name }
func (v Version) Qualifier() string  { return v.qualifier }
func (v Version) FromString() string { return v.fromString }
func (v Version) Major() string      { return v.part(0) }
func (v Version) Minor() string      { return v.part(1) }
func (v Version) Patch() string      { return v.part(2) }
func (v Version) Patch2() string     { return v.part(3) }

// WithFromString returns a copy tagged with the textual token that produced
// it. The tag never takes part in equality or ordering.
func (v Version) WithFromString(token string) Version {
	v.fromString = token
	return v
}

// Compare orders versions by padded numeric components, then by qualifier.
// An empty qualifier sorts after any non-empty one; two non-empty
// qualifiers compare as plain strings, so "RC1" < "RC2" < "SNAPSHOT".
func (v Version) Compare(other Version) int {
	if c := v.CompareIgnoringQualifier(other); c != 0 {
		return c
	}
	switch {
	case v.qualifier == "" && other.qualifier == "":
		return 0
	case v.qualifier == "":
		return 1
	case other.qualifier == "":
		return -1
	default:
		return strings.Compare(v.qualifier, other.qualifier)
	}
}

func (v Version) CompareIgnoringQualifier(other Version) int {
	for i := 0; i < versionComponents; i++ {
		if c := strings.Compare(v.normalizedPart(i), other.normalizedPart(i)); c != 0 {
			return c
		}
	}
	return 0
}

// Equal compares components and qualifier; the provenance tag is ignored.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsCompatibleWith reports whether both versions are equal once their
// qualifiers are stripped, so "1.2.3-SNAPSHOT" matches "1.2.3".
func (v Version) IsCompatibleWith(other Version) bool {
	return v.StripQualifier().Equal(other.StripQualifier())
}

// StripQualifier drops everything after the first "-". The remaining text
// becomes both the name and the provenance tag.
func (v Version) StripQualifier() Version {
	before, _, _ := strings.Cut(v.name, "-")
	stripped := ParseVersion(before)
	stripped.fromString = stripped.name
	return stripped
}

func (v Version) IsSnapshot() bool {
	return strings.HasSuffix(v.name, "SNAPSHOT")
}

// IsPatchRelease reports whether the third component is non-zero.
func (v Version) IsPatchRelease() bool {
	return v.normalizedPart(2) != leftPad("0")
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return v.name == "" && v.parts[0] == ""
}

func (v Version) part(i int) string {
	if v.parts[i] == "" {
		return "0"
	}
	return v.parts[i]
}

func (v Version) normalizedPart(i int) string {
	if v.normalized[i] == "" {
		return leftPad("0")
	}
	return v.normalized[i]
}

// SortVersions sorts in place in ascending order.
func SortVersions(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) < 0
	})
}

// InsertVersion adds v to an ascending, duplicate-free slice and returns the
// result. An equal version already present is kept as is.
func InsertVersion(versions []Version, v Version) []Version {
	idx := sort.Search(len(versions), func(i int) bool {
		return versions[i].Compare(v) >= 0
	})
	if idx < len(versions) && versions[idx].Equal(v) {
		return versions
	}
	versions = append(versions, Version{})
	copy(versions[idx+1:], versions[idx:])
	versions[idx] = v
	return versions
}

// MaxVersion returns the greatest version of the slice.
func MaxVersion(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Compare(best) > 0 {
			best = v
		}
	}
	return best, true
}

// ContainsVersion reports whether an equal version is present.
func ContainsVersion(versions []Version, v Version) bool {
	for _, candidate := range versions {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}

func leftPad(part string) string {
	if len(part) >= versionPartWidth {
		return part
	}
	return strings.Repeat("0", versionPartWidth-len(part)) + part
}

func splitNonEmpty(value string, sep string) []string {
	var out []string
	for _, token := range strings.Split(value, sep) {
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}
