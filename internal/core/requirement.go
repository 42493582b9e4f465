package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Requirement is a declared dependency of a release on another artifact at
// a minimum version.
type Requirement struct {
	Key        string
	MinVersion string
	// Source names the release that declared it, for diagnostics.
	Source string
}

// ParseRequirement splits a raw "key:minVersion" declaration. Both halves
// are mandatory.
func ParseRequirement(raw string, source string) (Requirement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("empty requirement in %s", source))
	}
	key, version, ok := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	version = strings.TrimSpace(version)
	if !ok || key == "" || version == "" {
		return Requirement{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid requirement %q in %s: expected key:version", raw, source))
	}
	return Requirement{Key: key, MinVersion: version, Source: source}, nil
}

// ParseRequirements parses every entry, stopping at the first invalid one.
func ParseRequirements(entries []string, source string) ([]Requirement, error) {
	out := make([]Requirement, 0, len(entries))
	for _, entry := range entries {
		requirement, err := ParseRequirement(entry, source)
		if err != nil {
			return nil, err
		}
		out = append(out, requirement)
	}
	return out, nil
}
