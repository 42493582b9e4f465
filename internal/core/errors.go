package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorKind names the resolution failures callers may need to tell apart.
type ErrorKind string

const (
	ErrorKindArtifactNotFound    ErrorKind = "artifact_not_found"
	ErrorKindIncompatibleVersion ErrorKind = "incompatible_version"
	ErrorKindDependencyCycle     ErrorKind = "dependency_cycle"
	ErrorKindVersionRange        ErrorKind = "version_range"
)

// ResolutionError is a terminal failure of a graph or resolver operation.
// Error returns the human-readable message verbatim.
type ResolutionError struct {
	Kind  ErrorKind
	Code  errbuilder.ErrCode
	Msg   string
	Cause error
}

func (e *ResolutionError) Error() string { return e.Msg }
func (e *ResolutionError) Unwrap() error { return e.Cause }

func newResolutionError(kind ErrorKind, code errbuilder.ErrCode, format string, args ...any) *ResolutionError {
	return &ResolutionError{Kind: kind, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func errArtifactNotFound(format string, args ...any) error {
	return newResolutionError(ErrorKindArtifactNotFound, errbuilder.CodeNotFound, format, args...)
}

func errIncompatibleVersion(format string, args ...any) error {
	return newResolutionError(ErrorKindIncompatibleVersion, errbuilder.CodeFailedPrecondition, format, args...)
}

func errVersionRange(format string, args ...any) error {
	return newResolutionError(ErrorKindVersionRange, errbuilder.CodeInvalidArgument, format, args...)
}

func errDependencyCycle(keys []string) error {
	return newResolutionError(ErrorKindDependencyCycle, errbuilder.CodeFailedPrecondition,
		"There is a dependency cycle between artifacts '%s' that must be cut.", strings.Join(keys, "', '"))
}

// KindOf returns the resolution error kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}

func IsArtifactNotFound(err error) bool    { return isKind(err, ErrorKindArtifactNotFound) }
func IsIncompatibleVersion(err error) bool { return isKind(err, ErrorKindIncompatibleVersion) }
func IsDependencyCycle(err error) bool     { return isKind(err, ErrorKindDependencyCycle) }
func IsVersionRange(err error) bool        { return isKind(err, ErrorKindVersionRange) }

func isKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// CodeOf returns the error code of a resolution error, falling back to the
// errbuilder code for everything else.
func CodeOf(err error) errbuilder.ErrCode {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code
	}
	return errbuilder.CodeOf(err)
}
