// Package version implements the semantic version and artifact naming
// contract used by the pipeline.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic version (major.minor.patch).
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// InvalidVersionError reports a version string that could not be parsed.
type InvalidVersionError struct {
	Input string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version string: %q", e.Input)
}

// Parse parses a version string like "1.2.3". Missing trailing
// components default to 0. Non-numeric components fail with
// *InvalidVersionError.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, &InvalidVersionError{Input: s}
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}

	nums := [3]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, &InvalidVersionError{Input: s}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String formats the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the version incremented by the given kind. "major"
// resets minor and patch, "minor" resets patch, anything else is
// treated as a patch bump.
func Bump(v Version, kind string) Version {
	switch kind {
	case "major":
		return Version{Major: v.Major + 1}
	case "minor":
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// BumpString parses, bumps, and re-formats a version string.
func BumpString(s, kind string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Bump(v, kind).String(), nil
}

// ArtifactName derives the canonical artifact name for a package at a
// given version and commit. It is a pure function of its inputs so
// repeated archiving and re-publish detection stay deterministic.
func ArtifactName(pkg string, v Version, commit string) string {
	return fmt.Sprintf("%s-%s-%s", pkg, v, commit)
}
