package specdiff

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Bump is a semantic-version increment.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
)

// Recommendation pairs a bump with the dominant factor behind it.
type Recommendation struct {
	Bump   Bump   `json:"bump"`
	Reason string `json:"reason"`
}

// Recommend derives the version bump a diff implies: any breaking
// change forces major, otherwise any addition gives minor, otherwise
// patch.
func Recommend(d *SpecDiff) Recommendation {
	switch {
	case len(d.Breaking) > 0:
		return Recommendation{Bump: BumpMajor, Reason: fmt.Sprintf("%d breaking change(s)", len(d.Breaking))}
	case len(d.NonBreaking) > 0:
		return Recommendation{Bump: BumpMinor, Reason: fmt.Sprintf("%d addition(s)", len(d.NonBreaking))}
	case len(d.DocsOnly) > 0:
		return Recommendation{Bump: BumpPatch, Reason: "documentation only"}
	default:
		return Recommendation{Bump: BumpPatch, Reason: "no API changes"}
	}
}

// NextVersion applies bump to a version string and returns the
// incremented version. The leading v is optional and preserved. A
// prerelease suffix is finalized by a patch bump (1.2.3-rc.1 becomes
// 1.2.3) and dropped by the others; build metadata is always dropped.
func NextVersion(current string, bump Bump) (string, error) {
	v := current
	hadPrefix := strings.HasPrefix(v, "v")
	if !hadPrefix {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("specdiff: invalid version %q", current)
	}
	v = semver.Canonical(v)
	pre := ""
	if i := strings.IndexByte(v, '-'); i >= 0 {
		pre = v[i:]
		v = v[:i]
	}
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	patch, _ := strconv.Atoi(parts[2])
	switch bump {
	case BumpMajor:
		major, minor, patch = major+1, 0, 0
	case BumpMinor:
		minor, patch = minor+1, 0
	case BumpPatch:
		if pre == "" {
			patch++
		}
		// With a prerelease, patch just finalizes the release triple.
	default:
		return "", fmt.Errorf("specdiff: unknown bump %q", string(bump))
	}
	next := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if hadPrefix {
		next = "v" + next
	}
	return next, nil
}
