package model

import (
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// NormalizeTag strips a single leading v/V from a release tag. Pre-release and
// build suffixes are kept as-is.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if strings.HasPrefix(tag, "v") || strings.HasPrefix(tag, "V") {
		return tag[1:]
	}
	return tag
}

// IsUpgradeAvailable reports whether candidateTag is strictly newer than the
// installed version, together with the normalized candidate version.
func IsUpgradeAvailable(installedVersion, candidateTag string) (bool, string) {
	candidate := NormalizeTag(candidateTag)
	if candidate == "" {
		return false, candidate
	}

	return CompareVersions(candidate, NormalizeTag(installedVersion)) > 0, candidate
}

// CompareVersions returns -1, 0 or +1. Versions that both parse as semantic
// versions are ordered by hashicorp/go-version, so a pre-release sorts below its
// release. Anything else falls back to a lenient dotted-numeric ordering that
// never fails.
func CompareVersions(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	return compareLenient(a, b)
}

// compareLenient compares the dotted numeric core segment by segment, counting
// non-numeric segments as zero and padding the shorter list with zeros. Equal
// cores are ordered by suffix: no suffix sorts above any suffix, other suffixes
// compare lexicographically.
func compareLenient(a, b string) int {
	coreA, suffixA := splitVersion(a)
	coreB, suffixB := splitVersion(b)

	for i := 0; i < max(len(coreA), len(coreB)); i++ {
		x, y := segmentAt(coreA, i), segmentAt(coreB, i)
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}

	switch {
	case suffixA == suffixB:
		return 0
	case suffixA == "":
		return 1
	case suffixB == "":
		return -1
	default:
		return strings.Compare(suffixA, suffixB)
	}
}

func splitVersion(v string) ([]int64, string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, ""
	}

	core, suffix := v, ""
	if idx := strings.IndexAny(v, "-+"); idx >= 0 {
		core, suffix = v[:idx], v[idx:]
	}

	parts := strings.Split(core, ".")
	segments := make([]int64, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, leadingNumber(p))
	}
	return segments, suffix
}

// leadingNumber parses the leading digits of s, returning 0 when there are none
func leadingNumber(s string) int64 {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func segmentAt(segments []int64, i int) int64 {
	if i < len(segments) {
		return segments[i]
	}
	return 0
}
