// Package version implements ordering of dotted app version identifiers.
//
// Mobile builds report versions like "1.0.6". Comparison is positional on
// the numeric components, with missing trailing components treated as 0,
// so "1.0" and "1.0.0" are equal.
package version

import (
	"strconv"
	"strings"
)

// Version is a parsed dotted version identifier. It is never mutated after
// Parse and is safe to share across goroutines.
type Version []int

// Parse extracts the numeric components of a dotted version string.
// It never fails: empty or non-numeric components parse as 0. The version
// gate must not take traffic down over an unexpected header format, so
// parse ambiguity resolves to the zero version rather than an error.
func Parse(s string) Version {
	parts := strings.Split(strings.TrimSpace(s), ".")
	v := make(Version, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			n = 0
		}
		v[i] = n
	}
	return v
}

// Compare returns -1, 0 or 1 ordering a against b. The shorter identifier
// is padded with zero components, and the first unequal pair decides.
func Compare(a, b Version) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := a.component(i), b.component(i)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is at or above min.
func (v Version) AtLeast(min Version) bool {
	return Compare(v, min) >= 0
}

// String renders the components back in dotted form.
func (v Version) String() string {
	if len(v) == 0 {
		return "0"
	}
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

func (v Version) component(i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}
