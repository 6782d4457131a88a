// Package version implements the two-part "major.minor" tags attached to
// todos. Every continuation of a todo gets the next tag in sequence.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// minorLimit is the first minor value that carries into major.
const minorLimit = 100

// Version is an immutable major.minor pair. Minor is always in [0, 99].
type Version struct {
	Major int
	Minor int
}

// Initial is the tag a todo starts with.
var Initial = Version{Major: 1, Minor: 0}

// Parse reads a "major.minor" string. It never fails: components that are
// missing or not integers become 0, negative values clamp to 0 and anything
// after a second dot is ignored. A minor above 99 clamps to 99 so that Next
// carries exactly as it would for the unclamped value.
func Parse(s string) Version {
	majorStr, minorStr, _ := strings.Cut(strings.TrimSpace(s), ".")
	if i := strings.IndexByte(minorStr, '.'); i >= 0 {
		minorStr = minorStr[:i]
	}

	v := Version{Major: atoiOrZero(majorStr), Minor: atoiOrZero(minorStr)}
	if v.Minor >= minorLimit {
		v.Minor = minorLimit - 1
	}
	return v
}

// Next returns the following version. Minor overflow at 100 resets minor
// to 0 and increments major; major has no upper bound.
func (v Version) Next() Version {
	next := Version{Major: v.Major, Minor: v.Minor + 1}
	if next.Minor >= minorLimit {
		next.Minor = 0
		next.Major++
	}
	return next
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// String renders the version with a zero-padded two digit minor.
func (v Version) String() string {
	return fmt.Sprintf("%d.%02d", v.Major, v.Minor)
}

// Next is shorthand for Parse(current).Next().String().
func Next(current string) string {
	return Parse(current).Next().String()
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
