package release

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifier names a single upstream dataset drop.
type Identifier struct {
	Year     int
	Quarter  int
	Version  int
	Revision int
}

// String renders the identifier in marker form, e.g. "2025q4 v313r0".
func (id Identifier) String() string {
	return fmt.Sprintf("%dq%d v%03dr%d", id.Year, id.Quarter, id.Version, id.Revision)
}

// NextQuarter advances the quarter, rolling the year past q4.
func (id Identifier) NextQuarter() Identifier {
	next := id
	if id.Quarter < 4 {
		next.Quarter++
	} else {
		next.Year++
		next.Quarter = 1
	}
	return next
}

var markerRE = regexp.MustCompile(`^(\d{4})q([1-4])\s+v(\d{3})r(\d+)$`)

// ParseMarker parses the single-line version marker format written by
// FormatMarker. Surrounding whitespace is ignored.
func ParseMarker(text string) (Identifier, error) {
	m := markerRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Identifier{}, fmt.Errorf("malformed version marker %q", strings.TrimSpace(text))
	}
	year, _ := strconv.Atoi(m[1])
	quarter, _ := strconv.Atoi(m[2])
	version, _ := strconv.Atoi(m[3])
	revision, _ := strconv.Atoi(m[4])
	return Identifier{Year: year, Quarter: quarter, Version: version, Revision: revision}, nil
}

// FormatMarker renders the identifier as the version marker file content,
// newline included.
func FormatMarker(id Identifier) string {
	return id.String() + "\n"
}
