package release

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrMissingToken indicates a URL lacks the version or quarter token the
// template requires.
var ErrMissingToken = errors.New("missing token")

var (
	// v313r0, delimited by -, _, or the string boundary.
	versionRE = regexp.MustCompile(`(?i)(?:^|[-_])v(\d{3})r(\d+)(?:[-_]|$)`)
	// 2025q4
	quarterRE = regexp.MustCompile(`(?i)(20\d{2})q([1-4])`)
	// -f1 / -f2 immediately before the extension or another delimiter.
	fileNumberRE = regexp.MustCompile(`(?i)-f([12])(?:\.zip|[-_])`)
	zipSuffixRE  = regexp.MustCompile(`(?i)\.zip$`)
)

// Template is a license-gate URL with independently rewritable release
// fields. Rewrites splice digits in place, so every surrounding character
// of the original URL survives verbatim.
type Template struct {
	url string
}

// NewTemplate validates that the URL carries both a v###r# token and a
// YYYYq# token. Either one missing is a configuration error.
func NewTemplate(url string) (Template, error) {
	if versionRE.FindStringSubmatchIndex(url) == nil {
		return Template{}, fmt.Errorf("%w: no v###r# in %q", ErrMissingToken, url)
	}
	if quarterRE.FindStringSubmatchIndex(url) == nil {
		return Template{}, fmt.Errorf("%w: no YYYYq# in %q", ErrMissingToken, url)
	}
	return Template{url: url}, nil
}

// URL returns the templated URL text.
func (t Template) URL() string {
	return t.url
}

// Version reports the version and revision embedded in the URL.
func (t Template) Version() (version, revision int) {
	m := versionRE.FindStringSubmatch(t.url)
	version, _ = strconv.Atoi(m[1])
	revision, _ = strconv.Atoi(m[2])
	return version, revision
}

// Quarter reports the year and quarter embedded in the URL.
func (t Template) Quarter() (year, quarter int) {
	m := quarterRE.FindStringSubmatch(t.url)
	year, _ = strconv.Atoi(m[1])
	quarter, _ = strconv.Atoi(m[2])
	return year, quarter
}

// Identifier assembles the full release identifier from the URL fields.
func (t Template) Identifier() Identifier {
	version, revision := t.Version()
	year, quarter := t.Quarter()
	return Identifier{Year: year, Quarter: quarter, Version: version, Revision: revision}
}

// WithVersion returns a template with the version token rewritten to
// v{version:03d}r{revision}.
func (t Template) WithVersion(version, revision int) Template {
	idx := versionRE.FindStringSubmatchIndex(t.url)
	// idx[2:4] is the version digit span, idx[4:6] the revision digit span.
	rewritten := t.url[:idx[2]] +
		fmt.Sprintf("%03d", version) +
		t.url[idx[3]:idx[4]] +
		strconv.Itoa(revision) +
		t.url[idx[5]:]
	return Template{url: rewritten}
}

// WithQuarter returns a template with the quarter token rewritten to
// {year}q{quarter}.
func (t Template) WithQuarter(year, quarter int) Template {
	idx := quarterRE.FindStringSubmatchIndex(t.url)
	rewritten := t.url[:idx[2]] +
		strconv.Itoa(year) +
		t.url[idx[3]:idx[4]] +
		strconv.Itoa(quarter) +
		t.url[idx[5]:]
	return Template{url: rewritten}
}

// WithIdentifier rewrites both tokens from the identifier.
func (t Template) WithIdentifier(id Identifier) Template {
	return t.WithQuarter(id.Year, id.Quarter).WithVersion(id.Version, id.Revision)
}

// WithFileNumber rewrites the companion-file segment to -f{n}. When the URL
// carries no -f segment yet, one is inserted before the .zip extension.
func (t Template) WithFileNumber(n int) Template {
	if n != 1 && n != 2 {
		// Releases ship exactly two companion files.
		panic(fmt.Sprintf("release: file number %d out of range", n))
	}
	if idx := fileNumberRE.FindStringSubmatchIndex(t.url); idx != nil {
		return Template{url: t.url[:idx[2]] + strconv.Itoa(n) + t.url[idx[3]:]}
	}
	return Template{url: zipSuffixRE.ReplaceAllString(t.url, fmt.Sprintf("-f%d.zip", n))}
}

// FilePair returns the URLs of both companion files of the release the
// template currently points at.
func (t Template) FilePair() (file1, file2 string) {
	return t.WithFileNumber(1).URL(), t.WithFileNumber(2).URL()
}
