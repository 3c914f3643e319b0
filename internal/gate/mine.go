package gate

import "regexp"

// A strategy tries one way an interstitial can embed the archive link.
// Strategies are pure text matchers; each returns the link or "".
type strategy struct {
	name string
	re   *regexp.Regexp
}

func (s strategy) find(html string) string {
	m := s.re.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return m[1]
}

// Mining strategies in priority order. First match wins; later strategies
// are progressively less precise, ending in a bare substring scan.
var strategies = []strategy{
	{"anchor-relative", regexp.MustCompile(`(?i)href=['"](/[^'"]+\.zip)['"]`)},
	{"anchor-absolute", regexp.MustCompile(`(?i)href=['"](https?://[^'"]+\.zip)['"]`)},
	{"meta-refresh", regexp.MustCompile(`(?i)http-equiv=["']refresh["'][^>]*content=["'][^"']*url=([^"']+\.zip)`)},
	{"script-location", regexp.MustCompile(`(?i)(?:window\.)?location(?:\.href)?\s*=\s*['"]([^'"]*\.zip)['"]`)},
	{"bare-url", regexp.MustCompile(`(?i)((?:https?://|/)[^"'\s<>]+\.zip)`)},
}

// MineArchiveLink scans interstitial HTML for an archive link, returning
// the first strategy's match and the strategy name, or ("", "") when
// nothing in the document looks like one.
func MineArchiveLink(html string) (link, strategyName string) {
	for _, s := range strategies {
		if found := s.find(html); found != "" {
			return found, s.name
		}
	}
	return "", ""
}
