package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/drweldonhawaii/rvu-web-app/internal/fileutil"
	"github.com/drweldonhawaii/rvu-web-app/internal/release"
)

// MarkerFileName is the version marker file inside the output directory.
const MarkerFileName = "version.txt"

var (
	fileSuffixRE = regexp.MustCompile(`(?i)-f[12]$`)
	ccipraTailRE = regexp.MustCompile(`(?i)ccipra-[^/\\]+$`)
)

// OutputPath derives the deterministic combined-table path for a release
// file URL. The embedded file name is reduced to its stable "ccipra-..."
// tail when present, the companion-file suffix is dropped, and "-f1f2.csv"
// appended.
func OutputPath(fileURL, outDir string) string {
	name := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		if f := u.Query().Get("file"); f != "" {
			name = f
		} else if u.Path != "" {
			name = u.Path
		}
	}
	base := path.Base(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	stem = fileSuffixRE.ReplaceAllString(stem, "")
	if tail := ccipraTailRE.FindString(stem); tail != "" {
		stem = tail
	}
	return filepath.Join(outDir, stem+"-f1f2.csv")
}

// WriteTable persists the table as CSV, header row first. The write is
// atomic so a crash mid-write leaves any previous table intact.
func WriteTable(t Table, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}

	if err := fileutil.WriteFileAtomic(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write table %s: %w", outPath, err)
	}
	return nil
}

// WriteMarker records the identifier as the current on-disk release.
// Callers must only invoke this after WriteTable succeeded.
func WriteMarker(outDir string, id release.Identifier) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	markerPath := filepath.Join(outDir, MarkerFileName)
	if err := fileutil.WriteFileAtomic(markerPath, []byte(release.FormatMarker(id)), 0o644); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}
	return nil
}

// ReadMarker loads the current release marker. A missing or malformed
// marker reports ok=false; it never fails the caller.
func ReadMarker(outDir string) (release.Identifier, bool) {
	data, err := os.ReadFile(filepath.Join(outDir, MarkerFileName))
	if err != nil {
		return release.Identifier{}, false
	}
	id, err := release.ParseMarker(string(data))
	if err != nil {
		return release.Identifier{}, false
	}
	return id, true
}
