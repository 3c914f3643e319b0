package updater_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/drweldonhawaii/rvu-web-app/internal/dataset"
	"github.com/drweldonhawaii/rvu-web-app/internal/release"
	"github.com/drweldonhawaii/rvu-web-app/internal/synclog"
	"github.com/drweldonhawaii/rvu-web-app/internal/updater"
)

const baseURL = "https://www.cms.gov/license/ama?file=/files/zip/medicare-ncci-2025q4-practitioner-ptp-edits-ccipra-v313r0-f1.zip"

type stubFetcher struct {
	payloads map[string][]byte
	calls    []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, bool) {
	f.calls = append(f.calls, url)
	payload, ok := f.payloads[url]
	return payload, ok
}

func (f *stubFetcher) countCalls(url string) int {
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

func archiveWithMember(t *testing.T, name string, lines []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(strings.Join(lines, "\n") + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func editsArchive(t *testing.T, row string) []byte {
	lines := []string{
		"Medicare NCCI PTP Edits", "", "Practitioner Services", "", "Quarterly", "",
		"Column1 Column2 Modifier",
		row,
	}
	return archiveWithMember(t, "ccipra.txt", lines)
}

func newSyncer(t *testing.T, outDir string, fetcher updater.Fetcher, journal updater.Journal) *updater.Syncer {
	t.Helper()
	tpl, err := release.NewTemplate(baseURL)
	if err != nil {
		t.Fatal(err)
	}
	s, err := updater.New(updater.Options{
		Template:  tpl,
		OutputDir: outDir,
		Fetcher:   fetcher,
		Journal:   journal,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func fileURLs(t *testing.T, id release.Identifier) (string, string) {
	t.Helper()
	tpl, err := release.NewTemplate(baseURL)
	if err != nil {
		t.Fatal(err)
	}
	return tpl.WithIdentifier(id).FilePair()
}

func TestSyncUpdatesToNextQuarter(t *testing.T) {
	outDir := t.TempDir()
	if err := dataset.WriteMarker(outDir, release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 0}); err != nil {
		t.Fatal(err)
	}

	accepted := release.Identifier{Year: 2026, Quarter: 1, Version: 314, Revision: 0}
	f1, f2 := fileURLs(t, accepted)
	fetcher := &stubFetcher{payloads: map[string][]byte{
		f1: editsArchive(t, "0001F 0213T 1"),
		f2: editsArchive(t, "0001F 36415 0"),
	}}

	result, err := newSyncer(t, outDir, fetcher, nil).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Status != "Updated to 2026q1 v314r0." {
		t.Fatalf("status = %q", result.Status)
	}
	if !strings.Contains(filepath.Base(result.Path), "-f1f2") {
		t.Fatalf("output path %q lacks -f1f2", result.Path)
	}

	marker, err := os.ReadFile(filepath.Join(outDir, dataset.MarkerFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(marker) != "2026q1 v314r0\n" {
		t.Fatalf("marker = %q", marker)
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatal(err)
	}
	csv := string(data)
	if !strings.Contains(csv, "0213T") || !strings.Contains(csv, "36415") {
		t.Fatalf("combined table missing rows: %q", csv)
	}
}

func TestSyncProbingShortCircuits(t *testing.T) {
	outDir := t.TempDir()
	first := release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 1}
	f1, f2 := fileURLs(t, first)
	fetcher := &stubFetcher{payloads: map[string][]byte{
		f1: editsArchive(t, "0001F 0213T 1"),
		f2: editsArchive(t, "0001F 36415 0"),
	}}

	if _, err := newSyncer(t, outDir, fetcher, nil).Sync(context.Background()); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	// Probe hits r1 twice (f1+f2), then the accepted release is fetched
	// once more per file. No other candidate may ever be requested.
	laterF1, _ := fileURLs(t, release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 2})
	if n := fetcher.countCalls(laterF1); n != 0 {
		t.Fatalf("later candidate fetched %d times after acceptance", n)
	}
	if n := fetcher.countCalls(f1); n != 2 {
		t.Fatalf("accepted f1 fetched %d times, want 2 (probe + download)", n)
	}
	if len(fetcher.calls) != 4 {
		t.Fatalf("total fetches = %d, want 4", len(fetcher.calls))
	}
}

func TestSyncUpToDateFetchesNoData(t *testing.T) {
	outDir := t.TempDir()
	basePath := dataset.OutputPath(baseURL, outDir)
	if err := os.WriteFile(basePath, []byte("Column 1,Column 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := dataset.WriteMarker(outDir, release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 0}); err != nil {
		t.Fatal(err)
	}

	fetcher := &stubFetcher{}
	result, err := newSyncer(t, outDir, fetcher, nil).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Status != updater.StatusUpToDate {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Path != basePath {
		t.Fatalf("path = %q, want %q", result.Path, basePath)
	}
	// Eight probed candidates, file 1 absent each time, no data fetches.
	if len(fetcher.calls) != 8 {
		t.Fatalf("fetch count = %d, want 8", len(fetcher.calls))
	}
}

func TestSyncBootstrapsWhenNothingOnDisk(t *testing.T) {
	outDir := t.TempDir()
	base := release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 0}
	f1, f2 := fileURLs(t, base)
	fetcher := &stubFetcher{payloads: map[string][]byte{
		f1: editsArchive(t, "0001F 0213T 1"),
		f2: editsArchive(t, "0001F 36415 0"),
	}}

	result, err := newSyncer(t, outDir, fetcher, nil).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Status != "Downloaded initial version 2025q4 v313r0." {
		t.Fatalf("status = %q", result.Status)
	}
	if _, ok := dataset.ReadMarker(outDir); !ok {
		t.Fatal("marker not written after bootstrap")
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestSyncMalformedMarkerFallsBackToURL(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, dataset.MarkerFileName), []byte("scrambled\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fetcher := &stubFetcher{}
	// Bootstrap fails because nothing is served; the run must still have
	// probed candidates derived from the URL, not the scrambled marker.
	if _, err := newSyncer(t, outDir, fetcher, nil).Sync(context.Background()); err == nil {
		t.Fatal("expected bootstrap failure with nothing served")
	}
	if len(fetcher.calls) == 0 {
		t.Fatal("no probes issued")
	}
	wantF1, _ := fileURLs(t, release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 1})
	if fetcher.calls[0] != wantF1 {
		t.Fatalf("first probe = %q, want %q (URL-derived revision+1)", fetcher.calls[0], wantF1)
	}
}

func TestSyncMissingDataMemberAborts(t *testing.T) {
	outDir := t.TempDir()
	previous := release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 0}
	if err := dataset.WriteMarker(outDir, previous); err != nil {
		t.Fatal(err)
	}

	accepted := release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 1}
	f1, f2 := fileURLs(t, accepted)
	fetcher := &stubFetcher{payloads: map[string][]byte{
		f1: archiveWithMember(t, "manual.pdf", []string{"not data"}),
		f2: archiveWithMember(t, "manual.pdf", []string{"not data"}),
	}}

	_, err := newSyncer(t, outDir, fetcher, nil).Sync(context.Background())
	if err == nil {
		t.Fatal("expected fatal run error for missing data member")
	}

	// On-disk state must be untouched.
	marker, ok := dataset.ReadMarker(outDir)
	if !ok || marker != previous {
		t.Fatalf("marker changed: (%+v, %v)", marker, ok)
	}
	if _, statErr := os.Stat(dataset.OutputPath(baseURL, outDir)); !os.IsNotExist(statErr) {
		t.Fatalf("unexpected table file: %v", statErr)
	}
}

func TestSyncRecordsJournalRun(t *testing.T) {
	outDir := t.TempDir()
	store, err := synclog.Open(filepath.Join(outDir, "synclog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := release.Identifier{Year: 2025, Quarter: 4, Version: 313, Revision: 0}
	f1, f2 := fileURLs(t, base)
	fetcher := &stubFetcher{payloads: map[string][]byte{
		f1: editsArchive(t, "0001F 0213T 1"),
		f2: editsArchive(t, "0001F 36415 0"),
	}}

	if _, err := newSyncer(t, outDir, fetcher, store).Sync(context.Background()); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("journal runs = %d, want 1", len(runs))
	}
	if runs[0].Release != "2025q4 v313r0" || runs[0].File1Hash == "" {
		t.Fatalf("journal run = %+v", runs[0])
	}
}
