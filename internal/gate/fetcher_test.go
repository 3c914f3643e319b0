package gate_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/drweldonhawaii/rvu-web-app/internal/gate"
)

func zipPayload(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("edits.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchDirectArchive(t *testing.T) {
	payload := zipPayload(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := gate.NewFetcher(gate.Options{Client: srv.Client()})
	got, ok := f.Fetch(context.Background(), srv.URL+"/license?file=edits.zip")
	if !ok {
		t.Fatal("expected archive")
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}
}

func TestFetchMinesInterstitialWithReferer(t *testing.T) {
	payload := zipPayload(t)
	var gateURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/license", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><a href="/files/zip/edits-v313r0-f1.zip">I accept</a></html>`)
	})
	mux.HandleFunc("/files/zip/edits-v313r0-f1.zip", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != gateURL {
			t.Errorf("Referer = %q, want %q", r.Header.Get("Referer"), gateURL)
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	gateURL = srv.URL + "/license"

	f := gate.NewFetcher(gate.Options{Client: srv.Client()})
	got, ok := f.Fetch(context.Background(), gateURL)
	if !ok {
		t.Fatal("expected archive via mined link")
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}
}

func TestFetchErrorStatusIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := gate.NewFetcher(gate.Options{Client: srv.Client()})
	if _, ok := f.Fetch(context.Background(), srv.URL); ok {
		t.Fatal("404 reported as success")
	}
}

func TestFetchUnminableInterstitialDumpsDebugPage(t *testing.T) {
	const page = `<html><body>No downloads here.</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	debugDir := filepath.Join(t.TempDir(), "debug")
	f := gate.NewFetcher(gate.Options{Client: srv.Client(), DebugDir: debugDir})
	if _, ok := f.Fetch(context.Background(), srv.URL); ok {
		t.Fatal("interstitial without link reported as success")
	}

	data, err := os.ReadFile(filepath.Join(debugDir, "last-license-page.html"))
	if err != nil {
		t.Fatalf("debug page not written: %v", err)
	}
	if string(data) != page {
		t.Fatalf("debug page = %q", data)
	}
}

func TestFetchMinedLinkNotArchiveIsAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/license", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<a href="/files/zip/edits.zip">dl</a>`)
	})
	var secondary int
	mux.HandleFunc("/files/zip/edits.zip", func(w http.ResponseWriter, r *http.Request) {
		secondary++
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<a href="/files/zip/edits.zip">still not a zip</a>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := gate.NewFetcher(gate.Options{Client: srv.Client()})
	if _, ok := f.Fetch(context.Background(), srv.URL+"/license"); ok {
		t.Fatal("non-archive secondary response reported as success")
	}
	// No retries beyond the single secondary fetch.
	if secondary != 1 {
		t.Fatalf("secondary fetch count = %d, want 1", secondary)
	}
}

func TestFetchNonArchiveNonHTMLIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 ..."))
	}))
	defer srv.Close()

	f := gate.NewFetcher(gate.Options{Client: srv.Client()})
	if _, ok := f.Fetch(context.Background(), srv.URL); ok {
		t.Fatal("PDF body reported as success")
	}
}
