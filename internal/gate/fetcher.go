package gate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drweldonhawaii/rvu-web-app/internal/dataset"
)

// DefaultTimeout bounds a single gate round trip.
const DefaultTimeout = 60 * time.Second

// The gate refuses obviously non-browser clients.
const userAgent = "Mozilla/5.0 (compatible; NCCI-Puller/3.0)"

const debugPageName = "last-license-page.html"

// HTTPDoer describes the HTTP client used by the fetcher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Fetcher. All fields are optional.
type Options struct {
	Client   HTTPDoer
	Timeout  time.Duration
	DebugDir string
	Logger   *slog.Logger
}

// Fetcher retrieves release archives through the license gate.
type Fetcher struct {
	client   HTTPDoer
	debugDir string
	logger   *slog.Logger
}

// NewFetcher builds a gate fetcher. When no client is supplied a default
// one with the standard timeout is created.
func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fetcher{client: client, debugDir: opts.DebugDir, logger: logger}
}

// Fetch retrieves the archive behind gateURL. It reports ok=false whenever
// a valid archive could not be obtained, regardless of cause: transport
// errors, HTTP errors, and interstitials without a minable link all
// disqualify the fetch without failing the caller.
func (f *Fetcher) Fetch(ctx context.Context, gateURL string) ([]byte, bool) {
	body, contentType, ok := f.get(ctx, gateURL, "")
	if !ok {
		return nil, false
	}
	if dataset.IsZip(body) {
		return body, true
	}

	if !strings.Contains(strings.ToLower(contentType), "html") {
		f.logger.Debug("gate returned neither archive nor HTML", "url", gateURL, "content_type", contentType)
		return nil, false
	}
	html := string(body)

	link, strategy := MineArchiveLink(html)
	if link == "" {
		f.logger.Debug("no archive link in interstitial", "url", gateURL)
		f.dumpDebugPage(html)
		return nil, false
	}
	resolved := resolveLink(link, gateURL)
	f.logger.Debug("mined archive link", "url", resolved, "strategy", strategy)

	// Single secondary fetch, with the gate page as referrer.
	body, _, ok = f.get(ctx, resolved, gateURL)
	if ok && dataset.IsZip(body) {
		return body, true
	}
	f.dumpDebugPage(html)
	return nil, false
}

func (f *Fetcher) get(ctx context.Context, target, referer string) (body []byte, contentType string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		f.logger.Debug("build gate request", "url", target, "error", err)
		return nil, "", false
	}
	req.Header.Set("User-Agent", userAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("gate request failed", "url", target, "error", err)
		return nil, "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		f.logger.Debug("gate returned error status", "url", target, "status", resp.StatusCode)
		return nil, "", false
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Debug("read gate response", "url", target, "error", err)
		return nil, "", false
	}
	return body, resp.Header.Get("Content-Type"), true
}

// resolveLink makes a mined link absolute against the gate host.
func resolveLink(link, gateURL string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	if ref.IsAbs() {
		return link
	}
	base, err := url.Parse(gateURL)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// dumpDebugPage keeps the last interstitial around for inspection.
// Strictly best effort: any failure here is swallowed so diagnostics can
// never change a fetch outcome.
func (f *Fetcher) dumpDebugPage(html string) {
	if f.debugDir == "" {
		return
	}
	if err := os.MkdirAll(f.debugDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(f.debugDir, debugPageName), []byte(html), 0o644)
}
