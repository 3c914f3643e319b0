package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/zeebo/xxh3"

	"github.com/drweldonhawaii/rvu-web-app/internal/dataset"
	"github.com/drweldonhawaii/rvu-web-app/internal/release"
	"github.com/drweldonhawaii/rvu-web-app/internal/synclog"
)

// StatusUpToDate is returned when probing found nothing newer and the
// combined table already exists.
const StatusUpToDate = "Up to date — no newer release found."

// ErrLocked indicates another sync holds the output-directory lock.
var ErrLocked = errors.New("sync already running for output directory")

// Fetcher retrieves one archive through the license gate. ok=false means
// the archive is absent for any reason; absence is never fatal to probing.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, bool)
}

// Journal records completed sync runs. A nil journal disables recording.
type Journal interface {
	Record(ctx context.Context, run synclog.Run) error
}

// Options configures a Syncer.
type Options struct {
	Template  release.Template
	OutputDir string
	Fetcher   Fetcher
	Journal   Journal
	Logger    *slog.Logger
}

// Result is the terminal output of one sync run.
type Result struct {
	Path    string
	Status  string
	Release release.Identifier
}

// Syncer performs the resolve-and-sync operation. It assumes a single
// writer per output directory and enforces that with a file lock.
type Syncer struct {
	template release.Template
	outDir   string
	fetcher  Fetcher
	journal  Journal
	logger   *slog.Logger
	lock     *flock.Flock
}

// New constructs a Syncer.
func New(opts Options) (*Syncer, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("updater requires a fetcher")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("updater requires an output directory")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Syncer{
		template: opts.Template,
		outDir:   opts.OutputDir,
		fetcher:  opts.Fetcher,
		journal:  opts.Journal,
		logger:   logger,
		lock:     flock.New(filepath.Join(opts.OutputDir, ".sync.lock")),
	}, nil
}

// Sync resolves the newest available release and brings the output
// directory up to date. Safe to re-invoke at any time; a run that finds
// nothing newer touches no on-disk state.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure output directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return Result{}, ErrLocked
	}
	defer func() { _ = s.lock.Unlock() }()

	started := time.Now()
	result, hashes, err := s.run(ctx)
	s.record(ctx, started, result, hashes, err)
	return result, err
}

type payloadHashes struct {
	file1, file2 string
}

func (s *Syncer) run(ctx context.Context) (Result, payloadHashes, error) {
	current, fromMarker := dataset.ReadMarker(s.outDir)
	if !fromMarker {
		current = s.template.Identifier()
	}
	s.logger.Info("resolving release", "current", current.String(), "from_marker", fromMarker)

	if accepted, ok := s.probe(ctx, current); ok {
		tpl := s.template.WithIdentifier(accepted)
		path, hashes, err := s.downloadAndPersist(ctx, tpl, accepted)
		if err != nil {
			return Result{}, hashes, err
		}
		result := Result{
			Path:    path,
			Status:  fmt.Sprintf("Updated to %s.", accepted),
			Release: accepted,
		}
		s.logger.Info("release updated", "release", accepted.String(), "path", path)
		return result, hashes, nil
	}

	basePath := dataset.OutputPath(s.template.WithFileNumber(1).URL(), s.outDir)
	if _, err := os.Stat(basePath); err == nil {
		s.logger.Info("no newer release", "current", current.String())
		return Result{Path: basePath, Status: StatusUpToDate, Release: current}, payloadHashes{}, nil
	}

	// Nothing on disk yet: bootstrap from the configured base release.
	base := s.template.Identifier()
	path, hashes, err := s.downloadAndPersist(ctx, s.template, base)
	if err != nil {
		return Result{}, hashes, err
	}
	result := Result{
		Path:    path,
		Status:  fmt.Sprintf("Downloaded initial version %s.", base),
		Release: base,
	}
	s.logger.Info("bootstrapped dataset", "release", base.String(), "path", path)
	return result, hashes, nil
}

// probe walks the candidate sequence in priority order and returns the
// first release for which both companion files are served.
func (s *Syncer) probe(ctx context.Context, current release.Identifier) (release.Identifier, bool) {
	for _, candidate := range release.Candidates(current) {
		tpl := s.template.WithIdentifier(candidate)
		file1, file2 := tpl.FilePair()
		if _, ok := s.fetcher.Fetch(ctx, file1); !ok {
			continue
		}
		if _, ok := s.fetcher.Fetch(ctx, file2); !ok {
			continue
		}
		return candidate, true
	}
	return release.Identifier{}, false
}

// downloadAndPersist fetches both companion files of the release the
// template points at, merges them, and writes the combined table followed
// by the version marker. Any failure leaves the previous table and marker
// untouched.
func (s *Syncer) downloadAndPersist(ctx context.Context, tpl release.Template, id release.Identifier) (string, payloadHashes, error) {
	file1URL, file2URL := tpl.FilePair()

	payload1, ok := s.fetcher.Fetch(ctx, file1URL)
	if !ok {
		return "", payloadHashes{}, fmt.Errorf("release %s: file 1 unavailable", id)
	}
	payload2, ok := s.fetcher.Fetch(ctx, file2URL)
	if !ok {
		return "", payloadHashes{}, fmt.Errorf("release %s: file 2 unavailable", id)
	}
	hashes := payloadHashes{
		file1: fmt.Sprintf("%016x", xxh3.Hash(payload1)),
		file2: fmt.Sprintf("%016x", xxh3.Hash(payload2)),
	}

	table1, err := extractAndParse(payload1)
	if err != nil {
		return "", hashes, fmt.Errorf("release %s file 1: %w", id, err)
	}
	table2, err := extractAndParse(payload2)
	if err != nil {
		return "", hashes, fmt.Errorf("release %s file 2: %w", id, err)
	}
	merged := dataset.Merge(table1, table2)

	path := dataset.OutputPath(file1URL, s.outDir)
	if err := dataset.WriteTable(merged, path); err != nil {
		return "", hashes, err
	}
	// Marker strictly after the table write.
	if err := dataset.WriteMarker(s.outDir, id); err != nil {
		return "", hashes, err
	}
	return path, hashes, nil
}

func extractAndParse(payload []byte) (dataset.Table, error) {
	member, err := dataset.Extract(payload)
	if err != nil {
		return dataset.Table{}, err
	}
	return dataset.Parse(member.Name, member.Data)
}

func (s *Syncer) record(ctx context.Context, started time.Time, result Result, hashes payloadHashes, runErr error) {
	if s.journal == nil {
		return
	}
	run := synclog.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Status:     result.Status,
		Release:    result.Release.String(),
		OutputPath: result.Path,
		File1Hash:  hashes.file1,
		File2Hash:  hashes.file2,
	}
	if runErr != nil {
		run.Status = "failed"
		run.Release = ""
		run.Error = runErr.Error()
	}
	if err := s.journal.Record(ctx, run); err != nil {
		s.logger.Warn("record sync run", "error", err)
	}
}
