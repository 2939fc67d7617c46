package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/superagent-dev/superagent/internal/config"
	"github.com/superagent-dev/superagent/internal/errors"
	"github.com/superagent-dev/superagent/internal/log"
)

// indexFileName is the single JSON file holding all known snapshots
const indexFileName = "index.json"

// excludedDirs are operational directories skipped by project sweeps:
// version-control metadata, dependency caches, virtual environments, and
// the tool's own state directory.
var excludedDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	".superagent":  true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// Store persists and retrieves per-file snapshots for one project, backed
// by a single JSON index file. The in-memory index may be fed by many
// concurrently-captured snapshots, but all index mutation and every write
// of the index file is serialized behind one mutex. Concurrent processes
// sharing the same index file are not safe.
type Store struct {
	root   string // absolute project root
	dir    string // absolute snapshot directory
	cfg    config.Tracking
	logger *log.Logger

	mu    sync.Mutex
	index map[string]*FileSnapshot
}

// NewStore creates a snapshot store for the given project root and loads
// the persisted index if one exists.
func NewStore(root string, cfg config.Tracking, logger *log.Logger) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to resolve project root", err)
	}

	dir := cfg.SnapshotDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(absRoot, dir)
	}

	if logger == nil {
		logger = log.DefaultLogger()
	}

	s := &Store{
		root:   absRoot,
		dir:    dir,
		cfg:    cfg,
		logger: logger.With("component", "snapshot"),
		index:  make(map[string]*FileSnapshot),
	}

	if err := s.loadIndex(); err != nil {
		return nil, err
	}

	return s, nil
}

// Root returns the absolute project root
func (s *Store) Root() string {
	return s.root
}

// IndexPath returns the path of the persisted index file
func (s *Store) IndexPath() string {
	return filepath.Join(s.dir, indexFileName)
}

// loadIndex reads the persisted index. A missing index starts fresh.
func (s *Store) loadIndex() error {
	data, err := os.ReadFile(s.IndexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeSnapshotIndexLoad, "failed to read snapshot index", err)
	}

	var entries map[string]indexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotIndexLoad, "failed to parse snapshot index", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]*FileSnapshot, len(entries))
	for path, entry := range entries {
		s.index[path] = entry.toSnapshot()
	}

	return nil
}

// persistLocked rewrites the whole index file. The caller must hold s.mu.
func (s *Store) persistLocked() error {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotIndexSave, "failed to create snapshot directory", err)
	}

	entries := make(map[string]indexEntry, len(s.index))
	for path, snap := range s.index {
		entries[path] = snap.toEntry()
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotIndexSave, "failed to marshal snapshot index", err)
	}

	if err := os.WriteFile(s.IndexPath(), data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotIndexSave, "failed to write snapshot index", err)
	}

	return nil
}

// capture reads one file and builds its snapshot. A missing, unreadable,
// or undecodable file yields nil rather than an error so one bad file
// never aborts a batch.
func (s *Store) capture(relPath string) *FileSnapshot {
	full := filepath.Join(s.root, filepath.FromSlash(relPath))

	info, err := os.Stat(full)
	if err != nil {
		s.logger.Debug("file not snapshottable", "path", relPath, "reason", err)
		return nil
	}
	if info.IsDir() {
		return nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		s.logger.Warn("failed to read file for snapshot", "path", relPath, "error", err)
		return nil
	}
	if !utf8.Valid(data) {
		s.logger.Debug("skipping undecodable file", "path", relPath)
		return nil
	}

	snap := &FileSnapshot{
		Path:         filepath.ToSlash(relPath),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Hash:         HashContent(data),
		SnapshotTime: time.Now(),
	}
	if s.cfg.CacheContent {
		snap.Content = string(data)
		snap.HasContent = true
	}

	return snap
}

// Peek captures the current state of a file without touching the index or
// the persisted index file. Used when a comparison baseline must not be
// disturbed.
func (s *Store) Peek(relPath string) *FileSnapshot {
	return s.capture(relPath)
}

// Take snapshots one file, records it in the index, and persists the
// index. A nil result without error means the file could not be captured.
func (s *Store) Take(ctx context.Context, relPath string) (*FileSnapshot, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := s.capture(relPath)
	if snap == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[snap.Path] = snap
	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	return snap, nil
}

// TakeBatch snapshots many files concurrently and persists the index once
// at the end instead of once per file. Per-file failures are swallowed and
// reported in aggregate; only index persistence or cancellation fails the
// batch.
func (s *Store) TakeBatch(ctx context.Context, relPaths []string) (map[string]*FileSnapshot, error) {
	if !s.cfg.Enabled || len(relPaths) == 0 {
		return map[string]*FileSnapshot{}, nil
	}

	results := make([]*FileSnapshot, len(relPaths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU() * 2)

	for i, relPath := range relPaths {
		i, relPath := i, relPath
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.capture(relPath)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot batch cancelled: %w", err)
	}

	taken := make(map[string]*FileSnapshot, len(relPaths))
	failed := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range results {
		if snap == nil {
			failed++
			continue
		}
		s.index[snap.Path] = snap
		taken[snap.Path] = snap
	}
	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	if failed > 0 {
		s.logger.Warn("some files could not be snapshotted",
			"failed", failed, "taken", len(taken))
	}

	return taken, nil
}

// TakeProject sweeps every file under the project root, excluding
// operational directories, and snapshots all discovered files concurrently.
func (s *Store) TakeProject(ctx context.Context) (map[string]*FileSnapshot, error) {
	if !s.cfg.Enabled {
		return map[string]*FileSnapshot{}, nil
	}

	paths, err := s.projectFiles()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotSweepFail, "failed to enumerate project files", err)
	}

	s.logger.Info("taking project snapshot", "files", len(paths))
	taken, err := s.TakeBatch(ctx, paths)
	if err != nil {
		return nil, err
	}

	// A project sweep is a full baseline: entries for files no longer on
	// disk are stale and must not survive it.
	onDisk := make(map[string]bool, len(paths))
	for _, p := range paths {
		onDisk[p] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for path := range s.index {
		if !onDisk[path] {
			delete(s.index, path)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Debug("pruned stale index entries", "count", pruned)
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	}

	return taken, nil
}

// PeekProject captures the current state of every project file without
// touching the index, for comparisons that must not disturb the baseline.
func (s *Store) PeekProject(ctx context.Context) (map[string]*FileSnapshot, error) {
	if !s.cfg.Enabled {
		return map[string]*FileSnapshot{}, nil
	}

	paths, err := s.projectFiles()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotSweepFail, "failed to enumerate project files", err)
	}

	results := make([]*FileSnapshot, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU() * 2)
	for i, relPath := range paths {
		i, relPath := i, relPath
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.capture(relPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	taken := make(map[string]*FileSnapshot, len(paths))
	for _, snap := range results {
		if snap != nil {
			taken[snap.Path] = snap
		}
	}
	return taken, nil
}

// projectFiles enumerates project-relative paths of every trackable file
func (s *Store) projectFiles() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, per-file recovery semantics
			s.logger.Debug("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != s.root && excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// Get returns the indexed snapshot for a path, or nil
func (s *Store) Get(relPath string) *FileSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index[filepath.ToSlash(relPath)]
}

// Index returns a copy of the current index mapping
func (s *Store) Index() map[string]*FileSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*FileSnapshot, len(s.index))
	for path, snap := range s.index {
		out[path] = snap
	}
	return out
}

// Refresh re-snapshots a path after a mutation so the index stays current.
// If the file no longer exists its index entry is dropped.
func (s *Store) Refresh(ctx context.Context, relPath string) error {
	if !s.cfg.Enabled {
		return nil
	}

	snap, err := s.Take(ctx, relPath)
	if err != nil {
		return err
	}
	if snap != nil {
		return nil
	}

	// Capture failed: if the file is gone, forget it
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, tracked := s.index[filepath.ToSlash(relPath)]; tracked {
		delete(s.index, filepath.ToSlash(relPath))
		return s.persistLocked()
	}
	return nil
}

// Cleanup removes snapshots older than the configured retention window and
// reports how many were dropped.
func (s *Store) Cleanup() (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for path, snap := range s.index {
		if snap.SnapshotTime.Before(cutoff) {
			delete(s.index, path)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}

	s.logger.Info("cleaned up expired snapshots", "removed", removed)
	return removed, s.persistLocked()
}
