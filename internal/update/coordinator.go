package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/superagent-dev/superagent/internal/change"
	"github.com/superagent-dev/superagent/internal/config"
	"github.com/superagent-dev/superagent/internal/errors"
	"github.com/superagent-dev/superagent/internal/log"
	"github.com/superagent-dev/superagent/internal/patch"
	"github.com/superagent-dev/superagent/internal/snapshot"
)

// Decision describes how a single file update should be shipped: as a
// deletion, as full content, or as a patch against a known prior version.
type Decision struct {
	// Path is the project-relative target
	Path string `json:"path"`
	// Type is the change classification driving the mutation
	Type change.Type `json:"type"`
	// DiffRatio is the measured dissimilarity behind the decision
	DiffRatio float64 `json:"diff_ratio"`
	// UseIncremental is true when the payload is a patch instead of full content
	UseIncremental bool `json:"use_incremental"`
	// Patch is the unified diff payload for incremental updates
	Patch string `json:"patch,omitempty"`
	// Content is the full new content for non-incremental creates/updates
	Content string `json:"content,omitempty"`
	// Record is the underlying comparison result
	Record *change.Record `json:"-"`
}

// Coordinator orchestrates the before/after snapshot lifecycle around task
// execution and turns comparisons into applied filesystem updates.
type Coordinator struct {
	store    *snapshot.Store
	detector *change.Detector
	cfg      config.Tracking
	logger   *log.Logger
}

// NewCoordinator creates a coordinator over the given snapshot store
func NewCoordinator(store *snapshot.Store, cfg config.Tracking, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Coordinator{
		store:    store,
		detector: change.NewDetector(cfg.IncrementalThreshold),
		cfg:      cfg,
		logger:   logger.With("component", "update"),
	}
}

// Detector exposes the coordinator's change detector
func (c *Coordinator) Detector() *change.Detector {
	return c.detector
}

// DescribeUpdate compares a file's prior state against its current state
// and returns a structured decision. A nil before falls back to the
// persisted index; a nil after falls back to current disk state, captured
// without persisting so the comparison baseline stays intact. A nil
// decision means no change.
func (c *Coordinator) DescribeUpdate(ctx context.Context, relPath string, before, after *snapshot.FileSnapshot) (*Decision, error) {
	if !c.cfg.Enabled {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if before == nil {
		before = c.store.Get(relPath)
	}
	if after == nil {
		after = c.store.Peek(relPath)
	}

	rec := c.detector.Compare(before, after)
	if rec == nil {
		return nil, nil
	}

	d := &Decision{
		Path:      rec.Path,
		Type:      rec.Type,
		DiffRatio: rec.DiffRatio,
		Record:    rec,
	}

	switch rec.Type {
	case change.TypeDeleted:
		// No payload: the mutation is removal

	case change.TypeModified:
		if rec.Patch != "" {
			d.UseIncremental = true
			d.Patch = rec.Patch
			break
		}
		content, err := c.fullContent(after)
		if err != nil {
			return nil, err
		}
		d.Content = content

	case change.TypeAdded:
		content, err := c.fullContent(after)
		if err != nil {
			return nil, err
		}
		d.Content = content
	}

	c.logger.Debug("described update",
		"path", d.Path, "type", string(d.Type),
		"diff_ratio", d.DiffRatio, "incremental", d.UseIncremental)

	return d, nil
}

// fullContent returns the text of a snapshot, reading from disk when
// content caching is disabled.
func (c *Coordinator) fullContent(snap *snapshot.FileSnapshot) (string, error) {
	if snap.HasContent {
		return snap.Content, nil
	}

	full, err := resolveWithinRoot(c.store.Root(), snap.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileReadFailed,
			fmt.Sprintf("failed to read update payload: %s", snap.Path), err)
	}
	return string(data), nil
}

// ApplyUpdate performs the filesystem mutation a decision calls for:
// delete, create/overwrite with full content, or patch-then-write. For
// incremental modifications base is the content the patch was generated
// against. The affected path is re-snapshotted afterward so the index
// stays current. The target is validated to resolve inside the project
// root before anything is written.
func (c *Coordinator) ApplyUpdate(ctx context.Context, d *Decision, base string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := resolveWithinRoot(c.store.Root(), d.Path)
	if err != nil {
		return err
	}

	switch d.Type {
	case change.TypeDeleted:
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeUpdateWriteFailed,
				fmt.Sprintf("failed to delete %s", d.Path), err)
		}

	case change.TypeAdded, change.TypeModified:
		content := d.Content
		if d.UseIncremental {
			result, err := patch.Apply(base, d.Patch)
			if err != nil {
				return err
			}
			if !result.Applied() {
				conflict := result.Conflicts[0]
				return errors.New(errors.ErrCodePatchConflict,
					fmt.Sprintf("patch for %s does not apply at line %d",
						d.Path, conflict.SourceLine)).
					WithSuggestion("The base content has diverged from the patch source").
					WithSuggestion("Request a full-content update instead")
			}
			content = result.Content
		}

		if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed,
				fmt.Sprintf("failed to create parent directory for %s", d.Path), err)
		}
		if err := os.WriteFile(full, []byte(content), 0600); err != nil {
			return errors.Wrap(errors.ErrCodeUpdateWriteFailed,
				fmt.Sprintf("failed to write %s", d.Path), err)
		}

	default:
		return errors.New(errors.ErrCodeUpdateWriteFailed,
			fmt.Sprintf("unknown change type %q for %s", d.Type, d.Path))
	}

	c.logger.Info("applied update", "path", d.Path, "type", string(d.Type),
		"incremental", d.UseIncremental)

	return c.store.Refresh(ctx, d.Path)
}

// ChangesSince compares the persisted index against current disk state
// without disturbing the baseline, returning one record per changed path.
func (c *Coordinator) ChangesSince(ctx context.Context) ([]*change.Record, error) {
	if !c.cfg.Enabled {
		return nil, nil
	}

	after, err := c.store.PeekProject(ctx)
	if err != nil {
		return nil, err
	}

	return c.detector.CompareProject(ctx, c.store.Index(), after)
}

// RecordProject snapshots the whole project, making current disk state the
// new comparison baseline. Called after a step completes.
func (c *Coordinator) RecordProject(ctx context.Context) (map[string]*snapshot.FileSnapshot, error) {
	return c.store.TakeProject(ctx)
}
