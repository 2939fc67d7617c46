package change

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/superagent-dev/superagent/internal/patch"
	"github.com/superagent-dev/superagent/internal/snapshot"
)

// Type classifies what happened to a file between two snapshots
type Type string

const (
	TypeAdded    Type = "added"
	TypeModified Type = "modified"
	TypeDeleted  Type = "deleted"
)

// Record is the transient result of comparing two snapshots of one path.
// Records are derived values: they are produced fresh on every comparison
// and never persisted.
type Record struct {
	// ID uniquely identifies this comparison result
	ID string `json:"id"`
	// Path is the project-relative path of the file
	Path string `json:"path"`
	// Type is the change classification
	Type Type `json:"type"`
	// Old is the earlier snapshot, nil for additions
	Old *snapshot.FileSnapshot `json:"-"`
	// New is the later snapshot, nil for deletions
	New *snapshot.FileSnapshot `json:"-"`
	// DiffRatio is the normalized dissimilarity: 0 identical, 1 fully
	// different. Additions and deletions carry 1.0 by convention.
	DiffRatio float64 `json:"diff_ratio"`
	// Patch is a unified diff, attached only when the change is small
	// enough for an incremental update
	Patch string `json:"patch,omitempty"`
	// Insertions and Deletions are line counts for modified files
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
	// Timestamp is when the comparison ran
	Timestamp time.Time `json:"timestamp"`
}

// Detector compares snapshots and classifies the result
type Detector struct {
	// incrementalThreshold is the diff_ratio boundary below which a patch
	// is generated and attached to the record
	incrementalThreshold float64
}

// NewDetector creates a detector with the given incremental threshold
func NewDetector(incrementalThreshold float64) *Detector {
	return &Detector{incrementalThreshold: incrementalThreshold}
}

// Compare classifies the difference between two snapshots of the same
// path. A nil record with nil error means no change.
func (d *Detector) Compare(oldSnap, newSnap *snapshot.FileSnapshot) *Record {
	if oldSnap == nil && newSnap == nil {
		return nil
	}

	if oldSnap == nil {
		return &Record{
			ID:        uuid.NewString(),
			Path:      newSnap.Path,
			Type:      TypeAdded,
			New:       newSnap,
			DiffRatio: 1.0,
			Timestamp: time.Now(),
		}
	}

	if newSnap == nil {
		return &Record{
			ID:        uuid.NewString(),
			Path:      oldSnap.Path,
			Type:      TypeDeleted,
			Old:       oldSnap,
			DiffRatio: 1.0,
			Timestamp: time.Now(),
		}
	}

	if oldSnap.Hash == newSnap.Hash {
		return nil
	}

	rec := &Record{
		ID:        uuid.NewString(),
		Path:      newSnap.Path,
		Type:      TypeModified,
		Old:       oldSnap,
		New:       newSnap,
		DiffRatio: 1.0,
		Timestamp: time.Now(),
	}

	// Without cached content the hashes are all we know: the ratio stays
	// at the conservative maximum and no patch is generated.
	if !oldSnap.HasContent || !newSnap.HasContent {
		return rec
	}

	rec.DiffRatio = 1.0 - patch.Similarity(oldSnap.Content, newSnap.Content)
	rec.Insertions, rec.Deletions = patch.Stats(oldSnap.Content, newSnap.Content)

	if rec.DiffRatio < d.incrementalThreshold {
		rec.Patch = patch.Generate(oldSnap.Content, newSnap.Content, rec.Path)
	}

	return rec
}

// CompareProject classifies every path across two index mappings: paths
// present only in after are added, paths present in both with differing
// hashes are modified (compared concurrently), and paths present only in
// before are deleted. Records are returned sorted by path.
func (d *Detector) CompareProject(ctx context.Context, before, after map[string]*snapshot.FileSnapshot) ([]*Record, error) {
	var (
		mu      sync.Mutex
		records []*Record
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU() * 2)

	for path, newSnap := range after {
		newSnap := newSnap
		oldSnap := before[path]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if rec := d.Compare(oldSnap, newSnap); rec != nil {
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for path, oldSnap := range before {
		if _, exists := after[path]; !exists {
			records = append(records, d.Compare(oldSnap, nil))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})

	return records, nil
}

// Summary aggregates a set of change records
type Summary struct {
	Added      int `json:"added"`
	Modified   int `json:"modified"`
	Deleted    int `json:"deleted"`
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
}

// Summarize counts changes by type across records
func Summarize(records []*Record) Summary {
	var s Summary
	for _, rec := range records {
		switch rec.Type {
		case TypeAdded:
			s.Added++
		case TypeModified:
			s.Modified++
		case TypeDeleted:
			s.Deleted++
		}
		s.Insertions += rec.Insertions
		s.Deletions += rec.Deletions
	}
	return s
}
