package snapshot

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// FileSnapshot records the identity of one file at one instant
type FileSnapshot struct {
	// Path is the project-relative path, always with forward slashes
	Path string `json:"path"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
	// ModTime is the filesystem modification time
	ModTime time.Time `json:"mtime"`
	// Hash is the content-identity hash, used purely for change detection
	Hash string `json:"hash"`
	// SnapshotTime is when this snapshot was captured
	SnapshotTime time.Time `json:"snapshot_time"`

	// Content is an optional cached copy of the file's text, kept in memory
	// for diffing. It is never written to the persisted index.
	Content string `json:"-"`

	// HasContent distinguishes an empty file from content that was not cached
	HasContent bool `json:"-"`
}

// indexEntry is the persisted form of a FileSnapshot. Content is always
// null on disk to bound index size.
type indexEntry struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mtime"`
	Hash         string    `json:"hash"`
	SnapshotTime time.Time `json:"snapshot_time"`
	Content      any       `json:"content"`
}

func (s *FileSnapshot) toEntry() indexEntry {
	return indexEntry{
		Path:         s.Path,
		Size:         s.Size,
		ModTime:      s.ModTime,
		Hash:         s.Hash,
		SnapshotTime: s.SnapshotTime,
		Content:      nil,
	}
}

func (e indexEntry) toSnapshot() *FileSnapshot {
	return &FileSnapshot{
		Path:         e.Path,
		Size:         e.Size,
		ModTime:      e.ModTime,
		Hash:         e.Hash,
		SnapshotTime: e.SnapshotTime,
	}
}

// HashContent computes the content-identity hash for a file's bytes
func HashContent(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
