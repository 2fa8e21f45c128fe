package refsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FixedEpochSource serves a constant stamp. Used for sources whose
// refresh cadence is managed externally (a deployment timestamp, a
// parser release date).
type FixedEpochSource struct {
	kind  string
	epoch time.Time
}

// NewFixedEpochSource creates a fixed epoch source
func NewFixedEpochSource(kind string, epoch time.Time) *FixedEpochSource {
	return &FixedEpochSource{kind: kind, epoch: epoch}
}

// Kind returns which stamp field this source feeds
func (s *FixedEpochSource) Kind() string { return s.kind }

// Epoch returns the fixed stamp
func (s *FixedEpochSource) Epoch(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	return s.epoch, nil
}

// DirEpochSource derives a stamp from the newest modification time
// under a directory. A knowledge base refresh touches its files, which
// moves the epoch and invalidates cache entries keyed on it.
type DirEpochSource struct {
	kind string
	dir  string
}

// NewDirEpochSource creates a directory-watching epoch source
func NewDirEpochSource(kind, dir string) *DirEpochSource {
	return &DirEpochSource{kind: kind, dir: dir}
}

// Kind returns which stamp field this source feeds
func (s *DirEpochSource) Kind() string { return s.kind }

// Epoch walks the directory and returns the newest mtime
func (s *DirEpochSource) Epoch(ctx context.Context) (time.Time, error) {
	var newest time.Time

	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("scan %s: %w", s.dir, err)
	}
	if newest.IsZero() {
		return time.Time{}, fmt.Errorf("no files under %s", s.dir)
	}

	return newest, nil
}
