package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes JSONL snapshots to a local directory, one file per
// project.
type FileDestination struct {
	dir string
}

// NewFileDestination creates a file destination rooted at dir. The directory
// is created on first write.
func NewFileDestination(dir string) *FileDestination {
	return &FileDestination{dir: dir}
}

// Write stores data as <dir>/<project>.jsonl. The file is written to a temp
// name first and renamed so readers never observe a partial snapshot.
func (d *FileDestination) Write(ctx context.Context, projectID string, data []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	final := filepath.Join(d.dir, projectID+".jsonl")
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
