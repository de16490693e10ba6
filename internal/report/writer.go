package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer persists one markdown file per run into the reports directory.
type Writer struct {
	dir string
}

// NewWriter ensures the reports directory exists.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Write stores the document under a date-stamped name and returns the path.
// An existing file from an earlier run the same day is never overwritten; a
// numeric suffix is appended instead.
func (w *Writer) Write(markdown string, day time.Time) (string, error) {
	base := fmt.Sprintf("competitor_report_%s", day.Format("2006-01-02"))

	path := filepath.Join(w.dir, base+".md")
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(w.dir, fmt.Sprintf("%s_%02d.md", base, n))
	}

	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
