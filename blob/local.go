package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Local stores files in a directory on disk, served under baseURL.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

func (l *Local) Put(_ context.Context, filename string, data []byte) error {
	if err := os.WriteFile(filepath.Join(l.dir, filepath.Base(filename)), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func (l *Local) Get(_ context.Context, filename string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, filepath.Base(filename)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return data, nil
}

func (l *Local) Delete(_ context.Context, filename string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}

func (l *Local) URL(filename string) string {
	return path.Join(l.baseURL, filename)
}

func (l *Local) Name() string { return "local" }
