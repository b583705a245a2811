package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Filesystem keeps images under a local directory served at baseURL.
type Filesystem struct {
	root    string
	baseURL string
}

// NewFilesystem stores files below root.
func NewFilesystem(root, baseURL string) *Filesystem {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Filesystem{root: root, baseURL: baseURL}
}

// Root is the directory files are written to.
func (f *Filesystem) Root() string {
	return f.root
}

func (f *Filesystem) Put(_ context.Context, key string, data []byte, _ string) error {
	target, err := f.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

func (f *Filesystem) Delete(_ context.Context, key string) error {
	target, err := f.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

func (f *Filesystem) URL(key string) string {
	return f.baseURL + strings.TrimPrefix(key, "/")
}

func (f *Filesystem) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(f.root, filepath.FromSlash(clean)), nil
}
