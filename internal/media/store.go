package media

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"foodgram/internal/config"
	applog "foodgram/internal/log"
)

const (
	keyPrefix   = "recipes/"
	contentType = "image/jpeg"
)

// Backend writes opaque objects addressed by key.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Store turns submitted data URIs into stored recipe images.
type Store struct {
	backend Backend
	maxSide int
}

// NewStore wraps backend. Images larger than maxSide are scaled down.
func NewStore(backend Backend, maxSide int) *Store {
	return &Store{backend: backend, maxSide: maxSide}
}

// LocalRoot is the directory images are written to when they are kept on the
// local filesystem, or "" for remote backends.
func (s *Store) LocalRoot() string {
	if fs, ok := s.backend.(*Filesystem); ok {
		return fs.Root()
	}
	return ""
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg config.MediaConfig, maxSide int) (*Store, error) {
	switch cfg.Backend {
	case config.MediaBackendS3:
		backend, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewStore(backend, maxSide), nil
	case config.MediaBackendFilesystem, "":
		return NewStore(NewFilesystem(cfg.Root, cfg.BaseURL), maxSide), nil
	default:
		return nil, fmt.Errorf("unknown media backend: %s", cfg.Backend)
	}
}

// SaveImage stores the picture encoded in dataURI and returns its key.
func (s *Store) SaveImage(ctx context.Context, dataURI string) (string, error) {
	data, err := Prepare(dataURI, s.maxSide)
	if err != nil {
		return "", err
	}

	key := path.Join(keyPrefix, uuid.NewString()+".jpg")
	if err := s.backend.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	applog.Debug(ctx, "recipe image stored", "key", key, "bytes", len(data))
	return key, nil
}

// DeleteImage removes a stored picture.
func (s *Store) DeleteImage(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.backend.Delete(ctx, key)
}

// URL returns the public address of a stored picture, or an empty string for
// an empty key.
func (s *Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.backend.URL(key)
}
