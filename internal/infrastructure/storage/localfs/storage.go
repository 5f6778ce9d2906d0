package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage is a bucket-addressed object store on the local filesystem.
// Buckets map to subdirectories; the archival move is an atomic rename,
// which keeps repeats idempotent enough for the pipeline's needs.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Save(_ context.Context, bucket, key string, data io.Reader) error {
	dir := filepath.Join(s.basePath, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, filepath.Base(key)))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, bucket, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Move(_ context.Context, key, fromBucket, toBucket string) error {
	toDir := filepath.Join(s.basePath, toBucket)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	from := filepath.Join(s.basePath, fromBucket, filepath.Base(key))
	to := filepath.Join(toDir, filepath.Base(key))
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("move %s from %s to %s: %w", key, fromBucket, toBucket, err)
	}
	return nil
}
