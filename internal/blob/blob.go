// Package blob stores uploaded files and hands back public URLs.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves a blob and returns the URL it will be served under.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

// LocalStore writes blobs to a directory served as static files.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put stores the blob under a random name, keeping the original extension.
func (s *LocalStore) Put(_ context.Context, name string, r io.Reader) (string, error) {
	fname := uuid.New().String() + strings.ToLower(filepath.Ext(name))
	dst, err := os.Create(filepath.Join(s.Dir, fname))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.BaseURL + "/" + fname, nil
}
