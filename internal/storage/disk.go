package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes uploads under a local directory. The directory is served
// statically by the router.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore returns a DiskStore rooted at dir. URLs are joined onto
// baseURL, e.g. http://localhost:8080/uploads.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory uploads are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Save streams r into dir/name. name is flattened to its base to keep writes
// inside the upload directory.
func (s *DiskStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
