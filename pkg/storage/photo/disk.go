package photo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes photos into a local directory served at URLPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
}

func NewDiskStore(dir, urlPrefix string) *DiskStore {
	return &DiskStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(_ context.Context, filename, contentType string, data []byte) (string, error) {
	name, _, err := objectName(filename, contentType, len(data))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare photo dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

// Delete removes a photo previously returned by Save. A missing file is not an error.
func (s *DiskStore) Delete(_ context.Context, url string) error {
	name, err := nameFromURL(url, s.urlPrefix)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}
