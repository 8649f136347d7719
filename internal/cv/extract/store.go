package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Store is the durable file store boundary for original uploads. Files are
// written once under unique names and never mutated; deletion is an
// explicit, separate operation.
type Store interface {
	Put(data []byte, suggestedName string) (url string, err error)
	Get(url string) ([]byte, error)
	Delete(url string) error
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// DiskStore is a local-filesystem Store. URLs take the form
// <baseURL>/<filename> so the stored file can be served statically.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at the given directory.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put persists bytes under a collision-resistant name derived from the
// upload timestamp and the sanitized original name.
func (s *DiskStore) Put(data []byte, suggestedName string) (string, error) {
	safe := unsafeNameChars.ReplaceAllString(suggestedName, "")
	if safe == "" {
		safe = "upload"
	}
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), safe)

	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Get reads back a file previously stored under the given URL.
func (s *DiskStore) Get(url string) ([]byte, error) {
	name, err := s.fileName(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *DiskStore) Delete(url string) error {
	name, err := s.fileName(url)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return nil
}

func (s *DiskStore) fileName(url string) (string, error) {
	name := filepath.Base(strings.TrimPrefix(url, s.baseURL))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("invalid file url: %s", url)
	}
	return name, nil
}
