// Package artifact stores rendered report artifacts and hands back a
// location URL. The executor treats the location as opaque.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists an artifact and returns its location.
type Store interface {
	Store(name string, data []byte) (location string, err error)
}

// FSStore writes artifacts to a local directory and maps them to URLs under
// BaseURL. Suitable for single-host deployments; swap for an object-store
// implementation behind the same interface when needed.
type FSStore struct {
	Dir     string
	BaseURL string
}

// NewFSStore returns a filesystem artifact store rooted at dir.
func NewFSStore(dir, baseURL string) *FSStore {
	return &FSStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Store writes data to Dir/name and returns BaseURL/name.
func (s *FSStore) Store(name string, data []byte) (string, error) {
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", fmt.Errorf("artifact: invalid name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact write: %w", err)
	}
	return s.BaseURL + "/" + name, nil
}
