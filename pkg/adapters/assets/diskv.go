// Package assets implements ports.AssetStore on local disk.
package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/peterbourgon/diskv/v3"
)

// Store keeps uploads in a diskv tree sharded by the first two key characters.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// New opens (or creates) a store rooted at basePath.
// If basePath is empty, it defaults to ".pagecraft/assets".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".pagecraft", "assets")
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      4 * 1024 * 1024,
		}),
		basePath: basePath,
	}
}

// BasePath returns the root directory.
func (s *Store) BasePath() string {
	return s.basePath
}

// Put streams r to disk under a key derived from name.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	key := NewKey(name)
	if err := s.d.WriteStream(key, r, true); err != nil {
		return "", fmt.Errorf("failed to store asset %s: %w", name, err)
	}
	return key, nil
}

// Get opens the asset for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) || !s.d.Has(key) {
		return nil, fmt.Errorf("asset %s: %w", key, domain.ErrNotFound)
	}
	rc, err := s.d.ReadStream(key, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", key, err)
	}
	return rc, nil
}

// Delete removes the asset. Unknown keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !validKey(key) || !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}
	return nil
}

// Keys lists stored asset keys in order.
func (s *Store) Keys(ctx context.Context) []string {
	var keys []string
	for k := range s.d.Keys(ctx.Done()) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func validKey(key string) bool {
	return len(key) >= 2 && !strings.ContainsAny(key, `/\`) && key != ".."
}

func keyToPathTransform(key string) *diskv.PathKey {
	if len(key) < 2 {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{
		Path:     []string{key[:2]},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
