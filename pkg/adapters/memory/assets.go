package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/pagecraft/pkg/adapters/assets"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Assets is an in-memory ports.AssetStore.
type Assets struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewAssets() *Assets {
	return &Assets{files: make(map[string][]byte)}
}

func (a *Assets) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read asset %s: %w", name, err)
	}
	key := assets.NewKey(name)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[key] = data
	return key, nil
}

func (a *Assets) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.files[key]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *Assets) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.files, key)
	return nil
}
