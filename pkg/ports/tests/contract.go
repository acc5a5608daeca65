package tests

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
)

// CatalogContractTest is a reusable test suite that verifies if an adapter complies with ports.Catalog.
func CatalogContractTest(t *testing.T, catalog ports.Catalog, want []domain.CatalogItem) {
	t.Helper()
	ctx := context.Background()

	t.Run("Item_Success", func(t *testing.T) {
		for _, expected := range want {
			got, err := catalog.Item(ctx, expected.ID)
			if err != nil {
				t.Fatalf("unexpected error getting item %s: %v", expected.ID, err)
			}
			if got.Name != expected.Name || got.Type != expected.Type {
				t.Errorf("item mismatch for %s. got %+v, want %+v", expected.ID, got, expected)
			}
		}
	})

	t.Run("Item_NotFound", func(t *testing.T) {
		_, err := catalog.Item(ctx, "non-existent-item")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound for non-existent item, got %v", err)
		}
	})

	t.Run("Items", func(t *testing.T) {
		items, err := catalog.Items(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing items: %v", err)
		}
		found := make(map[string]bool)
		for _, it := range items {
			found[it.ID] = true
		}
		for _, expected := range want {
			if !found[expected.ID] {
				t.Errorf("expected item %s in listing", expected.ID)
			}
		}
	})

	t.Run("Items_Detached", func(t *testing.T) {
		if len(want) == 0 {
			return
		}
		first, err := catalog.Item(ctx, want[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if first.DefaultContent == nil {
			first.DefaultContent = map[string]any{}
		}
		first.DefaultContent["__probe"] = true
		again, _ := catalog.Item(ctx, want[0].ID)
		if _, leaked := again.DefaultContent["__probe"]; leaked {
			t.Error("mutating a returned item must not affect the catalog")
		}
	})
}

// AssetStoreContractTest verifies an adapter against ports.AssetStore.
func AssetStoreContractTest(t *testing.T, store ports.AssetStore) {
	t.Helper()
	ctx := context.Background()
	payload := []byte("\x89PNG fake image bytes")

	key, err := store.Put(ctx, "Hero Banner.png", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if key == "" {
		t.Fatal("Put returned an empty key")
	}

	t.Run("Get", func(t *testing.T) {
		rc, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		defer rc.Close()
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("content mismatch: got %q", got)
		}
	})

	t.Run("Keys_Unique", func(t *testing.T) {
		other, err := store.Put(ctx, "Hero Banner.png", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if other == key {
			t.Errorf("two uploads with the same name share key %s", key)
		}
		_ = store.Delete(ctx, other)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-asset")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, key); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, key); err != nil {
			t.Errorf("deleting twice should not fail: %v", err)
		}
	})
}
