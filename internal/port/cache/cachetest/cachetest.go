// Package cachetest holds shared checks for cache.Cache adapters.
package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/sonntkms/taskapproval/internal/port/cache"
)

// Run checks the behaviour every Cache adapter must share.
func Run(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "idem-1", []byte(`{"status":201}`), time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, "idem-1")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != `{"status":201}` {
			t.Fatalf("unexpected value %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, "idem-missing")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for unknown key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "idem-del", []byte("x"), time.Minute)
		if err := c.Delete(ctx, "idem-del"); err != nil {
			t.Fatal(err)
		}
		if _, found, _ := c.Get(ctx, "idem-del"); found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteUnknown", func(t *testing.T) {
		if err := c.Delete(ctx, "idem-never"); err != nil {
			t.Fatalf("Delete of unknown key: %v", err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "idem-ow", []byte("v1"), time.Minute)
		_ = c.Set(ctx, "idem-ow", []byte("v2"), time.Minute)
		val, found, err := c.Get(ctx, "idem-ow")
		if err != nil || !found {
			t.Fatalf("Get after overwrite: found=%v err=%v", found, err)
		}
		if string(val) != "v2" {
			t.Fatalf("expected v2, got %s", val)
		}
	})
}
