package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Item  string `json:"item"`
		Price int    `json:"price"`
	}

	if err := mc.Set(ctx, "k", payload{Item: "T4_BAG", Price: 1200}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Item != "T4_BAG" || got.Price != 1200 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	if err := mc.Get(context.Background(), "absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	var out string
	if err := mc.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryCacheDeleteByPrefix(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "prices:a", "1", time.Minute)
	_ = mc.Set(ctx, "prices:b", "2", time.Minute)
	_ = mc.Set(ctx, "names:a", "3", time.Minute)

	if err := mc.DeleteByPattern(ctx, "prices:*"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var out string
	if err := mc.Get(ctx, "prices:a", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected prices:a gone, got %v", err)
	}
	if err := mc.Get(ctx, "names:a", &out); err != nil {
		t.Fatalf("names:a should survive: %v", err)
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(64))
	defer mc.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%16)
				_ = mc.Set(ctx, key, j, time.Minute)
				var out int
				_ = mc.Get(ctx, key, &out)
			}
		}(i)
	}
	wg.Wait()
}
