package render

import (
	"sync"
	"testing"
)

func TestCacheKey(t *testing.T) {
	base := DefaultOptions()

	if cacheKey(base) == cacheKey(base.WithWidth(100)) {
		t.Error("different widths should produce different keys")
	}
	if cacheKey(base) == cacheKey(base.WithStyle("light")) {
		t.Error("different styles should produce different keys")
	}
	if cacheKey(base) != cacheKey(DefaultOptions()) {
		t.Error("same options should produce the same key")
	}
}

func TestPoolGetAndPut(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	r1, err := globalPool.get(opts)
	if err != nil || r1 == nil {
		t.Fatalf("get: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", CacheSize())
	}
	globalPool.put(opts, r1)

	r2, err := globalPool.get(opts.WithWidth(60))
	if err != nil || r2 == nil {
		t.Fatalf("get: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2", CacheSize())
	}
	globalPool.put(opts.WithWidth(60), r2)
	globalPool.put(opts, nil)
}

func TestMarkdownConcurrent(t *testing.T) {
	ClearCache()
	defer ClearCache()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts := DefaultOptions().WithWidth(60 + i%3*10)
			if _, err := Markdown("**Average price** rose in *Wakad*", opts); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Markdown: %v", err)
	}
	if CacheSize() != 3 {
		t.Errorf("CacheSize() = %d, want 3", CacheSize())
	}
}
