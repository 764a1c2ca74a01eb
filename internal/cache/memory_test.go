package cache

import (
	"testing"
	"time"
)

func setupMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	cache := NewMemoryCache()
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestMemoryCache_SetGet(t *testing.T) {
	cache := setupMemoryCache(t)

	want := cachedValue{Name: "release", Count: 3}
	if err := cache.Set("key1", want, time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var got cachedValue
	if err := cache.Get("key1", &got); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := setupMemoryCache(t)

	var got cachedValue
	if err := cache.Get("missing", &got); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := setupMemoryCache(t)

	if err := cache.Set("ephemeral", cachedValue{Name: "x"}, time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	var got cachedValue
	if err := cache.Get("ephemeral", &got); err != ErrCacheMiss {
		t.Errorf("Expected expired key to miss, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := setupMemoryCache(t)

	if err := cache.Set("key1", cachedValue{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := cache.Delete("key1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var got cachedValue
	if err := cache.Get("key1", &got); err != ErrCacheMiss {
		t.Errorf("Expected deleted key to miss, got %v", err)
	}
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	cache := setupMemoryCache(t)

	for _, key := range []string{"task:1", "task:2", "user:1"} {
		if err := cache.Set(key, cachedValue{Name: key}, time.Minute); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if err := cache.DeletePattern("task:*"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var got cachedValue
	if err := cache.Get("task:1", &got); err != ErrCacheMiss {
		t.Errorf("Expected task:1 to be gone, got %v", err)
	}
	if err := cache.Get("user:1", &got); err != nil {
		t.Errorf("Expected user:1 to survive, got %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := setupMemoryCache(t)

	exists, err := cache.Exists("nope")
	if err != nil || exists {
		t.Errorf("Expected missing key to not exist, got (%v, %v)", exists, err)
	}

	if err := cache.Set("yep", cachedValue{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	exists, err = cache.Exists("yep")
	if err != nil || !exists {
		t.Errorf("Expected stored key to exist, got (%v, %v)", exists, err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := setupMemoryCache(t)

	if err := cache.Set("key1", cachedValue{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stats := cache.Stats()
	if stats["type"] != "memory" {
		t.Errorf("Expected type memory, got %v", stats["type"])
	}
	if stats["items"] != 1 {
		t.Errorf("Expected 1 item, got %v", stats["items"])
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		text    string
		pattern string
		want    bool
	}{
		{"task:1", "*", true},
		{"task:1", "task:*", true},
		{"user:1", "task:*", false},
		{"task:1", "task:1", true},
		{"task:1", "task:2", false},
	}

	for _, test := range tests {
		if got := matchPattern(test.text, test.pattern); got != test.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", test.text, test.pattern, got, test.want)
		}
	}
}
