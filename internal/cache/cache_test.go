package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("embed: vaccines cause autism")
	k2 := CacheKey("embed: vaccines cause autism")
	k3 := CacheKey("embed: the earth is flat")

	if k1 != k2 {
		t.Error("same input must yield the same key")
	}
	if k1 == k3 {
		t.Error("different inputs must yield different keys")
	}
	if !strings.HasPrefix(k1, "decisionflow:v1:") {
		t.Errorf("key missing namespace prefix: %s", k1)
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := CacheKey("serper: who funds vaccine research")

	if _, found := c.Get(key); found {
		t.Error("empty cache must miss")
	}
	if err := c.Set(key, []byte(`{"results":[]}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found := c.Get(key)
	if !found {
		t.Fatal("expected a hit after set")
	}
	if !bytes.Equal(got, []byte(`{"results":[]}`)) {
		t.Errorf("got %q", got)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := CacheKey("short-lived")

	if err := c.Set(key, []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, found := c.Get(key); found {
		t.Error("expired entry must miss")
	}
}

func TestDiskCache_Delete(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := CacheKey("doomed")

	if err := c.Set(key, []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("deleted entry must miss")
	}
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	key := CacheKey("hot")

	if err := c.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, found := c.Get(key); !found {
		t.Error("ttl 0 must fall back to the default, not expire immediately")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Hour, dir, time.Hour)
	key := CacheKey("warm")

	// Seed only the disk layer, as a prior process run would have
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set(key, []byte("persisted"), 0); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	got, found := c.Get(key)
	if !found || string(got) != "persisted" {
		t.Fatalf("expected disk hit, got %q found=%v", got, found)
	}
	if _, found := c.memory.Get(key); !found {
		t.Error("disk hit must be promoted into memory")
	}
}

func TestLayeredCache_Clear(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)
	key := CacheKey("gone")

	if err := c.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("cleared cache must miss")
	}
}
