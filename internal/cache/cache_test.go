// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheBasicOperations(t *testing.T) {
	c := New[string]("test", time.Minute, 0)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists := c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	clock := newTestClock()
	c := New[int]("test", time.Minute, 0)
	c.SetClock(clock.Now)

	c.Set("key1", 1)
	if _, exists := c.Get("key1"); !exists {
		t.Fatal("Expected key1 to exist immediately after set")
	}

	clock.Advance(time.Minute)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	if c.GetStats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.GetStats().Evictions)
	}
}

func TestCacheSetWithTTLOverridesDefault(t *testing.T) {
	clock := newTestClock()
	c := New[string]("test", time.Hour, 0)
	c.SetClock(clock.Now)

	c.SetWithTTL("short", "v", time.Second)
	c.Set("long", "v")

	clock.Advance(2 * time.Second)

	if _, ok := c.Get("short"); ok {
		t.Error("short TTL entry should be expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default TTL entry should be live")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string]("test", time.Minute, 0)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")

	c.Delete("key1")
	if _, ok := c.Get("key1"); ok {
		t.Error("Expected key1 to be deleted")
	}

	c.Clear()
	for _, key := range []string{"key2", "key3"} {
		if _, ok := c.Get(key); ok {
			t.Errorf("Expected %s to be cleared", key)
		}
	}

	stats := c.GetStats()
	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d, want 0", stats.TotalKeys)
	}
	if stats.Evictions != 3 {
		t.Errorf("Evictions = %d, want 3", stats.Evictions)
	}
}

func TestCacheMaxEntries(t *testing.T) {
	clock := newTestClock()
	c := New[int]("test", time.Hour, 3)
	c.SetClock(clock.Now)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		clock.Advance(time.Second)
	}
	c.Set("k3", 3)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("entry closest to expiry should have been evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("newest entry should be present")
	}

	// Overwriting an existing key never evicts.
	c.Set("k3", 30)
	if c.Len() != 3 {
		t.Errorf("Len() after overwrite = %d, want 3", c.Len())
	}
}

func TestCacheMaxEntriesPrefersExpired(t *testing.T) {
	clock := newTestClock()
	c := New[int]("test", time.Hour, 2)
	c.SetClock(clock.Now)

	c.SetWithTTL("expiring", 1, time.Second)
	c.Set("keeper", 2)
	clock.Advance(2 * time.Second)
	c.Set("new", 3)

	if _, ok := c.Get("keeper"); !ok {
		t.Error("live entry should survive when an expired one can be dropped")
	}
}

func TestCacheHitRate(t *testing.T) {
	tests := []struct {
		name   string
		hits   int
		misses int
		want   float64
	}{
		{"no operations", 0, 0, 0},
		{"only misses", 0, 4, 0},
		{"only hits", 3, 0, 100},
		{"mixed", 3, 1, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[string]("test", time.Minute, 0)
			c.Set("hit", "v")
			for i := 0; i < tt.hits; i++ {
				c.Get("hit")
			}
			for i := 0; i < tt.misses; i++ {
				c.Get("miss")
			}
			if got := c.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New[int]("test", time.Minute, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", n%10)
			c.Set(key, n)
			c.Get(key)
			if n%7 == 0 {
				c.Delete(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 10 {
		t.Errorf("Len() = %d, want at most 10", c.Len())
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New[string]("bench", time.Minute, 0)
	c.Set("key", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}
