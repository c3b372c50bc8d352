package idempotency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func remember[V any](c *Cache[V], key string, value V) {
	c.Do(key, func() (V, bool) { return value, true })
}

func cached[V any](c *Cache[V], key string) (V, bool) {
	var zero V
	return c.Do(key, func() (V, bool) { return zero, false })
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
	c := NewCache[string](time.Minute, 10)
	c.now = func() time.Time { return now }

	remember(c, "cobros:a", "1400000001")
	got, ok := cached(c, "cobros:a")
	assert.True(t, ok)
	assert.Equal(t, "1400000001", got)

	now = now.Add(2 * time.Minute)
	_, ok = cached(c, "cobros:a")
	assert.False(t, ok)
	assert.Empty(t, c.items)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache[int](time.Hour, 2)
	remember(c, "a", 1)
	remember(c, "b", 2)
	_, _ = cached(c, "a")
	remember(c, "c", 3)

	_, okA := cached(c, "a")
	_, okB := cached(c, "b")
	_, okC := cached(c, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestCache_EmptyKeyBypasses(t *testing.T) {
	c := NewCache[int](time.Hour, 2)
	remember(c, "", 1)
	_, ok := cached(c, "")
	assert.False(t, ok)
	assert.Empty(t, c.items)
}

func TestCache_DoComputesOnce(t *testing.T) {
	c := NewCache[int](time.Hour, 10)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Do("key", func() (int, bool) {
				calls.Add(1)
				<-release
				return 42, true
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
	v, hit := c.Do("key", func() (int, bool) { return 0, true })
	assert.True(t, hit)
	assert.Equal(t, 42, v)
}

func TestCache_DoSkipsUncacheable(t *testing.T) {
	c := NewCache[string](time.Hour, 10)
	v, hit := c.Do("k", func() (string, bool) { return "error", false })
	assert.Equal(t, "error", v)
	assert.False(t, hit)

	v, hit = c.Do("k", func() (string, bool) { return "ok", true })
	assert.Equal(t, "ok", v)
	assert.False(t, hit)

	var nilCache *Cache[string]
	v, hit = nilCache.Do("k", func() (string, bool) { return "direct", true })
	assert.Equal(t, "direct", v)
	assert.False(t, hit)
}
