package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/infra/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key = "util:SBI SimplyCLICK:2025-07-25"

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set(key, "1500")
	val, ok := c.Get(key)
	require.True(t, ok, "expected key to exist")
	assert.Equal(t, "1500", val)
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set(key, "1500")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get(key)
	assert.False(t, ok, "expected cache entry to be expired")
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set(key, "1500")
	c.Delete(key)

	_, ok := c.Get(key)
	assert.False(t, ok, "expected key to be deleted")
}

func TestCache_CloseKeepsCacheUsable(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Close()
	c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())
}
