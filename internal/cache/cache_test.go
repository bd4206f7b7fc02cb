package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchplan/fetchplan/internal/ast"
)

func TestInMemoryGetPut(t *testing.T) {
	c := NewInMemory()
	key := ast.CacheKey{Source: "s", Identity: 1}

	_, ok := c.Get(key)
	assert.False(t, ok, "fresh cache should miss")

	c.Put(key, "value")
	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, c.Len())
}

func TestInMemorySeeded(t *testing.T) {
	key := ast.CacheKey{Source: "s", Identity: 1}
	c := NewInMemorySeeded(map[ast.CacheKey]any{key: "seeded"})

	v, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "seeded", v)
}

func TestForgetfulNeverRemembers(t *testing.T) {
	var c Forgetful
	key := ast.CacheKey{Source: "s", Identity: 1}

	c.Put(key, "value")
	_, ok := c.Get(key)
	assert.False(t, ok, "Forgetful.Get must always miss")
}

func TestLRUEvicts(t *testing.T) {
	c := NewLRU(1)
	k1 := ast.CacheKey{Source: "s", Identity: 1}
	k2 := ast.CacheKey{Source: "s", Identity: 2}

	c.Put(k1, "one")
	c.Put(k2, "two")

	_, ok := c.Get(k1)
	assert.False(t, ok, "k1 should have been evicted once capacity 1 was exceeded")

	v, ok := c.Get(k2)
	require.True(t, ok)
	assert.Equal(t, "two", v)
}
