package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	_, ok := c.Get("a")
	require.False(t, ok)

	v, ok := c.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 2, c.Len())
}

func TestCacheUpdateKeepsSize(t *testing.T) {
	c := NewCache[string, int](2)
	c.Add("a", 1)
	c.Add("a", 5)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 5, v)
	require.Equal(t, 1, c.Len())
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache[string, int](0)
	c.Add("a", 1)

	_, ok := c.Get("a")
	require.False(t, ok)
}
