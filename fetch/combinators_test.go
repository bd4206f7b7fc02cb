package fetch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchplan/fetchplan/fetch"
)

func TestMapOnPure(t *testing.T) {
	f := fetch.Map(fetch.Pure(2), func(v int) int { return v * 10 })
	v, err := fetch.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestFlatMapChainsPureValues(t *testing.T) {
	f := fetch.FlatMap(fetch.Pure(2), func(v int) fetch.Fetch[string] {
		if v > 1 {
			return fetch.Pure("big")
		}
		return fetch.Pure("small")
	})
	v, err := fetch.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "big", v)
}

func TestProductOfPures(t *testing.T) {
	f := fetch.Product(fetch.Pure("a"), fetch.Pure(1))
	v, err := fetch.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, fetch.Pair[string, int]{First: "a", Second: 1}, v)
}

func TestTraverseEmptyYieldsEmptySlice(t *testing.T) {
	f := fetch.Traverse([]int{}, func(i int) fetch.Fetch[int] { return fetch.Pure(i) })
	v, err := fetch.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int{}, v)
}

func TestTraversePreservesOrderOverPures(t *testing.T) {
	f := fetch.Traverse([]int{1, 2, 3}, func(i int) fetch.Fetch[int] { return fetch.Pure(i * i) })
	v, err := fetch.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9}, v)
}

func TestSequenceFlattensFetches(t *testing.T) {
	f := fetch.Sequence([]fetch.Fetch[int]{fetch.Pure(1), fetch.Pure(2), fetch.Pure(3)})
	v, err := fetch.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
}
