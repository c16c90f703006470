package net

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoff_FIFO(t *testing.T) {
	h := NewHandoff[int]()
	_, ok := h.TryRecv()
	assert.False(t, ok)

	for i := 1; i <= 3; i++ {
		h.Publish(i)
	}
	assert.Equal(t, 3, h.Len())

	v, ok := h.TryRecv()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	h.Publish(4)
	var drained []int
	n := h.Drain(func(v int) { drained = append(drained, v) })
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{2, 3, 4}, drained)
	assert.Zero(t, h.Len())
}

func TestHandoff_DrainMayPublish(t *testing.T) {
	h := NewHandoff[int]()
	h.Publish(1)
	h.Drain(func(v int) { h.Publish(v + 1) })
	v, ok := h.TryRecv()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestHandoff_ConcurrentPublishers(t *testing.T) {
	h := NewHandoff[int]()
	const producers, each = 8, 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				h.Publish(p*each + i)
			}
		}(p)
	}

	seen := make(map[int]bool)
	last := make(map[int]int)
	consume := func(v int) {
		p := v / each
		if prev, ok := last[p]; ok {
			assert.Greater(t, v, prev, "per-producer order")
		}
		last[p] = v
		seen[v] = true
	}
	for len(seen) < producers*each {
		if v, ok := h.TryRecv(); ok {
			consume(v)
		}
	}
	wg.Wait()
	assert.Zero(t, h.Len())
}
