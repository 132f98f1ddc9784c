package generation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterMonotonic(t *testing.T) {
	t.Parallel()

	var c Counter
	require.Equal(t, uint64(0), c.Current())

	first := c.Next()
	second := c.Next()

	assert.Greater(t, second, first)
	assert.False(t, c.IsCurrent(first))
	assert.True(t, c.IsCurrent(second))
}

func TestCounterConcurrentNextIsUnique(t *testing.T) {
	t.Parallel()

	var (
		c    Counter
		mu   sync.Mutex
		seen = map[uint64]struct{}{}
		wg   sync.WaitGroup
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token := c.Next()
			mu.Lock()
			seen[token] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.Equal(t, uint64(50), c.Current())
}

func TestLaterLoadSupersedesEarlierLoad(t *testing.T) {
	t.Parallel()

	c := NewController()
	a := c.BeginLoad()
	b := c.BeginLoad()

	assert.False(t, a.Current())
	assert.True(t, b.Current())
}

func TestLoadSupersedesOutstandingRefresh(t *testing.T) {
	t.Parallel()

	c := NewController()
	c.BeginLoad()
	refresh := c.BeginRefresh()
	require.True(t, refresh.Current())

	load := c.BeginLoad()

	assert.False(t, refresh.Current())
	assert.True(t, load.Current())
}

func TestRefreshSupersedesRefresh(t *testing.T) {
	t.Parallel()

	c := NewController()
	c.BeginLoad()
	r1 := c.BeginRefresh()
	r2 := c.BeginRefresh()

	assert.False(t, r1.Current())
	assert.True(t, r2.Current())
}

func TestRefreshSupersedesOutstandingLoad(t *testing.T) {
	t.Parallel()

	c := NewController()
	load := c.BeginLoad()
	refresh := c.BeginRefresh()

	assert.False(t, load.Current())
	assert.True(t, refresh.Current())
	assert.True(t, refresh.IsRefresh())
	assert.Equal(t, load.Load, refresh.Load)
	assert.Equal(t, c.LoadToken(), load.Load)
}

func TestCancelSupersedesEverything(t *testing.T) {
	t.Parallel()

	c := NewController()
	load := c.BeginLoad()
	refresh := c.BeginRefresh()

	c.Cancel()

	assert.False(t, load.Current())
	assert.False(t, refresh.Current())
	assert.False(t, Ticket{}.Current())
}
