package bus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countQuery struct{ Country string }

func (countQuery) Validate() error { return nil }

type statusQuery struct{}

func (statusQuery) Validate() error { return nil }
func (statusQuery) NoCache() bool   { return true }

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func (c *mapCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

type fixedVersion struct{ v uint64 }

func (f *fixedVersion) Version() uint64 { return f.v }

func TestQueryBus_Ask(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(countQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		return len(q.(countQuery).Country), nil
	})))

	out, err := b.Ask(context.Background(), countQuery{Country: "Chile"})

	require.NoError(t, err)
	assert.Equal(t, 5, out)

	_, err = b.Ask(context.Background(), statusQuery{})
	assert.Error(t, err)
}

func TestCachingMiddleware_InvalidatesOnVersion(t *testing.T) {
	calls := 0
	version := &fixedVersion{v: 1}
	b := NewQueryBus()
	b.Use(NewCachingMiddleware(&mapCache{items: map[string]interface{}{}}, version, 60).Middleware())
	require.NoError(t, b.Register(countQuery{}, QueryHandlerFunc(func(context.Context, Query) (interface{}, error) {
		calls++
		return calls, nil
	})))
	require.NoError(t, b.Register(statusQuery{}, QueryHandlerFunc(func(context.Context, Query) (interface{}, error) {
		calls++
		return calls, nil
	})))
	ctx := context.Background()

	first, _ := b.Ask(ctx, countQuery{Country: "Jordan"})
	second, _ := b.Ask(ctx, countQuery{Country: "Jordan"})
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	version.v = 2
	third, _ := b.Ask(ctx, countQuery{Country: "Jordan"})
	assert.Equal(t, 2, third)

	// opted out of caching
	a, _ := b.Ask(ctx, statusQuery{})
	c, _ := b.Ask(ctx, statusQuery{})
	assert.NotEqual(t, a, c)
}
