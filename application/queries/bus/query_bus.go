package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryMiddleware wraps a query handler
type QueryMiddleware func(next QueryHandler) QueryHandler

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []QueryMiddleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus
func NewQueryBus() *QueryBus {
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
	}
}

// Use adds middleware applied to every query, first one outermost.
func (b *QueryBus) Use(middlewares ...QueryMiddleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, middlewares...)
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	middlewares := append([]QueryMiddleware(nil), b.middlewares...)
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no handler registered for query type %T", query)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query handler failed: %w", err)
	}

	return result, nil
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Cache interface for caching
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
}

// Versioner reports the version of the data queries read from. Cached
// results from an older version are never served.
type Versioner interface {
	Version() uint64
}

// CachingMiddleware adds caching to query handlers
type CachingMiddleware struct {
	cache     Cache
	versioner Versioner
	ttl       int // TTL in seconds
}

// NewCachingMiddleware creates a new caching middleware
func NewCachingMiddleware(cache Cache, versioner Versioner, ttl int) *CachingMiddleware {
	return &CachingMiddleware{
		cache:     cache,
		versioner: versioner,
		ttl:       ttl,
	}
}

// Middleware returns the caching layer as a QueryMiddleware.
func (m *CachingMiddleware) Middleware() QueryMiddleware {
	return m.Wrap
}

// Wrap wraps a query handler with caching
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		if nc, ok := query.(interface{ NoCache() bool }); ok && nc.NoCache() {
			return next.Handle(ctx, query)
		}

		cacheKey := m.generateCacheKey(query)
		if cached, found := m.cache.Get(ctx, cacheKey); found {
			return cached, nil
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}

		_ = m.cache.Set(ctx, cacheKey, result, m.ttl)
		return result, nil
	})
}

func (m *CachingMiddleware) generateCacheKey(query Query) string {
	return fmt.Sprintf("v%d:%#v", m.versioner.Version(), query)
}

// Observer receives the outcome of every query.
type Observer interface {
	ObserveQuery(name string, duration time.Duration, err error)
}

// MetricsMiddleware reports query outcomes to an observer
func MetricsMiddleware(observer Observer) QueryMiddleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			observer.ObserveQuery(reflect.TypeOf(query).Name(), time.Since(start), err)
			return result, err
		})
	}
}
