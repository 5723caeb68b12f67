// Package decorators wraps a member store with circuit breaking and
// instrumentation.
package decorators

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"hazboun-backend/application/ports"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/pkg/errors"
)

// BreakerConfig holds configuration for the store circuit breaker.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests calls have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default configuration.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerStore fails fast with an unavailable error while the store keeps
// failing.
type BreakerStore struct {
	next    ports.MemberStore
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next ports.MemberStore, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	s := &BreakerStore{next: next, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A missing row or a canceled caller says nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.IsNotFound(err) ||
				stderrors.Is(err, context.Canceled)
		},
	})
	return s
}

// State reports the breaker state.
func (s *BreakerStore) State() gobreaker.State {
	return s.breaker.State()
}

func (s *BreakerStore) Ping(ctx context.Context) error {
	_, err := s.execute("ping", func() (interface{}, error) {
		return nil, s.next.Ping(ctx)
	})
	return err
}

func (s *BreakerStore) FetchAll(ctx context.Context) ([]entities.FamilyMember, error) {
	out, err := s.execute("fetch", func() (interface{}, error) {
		return s.next.FetchAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]entities.FamilyMember), nil
}

func (s *BreakerStore) Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error) {
	out, err := s.execute("insert", func() (interface{}, error) {
		return s.next.Insert(ctx, draft)
	})
	if err != nil {
		return entities.FamilyMember{}, err
	}
	return out.(entities.FamilyMember), nil
}

func (s *BreakerStore) Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error) {
	out, err := s.execute("update", func() (interface{}, error) {
		return s.next.Update(ctx, id, patch)
	})
	if err != nil {
		return entities.FamilyMember{}, err
	}
	return out.(entities.FamilyMember), nil
}

func (s *BreakerStore) Remove(ctx context.Context, id string) error {
	_, err := s.execute("delete", func() (interface{}, error) {
		return nil, s.next.Remove(ctx, id)
	})
	return err
}

func (s *BreakerStore) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	out, err := s.breaker.Execute(fn)
	switch {
	case stderrors.Is(err, gobreaker.ErrOpenState):
		s.logger.Warn("Circuit breaker is open, rejecting store call", zap.String("operation", operation))
		return nil, errors.NewStoreError(operation, "Member store temporarily unavailable - too many failures", err)
	case stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, errors.NewStoreError(operation, "Member store temporarily unavailable - too many requests", err)
	}
	return out, err
}
