// Package resilience guards the table behind a circuit breaker so an
// unavailable DynamoDB fails requests fast instead of stacking timeouts.
package resilience

import (
	"context"
	"errors"
	"time"

	"hard-backend/application/ports"
	"hard-backend/domain/core/entities"
	pkgerrors "hard-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32        // calls let through while half-open
	Interval    time.Duration // closed-state window before counts reset
	Timeout     time.Duration // open-state wait before half-open
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests calls have been seen in the window.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the configuration used for the table
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

// BreakerStore is a ports.Store that routes every call through a circuit
// breaker. Application errors and cancelled contexts do not count as
// failures; only errors from the table itself do.
type BreakerStore struct {
	next    ports.Store
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerStore wraps next with a circuit breaker
func NewBreakerStore(next ports.Store, config BreakerConfig, logger *zap.Logger) *BreakerStore {
	s := &BreakerStore{next: next, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isSuccessful,
	})
	return s
}

// State reports the breaker state
func (s *BreakerStore) State() gobreaker.State {
	return s.breaker.State()
}

func (s *BreakerStore) Query(ctx context.Context, q ports.Query) ([]entities.Item, error) {
	return execute(s, "Query", func() ([]entities.Item, error) {
		return s.next.Query(ctx, q)
	})
}

func (s *BreakerStore) Put(ctx context.Context, item entities.Item) error {
	_, err := execute(s, "Put", func() (struct{}, error) {
		return struct{}{}, s.next.Put(ctx, item)
	})
	return err
}

func (s *BreakerStore) Delete(ctx context.Context, item entities.Item) error {
	_, err := execute(s, "Delete", func() (struct{}, error) {
		return struct{}{}, s.next.Delete(ctx, item)
	})
	return err
}

func (s *BreakerStore) BatchGet(ctx context.Context, userID string, targetType entities.ObjectType, searchAttribute string, matches []string) ([]entities.Item, error) {
	return execute(s, "BatchGet", func() ([]entities.Item, error) {
		return s.next.BatchGet(ctx, userID, targetType, searchAttribute, matches)
	})
}

func execute[R any](s *BreakerStore, operation string, fn func() (R, error)) (R, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err == nil {
		return result.(R), nil
	}

	var zero R
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.Warn("Circuit breaker rejected store call",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return zero, pkgerrors.NewServiceUnavailableError("Storage temporarily unavailable").WithCause(err)
	}
	return zero, err
}

func isSuccessful(err error) bool {
	return err == nil ||
		pkgerrors.IsAppError(err) ||
		errors.Is(err, context.Canceled)
}
