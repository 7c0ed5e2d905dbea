// Package resilience wraps upstream gateways with circuit breakers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/usecase"
)

type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// mapOpen turns breaker rejections into ErrUpstreamUnavailable.
func mapOpen(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", name, usecase.ErrUpstreamUnavailable)
	}
	return err
}

type ReasoningBreaker struct {
	next repository.ReasoningGateway
	cb   *gobreaker.CircuitBreaker
}

var _ repository.ReasoningGateway = (*ReasoningBreaker)(nil)

func NewReasoningBreaker(next repository.ReasoningGateway, cfg BreakerConfig, logger *zap.Logger) *ReasoningBreaker {
	return &ReasoningBreaker{next: next, cb: newBreaker(cfg, logger)}
}

func (b *ReasoningBreaker) Generate(ctx context.Context, m entity.WorkflowMetrics, docs []string) (entity.Reasoning, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, m, docs)
	})
	if err != nil {
		return entity.Reasoning{}, mapOpen(b.cb.Name(), err)
	}
	return out.(entity.Reasoning), nil
}

func (b *ReasoningBreaker) State() gobreaker.State { return b.cb.State() }

// CacheBreaker guards the hot-path cache calls. Clear is an admin operation and bypasses the breaker.
type CacheBreaker struct {
	next repository.CacheGateway
	cb   *gobreaker.CircuitBreaker
}

var _ repository.CacheGateway = (*CacheBreaker)(nil)

func NewCacheBreaker(next repository.CacheGateway, cfg BreakerConfig, logger *zap.Logger) *CacheBreaker {
	return &CacheBreaker{next: next, cb: newBreaker(cfg, logger)}
}

func (b *CacheBreaker) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (entity.CacheLookup, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Lookup(ctx, fp)
	})
	if err != nil {
		return entity.CacheLookup{}, mapOpen(b.cb.Name(), err)
	}
	return out.(entity.CacheLookup), nil
}

func (b *CacheBreaker) RetrieveSimilar(ctx context.Context, vector []float32, k int) ([]entity.CachedAnalysis, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.RetrieveSimilar(ctx, vector, k)
	})
	if err != nil {
		return nil, mapOpen(b.cb.Name(), err)
	}
	docs, _ := out.([]entity.CachedAnalysis)
	return docs, nil
}

func (b *CacheBreaker) Upsert(ctx context.Context, fp fingerprint.Fingerprint, payload entity.CachedAnalysis) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Upsert(ctx, fp, payload)
	})
	return mapOpen(b.cb.Name(), err)
}

func (b *CacheBreaker) Clear(ctx context.Context) (int, error) {
	return b.next.Clear(ctx)
}

// SemanticEnabled reports false while the breaker is open.
func (b *CacheBreaker) SemanticEnabled(ctx context.Context) bool {
	if b.cb.State() == gobreaker.StateOpen {
		return false
	}
	return b.next.SemanticEnabled(ctx)
}

func (b *CacheBreaker) State() gobreaker.State { return b.cb.State() }
