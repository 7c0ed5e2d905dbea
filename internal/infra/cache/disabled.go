// Package cache contains the CacheGateway implementations.
package cache

import (
	"context"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/usecase"
)

var _ repository.CacheGateway = Disabled{}

// Disabled is used when SEMANTIC_CACHE is off: every lookup misses and writes are dropped.
type Disabled struct{}

func (Disabled) Lookup(context.Context, fingerprint.Fingerprint) (entity.CacheLookup, error) {
	return entity.CacheLookup{}, nil
}

func (Disabled) RetrieveSimilar(context.Context, []float32, int) ([]entity.CachedAnalysis, error) {
	return nil, nil
}

func (Disabled) Upsert(context.Context, fingerprint.Fingerprint, entity.CachedAnalysis) error {
	return nil
}

func (Disabled) Clear(context.Context) (int, error) {
	return 0, usecase.ErrCacheDisabled
}

func (Disabled) SemanticEnabled(context.Context) bool {
	return false
}
