package repository

import (
	"context"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
)

type CacheGateway interface {
	Lookup(ctx context.Context, fp fingerprint.Fingerprint) (entity.CacheLookup, error)
	RetrieveSimilar(ctx context.Context, vector []float32, k int) ([]entity.CachedAnalysis, error)
	Upsert(ctx context.Context, fp fingerprint.Fingerprint, payload entity.CachedAnalysis) error
	// Clear removes every cached analysis and returns how many were dropped.
	Clear(ctx context.Context) (int, error)
	SemanticEnabled(ctx context.Context) bool
}

// IndexManager is implemented by gateways backed by a vector index that must exist before use.
type IndexManager interface {
	EnsureIndex(ctx context.Context) error
}
