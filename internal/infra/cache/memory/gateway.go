// Package memory is an in-process semantic cache used when no Redis is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
	"github.com/mark47B/opspilot/internal/domain/repository"
)

var _ repository.CacheGateway = (*Gateway)(nil)

type entry struct {
	vector  []float32
	payload entity.CachedAnalysis
}

// Gateway keeps the most recent entries with a TTL and answers similarity
// queries with a linear cosine scan.
type Gateway struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

func New(size int, ttl time.Duration) *Gateway {
	return &Gateway{
		lru: expirable.NewLRU[string, entry](size, nil, ttl),
		now: time.Now,
	}
}

func (g *Gateway) Lookup(_ context.Context, fp fingerprint.Fingerprint) (entity.CacheLookup, error) {
	best, ok := g.nearest(fp.Vector, 1)
	if !ok {
		return entity.CacheLookup{}, nil
	}
	payload := best[0].payload
	return entity.CacheLookup{
		Found:      true,
		Similarity: best[0].similarity,
		Payload:    &payload,
	}, nil
}

func (g *Gateway) RetrieveSimilar(_ context.Context, vector []float32, k int) ([]entity.CachedAnalysis, error) {
	hits, _ := g.nearest(vector, k)
	out := make([]entity.CachedAnalysis, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.payload)
	}
	return out, nil
}

func (g *Gateway) Upsert(_ context.Context, fp fingerprint.Fingerprint, payload entity.CachedAnalysis) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lru.Add(fp.Key("wfdoc:", g.now()), entry{vector: fp.Vector, payload: payload})
	return nil
}

func (g *Gateway) Clear(context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.lru.Len()
	g.lru.Purge()
	return n, nil
}

func (g *Gateway) SemanticEnabled(context.Context) bool {
	return true
}

type scored struct {
	payload    entity.CachedAnalysis
	similarity float64
}

func (g *Gateway) nearest(vector []float32, k int) ([]scored, bool) {
	if k <= 0 {
		return nil, false
	}
	g.mu.Lock()
	values := g.lru.Values()
	g.mu.Unlock()

	hits := make([]scored, 0, len(values))
	for _, e := range values {
		hits = append(hits, scored{payload: e.payload, similarity: fingerprint.Cosine(vector, e.vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].similarity > hits[j].similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, len(hits) > 0
}
