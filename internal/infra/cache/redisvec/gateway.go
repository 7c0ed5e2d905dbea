// Package redisvec implements the analysis cache on a Redis vector index
// (RediSearch HNSW, cosine). Without the search module it degrades to exact-key caching.
package redisvec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
	"github.com/mark47B/opspilot/internal/domain/repository"
)

const (
	DefaultIndex = "idx_workflows"
	DocPrefix    = "wfdoc:"
	KeyPrefix    = "wfkey:"

	checkInterval = time.Minute
	scanCount     = 100
)

var (
	_ repository.CacheGateway = (*Gateway)(nil)
	_ repository.IndexManager = (*Gateway)(nil)
)

type Config struct {
	Index  string
	Dims   int
	TTL    time.Duration
	Logger *zap.Logger
}

type Gateway struct {
	client *redis.Client
	index  string
	dims   int
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	check  func(ctx context.Context) error
	checks singleflight.Group

	mu        sync.Mutex
	semantic  bool
	checkedAt time.Time
}

// NewClient parses a redis:// or rediss:// URL. Socket timeouts are 10s.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.DialTimeout = 10 * time.Second
	opts.ReadTimeout = 10 * time.Second
	opts.WriteTimeout = 10 * time.Second
	return redis.NewClient(opts), nil
}

func New(client *redis.Client, cfg Config) *Gateway {
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.Dims <= 0 {
		cfg.Dims = fingerprint.DefaultDims
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	g := &Gateway{
		client: client,
		index:  cfg.Index,
		dims:   cfg.Dims,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
		now:    time.Now,
	}
	g.check = g.listIndexes
	return g
}

// SemanticEnabled reports whether the search module is loaded. The check result
// is reused for a minute; concurrent callers share one in-flight check.
func (g *Gateway) SemanticEnabled(ctx context.Context) bool {
	g.mu.Lock()
	fresh := !g.checkedAt.IsZero() && g.now().Sub(g.checkedAt) < checkInterval
	semantic := g.semantic
	g.mu.Unlock()
	if fresh {
		return semantic
	}

	v, _, _ := g.checks.Do("ft_list", func() (any, error) {
		err := g.check(ctx)
		if err != nil {
			g.logger.Info("redis search unavailable, using key cache", zap.Error(err))
		}
		g.mu.Lock()
		g.semantic = err == nil
		g.checkedAt = g.now()
		g.mu.Unlock()
		return err == nil, nil
	})
	enabled, _ := v.(bool)
	return enabled
}

func (g *Gateway) listIndexes(ctx context.Context) error {
	return g.client.Do(ctx, "FT._LIST").Err()
}

func (g *Gateway) EnsureIndex(ctx context.Context) error {
	if !g.SemanticEnabled(ctx) {
		return fmt.Errorf("redis search module not available")
	}
	if err := g.client.Do(ctx, "FT.INFO", g.index).Err(); err == nil {
		return nil
	}
	err := g.client.Do(ctx, createIndexArgs(g.index, g.dims)...).Err()
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "index already exists") {
		return fmt.Errorf("create index %s: %w", g.index, err)
	}
	g.logger.Info("vector index ready", zap.String("index", g.index), zap.Int("dims", g.dims))
	return nil
}

func (g *Gateway) Lookup(ctx context.Context, fp fingerprint.Fingerprint) (entity.CacheLookup, error) {
	if !g.SemanticEnabled(ctx) {
		return g.lookupKey(ctx, fp)
	}

	docs, err := g.search(ctx, fp.Vector, 1)
	if err != nil {
		return entity.CacheLookup{}, err
	}
	if len(docs) == 0 || docs[0].payload == nil {
		return entity.CacheLookup{}, nil
	}
	return entity.CacheLookup{
		Found:      true,
		Similarity: docs[0].similarity,
		Payload:    docs[0].payload,
	}, nil
}

func (g *Gateway) lookupKey(ctx context.Context, fp fingerprint.Fingerprint) (entity.CacheLookup, error) {
	raw, err := g.client.Get(ctx, fp.ExactKey(KeyPrefix)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.CacheLookup{}, nil
	}
	if err != nil {
		return entity.CacheLookup{}, fmt.Errorf("get cached analysis: %w", err)
	}
	var payload entity.CachedAnalysis
	if err := json.Unmarshal(raw, &payload); err != nil {
		return entity.CacheLookup{}, fmt.Errorf("decode cached analysis: %w", err)
	}
	return entity.CacheLookup{Found: true, Similarity: 1, Payload: &payload}, nil
}

// RetrieveSimilar returns nothing in key-cache mode: there is no similarity to rank by.
func (g *Gateway) RetrieveSimilar(ctx context.Context, vector []float32, k int) ([]entity.CachedAnalysis, error) {
	if k <= 0 || !g.SemanticEnabled(ctx) {
		return nil, nil
	}
	docs, err := g.search(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	out := make([]entity.CachedAnalysis, 0, len(docs))
	for _, d := range docs {
		if d.payload != nil {
			out = append(out, *d.payload)
		}
	}
	return out, nil
}

func (g *Gateway) Upsert(ctx context.Context, fp fingerprint.Fingerprint, payload entity.CachedAnalysis) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cached analysis: %w", err)
	}

	if !g.SemanticEnabled(ctx) {
		if err := g.client.Set(ctx, fp.ExactKey(KeyPrefix), raw, g.ttl).Err(); err != nil {
			return fmt.Errorf("set cached analysis: %w", err)
		}
		return nil
	}

	key := fp.Key(DocPrefix, g.now())
	_, err = g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"repo":        payload.Repo,
			"team":        payload.Team,
			"window_days": payload.WindowDays,
			"score":       payload.Score,
			"sop":         payload.SOP,
			"payload":     string(raw),
			"embedding":   fingerprint.Bytes(fp.Vector),
		})
		if g.ttl > 0 {
			pipe.Expire(ctx, key, g.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store cached analysis: %w", err)
	}
	return nil
}

// Clear drops every document and exact-key entry and returns the number removed.
func (g *Gateway) Clear(ctx context.Context) (int, error) {
	total := 0
	for _, pattern := range []string{DocPrefix + "*", KeyPrefix + "*"} {
		var cursor uint64
		for {
			keys, next, err := g.client.Scan(ctx, cursor, pattern, scanCount).Result()
			if err != nil {
				return total, fmt.Errorf("scan %s: %w", pattern, err)
			}
			if len(keys) > 0 {
				n, err := g.client.Del(ctx, keys...).Result()
				if err != nil {
					return total, fmt.Errorf("delete keys: %w", err)
				}
				total += int(n)
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	g.logger.Info("cache cleared", zap.Int("deleted", total))
	return total, nil
}

func (g *Gateway) search(ctx context.Context, vector []float32, k int) ([]searchDoc, error) {
	reply, err := g.client.Do(ctx, searchArgs(g.index, vector, k)...).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	docs, err := parseSearchReply(reply)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.decodeErr != nil {
			g.logger.Warn("skipping undecodable cache document", zap.String("key", d.key), zap.Error(d.decodeErr))
		}
	}
	return docs, nil
}
