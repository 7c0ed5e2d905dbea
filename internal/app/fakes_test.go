package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
	"github.com/mark47B/opspilot/internal/domain/repository"
)

var (
	testNow   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	errOutage = errors.New("connection refused")
)

var _ repository.CacheGateway = (*fakeCache)(nil)

// calls records which collaborators were touched.
type calls struct {
	mu  sync.Mutex
	log []string
}

func (c *calls) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, name)
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.log {
		if l == name {
			n++
		}
	}
	return n
}

type fakeCache struct {
	calls    *calls
	lookup   entity.CacheLookup
	similar  []entity.CachedAnalysis
	err      error
	upserted []entity.CachedAnalysis
	cleared  int
}

func (f *fakeCache) Lookup(_ context.Context, _ fingerprint.Fingerprint) (entity.CacheLookup, error) {
	f.calls.add("cache.lookup")
	return f.lookup, f.err
}

func (f *fakeCache) RetrieveSimilar(_ context.Context, _ []float32, k int) ([]entity.CachedAnalysis, error) {
	f.calls.add("cache.retrieve")
	if f.err != nil {
		return nil, f.err
	}
	if len(f.similar) > k {
		return f.similar[:k], nil
	}
	return f.similar, nil
}

func (f *fakeCache) Upsert(_ context.Context, _ fingerprint.Fingerprint, payload entity.CachedAnalysis) error {
	f.calls.add("cache.upsert")
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, payload)
	return nil
}

func (f *fakeCache) Clear(context.Context) (int, error) {
	f.calls.add("cache.clear")
	return f.cleared, f.err
}

func (f *fakeCache) SemanticEnabled(context.Context) bool { return true }

type fakeSources struct {
	calls  *calls
	prs    []entity.PullRequest
	issues []entity.Issue
	chat   int
	prErr  error
	isErr  error
	chErr  error
	mode   string
}

func (f *fakeSources) PullRequests(context.Context, entity.AnalysisRequest) ([]entity.PullRequest, error) {
	f.calls.add("collect.prs")
	return f.prs, f.prErr
}

func (f *fakeSources) Issues(context.Context, entity.AnalysisRequest) ([]entity.Issue, error) {
	f.calls.add("collect.issues")
	return f.issues, f.isErr
}

func (f *fakeSources) BlockerMentions(context.Context, entity.AnalysisRequest) (int, error) {
	f.calls.add("collect.chat")
	return f.chat, f.chErr
}

func (f *fakeSources) sources() repository.Sources {
	return repository.Sources{
		PullRequests: f,
		Issues:       f,
		Chat:         f,
		Mode: func() string {
			if f.mode != "" {
				return f.mode
			}
			return entity.PostmanStub
		},
	}
}

type fakeReasoning struct {
	calls   *calls
	out     entity.Reasoning
	err     error
	gotDocs []string
}

func (f *fakeReasoning) Generate(_ context.Context, _ entity.WorkflowMetrics, docs []string) (entity.Reasoning, error) {
	f.calls.add("reason")
	f.gotDocs = docs
	return f.out, f.err
}

type fakeReports struct {
	calls   *calls
	err     error
	created []entity.WorkflowReport
	rows    []entity.ScoreRow
	since   time.Time
	filter  entity.ReportFilter
}

func (f *fakeReports) Create(_ context.Context, r entity.WorkflowReport) (entity.WorkflowReport, error) {
	f.calls.add("persist")
	if f.err != nil {
		return entity.WorkflowReport{}, f.err
	}
	r.ID = fmt.Sprintf("rep-%d", len(f.created)+1)
	r.Version = len(f.created) + 1
	r.CreatedAt = testNow
	r.URL = "/api/reports/" + r.ID
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeReports) Get(_ context.Context, id string) (entity.WorkflowReport, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return entity.WorkflowReport{}, f.err
}

func (f *fakeReports) List(_ context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error) {
	f.filter = filter
	return f.created, f.err
}

func (f *fakeReports) ScoreRows(_ context.Context, since time.Time) ([]entity.ScoreRow, error) {
	f.since = since
	return f.rows, f.err
}

type fixture struct {
	calls     *calls
	cache     *fakeCache
	sources   *fakeSources
	reasoning *fakeReasoning
	reports   *fakeReports
}

func newFixture() *fixture {
	c := &calls{}
	return &fixture{
		calls:   c,
		cache:   &fakeCache{calls: c},
		sources: &fakeSources{calls: c},
		reasoning: &fakeReasoning{calls: c, out: entity.Reasoning{
			SOP:     "## Goals\nShip reviewed code within a day.",
			Summary: "Review latency dominates.",
		}},
		reports: &fakeReports{calls: c},
	}
}

func (f *fixture) pipeline() *Pipeline {
	return NewPipeline(Dependencies{
		Cache:     f.cache,
		Sources:   f.sources.sources(),
		Reasoning: f.reasoning,
		Reports:   f.reports,
		Now:       func() time.Time { return testNow },
	}, DefaultPipelineConfig())
}

func (f *fixture) service() *ServiceImpl {
	return NewService(f.pipeline(), f.reports, f.cache, nil).(*ServiceImpl)
}
