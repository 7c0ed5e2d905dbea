package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/fingerprint"
	"github.com/mark47B/opspilot/internal/domain/metrics"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/scoring"
	"github.com/mark47B/opspilot/internal/domain/usecase"
)

const (
	SOPPreviewLength  = 500
	minContextSOPSize = 10
	noReportURL       = "#"
)

type PipelineConfig struct {
	SimilarityThreshold float64
	ContextTopK         int
	VectorDims          int

	CollectTimeout   time.Duration
	ReasoningTimeout time.Duration
	CacheTimeout     time.Duration
	StoreTimeout     time.Duration
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SimilarityThreshold: 0.80,
		ContextTopK:         5,
		VectorDims:          fingerprint.DefaultDims,
		CollectTimeout:      30 * time.Second,
		ReasoningTimeout:    45 * time.Second,
		CacheTimeout:        10 * time.Second,
		StoreTimeout:        10 * time.Second,
	}
}

// Recorder receives pipeline telemetry.
type Recorder interface {
	ObserveStep(state, outcome string, d time.Duration)
	ObserveAnalysis(cacheStatus string, partial bool, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStep(string, string, time.Duration)   {}
func (nopRecorder) ObserveAnalysis(string, bool, time.Duration) {}

type Dependencies struct {
	Cache      repository.CacheGateway
	Sources    repository.Sources
	Reasoning  repository.ReasoningGateway
	Reports    repository.ReportRepository
	Calculator *scoring.Calculator
	Logger     *zap.Logger
	Recorder   Recorder
	Now        func() time.Time
}

// Pipeline runs one analysis per call. It holds no per-request state, so a
// single instance serves concurrent requests.
type Pipeline struct {
	cache     repository.CacheGateway
	sources   repository.Sources
	reasoning repository.ReasoningGateway
	reports   repository.ReportRepository
	calc      *scoring.Calculator
	cfg       PipelineConfig
	logger    *zap.Logger
	recorder  Recorder
	now       func() time.Time
}

func NewPipeline(deps Dependencies, cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		cache:     deps.Cache,
		sources:   deps.Sources,
		reasoning: deps.Reasoning,
		reports:   deps.Reports,
		calc:      deps.Calculator,
		cfg:       cfg,
		logger:    deps.Logger,
		recorder:  deps.Recorder,
		now:       deps.Now,
	}
	if p.calc == nil {
		p.calc = scoring.NewCalculator(scoring.DefaultWeights(), scoring.DefaultThresholds())
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.recorder == nil {
		p.recorder = nopRecorder{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// run is the state carried between steps of a single request.
type run struct {
	req entity.AnalysisRequest
	fp  fingerprint.Fingerprint

	semantic bool
	lookup   entity.CacheLookup
	hit      bool

	data        entity.CollectedData
	allStubbed  bool
	metrics     entity.WorkflowMetrics
	contextDocs []string
	reasoning   entity.Reasoning
	reasoned    bool
	score       int
	bottlenecks []string
	report      entity.WorkflowReport
	persisted   bool

	partial bool
}

var tracer = otel.Tracer("github.com/mark47B/opspilot/internal/app")

// Run executes the pipeline. It never fails: every collaborator error is
// absorbed by the degraded edge of its state.
func (p *Pipeline) Run(ctx context.Context, req entity.AnalysisRequest) entity.AnalysisResult {
	started := p.now()
	observe := usecase.ObserverFrom(ctx)

	ctx, span := tracer.Start(ctx, "analyze_workflow",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("repo", req.Repo),
			attribute.String("team", req.Team),
			attribute.Int("window_days", req.WindowDays),
		),
	)
	defer span.End()

	r := &run{
		req: req,
		fp:  fingerprint.New(req.Repo, req.Team, req.WindowDays, p.cfg.VectorDims),
	}

	state := Next(StateStart, OutcomeOK)
	for {
		stepStarted := time.Now()
		outcome := p.step(ctx, state, r)
		p.recorder.ObserveStep(string(state), string(outcome), time.Since(stepStarted))
		observe(usecase.StepEvent{State: string(state), Outcome: string(outcome)})
		p.logger.Info("pipeline step",
			zap.String("repo", req.Repo),
			zap.String("team", req.Team),
			zap.String("state", string(state)),
			zap.String("outcome", string(outcome)),
		)
		if Terminal(state) {
			break
		}
		state = Next(state, outcome)
	}

	res := p.respond(r)
	span.SetAttributes(
		attribute.String("cache_status", res.CacheStatus),
		attribute.Bool("partial", res.Partial),
		attribute.Int("score", res.Score),
	)
	p.recorder.ObserveAnalysis(res.CacheStatus, res.Partial, p.now().Sub(started))
	return res
}

func (p *Pipeline) step(ctx context.Context, state State, r *run) Outcome {
	ctx, span := tracer.Start(ctx, string(state))
	defer span.End()

	var o Outcome
	switch state {
	case StateCacheLookup:
		o = p.cacheLookup(ctx, r)
	case StateCollect:
		o = p.collect(ctx, r)
	case StateSummarize:
		r.metrics = metrics.Summarize(r.data, r.req.WindowDays, p.now())
		o = OutcomeOK
	case StateRetrieveContext:
		o = p.retrieveContext(ctx, r)
	case StateReason:
		o = p.reason(ctx, r)
	case StateScore:
		o = p.score(r)
	case StatePersist:
		o = p.persist(ctx, r)
	case StateCacheUpsert:
		o = p.cacheUpsert(ctx, r)
	default:
		o = OutcomeOK
	}
	span.SetAttributes(attribute.String("outcome", string(o)))
	return o
}

func (p *Pipeline) cacheLookup(ctx context.Context, r *run) Outcome {
	if p.cache == nil {
		return OutcomeDegraded
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CacheTimeout)
	defer cancel()

	r.semantic = p.cache.SemanticEnabled(ctx)

	lookup, err := p.cache.Lookup(ctx, r.fp)
	if err != nil {
		p.logger.Warn("cache lookup failed", zap.String("repo", r.req.Repo), zap.Error(err))
		return OutcomeDegraded
	}
	r.lookup = lookup
	if lookup.Found && lookup.Payload != nil && lookup.Similarity >= p.cfg.SimilarityThreshold {
		r.hit = true
		return OutcomeHit
	}
	return OutcomeMiss
}

// collect queries every source concurrently; a failed source is replaced by its stub dataset.
func (p *Pipeline) collect(ctx context.Context, r *run) Outcome {
	now := p.now()
	var prsFailed, issuesFailed, chatFailed bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if p.sources.PullRequests == nil {
			prsFailed = true
			return nil
		}
		sctx, cancel := context.WithTimeout(gctx, p.cfg.CollectTimeout)
		defer cancel()
		prs, err := p.sources.PullRequests.PullRequests(sctx, r.req)
		if err != nil {
			p.logger.Warn("pull request source unavailable", zap.String("repo", r.req.Repo), zap.Error(err))
			prsFailed = true
			return nil
		}
		r.data.PullRequests = prs
		return nil
	})
	g.Go(func() error {
		if p.sources.Issues == nil {
			issuesFailed = true
			return nil
		}
		sctx, cancel := context.WithTimeout(gctx, p.cfg.CollectTimeout)
		defer cancel()
		issues, err := p.sources.Issues.Issues(sctx, r.req)
		if err != nil {
			p.logger.Warn("issue source unavailable", zap.String("repo", r.req.Repo), zap.Error(err))
			issuesFailed = true
			return nil
		}
		r.data.Issues = issues
		return nil
	})
	g.Go(func() error {
		if p.sources.Chat == nil {
			chatFailed = true
			return nil
		}
		sctx, cancel := context.WithTimeout(gctx, p.cfg.CollectTimeout)
		defer cancel()
		n, err := p.sources.Chat.BlockerMentions(sctx, r.req)
		if err != nil {
			p.logger.Warn("chat source unavailable", zap.String("team", r.req.Team), zap.Error(err))
			chatFailed = true
			return nil
		}
		r.data.BlockerMentions = n
		return nil
	})
	_ = g.Wait()

	if prsFailed {
		r.data.PullRequests = stubPullRequests(now)
	}
	if issuesFailed {
		r.data.Issues = stubIssues(now)
	}
	if chatFailed {
		r.data.BlockerMentions = stubBlockerMentions
	}
	r.allStubbed = prsFailed && issuesFailed && chatFailed
	if prsFailed || issuesFailed || chatFailed {
		r.partial = true
		return OutcomeDegraded
	}
	return OutcomeOK
}

func (p *Pipeline) retrieveContext(ctx context.Context, r *run) Outcome {
	if p.cache == nil {
		return OutcomeDegraded
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CacheTimeout)
	defer cancel()

	similar, err := p.cache.RetrieveSimilar(ctx, r.fp.Vector, p.cfg.ContextTopK)
	if err != nil {
		p.logger.Warn("context retrieval failed", zap.String("repo", r.req.Repo), zap.Error(err))
		return OutcomeDegraded
	}
	for _, doc := range similar {
		sop := strings.TrimSpace(doc.SOP)
		if len(sop) <= minContextSOPSize {
			continue
		}
		r.contextDocs = append(r.contextDocs, sop)
		if len(r.contextDocs) == p.cfg.ContextTopK {
			break
		}
	}
	return OutcomeOK
}

func (p *Pipeline) reason(ctx context.Context, r *run) Outcome {
	if p.reasoning != nil {
		rctx, cancel := context.WithTimeout(ctx, p.cfg.ReasoningTimeout)
		defer cancel()

		out, err := p.reasoning.Generate(rctx, r.metrics, r.contextDocs)
		if err == nil && strings.TrimSpace(out.SOP) != "" {
			r.reasoning = out
			r.reasoned = true
			return OutcomeOK
		}
		if err == nil {
			err = usecase.ErrReasoningUnavailable
		}
		p.logger.Warn("reasoning unavailable, using SOP skeleton", zap.String("repo", r.req.Repo), zap.Error(err))
	}

	r.reasoning = entity.Reasoning{
		SOP: sopSkeleton(r.req, r.metrics, p.calc.Bottlenecks(r.metrics)),
	}
	r.partial = true
	return OutcomeDegraded
}

// score always runs, whatever REASON produced.
func (p *Pipeline) score(r *run) Outcome {
	score, bottlenecks := p.calc.Evaluate(r.metrics)
	r.score = score
	r.bottlenecks = bottlenecks

	if r.reasoned {
		if refined := normalizeBottlenecks(r.reasoning.Bottlenecks); len(refined) > 0 {
			r.bottlenecks = refined
		}
	}
	if len(r.bottlenecks) > entity.MaxBottlenecks {
		r.bottlenecks = r.bottlenecks[:entity.MaxBottlenecks]
	}
	return OutcomeOK
}

func (p *Pipeline) persist(ctx context.Context, r *run) Outcome {
	if p.reports == nil {
		r.partial = true
		return OutcomeDegraded
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()

	report, err := p.reports.Create(ctx, entity.WorkflowReport{
		Repo:        r.req.Repo,
		Team:        r.req.Team,
		WindowDays:  r.req.WindowDays,
		Score:       r.score,
		Bottlenecks: r.bottlenecks,
		SOP:         truncateRunes(r.reasoning.SOP, entity.MaxSOPLength),
		Summary:     r.reasoning.Summary,
		Metrics:     r.metrics,
		Partial:     r.partial,
	})
	if err != nil {
		p.logger.Warn("report persist failed", zap.String("repo", r.req.Repo), zap.Error(err))
		r.partial = true
		return OutcomeDegraded
	}
	r.report = report
	r.persisted = true
	return OutcomeOK
}

func (p *Pipeline) cacheUpsert(ctx context.Context, r *run) Outcome {
	if p.cache == nil {
		return OutcomeDegraded
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CacheTimeout)
	defer cancel()

	err := p.cache.Upsert(ctx, r.fp, entity.CachedAnalysis{
		Repo:        r.req.Repo,
		Team:        r.req.Team,
		WindowDays:  r.req.WindowDays,
		Score:       r.score,
		Bottlenecks: r.bottlenecks,
		SOP:         truncateRunes(r.reasoning.SOP, entity.MaxSOPLength),
		Metrics:     r.metrics,
		ReportURL:   r.report.URL,
	})
	if err != nil {
		p.logger.Warn("cache upsert failed", zap.String("repo", r.req.Repo), zap.Error(err))
		return OutcomeDegraded
	}
	return OutcomeOK
}

func (p *Pipeline) respond(r *run) entity.AnalysisResult {
	if r.hit {
		hit := r.lookup.Payload
		sim := r.lookup.Similarity
		return entity.AnalysisResult{
			Score:           hit.Score,
			Bottlenecks:     nonNil(hit.Bottlenecks),
			SOPPreview:      truncateRunes(hit.SOP, SOPPreviewLength),
			ReportURL:       orNoURL(hit.ReportURL),
			CacheStatus:     entity.CacheHit,
			Similarity:      &sim,
			SemanticEnabled: r.semantic,
		}
	}

	res := entity.AnalysisResult{
		Score:           r.score,
		Bottlenecks:     nonNil(r.bottlenecks),
		SOPPreview:      truncateRunes(r.reasoning.SOP, SOPPreviewLength),
		ReportURL:       noReportURL,
		CacheStatus:     entity.CacheMiss,
		SemanticEnabled: r.semantic,
		Partial:         r.partial,
	}
	if r.lookup.Found {
		sim := r.lookup.Similarity
		res.Similarity = &sim
	}
	if r.persisted {
		res.ReportURL = orNoURL(r.report.URL)
		res.ReportID = r.report.ID
	}
	if p.sources.Mode != nil {
		res.PostmanMode = p.sources.Mode()
		// ни один источник не ответил: данные целиком из заглушек
		if r.allStubbed {
			res.PostmanMode = entity.PostmanStub
		}
	}
	return res
}

func normalizeBottlenecks(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func orNoURL(u string) string {
	if u == "" {
		return noReportURL
	}
	return u
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
