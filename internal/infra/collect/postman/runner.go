// Package postman collects workflow records by running Postman collections through Newman.
package postman

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/repository"
)

const (
	PullRequestsCollection = "github_pull_requests.json"
	IssuesCollection       = "jira_issues.json"
	ChatCollection         = "slack_mentions.json"

	metricsMarker = "METRICS:"
)

var (
	ErrInvalidRepo     = errors.New("repo must have the form owner/name")
	ErrNoMetricsLine   = errors.New("METRICS line not found in newman output")
	ErrMalformedOutput = errors.New("malformed METRICS payload")
)

type Config struct {
	NewmanBin      string
	CollectionsDir string
	Environment    string
	APIKey         string
	RunnerURL      string
	GitHubToken    string
}

// execFunc runs a command and returns its stdout.
type execFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Runner implements the PR, issue and chat sources on top of Newman.
type Runner struct {
	cfg    Config
	exec   execFunc
	now    func() time.Time
	logger *zap.Logger
}

var (
	_ repository.PullRequestSource = (*Runner)(nil)
	_ repository.IssueSource       = (*Runner)(nil)
	_ repository.ChatSource        = (*Runner)(nil)
)

func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	if cfg.NewmanBin == "" {
		cfg.NewmanBin = "newman"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, exec: runCommand, now: time.Now, logger: logger}
}

// Sources exposes the runner as the collector set of a pipeline.
func (r *Runner) Sources() repository.Sources {
	return repository.Sources{
		PullRequests: r,
		Issues:       r,
		Chat:         r,
		Mode:         r.Mode,
	}
}

func (r *Runner) Mode() string {
	if r.cfg.APIKey != "" || r.cfg.RunnerURL != "" {
		return entity.PostmanLive
	}
	return entity.PostmanStub
}

func (r *Runner) PullRequests(ctx context.Context, req entity.AnalysisRequest) ([]entity.PullRequest, error) {
	out, err := r.run(ctx, PullRequestsCollection, req)
	if err != nil {
		return nil, err
	}
	since := r.windowStart(req)
	prs := make([]entity.PullRequest, 0, len(out.PullRequests))
	for i, rec := range out.PullRequests {
		if rec.OpenedAt.Before(since) {
			continue
		}
		prs = append(prs, rec.toEntity(i+1))
	}
	return prs, nil
}

func (r *Runner) Issues(ctx context.Context, req entity.AnalysisRequest) ([]entity.Issue, error) {
	out, err := r.run(ctx, IssuesCollection, req)
	if err != nil {
		return nil, err
	}
	since := r.windowStart(req)
	issues := make([]entity.Issue, 0, len(out.Issues))
	for i, rec := range out.Issues {
		if rec.OpenedAt.Before(since) {
			continue
		}
		issues = append(issues, rec.toEntity(i+1))
	}
	return issues, nil
}

func (r *Runner) BlockerMentions(ctx context.Context, req entity.AnalysisRequest) (int, error) {
	out, err := r.run(ctx, ChatCollection, req)
	if err != nil {
		return 0, err
	}
	if out.BlockerMentions == nil {
		return 0, fmt.Errorf("%w: blocker_mentions missing", ErrMalformedOutput)
	}
	return *out.BlockerMentions, nil
}

// windowStart is the oldest opened_at kept; collections may return more than the window.
func (r *Runner) windowStart(req entity.AnalysisRequest) time.Time {
	return r.now().Add(-time.Duration(req.WindowDays) * 24 * time.Hour)
}

func (r *Runner) run(ctx context.Context, collection string, req entity.AnalysisRequest) (*collectionOutput, error) {
	owner, name, ok := splitRepo(req.Repo)
	if !ok {
		return nil, ErrInvalidRepo
	}

	args := r.args(collection, owner, name, req)
	start := time.Now()
	stdout, err := r.exec(ctx, r.cfg.NewmanBin, args...)
	r.logger.Debug("newman finished",
		zap.String("collection", collection),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return nil, fmt.Errorf("newman %s: %w", collection, err)
	}
	return parseOutput(stdout)
}

func (r *Runner) args(collection, owner, name string, req entity.AnalysisRequest) []string {
	args := []string{"run", filepath.Join(r.cfg.CollectionsDir, collection)}
	if r.cfg.Environment != "" {
		args = append(args, "-e", r.cfg.Environment)
	}
	for _, kv := range [][2]string{
		{"gh_token", r.cfg.GitHubToken},
		{"repo_owner", owner},
		{"repo_name", name},
		{"team", req.Team},
		{"window_days", strconv.Itoa(req.WindowDays)},
	} {
		args = append(args, "--env-var", kv[0]+"="+kv[1])
	}
	return append(args, "--reporters", "cli")
}

func splitRepo(repo string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%w: %s", err, truncate(msg, 500))
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

func parseOutput(stdout []byte) (*collectionOutput, error) {
	sc := bufio.NewScanner(bytes.NewReader(stdout))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		payload, ok := strings.CutPrefix(line, metricsMarker)
		if !ok {
			continue
		}
		var out collectionOutput
		if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		return &out, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read newman output: %w", err)
	}
	return nil, ErrNoMetricsLine
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
