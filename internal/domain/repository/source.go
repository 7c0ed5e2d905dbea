package repository

import (
	"context"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

type PullRequestSource interface {
	PullRequests(ctx context.Context, req entity.AnalysisRequest) ([]entity.PullRequest, error)
}

type IssueSource interface {
	Issues(ctx context.Context, req entity.AnalysisRequest) ([]entity.Issue, error)
}

type ChatSource interface {
	BlockerMentions(ctx context.Context, req entity.AnalysisRequest) (int, error)
}

// Sources groups the collectors of one run. Mode reports how they are backed ("live" or "stub").
type Sources struct {
	PullRequests PullRequestSource
	Issues       IssueSource
	Chat         ChatSource
	Mode         func() string
}
