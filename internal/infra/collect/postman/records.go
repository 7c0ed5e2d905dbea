package postman

import (
	"strconv"
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

type collectionOutput struct {
	PullRequests    []pullRequestRecord `json:"pull_requests"`
	Issues          []issueRecord       `json:"issues"`
	BlockerMentions *int                `json:"blocker_mentions"`
}

type pullRequestRecord struct {
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	OpenedAt      time.Time  `json:"opened_at"`
	FirstReviewAt *time.Time `json:"first_review_at"`
	MergedAt      *time.Time `json:"merged_at"`
	ReviewCount   int        `json:"review_count"`
}

// toEntity falls back to the record position when the collection omits the PR number.
func (r pullRequestRecord) toEntity(pos int) entity.PullRequest {
	number := r.Number
	if number == 0 {
		number = pos
	}
	return entity.PullRequest{
		Number:        number,
		Title:         r.Title,
		Author:        r.Author,
		OpenedAt:      r.OpenedAt,
		FirstReviewAt: r.FirstReviewAt,
		MergedAt:      r.MergedAt,
		ReviewCount:   r.ReviewCount,
	}
}

type issueRecord struct {
	Key             string     `json:"key"`
	OpenedAt        time.Time  `json:"opened_at"`
	FirstAssignedAt *time.Time `json:"first_assigned_at"`
	Reopened        bool       `json:"reopened"`
	LastActivityAt  time.Time  `json:"last_activity_at"`
	ClosedAt        *time.Time `json:"closed_at"`
}

func (r issueRecord) toEntity(pos int) entity.Issue {
	key := r.Key
	if key == "" {
		key = "ISSUE-" + strconv.Itoa(pos)
	}
	last := r.LastActivityAt
	if last.IsZero() {
		last = r.OpenedAt
	}
	return entity.Issue{
		Key:             key,
		OpenedAt:        r.OpenedAt,
		FirstAssignedAt: r.FirstAssignedAt,
		Reopened:        r.Reopened,
		LastActivityAt:  last,
		ClosedAt:        r.ClosedAt,
	}
}
