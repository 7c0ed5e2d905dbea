// Package metrics reduces raw pull-request and issue records into WorkflowMetrics.
package metrics

import (
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

const (
	ReviewWaitLimit = 36 * time.Hour
	AssignLimit     = 24 * time.Hour
	StaleAfter      = 7 * 24 * time.Hour
)

// Summarize is pure: the same input and the same now always give the same output.
// Empty inputs produce zero values instead of errors.
func Summarize(data entity.CollectedData, windowDays int, now time.Time) entity.WorkflowMetrics {
	m := entity.WorkflowMetrics{
		BlockerMentions: data.BlockerMentions,
		WindowDays:      windowDays,
	}
	summarizePullRequests(&m, data.PullRequests, now)
	summarizeIssues(&m, data.Issues, now)
	return m.Clamped()
}

func summarizePullRequests(m *entity.WorkflowMetrics, prs []entity.PullRequest, now time.Time) {
	if len(prs) == 0 {
		return
	}

	var (
		reviewHours, mergeHours float64
		reviewed, merged        int
		waited, reviews         int
	)
	for _, pr := range prs {
		if delay, ok := pr.ReviewDelay(); ok {
			delay = positive(delay)
			reviewHours += delay.Hours()
			reviewed++
			if delay > ReviewWaitLimit {
				waited++
			}
		} else {
			// ещё не ревьюили: ждём до мержа или до сейчас
			end := now
			if pr.MergedAt != nil {
				end = *pr.MergedAt
			}
			if positive(end.Sub(pr.OpenedAt)) > ReviewWaitLimit {
				waited++
			}
		}
		if pr.MergedAt != nil {
			mergeHours += positive(pr.MergedAt.Sub(pr.OpenedAt)).Hours()
			merged++
		}
		if pr.ReviewCount > 0 {
			reviews += pr.ReviewCount
		}
	}

	m.AvgTimeToFirstReviewHours = mean(reviewHours, reviewed)
	m.AvgTimeToMergeHours = mean(mergeHours, merged)
	m.PctPRsOver36hNoReview = mean(float64(waited), len(prs))
	m.AvgReviewsPerPR = mean(float64(reviews), len(prs))
}

func summarizeIssues(m *entity.WorkflowMetrics, issues []entity.Issue, now time.Time) {
	if len(issues) == 0 {
		return
	}

	staleBefore := now.Add(-StaleAfter)
	var unassigned, reopened, stale int
	for _, is := range issues {
		if is.FirstAssignedAt == nil || is.FirstAssignedAt.After(is.OpenedAt.Add(AssignLimit)) {
			unassigned++
		}
		if is.Reopened {
			reopened++
		}
		if is.IsOpen() && is.LastActivityAt.Before(staleBefore) {
			stale++
		}
	}

	m.Unassigned24hRate = mean(float64(unassigned), len(issues))
	m.ReopenRate = mean(float64(reopened), len(issues))
	m.Stale7dRatio = mean(float64(stale), len(issues))
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func positive(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
