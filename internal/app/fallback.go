package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

// Stub datasets substitute a source that is unreachable. They are anchored to now
// and summarize to: 30h to first review, 50h to merge, 40% waiting >36h,
// 1.6 reviews per PR, 25% unassigned, 18% reopened, 30% stale, 12 blocker mentions.

const stubBlockerMentions = 12

func stubPullRequests(now time.Time) []entity.PullRequest {
	pr := func(n int, openedHoursAgo, reviewAfter, mergeAfter float64, reviews int) entity.PullRequest {
		opened := now.Add(-hours(openedHoursAgo))
		p := entity.PullRequest{
			Number:      n,
			Title:       fmt.Sprintf("stub change #%d", n),
			Author:      "stub",
			OpenedAt:    opened,
			ReviewCount: reviews,
		}
		if reviewAfter > 0 {
			t := opened.Add(hours(reviewAfter))
			p.FirstReviewAt = &t
		}
		if mergeAfter > 0 {
			t := opened.Add(hours(mergeAfter))
			p.MergedAt = &t
		}
		return p
	}
	return []entity.PullRequest{
		pr(1, 120, 12, 40, 2),
		pr(2, 120, 24, 50, 1),
		pr(3, 120, 30, 60, 2),
		pr(4, 96, 54, 0, 2),
		pr(5, 72, 0, 0, 1),
	}
}

func stubIssues(now time.Time) []entity.Issue {
	issues := make([]entity.Issue, 0, 100)
	for i := 0; i < 100; i++ {
		opened := now.Add(-48 * time.Hour)
		is := entity.Issue{
			Key:            fmt.Sprintf("STUB-%d", i+1),
			OpenedAt:       opened,
			LastActivityAt: now.Add(-time.Hour),
		}
		// первые 25 остаются без исполнителя
		if i >= 25 {
			t := opened.Add(2 * time.Hour)
			is.FirstAssignedAt = &t
		}
		if i >= 25 && i < 43 {
			is.Reopened = true
		}
		if i >= 43 && i < 73 {
			is.OpenedAt = now.Add(-12 * 24 * time.Hour)
			t := is.OpenedAt.Add(2 * time.Hour)
			is.FirstAssignedAt = &t
			is.LastActivityAt = now.Add(-10 * 24 * time.Hour)
		}
		issues = append(issues, is)
	}
	return issues
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// sopSkeleton is the templated SOP used when reasoning is unavailable.
func sopSkeleton(req entity.AnalysisRequest, m entity.WorkflowMetrics, bottlenecks []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Workflow SOP: %s (%s)\n\n", req.Team, req.Repo)

	b.WriteString("## Goals\n")
	fmt.Fprintf(&b, "- Bring average time to first review under 24h (currently %.1fh)\n", m.AvgTimeToFirstReviewHours)
	fmt.Fprintf(&b, "- Keep issues unassigned after 24h under 10%% (currently %.0f%%)\n", m.Unassigned24hRate*100)
	fmt.Fprintf(&b, "- Keep the reopen rate under 10%% (currently %.0f%%)\n\n", m.ReopenRate*100)

	b.WriteString("## SLAs\n")
	b.WriteString("- First review within 24h of a PR being opened\n")
	b.WriteString("- New issues triaged and assigned within 24h\n")
	b.WriteString("- Blocked work escalated within 4h\n\n")

	b.WriteString("## Auto-triage rules\n")
	b.WriteString("- Label new issues by component and severity on creation\n")
	b.WriteString("- Flag issues without activity for 7 days as stale\n\n")

	b.WriteString("## Assignment policy\n")
	b.WriteString("- The on-duty engineer assigns every new issue the same day\n\n")

	b.WriteString("## PR review policy\n")
	b.WriteString("- Two reviewers per PR, rotated within the team\n")
	b.WriteString("- PRs waiting longer than 36h are raised at standup\n\n")

	b.WriteString("## QA gates\n")
	b.WriteString("- CI green and one approval before merge\n\n")

	b.WriteString("## Weekly cadence\n")
	fmt.Fprintf(&b, "- Review this report weekly over a %d-day window\n\n", m.WindowDays)

	b.WriteString("## RACI\n")
	b.WriteString("- Responsible: on-duty engineer; Accountable: team lead; Consulted: reviewers; Informed: stakeholders\n")

	if len(bottlenecks) > 0 {
		b.WriteString("\n## Detected bottlenecks\n")
		for _, s := range bottlenecks {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}
