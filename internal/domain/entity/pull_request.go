package entity

import "time"

// PullRequest is one PR record as reported by the code host for the analysis window.
type PullRequest struct {
	Number        int
	Title         string
	Author        string
	OpenedAt      time.Time
	FirstReviewAt *time.Time
	MergedAt      *time.Time
	ReviewCount   int
}

// ReviewDelay returns the time between opening and the first review.
// ok is false when the PR was never reviewed.
func (pr PullRequest) ReviewDelay() (d time.Duration, ok bool) {
	if pr.FirstReviewAt == nil {
		return 0, false
	}
	return pr.FirstReviewAt.Sub(pr.OpenedAt), true
}

func (pr PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}
