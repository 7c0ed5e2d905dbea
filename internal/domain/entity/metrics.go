package entity

const (
	MinWindowDays     = 1
	MaxWindowDays     = 90
	DefaultWindowDays = 14
)

type WorkflowMetrics struct {
	AvgTimeToFirstReviewHours float64 `json:"avg_time_to_first_review_h"`
	AvgTimeToMergeHours       float64 `json:"avg_time_to_merge_h"`
	PctPRsOver36hNoReview     float64 `json:"pct_prs_no_first_review_36h"`
	AvgReviewsPerPR           float64 `json:"avg_reviews_per_pr"`
	Unassigned24hRate         float64 `json:"unassigned_24h_rate"`
	ReopenRate                float64 `json:"reopen_rate"`
	Stale7dRatio              float64 `json:"stale_7d_ratio"`
	BlockerMentions           int     `json:"blocker_mentions"`
	WindowDays                int     `json:"window_days"`
}

// Clamped returns a copy with every field forced into its valid range.
func (m WorkflowMetrics) Clamped() WorkflowMetrics {
	m.AvgTimeToFirstReviewHours = nonNegative(m.AvgTimeToFirstReviewHours)
	m.AvgTimeToMergeHours = nonNegative(m.AvgTimeToMergeHours)
	m.AvgReviewsPerPR = nonNegative(m.AvgReviewsPerPR)
	m.PctPRsOver36hNoReview = unit(m.PctPRsOver36hNoReview)
	m.Unassigned24hRate = unit(m.Unassigned24hRate)
	m.ReopenRate = unit(m.ReopenRate)
	m.Stale7dRatio = unit(m.Stale7dRatio)
	if m.BlockerMentions < 0 {
		m.BlockerMentions = 0
	}
	m.WindowDays = ClampWindow(m.WindowDays)
	return m
}

func ClampWindow(days int) int {
	switch {
	case days < MinWindowDays:
		return MinWindowDays
	case days > MaxWindowDays:
		return MaxWindowDays
	}
	return days
}

func nonNegative(v float64) float64 {
	// NaN != NaN
	if v != v || v < 0 {
		return 0
	}
	return v
}

func unit(v float64) float64 {
	v = nonNegative(v)
	if v > 1 {
		return 1
	}
	return v
}
