package entity

import "time"

const (
	MaxBottlenecks = 10
	MaxSOPLength   = 5000
)

// WorkflowReport is immutable once created; a new run produces a new version.
type WorkflowReport struct {
	ID          string
	Repo        string
	Team        string
	WindowDays  int
	Score       int
	Bottlenecks []string
	SOP         string
	Summary     string
	Metrics     WorkflowMetrics
	Partial     bool
	Version     int
	CreatedAt   time.Time
	URL         string
}

type ReportFilter struct {
	Repo  string
	Team  string
	Limit int
}

// ScoreRow is the projection of a report used by read-side aggregations.
type ScoreRow struct {
	Repo      string
	Team      string
	Score     int
	CreatedAt time.Time
}
