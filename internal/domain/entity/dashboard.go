package entity

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ScoreDistribution struct {
	Excellent        int `json:"excellent"`
	Good             int `json:"good"`
	NeedsImprovement int `json:"needs_improvement"`
}

type DashboardSummary struct {
	TotalAnalyses     int
	AvgScore          float64
	ScoreDistribution ScoreDistribution
	TopTeams          []NamedCount
	TopRepos          []NamedCount
}

type TrendPoint struct {
	Date     string
	AvgScore float64
	Count    int
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

type DashboardTrends struct {
	Days        int
	Points      []TrendPoint
	Trend       Trend
	ScoreChange float64
}
