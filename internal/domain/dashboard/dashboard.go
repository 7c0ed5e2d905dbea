// Package dashboard computes read-side aggregates over persisted reports.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

const (
	TopN = 5

	ExcellentFrom = 90
	GoodFrom      = 70

	DefaultTrendDays = 30
	MaxTrendDays     = 365

	// stableBand is the score change, in points, still reported as stable.
	stableBand = 1.0
)

func Summarize(rows []entity.ScoreRow) entity.DashboardSummary {
	s := entity.DashboardSummary{
		TotalAnalyses: len(rows),
		TopTeams:      []entity.NamedCount{},
		TopRepos:      []entity.NamedCount{},
	}
	if len(rows) == 0 {
		return s
	}

	teams := make(map[string]int)
	repos := make(map[string]int)
	var total int
	for _, r := range rows {
		total += r.Score
		teams[r.Team]++
		repos[r.Repo]++
		switch {
		case r.Score >= ExcellentFrom:
			s.ScoreDistribution.Excellent++
		case r.Score >= GoodFrom:
			s.ScoreDistribution.Good++
		default:
			s.ScoreDistribution.NeedsImprovement++
		}
	}

	s.AvgScore = round1(float64(total) / float64(len(rows)))
	s.TopTeams = top(teams, TopN)
	s.TopRepos = top(repos, TopN)
	return s
}

// Trends groups rows created within days before now into a daily average series.
func Trends(rows []entity.ScoreRow, days int, now time.Time) entity.DashboardTrends {
	out := entity.DashboardTrends{Days: days, Points: []entity.TrendPoint{}, Trend: entity.TrendStable}

	since := now.AddDate(0, 0, -days)
	type acc struct{ sum, n int }
	byDay := make(map[string]*acc)
	for _, r := range rows {
		if r.CreatedAt.Before(since) || r.CreatedAt.After(now) {
			continue
		}
		day := r.CreatedAt.UTC().Format(time.DateOnly)
		a, ok := byDay[day]
		if !ok {
			a = &acc{}
			byDay[day] = a
		}
		a.sum += r.Score
		a.n++
	}

	for day, a := range byDay {
		out.Points = append(out.Points, entity.TrendPoint{
			Date:     day,
			AvgScore: round1(float64(a.sum) / float64(a.n)),
			Count:    a.n,
		})
	}
	sort.Slice(out.Points, func(i, j int) bool { return out.Points[i].Date < out.Points[j].Date })

	if len(out.Points) < 2 {
		return out
	}
	change := round1(out.Points[len(out.Points)-1].AvgScore - out.Points[0].AvgScore)
	out.ScoreChange = change
	switch {
	case change > stableBand:
		out.Trend = entity.TrendImproving
	case change < -stableBand:
		out.Trend = entity.TrendDeclining
	}
	return out
}

func top(counts map[string]int, n int) []entity.NamedCount {
	out := make([]entity.NamedCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, entity.NamedCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
