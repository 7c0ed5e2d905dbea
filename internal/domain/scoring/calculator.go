// Package scoring maps WorkflowMetrics to a health score and bottleneck statements.
package scoring

import (
	"fmt"
	"math"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

type Weights struct {
	ReviewDelay float64
	Unassigned  float64
	Reopen      float64
	Stale       float64
}

func DefaultWeights() Weights {
	return Weights{ReviewDelay: 1.0, Unassigned: 1.0, Reopen: 1.0, Stale: 0.8}
}

// Thresholds are strict: a metric must be greater than its threshold to be reported.
type Thresholds struct {
	PRNoReview float64
	Unassigned float64
	Reopen     float64
	Stale      float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{PRNoReview: 0.30, Unassigned: 0.10, Reopen: 0.10, Stale: 0.15}
}

type Calculator struct {
	weights    Weights
	thresholds Thresholds
}

func NewCalculator(w Weights, t Thresholds) *Calculator {
	return &Calculator{weights: w, thresholds: t}
}

// Evaluate returns the score and bottlenecks for m.
func (c *Calculator) Evaluate(m entity.WorkflowMetrics) (int, []string) {
	return c.Score(m), c.Bottlenecks(m)
}

func (c *Calculator) Score(m entity.WorkflowMetrics) int {
	m = m.Clamped()

	reviewPenalty := clamp(m.AvgTimeToFirstReviewHours/24, 0, 3)
	// float64() на каждом слагаемом запрещает FMA: результат одинаков на всех платформах.
	score := 100 -
		float64(c.weights.ReviewDelay*reviewPenalty*10) -
		float64(c.weights.Unassigned*m.Unassigned24hRate*30) -
		float64(c.weights.Reopen*m.ReopenRate*25) -
		float64(c.weights.Stale*m.Stale7dRatio*20)

	// .5 rounds to even.
	return int(math.RoundToEven(clamp(score, 0, 100)))
}

// Bottlenecks is ordered: review wait, assignment, reopen, staleness.
// It returns an empty, non-nil slice when nothing crosses a threshold.
func (c *Calculator) Bottlenecks(m entity.WorkflowMetrics) []string {
	m = m.Clamped()

	out := make([]string, 0, 4)
	if m.PctPRsOver36hNoReview > c.thresholds.PRNoReview {
		out = append(out, fmt.Sprintf("%d%% of PRs wait >36h for first review", percent(m.PctPRsOver36hNoReview)))
	}
	if m.Unassigned24hRate > c.thresholds.Unassigned {
		out = append(out, fmt.Sprintf("%d%% of issues unassigned after 24h", percent(m.Unassigned24hRate)))
	}
	if m.ReopenRate > c.thresholds.Reopen {
		out = append(out, fmt.Sprintf("%d%% issue reopen rate exceeds 10%% threshold", percent(m.ReopenRate)))
	}
	if m.Stale7dRatio > c.thresholds.Stale {
		out = append(out, fmt.Sprintf("%d%% of issues stale for 7+ days", percent(m.Stale7dRatio)))
	}
	return out
}

func percent(rate float64) int {
	return int(math.Round(rate * 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
