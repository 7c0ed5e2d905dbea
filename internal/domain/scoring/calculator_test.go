package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

func defaultCalculator() *Calculator {
	return NewCalculator(DefaultWeights(), DefaultThresholds())
}

func TestEvaluate_ConcreteScenario(t *testing.T) {
	m := entity.WorkflowMetrics{
		AvgTimeToFirstReviewHours: 48,
		Unassigned24hRate:         0.18,
		ReopenRate:                0.18,
		Stale7dRatio:              0,
		WindowDays:                14,
	}

	score, bottlenecks := defaultCalculator().Evaluate(m)

	assert.Equal(t, 70, score)
	assert.Equal(t, []string{
		"18% of issues unassigned after 24h",
		"18% issue reopen rate exceeds 10% threshold",
	}, bottlenecks)
}

func TestScore_HalfPointsRoundToEven(t *testing.T) {
	c := defaultCalculator()
	cases := []struct {
		unassigned float64
		want       int
	}{
		{0.05, 98}, // 98.5
		{0.15, 96}, // 95.5
		{0.25, 92}, // 92.5
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Score(entity.WorkflowMetrics{Unassigned24hRate: tc.unassigned}), "unassigned=%v", tc.unassigned)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	m := entity.WorkflowMetrics{
		AvgTimeToFirstReviewHours: 30,
		PctPRsOver36hNoReview:     0.4,
		Unassigned24hRate:         0.25,
		ReopenRate:                0.18,
		Stale7dRatio:              0.30,
		WindowDays:                14,
	}
	c := defaultCalculator()

	s1, b1 := c.Evaluate(m)
	s2, b2 := c.Evaluate(m)

	assert.Equal(t, s1, s2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, []string{
		"40% of PRs wait >36h for first review",
		"25% of issues unassigned after 24h",
		"18% issue reopen rate exceeds 10% threshold",
		"30% of issues stale for 7+ days",
	}, b1)
	// 100 - 12.5 - 7.5 - 4.5 - 4.8 = 70.7
	assert.Equal(t, 71, s1)
}

func TestScore_Range(t *testing.T) {
	c := defaultCalculator()
	for _, m := range []entity.WorkflowMetrics{
		{},
		{AvgTimeToFirstReviewHours: 1e9, Unassigned24hRate: 1, ReopenRate: 1, Stale7dRatio: 1},
		{AvgTimeToFirstReviewHours: -50, Unassigned24hRate: -1},
		{Unassigned24hRate: 5, ReopenRate: 5, Stale7dRatio: 5},
	} {
		s := c.Score(m)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
	assert.Equal(t, 100, c.Score(entity.WorkflowMetrics{}))
}

func TestScore_HeavyWeightsClampToZero(t *testing.T) {
	c := NewCalculator(Weights{ReviewDelay: 10, Unassigned: 10, Reopen: 10, Stale: 10}, DefaultThresholds())

	assert.Equal(t, 0, c.Score(entity.WorkflowMetrics{AvgTimeToFirstReviewHours: 72, Unassigned24hRate: 1}))
}

func TestScore_MonotonicInUnassigned(t *testing.T) {
	c := defaultCalculator()
	base := entity.WorkflowMetrics{AvgTimeToFirstReviewHours: 20, ReopenRate: 0.1, Stale7dRatio: 0.2}

	prev := c.Score(base)
	for rate := 0.0; rate <= 1.0; rate += 0.05 {
		m := base
		m.Unassigned24hRate = rate
		s := c.Score(m)
		require.LessOrEqual(t, s, prev, "rate=%v", rate)
		prev = s
	}
}

func TestBottlenecks_StrictThreshold(t *testing.T) {
	c := defaultCalculator()

	assert.Empty(t, c.Bottlenecks(entity.WorkflowMetrics{PctPRsOver36hNoReview: 0.30}))
	assert.Equal(t,
		[]string{"31% of PRs wait >36h for first review"},
		c.Bottlenecks(entity.WorkflowMetrics{PctPRsOver36hNoReview: 0.31}),
	)
}

func TestBottlenecks_NoneIsEmptySlice(t *testing.T) {
	b := defaultCalculator().Bottlenecks(entity.WorkflowMetrics{Stale7dRatio: 0.15, ReopenRate: 0.1})

	require.NotNil(t, b)
	assert.Len(t, b, 0)
}

func TestBottlenecks_CustomThresholds(t *testing.T) {
	c := NewCalculator(DefaultWeights(), Thresholds{PRNoReview: 0.9, Unassigned: 0.5, Reopen: 0.5, Stale: 0.01})

	assert.Equal(t,
		[]string{"2% of issues stale for 7+ days"},
		c.Bottlenecks(entity.WorkflowMetrics{PctPRsOver36hNoReview: 0.4, Unassigned24hRate: 0.2, Stale7dRatio: 0.02}),
	)
}
