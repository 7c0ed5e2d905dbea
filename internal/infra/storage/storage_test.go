package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

func TestReportURL(t *testing.T) {
	assert.Equal(t, "/api/reports/abc", ReportURL("", "abc"))
	assert.Equal(t, "https://cms.example.com/reports/abc", ReportURL("https://cms.example.com/reports", "abc"))
}

func TestDocument_KeepsFields(t *testing.T) {
	r := entity.WorkflowReport{
		ID:        "id-1",
		Repo:      "acme/api",
		Team:      "platform",
		Score:     71,
		SOP:       "sop",
		Version:   3,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Metrics:   entity.WorkflowMetrics{ReopenRate: 0.18, WindowDays: 14},
	}

	got := NewDocument(r).Report("")

	assert.Equal(t, []string{}, got.Bottlenecks)
	assert.Equal(t, "/api/reports/id-1", got.URL)
	got.URL, got.Bottlenecks = "", nil
	assert.Equal(t, r, got)
}

func TestColumns(t *testing.T) {
	b, m, err := EncodeColumns(entity.WorkflowReport{Metrics: entity.WorkflowMetrics{Stale7dRatio: 0.3}})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	var r entity.WorkflowReport
	require.NoError(t, DecodeColumns(&r, b, m))
	assert.Equal(t, 0.3, r.Metrics.Stale7dRatio)
	assert.NotNil(t, r.Bottlenecks)

	assert.Error(t, DecodeColumns(&r, []byte("{"), m))
}
