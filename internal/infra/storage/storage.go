// Package storage holds what the report store drivers share.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

// ReportURL is where a persisted report can be fetched. Without a base URL the API path is used.
func ReportURL(base, id string) string {
	if base == "" {
		return "/api/reports/" + id
	}
	return base + "/" + id
}

// Document is the serialized form of a WorkflowReport.
type Document struct {
	ID          string                 `json:"id"`
	Repo        string                 `json:"repo"`
	Team        string                 `json:"team"`
	WindowDays  int                    `json:"window_days"`
	Score       int                    `json:"score"`
	Bottlenecks []string               `json:"bottlenecks"`
	SOP         string                 `json:"sop"`
	Summary     string                 `json:"summary,omitempty"`
	Metrics     entity.WorkflowMetrics `json:"metrics"`
	Partial     bool                   `json:"partial,omitempty"`
	Version     int                    `json:"version"`
	CreatedAt   time.Time              `json:"created_at"`
}

func NewDocument(r entity.WorkflowReport) Document {
	return Document{
		ID:          r.ID,
		Repo:        r.Repo,
		Team:        r.Team,
		WindowDays:  r.WindowDays,
		Score:       r.Score,
		Bottlenecks: nonNil(r.Bottlenecks),
		SOP:         r.SOP,
		Summary:     r.Summary,
		Metrics:     r.Metrics,
		Partial:     r.Partial,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
	}
}

func (d Document) Report(baseURL string) entity.WorkflowReport {
	return entity.WorkflowReport{
		ID:          d.ID,
		Repo:        d.Repo,
		Team:        d.Team,
		WindowDays:  d.WindowDays,
		Score:       d.Score,
		Bottlenecks: nonNil(d.Bottlenecks),
		SOP:         d.SOP,
		Summary:     d.Summary,
		Metrics:     d.Metrics,
		Partial:     d.Partial,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		URL:         ReportURL(baseURL, d.ID),
	}
}

// EncodeColumns marshals the JSON columns of a report row.
func EncodeColumns(r entity.WorkflowReport) (bottlenecks, metrics []byte, err error) {
	bottlenecks, err = json.Marshal(nonNil(r.Bottlenecks))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal bottlenecks: %w", err)
	}
	metrics, err = json.Marshal(r.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metrics: %w", err)
	}
	return bottlenecks, metrics, nil
}

func DecodeColumns(r *entity.WorkflowReport, bottlenecks, metrics []byte) error {
	if err := json.Unmarshal(bottlenecks, &r.Bottlenecks); err != nil {
		return fmt.Errorf("unmarshal bottlenecks: %w", err)
	}
	if err := json.Unmarshal(metrics, &r.Metrics); err != nil {
		return fmt.Errorf("unmarshal metrics: %w", err)
	}
	r.Bottlenecks = nonNil(r.Bottlenecks)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
