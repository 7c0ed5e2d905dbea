package repository

import (
	"context"
	"time"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

// ReportRepository only ever appends; persisted reports are never updated.
type ReportRepository interface {
	// Create assigns ID, Version, CreatedAt and URL and returns the stored report.
	Create(ctx context.Context, report entity.WorkflowReport) (entity.WorkflowReport, error)
	Get(ctx context.Context, id string) (entity.WorkflowReport, error)
	List(ctx context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error)
	ScoreRows(ctx context.Context, since time.Time) ([]entity.ScoreRow, error)
}
