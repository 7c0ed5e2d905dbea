package repository

import (
	"context"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

type ReasoningGateway interface {
	Generate(ctx context.Context, metrics entity.WorkflowMetrics, contextDocs []string) (entity.Reasoning, error)
}
