package handlers

import (
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

type Handlers struct {
	gen.Unimplemented
	service usecase.Service
	logger  *zap.Logger
}

func NewHandlers(service usecase.Service, logger *zap.Logger) gen.ServerInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		service: service,
		logger:  logger,
	}
}
