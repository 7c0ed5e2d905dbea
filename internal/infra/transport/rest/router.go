// Package rest assembles the HTTP surface of the service.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/handlers"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/middleware"
)

type RouterConfig struct {
	Service     usecase.Service
	Logger      *zap.Logger
	CORSOrigins []string
	// Optional extra endpoints.
	Metrics   http.Handler
	WebSocket http.Handler
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	swagger, err := gen.GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := middleware.OpenAPIValidator(swagger)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(gen.RawSpec())
	})
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.WebSocket != nil {
		router.Method(http.MethodGet, "/ws/analyze-workflow", cfg.WebSocket)
	}

	h := handlers.NewHandlers(cfg.Service, logger)
	router.Group(func(r chi.Router) {
		r.Use(validate)
		gen.HandlerWithOptions(h, gen.ChiServerOptions{
			BaseRouter: r,
			ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				handlers.WriteError(w, http.StatusBadRequest, handlers.NewError(gen.INVALIDREQUEST, err.Error()))
			},
		})
	})
	return router, nil
}
