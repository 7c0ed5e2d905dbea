package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

// POST /analyze-workflow
func (h *Handlers) PostAnalyzeWorkflow(w http.ResponseWriter, r *http.Request) {
	var body gen.PostAnalyzeWorkflowJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, NewError(gen.INVALIDREQUEST, "invalid json body"))
		return
	}

	res, err := h.service.AnalyzeWorkflow(r.Context(), RequestFromBody(body))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("analysis served",
		zap.String("repo", body.Repo),
		zap.String("team", body.Team),
		zap.String("cache_status", res.CacheStatus),
		zap.Int("score", res.Score),
		zap.Bool("partial", res.Partial),
	)
	WriteJSON(w, http.StatusOK, ToAnalyzeResponse(res))
}

// RequestFromBody applies the default window to a decoded request.
func RequestFromBody(body gen.AnalyzeWorkflowRequest) entity.AnalysisRequest {
	req := entity.AnalysisRequest{
		Repo:       strings.TrimSpace(body.Repo),
		Team:       strings.TrimSpace(body.Team),
		WindowDays: entity.DefaultWindowDays,
	}
	if body.WindowDays != nil {
		req.WindowDays = *body.WindowDays
	}
	return req
}

// POST /clear-cache
func (h *Handlers) PostClearCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ClearCache(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, gen.ClearCacheResponse{
		Message: "cache cleared",
		Cleared: &n,
	})
}

// GET /healthz
func (h *Handlers) GetHealthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, gen.HealthResponse{Status: "ok"})
}
