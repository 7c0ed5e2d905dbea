package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

func WriteError(w http.ResponseWriter, code int, err gen.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(err)
}

func NewError(code gen.ErrorResponseErrorCode, message string) gen.ErrorResponse {
	var resp gen.ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	return resp
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		WriteError(w, http.StatusBadRequest, NewError(gen.INVALIDREQUEST, err.Error()))
	case errors.Is(err, usecase.ErrReportNotFound):
		WriteError(w, http.StatusNotFound, NewError(gen.NOTFOUND, "report not found"))
	case errors.Is(err, usecase.ErrCacheDisabled):
		WriteError(w, http.StatusConflict, NewError(gen.CACHEDISABLED, "semantic cache is disabled"))
	default:
		h.logger.Error("request failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, NewError(gen.INTERNAL, "internal error"))
	}
}
