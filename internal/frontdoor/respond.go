package frontdoor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
)

// maxBodyBytes bounds request bodies. Story transcripts are the largest input.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v. On failure it writes a validation error
// and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		telemetry.AddError(r.Context(), err)
		h.writeError(w, r, domain.ErrValidation("Invalid JSON body"))
		return false
	}
	return true
}

// writeError renders err as the error body. Errors that are not
// *domain.APIError are reported as 500 with their message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	telemetry.AddError(r.Context(), err)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		h.logger.ErrorContext(r.Context(), "unclassified error", slog.String("error", err.Error()))
		apiErr = domain.ErrUpstream(err.Error())
	}
	telemetry.AddLogField(r.Context(), "classification", string(apiErr.Type))

	body := domain.ErrorBody{
		Error:          apiErr.Message,
		Classification: apiErr.Type,
	}
	if apiErr.Code != "" {
		body.Error = apiErr.Code
		body.Message = apiErr.Message
	}
	writeJSON(w, apiErr.HTTPStatusCode(), body)
}
