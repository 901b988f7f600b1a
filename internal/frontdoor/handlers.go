package frontdoor

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/server"
)

func (h *Handler) HandleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if !h.decode(w, r, &req) {
		return
	}

	continuation, err := h.services.Continuer.Continue(r.Context(), &req, server.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.GenerationResult{Continuation: continuation})
}

func (h *Handler) HandleSuggestImprovements(w http.ResponseWriter, r *http.Request) {
	var req domain.FeedbackRequest
	if !h.decode(w, r, &req) {
		return
	}

	suggestions, err := h.services.Coach.Suggest(r.Context(), req.SegmentID, server.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.FeedbackResult{Suggestions: suggestions})
}

func (h *Handler) HandleNarrateSegment(w http.ResponseWriter, r *http.Request) {
	var req domain.NarrationRequest
	if !h.decode(w, r, &req) {
		return
	}

	audio, err := h.services.Narrator.Narrate(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer audio.Body.Close()

	w.Header().Set("Content-Type", audio.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, audio.Body); err != nil {
		// Headers are gone; all that is left is to record it.
		h.logger.WarnContext(r.Context(), "narration stream interrupted", slog.String("error", err.Error()))
	}
}

func (h *Handler) research(svc Researcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ResearchRequest
		if !h.decode(w, r, &req) {
			return
		}

		result, err := svc.Research(r.Context(), req.Content)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	report, err := h.services.Batch.Run(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
