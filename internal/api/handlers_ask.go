package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/docmind/internal/pipeline"
)

type askRequest struct {
	Question string `json:"question"`
	Chapter  string `json:"chapter,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.pipeline.Ask(r.Context(), req.Question, req.Chapter)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyQuestion):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		default:
			s.log.Error("ask failed", "error", err)
			jsonError(w, "retrieval failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}
