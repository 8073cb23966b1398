package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docmind/internal/generate"
)

type llmStatsResponse struct {
	Model         string                 `json:"model"`
	WindowSeconds float64                `json:"window_seconds"`
	FailureRate   float64                `json:"failure_rate"`
	Stats         generate.StatsSnapshot `json:"stats"`
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	snap := s.stats.Snapshot()
	resp := llmStatsResponse{
		Model:         s.model,
		WindowSeconds: s.cfg.StatsWindow.Seconds(),
		Stats:         snap,
	}
	if calls := snap.Count + snap.Failures; calls > 0 {
		resp.FailureRate = float64(snap.Failures) / float64(calls)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
