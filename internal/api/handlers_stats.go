package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleBuildStats(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "build stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stages":      s.orchestrator.Stats().Snapshot(),
	})
}
