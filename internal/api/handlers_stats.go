package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleBuildStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"documents":   len(s.orchestrator.Documents()),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats().Snapshot(),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"max_heading_depth": s.orchestrator.MaxDepth(),
		"worker_count":      s.cfg.WorkerCount,
		"max_queue_size":    s.cfg.MaxQueueSize,
		"max_documents":     s.cfg.MaxDocuments,
		"document_ttl":      s.cfg.DocumentTTL.String(),
		"max_upload_bytes":  s.cfg.MaxUploadBytes,
	})
}

// handleSetMaxDepth changes the depth limit and rebuilds every open document.
// Zero selects the default.
func (s *Server) handleSetMaxDepth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxHeadingDepth *int `json:"max_heading_depth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.MaxHeadingDepth == nil || *req.MaxHeadingDepth < 0 {
		jsonError(w, "max_heading_depth must be a non-negative integer", http.StatusBadRequest)
		return
	}

	s.orchestrator.SetMaxDepth(*req.MaxHeadingDepth)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"max_heading_depth": s.orchestrator.MaxDepth(),
	})
}
