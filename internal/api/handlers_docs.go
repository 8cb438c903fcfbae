package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docoutline/internal/lineindex"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists the open documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.orchestrator.Documents()
	snaps := make([]pipeline.DocumentSnapshot, 0, len(docs))
	for _, d := range docs {
		snaps = append(snaps, d.Snapshot())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": snaps})
}

// handleGetOutline returns the last successfully built outline. The content
// hash doubles as the ETag.
func (s *Server) handleGetOutline(w http.ResponseWriter, r *http.Request) {
	doc := s.orchestrator.GetDocument(chi.URLParam(r, "docID"))
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	o := doc.Model.Outline()
	if o == nil {
		msg := "outline not built yet"
		if err := doc.Model.LastError(); err != nil {
			msg = err.Error()
		}
		jsonError(w, msg, http.StatusConflict)
		return
	}

	etag := `"` + o.ContentHash + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := map[string]any{"outline": outlineView(o)}
	if err := doc.Model.LastError(); err != nil {
		resp["last_error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleGetSections returns the text owned by every heading.
func (s *Server) handleGetSections(w http.ResponseWriter, r *http.Request) {
	doc := s.orchestrator.GetDocument(chi.URLParam(r, "docID"))
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	o, text := doc.Model.Snapshot()
	if o == nil {
		jsonError(w, "outline not built yet", http.StatusConflict)
		return
	}
	sections := outline.Sections(o.Headings, lineindex.New(text).Lines(), o.DocumentEnd)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", `"`+o.ContentHash+`"`)
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":   o.DocID,
		"revision": o.Revision,
		"sections": sections,
	})
}

// handleCloseDocument closes a document and discards its outline.
func (s *Server) handleCloseDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.orchestrator.Close(docID); err != nil {
		if errors.Is(err, pipeline.ErrDocumentNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("document deleted", "doc_id", docID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":  docID,
		"deleted": true,
	})
}
