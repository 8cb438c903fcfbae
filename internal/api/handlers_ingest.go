package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type openRequest struct {
	Filename string `json:"filename"`
	Dialect  string `json:"dialect,omitempty"`
	Text     string `json:"text"`
}

type updateRequest struct {
	Text string `json:"text"`
}

// handleOpenDocument opens a document from a JSON body or a multipart upload and
// returns its first outline.
func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	var req openRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var status int
		var err error
		req, status, err = s.readUpload(r)
		if err != nil {
			jsonError(w, err.Error(), status)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req.Filename = sanitizeFilename(req.Filename)
	if req.Dialect == "" && !parser.IsSupportedExtension(req.Filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(req.Filename)), http.StatusBadRequest)
		return
	}

	doc, out, err := s.orchestrator.Open(req.Filename, parser.Dialect(req.Dialect), req.Text)
	if doc == nil {
		code := http.StatusInternalServerError
		if errors.Is(err, parser.ErrUnsupported) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}

	resp := map[string]any{
		"doc_id":   doc.ID,
		"filename": doc.Filename,
		"dialect":  doc.Dialect,
	}
	if err != nil {
		resp["error"] = err.Error()
	} else {
		resp["outline"] = outlineView(out)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// readUpload reads the "file" part of a multipart request and converts binary
// formats to text.
func (s *Server) readUpload(r *http.Request) (openRequest, int, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return openRequest{}, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return openRequest{}, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return openRequest{}, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return openRequest{}, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	text, err := parser.ReadText(io.LimitReader(file, s.cfg.MaxUploadBytes), filename, s.cfg.PDFFallbackPdftotext)
	if err != nil {
		return openRequest{}, http.StatusUnprocessableEntity, err
	}
	return openRequest{
		Filename: filename,
		Dialect:  r.FormValue("dialect"),
		Text:     text,
	}, 0, nil
}

// handleUpdateDocument queues new text for a document.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.orchestrator.Submit(docID, req.Text); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrDocumentNotFound):
			jsonError(w, err.Error(), http.StatusNotFound)
		default:
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":     docID,
		"status":     "queued",
		"events_url": fmt.Sprintf("/api/documents/%s/events", docID),
	})
}

// outlineResponse is an outline with every open range resolved.
type outlineResponse struct {
	DocID       string             `json:"doc_id"`
	Revision    uint64             `json:"revision"`
	Dialect     string             `json:"dialect"`
	MaxDepth    int                `json:"max_depth"`
	ContentHash string             `json:"content_hash"`
	DocumentEnd doctree.Point      `json:"document_end"`
	BuiltAt     string             `json:"built_at"`
	Headings    []*doctree.Heading `json:"headings"`
}

func outlineView(o *doctree.Outline) outlineResponse {
	return outlineResponse{
		DocID:       o.DocID,
		Revision:    o.Revision,
		Dialect:     o.Dialect,
		MaxDepth:    o.MaxDepth,
		ContentHash: o.ContentHash,
		DocumentEnd: o.DocumentEnd,
		BuiltAt:     o.BuiltAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Headings:    doctree.Resolved(o.Headings, o.DocumentEnd),
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
