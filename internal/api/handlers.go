package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arnvid/mdlink/internal/docstore"
	"github.com/arnvid/mdlink/internal/preview"
	"github.com/arnvid/mdlink/internal/resolver"
	"github.com/arnvid/mdlink/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	db       docstore.Store
	sessions *session.Manager
}

// NewHandler creates a new Handler.
func NewHandler(db docstore.Store, sessions *session.Manager) *Handler {
	return &Handler{db: db, sessions: sessions}
}

func docID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListDocuments handles GET /api/docs.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.List()
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]DocumentListItem, len(rows))
	for i, row := range rows {
		items[i] = DocumentListItem{
			ID:        row.ID,
			Name:      row.Name,
			Target:    row.Target,
			Linked:    row.Linked,
			Dirty:     row.Dirty,
			UpdatedAt: row.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: len(items)})
}

// CreateDocument handles POST /api/docs. A non-empty target creates a
// link document and immediately mirrors its content through the session.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}

	row := docstore.Row{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Text:   req.Text,
		Target: req.Target,
		Linked: req.Target != "",
	}
	if err := h.db.Create(row); err != nil {
		writeError(w, err)
		return
	}

	if row.Linked {
		s, err := h.sessions.Get(row.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		s.OpenTarget(row.Target)
	}

	h.writeDetail(w, http.StatusCreated, row.ID)
}

// GetDocument handles GET /api/docs/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	h.writeDetail(w, http.StatusOK, docID(r))
}

// DeleteDocument handles DELETE /api/docs/{id}.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := docID(r)
	if err := h.db.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	h.sessions.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// OpenTarget handles PUT /api/docs/{id}/target: the user changed the
// external reference in the editor.
func (h *Handler) OpenTarget(w http.ResponseWriter, r *http.Request) {
	var req OpenTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	s, err := h.sessions.Get(docID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.OpenTarget(req.Target)
	h.writeDetail(w, http.StatusOK, docID(r))
}

// Edited handles POST /api/docs/{id}/edited: user-edited text coming
// back from the rendering surface.
func (h *Handler) Edited(w http.ResponseWriter, r *http.Request) {
	var req EditedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	s, err := h.sessions.Get(docID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.OnViewEdited(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

// Loaded handles POST /api/docs/{id}/loaded: the surface finished
// loading its template and can receive script injection.
func (h *Handler) Loaded(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(docID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.OnViewLoaded()
	w.WriteHeader(http.StatusNoContent)
}

// Console handles POST /api/docs/{id}/console: surface diagnostics.
func (h *Handler) Console(w http.ResponseWriter, r *http.Request) {
	var req ConsoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	s, err := h.sessions.Get(docID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.OnConsoleMessage(req.Message, req.Source, req.Line)
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles GET /api/docs/{id}/preview: renders the document's
// current text to HTML.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(docID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(preview.Render(s.Text()))
}

// Saved handles POST /api/docs/{id}/saved: the host persisted the
// document, so the dirty flag comes down.
func (h *Handler) Saved(w http.ResponseWriter, r *http.Request) {
	if err := h.db.ClearDirty(docID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDetail responds with the stored row, preferring live session
// state for text and target when a session is open.
func (h *Handler) writeDetail(w http.ResponseWriter, status int, id string) {
	row, err := h.db.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	detail := DocumentDetail{
		ID:        row.ID,
		Name:      row.Name,
		Text:      row.Text,
		Target:    row.Target,
		Linked:    row.Linked,
		Dirty:     row.Dirty,
		UpdatedAt: row.UpdatedAt,
	}
	if s, ok := h.sessions.Peek(id); ok {
		detail.Text = s.Text()
		detail.Target = s.Target()
	}
	if detail.Linked {
		if base, ok := resolver.ComputeBase(detail.Target); ok {
			detail.Base = base
		}
	}
	writeJSON(w, status, detail)
}
