package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cityhelper/cityhelper/internal/auth"
	"github.com/cityhelper/cityhelper/internal/model"
	"github.com/cityhelper/cityhelper/internal/scan"
	"github.com/cityhelper/cityhelper/internal/store"
	"github.com/cityhelper/cityhelper/internal/vault"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type DocumentHandler struct {
	documents *store.DocumentStore
	vault     *vault.Manager
	scanner   *scan.Client
	logger    *slog.Logger
}

func NewDocumentHandler(documents *store.DocumentStore, vm *vault.Manager, scanner *scan.Client, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, vault: vm, scanner: scanner, logger: logger}
}

// Upload handles POST /api/documents (multipart form, field "file")
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if !h.vault.Configured() {
		writeError(w, http.StatusServiceUnavailable, "document storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key, err := h.vault.Store(r.Context(), userID, data)
	if err != nil {
		h.logger.Error("store document", "error", err)
		writeError(w, http.StatusBadGateway, "failed to store document")
		return
	}

	doc, err := h.documents.Create(userID, key, header.Filename, contentType, int64(len(data)))
	if err != nil {
		h.logger.Error("record document", "error", err)
		// Orphaned ciphertext is better than a dangling row.
		if rmErr := h.vault.Remove(r.Context(), key); rmErr != nil {
			h.logger.Error("remove orphaned object", "error", rmErr)
		}
		writeError(w, http.StatusInternalServerError, "failed to record document")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	docs, err := h.documents.ListByUser(userID)
	if err != nil {
		h.logger.Error("list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Download handles GET /api/documents/{id}
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	doc, err := h.documents.GetByID(id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	data, err := h.vault.Fetch(r.Context(), doc.ObjectKey)
	if err != nil {
		h.logger.Error("fetch document", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch document")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Delete handles DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	doc, err := h.documents.GetByID(id, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if err := h.vault.Remove(r.Context(), doc.ObjectKey); err != nil {
		h.logger.Error("remove document object", "error", err)
		writeError(w, http.StatusBadGateway, "failed to remove document")
		return
	}
	if err := h.documents.Delete(id, userID); err != nil {
		h.logger.Error("delete document row", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Scan handles POST /api/documents/scan (multipart form, field "file").
// The image is analyzed but not stored; the caller decides what to do
// with the extracted fields.
func (h *DocumentHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if !h.scanner.Configured() {
		writeError(w, http.StatusServiceUnavailable, "document scanning is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	result, err := h.scanner.ScanDocument(data, contentType)
	if err != nil {
		h.logger.Error("scan document", "error", err)
		writeError(w, http.StatusBadGateway, "failed to scan document")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
