package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	svc       *session.Service
	separator string
}

// NewHandler creates a new Handler. separator is used for requests that do
// not name one.
func NewHandler(svc *session.Service, separator string) *Handler {
	return &Handler{svc: svc, separator: separator}
}

// Preview handles POST /api/preview.
//
//	@Summary		Preview the new name of one sample file
//	@Tags			rename
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PreviewRequest	true	"Sample and layout"
//	@Success		200		{object}	PreviewResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Preview(r.Context(), req.toDomain(h.separator), req.Sample)
	if err != nil {
		writeError(w, "preview", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Plan handles POST /api/plan.
//
//	@Summary		Dry-run a folder rename
//	@Description	The response checksum (also sent as ETag) identifies the plan; pass it as If-Match to /rename.
//	@Tags			rename
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenameRequest	true	"Rename request"
//	@Success		200		{object}	Result
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plan [post]
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Plan(r.Context(), req.toDomain(h.separator))
	if err != nil {
		writeError(w, "plan", err)
		return
	}
	w.Header().Set("ETag", `"`+res.Checksum+`"`)
	writeJSON(w, http.StatusOK, res)
}

// Rename handles POST /api/rename.
//
//	@Summary		Execute a folder rename
//	@Tags			rename
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string			false	"Plan checksum from /plan"
//	@Param			body		body	RenameRequest	true	"Rename request"
//	@Success		200		{object}	Result
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		500		{object}	Result
//	@Security		BearerAuth
//	@Router			/rename [post]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	res, err := h.svc.Rename(r.Context(), req.toDomain(h.separator), ifMatch)
	if err != nil {
		var fe *apperr.FileOperationError
		if errors.As(err, &fe) {
			slog.Error("rename failed", slog.String("folder", req.Folder), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, res)
			return
		}
		writeError(w, "rename", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Undo handles POST /api/undo.
//
//	@Summary		Undo the most recent batch
//	@Tags			undo
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UndoRequest	false	"Undo options"
//	@Success		200		{object}	UndoReport
//	@Security		BearerAuth
//	@Router			/undo [post]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	rep, err := h.svc.Undo(r.Context(), req.ConfirmPartial, req.DryRun)
	if err != nil {
		writeError(w, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Pending handles GET /api/undo.
//
//	@Summary		List batches that can be undone
//	@Tags			undo
//	@Produce		json
//	@Success		200	{object}	PendingResponse
//	@Security		BearerAuth
//	@Router			/undo [get]
func (h *Handler) Pending(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PendingResponse{Batches: h.svc.Pending()})
}

// History handles GET /api/history.
//
//	@Summary		List journaled batches
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.History(limit, offset)
	if err != nil {
		writeError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Batches: rows, Total: total})
}

// Batch handles GET /api/history/{id}.
//
//	@Summary		Get one journaled batch with its entries
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Batch ID"
//	@Success		200	{object}	BatchDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/history/{id} [get]
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Batch(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get batch", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CountMonths handles GET /api/months.
//
//	@Summary		Count files with spelled-out month names
//	@Tags			months
//	@Produce		json
//	@Param			folder	query		string	true	"Folder path"
//	@Success		200		{object}	MonthsCountResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/months [get]
func (h *Handler) CountMonths(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'folder' is required"))
		return
	}
	n, err := h.svc.CountMonths(folder)
	if err != nil {
		writeError(w, "count months", err)
		return
	}
	writeJSON(w, http.StatusOK, MonthsCountResponse{Folder: folder, Count: n})
}

// NormalizeMonths handles POST /api/months.
//
//	@Summary		Abbreviate spelled-out month names
//	@Tags			months
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MonthsRequest	true	"Folder and dry-run flag"
//	@Success		200		{object}	Result
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	Result
//	@Security		BearerAuth
//	@Router			/months [post]
func (h *Handler) NormalizeMonths(w http.ResponseWriter, r *http.Request) {
	var req MonthsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.NormalizeMonths(r.Context(), req.Folder, req.DryRun)
	if err != nil {
		var fe *apperr.FileOperationError
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusInternalServerError, res)
			return
		}
		writeError(w, "normalize months", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
