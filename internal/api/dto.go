package api

import (
	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/journal"
	"github.com/starford/redate/internal/rename"
	"github.com/starford/redate/internal/session"
	"github.com/starford/redate/internal/undo"
)

// RenameRequest is the request body for planning and executing a rename.
type RenameRequest struct {
	Folder         string            `json:"folder" example:"/scans/2024" validate:"required"`
	Prefix         string            `json:"prefix" example:"NEW_"`
	Layout         *dateparts.Layout `json:"layout" validate:"required"`
	ExpectedLength int               `json:"expected_length" example:"12" validate:"required"`
	// Separator defaults to the configured separator when omitted.
	Separator *string `json:"separator,omitempty" example:"_"`
}

func (r RenameRequest) toDomain(defaultSep string) rename.Request {
	sep := defaultSep
	if r.Separator != nil {
		sep = *r.Separator
	}
	return rename.Request{
		Folder:         r.Folder,
		Prefix:         r.Prefix,
		Layout:         r.Layout,
		ExpectedLength: r.ExpectedLength,
		Separator:      sep,
	}
}

// PreviewRequest is the request body for a single-file preview.
type PreviewRequest struct {
	RenameRequest
	Sample string `json:"sample" example:"stmt20240115.pdf" validate:"required"`
}

// UndoRequest is the request body for undoing the last batch.
type UndoRequest struct {
	ConfirmPartial bool `json:"confirm_partial"`
	DryRun         bool `json:"dry_run"`
}

// MonthsRequest is the request body for month-name normalization.
type MonthsRequest struct {
	Folder string `json:"folder" example:"/scans/2024" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

// MonthsCountResponse reports how many files spell out a month.
type MonthsCountResponse struct {
	Folder string `json:"folder" validate:"required"`
	Count  int    `json:"count" example:"3" validate:"required"`
}

// PendingResponse lists undoable batches, most recent first.
type PendingResponse struct {
	Batches []undo.Summary `json:"batches" validate:"required"`
}

// HistoryResponse wraps paginated journal rows.
type HistoryResponse struct {
	Batches []journal.BatchRow `json:"batches" validate:"required"`
	Total   int                `json:"total" example:"42" validate:"required"`
}

// Result is the plan/execution response type (aliased from the domain layer).
type Result = rename.Result

// UndoReport is the undo response type (aliased from the domain layer).
type UndoReport = rename.UndoReport

// PreviewResult is the preview response type (aliased from the domain layer).
type PreviewResult = session.PreviewResult

// BatchDetail is a journaled batch with entries (aliased from the domain layer).
type BatchDetail = session.BatchDetail
