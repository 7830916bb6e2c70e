package rename

import (
	"github.com/starford/redate/internal/models"
)

// Result is the external shape of a plan or execution.
type Result struct {
	Renamed      map[string]string    `json:"renamed"`
	Entries      []models.RenameEntry `json:"entries"`
	Skipped      []string             `json:"skipped"`
	TotalScanned int                  `json:"total_scanned"`
	Successful   int                  `json:"successful"`
	Failed       int                  `json:"failed"`
	Cancelled    bool                 `json:"cancelled"`
	Checksum     string               `json:"checksum"`
	BatchID      string               `json:"batch_id,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// NewResult describes plan. A nil batch means a dry run: every entry counts
// as successful. Otherwise successful and failed follow the executed prefix.
func NewResult(plan *Plan, batch *BatchOperation) Result {
	res := Result{
		Renamed:      make(map[string]string, len(plan.Entries)),
		Entries:      plan.Entries,
		Skipped:      plan.Skipped,
		TotalScanned: plan.TotalScanned,
		Successful:   len(plan.Entries),
		Cancelled:    plan.Cancelled,
		Checksum:     plan.Checksum(),
	}
	for _, e := range plan.Entries {
		res.Renamed[e.SourcePath] = e.TargetPath
	}
	if batch != nil {
		res.Successful = len(batch.Executed)
		res.Failed = batch.Failed()
		res.BatchID = batch.ID.String()
	}
	return res
}

// UndoStatus is the outcome of an undo attempt.
type UndoStatus string

const (
	StatusEmpty           UndoStatus = "empty"
	StatusSuccess         UndoStatus = "success"
	StatusPartial         UndoStatus = "partial"
	StatusConflict        UndoStatus = "conflict"
	StatusAlreadyRestored UndoStatus = "already_restored"
)

// UndoItem is one entry in an undo report.
type UndoItem struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}

// UndoReport describes what an undo did, or would do on a dry run.
type UndoReport struct {
	Status          UndoStatus `json:"status"`
	BatchID         string     `json:"batch_id,omitempty"`
	DryRun          bool       `json:"dry_run"`
	Undone          []UndoItem `json:"undone"`
	Skipped         []UndoItem `json:"skipped"`
	Missing         []UndoItem `json:"missing"`
	Conflicts       []UndoItem `json:"conflicts"`
	AlreadyRestored []UndoItem `json:"already_restored"`
}

func newUndoReport(batchID string) UndoReport {
	return UndoReport{
		BatchID:         batchID,
		Undone:          []UndoItem{},
		Skipped:         []UndoItem{},
		Missing:         []UndoItem{},
		Conflicts:       []UndoItem{},
		AlreadyRestored: []UndoItem{},
	}
}

// EmptyUndoReport is returned when there is nothing to undo.
func EmptyUndoReport() UndoReport {
	rep := newUndoReport("")
	rep.Status = StatusEmpty
	return rep
}

func item(e models.RenameEntry, reason string) UndoItem {
	return UndoItem{Source: e.SourcePath, Target: e.TargetPath, Reason: reason}
}
