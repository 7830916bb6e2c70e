package journal

import (
	"time"

	"github.com/starford/redate/internal/models"
)

// Recorder defines the interface for journal operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Recorder interface {
	RecordBatch(b BatchRow, entries []models.RenameEntry) error
	RecordUndo(u UndoRow) error
	ListBatches(limit, offset int) ([]BatchRow, int, error)
	GetBatch(id string) (*BatchRow, error)
	Entries(batchID string) ([]EntryRow, error)
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)

// BatchRow represents a row in the batches table.
type BatchRow struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Folder    string    `json:"folder"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	Planned   int       `json:"planned"`
	Executed  int       `json:"executed"`
	Error     string    `json:"error,omitempty"`
	// LastUndo is the status of the most recent undo event, "" if none.
	LastUndo string `json:"last_undo,omitempty"`
}

// EntryRow is one planned rename of a journaled batch.
type EntryRow struct {
	Seq      int    `json:"seq"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Executed bool   `json:"executed"`
}

// UndoRow records the outcome of one real undo.
type UndoRow struct {
	BatchID         string    `json:"batch_id"`
	Status          string    `json:"status"`
	Undone          int       `json:"undone"`
	Skipped         int       `json:"skipped"`
	Missing         int       `json:"missing"`
	Conflicts       int       `json:"conflicts"`
	AlreadyRestored int       `json:"already_restored"`
	CreatedAt       time.Time `json:"created_at"`
}
