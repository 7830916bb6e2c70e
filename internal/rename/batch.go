package rename

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/models"
	"github.com/starford/redate/internal/storage"
)

var errAlreadyExecuted = errors.New("rename: batch already executed")

// BatchOperation is an executed (or about to be executed) plan. Executed is
// always a prefix of Planned.
type BatchOperation struct {
	ID        uuid.UUID
	Kind      string
	Folder    string
	CreatedAt time.Time
	Planned   []models.RenameEntry
	Executed  []models.RenameEntry

	fs  storage.Provider
	ran bool
}

// NewBatch prepares plan for execution against fsys.
func NewBatch(fsys storage.Provider, plan *Plan, kind string) *BatchOperation {
	planned := make([]models.RenameEntry, len(plan.Entries))
	copy(planned, plan.Entries)
	return &BatchOperation{
		ID:        uuid.New(),
		Kind:      kind,
		Folder:    plan.Folder,
		CreatedAt: time.Now().UTC(),
		Planned:   planned,
		Executed:  make([]models.RenameEntry, 0, len(planned)),
		fs:        fsys,
	}
}

// Execute renames every planned entry in order. The first failure stops the
// batch and is returned as an *apperr.FileOperationError; renames already
// done stay done.
func (b *BatchOperation) Execute() error {
	if b.ran {
		return errAlreadyExecuted
	}
	b.ran = true
	for i, e := range b.Planned {
		if err := b.fs.Rename(e.SourcePath, e.TargetPath); err != nil {
			return &apperr.FileOperationError{
				Op:     "rename",
				Source: e.SourcePath,
				Target: e.TargetPath,
				Index:  i,
				Err:    err,
			}
		}
		b.Executed = append(b.Executed, e)
	}
	return nil
}

// Execute builds a batch from plan and runs it. The batch is returned even
// when execution fails so the executed prefix can be undone.
func Execute(fsys storage.Provider, plan *Plan, kind string) (*BatchOperation, error) {
	b := NewBatch(fsys, plan, kind)
	return b, b.Execute()
}

// Failed reports how many planned entries were not executed.
func (b *BatchOperation) Failed() int { return len(b.Planned) - len(b.Executed) }

type entryState int

const (
	stateUndoable entryState = iota
	stateRestored
	stateConflict
	stateMissing
)

// classify inspects the disk for one executed entry.
func (b *BatchOperation) classify(e models.RenameEntry) (entryState, error) {
	srcExists, err := b.fs.Exists(e.SourcePath)
	if err != nil {
		return 0, err
	}
	dstExists, err := b.fs.Exists(e.TargetPath)
	if err != nil {
		return 0, err
	}
	switch {
	case dstExists && !srcExists:
		return stateUndoable, nil
	case srcExists && !dstExists:
		return stateRestored, nil
	case srcExists && dstExists:
		return stateConflict, nil
	default:
		return stateMissing, nil
	}
}

// Undo reverses the executed entries, most recent first. Conflicts (both
// source and target present) abort the undo without touching the disk. With
// dryRun nothing is renamed and would-be reversals are listed in Undone.
func (b *BatchOperation) Undo(dryRun bool) (UndoReport, error) {
	rep := newUndoReport(b.ID.String())
	rep.DryRun = dryRun

	type classified struct {
		entry models.RenameEntry
		state entryState
	}
	walk := make([]classified, 0, len(b.Executed))
	restored := 0
	for i := len(b.Executed) - 1; i >= 0; i-- {
		e := b.Executed[i]
		st, err := b.classify(e)
		if err != nil {
			return rep, fmt.Errorf("rename: undo: %w", err)
		}
		switch st {
		case stateConflict:
			rep.Conflicts = append(rep.Conflicts, item(e, ""))
		case stateRestored:
			restored++
		}
		walk = append(walk, classified{e, st})
	}

	if len(rep.Conflicts) > 0 {
		rep.Status = StatusConflict
		for _, c := range walk {
			if c.state == stateMissing {
				rep.Missing = append(rep.Missing, item(c.entry, ""))
			}
		}
		return rep, nil
	}
	if restored == len(walk) {
		rep.Status = StatusAlreadyRestored
		for _, c := range walk {
			rep.AlreadyRestored = append(rep.AlreadyRestored, item(c.entry, ""))
		}
		return rep, nil
	}

	for _, c := range walk {
		switch c.state {
		case stateUndoable:
			if dryRun {
				rep.Undone = append(rep.Undone, item(c.entry, ""))
				continue
			}
			if err := b.fs.Rename(c.entry.TargetPath, c.entry.SourcePath); err != nil {
				rep.Skipped = append(rep.Skipped, item(c.entry, err.Error()))
				continue
			}
			rep.Undone = append(rep.Undone, item(c.entry, ""))
		case stateRestored:
			rep.AlreadyRestored = append(rep.AlreadyRestored, item(c.entry, ""))
		case stateMissing:
			rep.Missing = append(rep.Missing, item(c.entry, ""))
		}
	}

	rep.Status = StatusSuccess
	if len(rep.Skipped) > 0 || len(rep.Missing) > 0 || len(rep.AlreadyRestored) > 0 {
		rep.Status = StatusPartial
	}
	return rep, nil
}
