package undo

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/rename"
	"github.com/starford/redate/internal/storage"
	"github.com/starford/redate/internal/testutil"
)

func request(folder string) rename.Request {
	return rename.Request{
		Folder: folder,
		Prefix: "NEW_",
		Layout: &dateparts.Layout{
			Year:  dateparts.PositionSpec{Start: 4, Length: 4},
			Month: dateparts.PositionSpec{Start: 8, Length: 2},
			Day:   &dateparts.PositionSpec{Start: 10, Length: 2},
		},
		ExpectedLength: 12,
	}
}

func pushExecuted(t *testing.T, s *Stack, fsys storage.Provider, dir string) *rename.BatchOperation {
	t.Helper()
	plan, err := rename.PlanFolder(context.Background(), fsys, request(dir), nil)
	if err != nil {
		t.Fatalf("PlanFolder: %v", err)
	}
	b := rename.NewBatch(fsys, plan, "rename")
	s.Push(b)
	if err := b.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return b
}

func TestUndoLast_Empty(t *testing.T) {
	s := NewStack()
	rep, err := s.UndoLast(false, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != rename.StatusEmpty {
		t.Errorf("status = %q", rep.Status)
	}
}

func TestUndoLast_SuccessPops(t *testing.T) {
	dir, fsys := testutil.TestFolder(t, "stmt20240115.pdf")
	s := NewStack()
	pushExecuted(t, s, fsys, dir)

	rep, err := s.UndoLast(false, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != rename.StatusSuccess || s.Len() != 0 {
		t.Errorf("status=%q len=%d", rep.Status, s.Len())
	}
	if got := testutil.Names(t, dir); !slices.Equal(got, []string{"stmt20240115.pdf"}) {
		t.Errorf("folder = %v", got)
	}
}

func TestUndoLast_DryRunNeverPops(t *testing.T) {
	dir, fsys := testutil.TestFolder(t, "stmt20240115.pdf")
	s := NewStack()
	pushExecuted(t, s, fsys, dir)

	rep, err := s.UndoLast(true, true)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != rename.StatusSuccess || s.Len() != 1 {
		t.Errorf("status=%q len=%d", rep.Status, s.Len())
	}
	if got := testutil.Names(t, dir); !slices.Equal(got, []string{"NEW_20240115.pdf"}) {
		t.Errorf("folder = %v", got)
	}
}

func TestUndoLast_PartialNeedsConfirmation(t *testing.T) {
	dir, fsys := testutil.TestFolder(t, "stmt20240115.pdf", "stmt20240220.pdf")
	s := NewStack()
	pushExecuted(t, s, fsys, dir)
	if err := os.Remove(filepath.Join(dir, "NEW_20240220.pdf")); err != nil {
		t.Fatal(err)
	}

	rep, err := s.UndoLast(false, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != rename.StatusPartial || s.Len() != 1 {
		t.Fatalf("status=%q len=%d", rep.Status, s.Len())
	}
	// The undoable entry was reversed; retrying finds nothing left to do
	// but the missing file, which is still partial.
	rep, err = s.UndoLast(true, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != rename.StatusPartial || s.Len() != 0 {
		t.Errorf("status=%q len=%d", rep.Status, s.Len())
	}
}

func TestUndoLast_ConflictNeverPops(t *testing.T) {
	dir, fsys := testutil.TestFolder(t, "stmt20240115.pdf")
	s := NewStack()
	pushExecuted(t, s, fsys, dir)
	testutil.WriteFile(t, filepath.Join(dir, "stmt20240115.pdf"), "recreated")

	for _, confirm := range []bool{false, true} {
		rep, err := s.UndoLast(confirm, false)
		if err != nil {
			t.Fatal(err)
		}
		if rep.Status != rename.StatusConflict || s.Len() != 1 {
			t.Errorf("confirm=%v: status=%q len=%d", confirm, rep.Status, s.Len())
		}
	}
}

func TestUndoLast_AlreadyRestoredPops(t *testing.T) {
	dir, fsys := testutil.TestFolder(t, "stmt20240115.pdf")
	s := NewStack()
	pushExecuted(t, s, fsys, dir)
	if err := os.Rename(filepath.Join(dir, "NEW_20240115.pdf"), filepath.Join(dir, "stmt20240115.pdf")); err != nil {
		t.Fatal(err)
	}
	rep, err := s.UndoLast(false, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != rename.StatusAlreadyRestored || s.Len() != 0 {
		t.Errorf("status=%q len=%d", rep.Status, s.Len())
	}
}

func TestStack_LIFO(t *testing.T) {
	dirA, fsA := testutil.TestFolder(t, "stmt20240115.pdf")
	dirB, fsB := testutil.TestFolder(t, "stmt20240220.pdf")
	s := NewStack()
	a := pushExecuted(t, s, fsA, dirA)
	b := pushExecuted(t, s, fsB, dirB)

	if s.Peek() != b {
		t.Fatal("Peek should return the most recent batch")
	}
	pending := s.Pending()
	if len(pending) != 2 || pending[0].ID != b.ID.String() || pending[1].ID != a.ID.String() {
		t.Errorf("pending = %+v", pending)
	}
	if pending[0].Executed != 1 || pending[0].Kind != "rename" {
		t.Errorf("summary = %+v", pending[0])
	}

	if _, err := s.UndoLast(false, false); err != nil {
		t.Fatal(err)
	}
	if s.Peek() != a {
		t.Error("undo should reverse the most recent batch first")
	}
	if got := testutil.Names(t, dirA); !slices.Equal(got, []string{"NEW_20240115.pdf"}) {
		t.Errorf("older batch touched: %v", got)
	}
}
