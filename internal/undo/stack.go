// Package undo holds the in-memory stack of executed batches for one
// session. It is never persisted.
package undo

import (
	"sync"
	"time"

	"github.com/starford/redate/internal/rename"
)

// Summary describes one batch waiting on the stack.
type Summary struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"created_at"`
	Planned   int       `json:"planned"`
	Executed  int       `json:"executed"`
}

// Stack is an ordered list of batches, most recent last. It is safe for
// concurrent use.
type Stack struct {
	mu      sync.Mutex
	batches []*rename.BatchOperation
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Push appends b as the most recent batch.
func (s *Stack) Push(b *rename.BatchOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
}

// Peek returns the most recent batch, or nil.
func (s *Stack) Peek() *rename.BatchOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

// Len returns the number of batches on the stack.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

// Pending summarises the stack, most recent first.
func (s *Stack) Pending() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, 0, len(s.batches))
	for i := len(s.batches) - 1; i >= 0; i-- {
		b := s.batches[i]
		out = append(out, Summary{
			ID:        b.ID.String(),
			Kind:      b.Kind,
			Folder:    b.Folder,
			CreatedAt: b.CreatedAt,
			Planned:   len(b.Planned),
			Executed:  len(b.Executed),
		})
	}
	return out
}

// UndoLast reverses the most recent batch. On a real run the batch is
// popped after success or already_restored, after partial only when
// confirmPartial is set, and never after a conflict. A dry run never pops.
func (s *Stack) UndoLast(confirmPartial, dryRun bool) (rename.UndoReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		rep := rename.EmptyUndoReport()
		rep.DryRun = dryRun
		return rep, nil
	}
	top := s.batches[len(s.batches)-1]
	rep, err := top.Undo(dryRun)
	if err != nil {
		return rep, err
	}
	if dryRun {
		return rep, nil
	}
	switch rep.Status {
	case rename.StatusSuccess, rename.StatusAlreadyRestored:
		s.pop()
	case rename.StatusPartial:
		if confirmPartial {
			s.pop()
		}
	}
	return rep, nil
}

func (s *Stack) pop() {
	s.batches[len(s.batches)-1] = nil
	s.batches = s.batches[:len(s.batches)-1]
}
