// Package session holds the state of one running redate instance: the undo
// stack, the audit journal and the event stream. Every surface (HTTP, MCP,
// CLI) drives the rename engine through a Service.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/journal"
	"github.com/starford/redate/internal/models"
	"github.com/starford/redate/internal/months"
	"github.com/starford/redate/internal/rename"
	"github.com/starford/redate/internal/sse"
	"github.com/starford/redate/internal/storage"
	"github.com/starford/redate/internal/undo"
)

// Events receives notifications for connected clients. *sse.Broker
// satisfies it.
type Events interface {
	Publish(event sse.Event)
	PublishProgress(p sse.Progress)
}

// Follower is told which folder is under review. *watch.Tracker satisfies it.
type Follower interface {
	Follow(folder string)
}

// Service serialises planning, execution and undo for one session.
type Service struct {
	mu       sync.Mutex
	stack    *undo.Stack
	journal  journal.Recorder
	events   Events
	follower Follower
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records executed batches and undo outcomes to j.
func WithJournal(j journal.Recorder) Option {
	return func(s *Service) { s.journal = j }
}

// WithEvents publishes progress and batch events to e.
func WithEvents(e Events) Option {
	return func(s *Service) { s.events = e }
}

// WithFollower points f at every planned folder.
func WithFollower(f Follower) Option {
	return func(s *Service) { s.follower = f }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service with an empty undo stack.
func NewService(opts ...Option) *Service {
	s := &Service{stack: undo.NewStack(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewResult is the outcome of a single-file preview.
type PreviewResult struct {
	Sample  string `json:"sample"`
	NewName string `json:"new_name"`
	// LengthMismatches counts folder files the planner would skip on length.
	LengthMismatches int `json:"length_mismatches"`
	TotalFiles       int `json:"total_files"`
}

// BatchDetail is a journaled batch with its entries.
type BatchDetail struct {
	journal.BatchRow
	Entries []journal.EntryRow `json:"entries"`
}

// Preview shows what sample would be renamed to. When req.Folder is set the
// folder is scanned for files whose length differs from the sample.
func (s *Service) Preview(_ context.Context, req rename.Request, sample string) (*PreviewResult, error) {
	if req.Layout == nil {
		return nil, apperr.Validation("layout", "is required")
	}
	name, err := rename.Preview(sample, *req.Layout, req.Prefix, req.Separator)
	if err != nil {
		return nil, err
	}
	res := &PreviewResult{Sample: sample, NewName: name}
	if req.Folder != "" {
		fsys, err := storage.NewFS(req.Folder)
		if err != nil {
			return nil, err
		}
		files, err := fsys.List()
		if err != nil {
			return nil, err
		}
		res.TotalFiles = len(files)
		res.LengthMismatches = rename.LengthMismatches(files, sample)
	}
	return res, nil
}

// Plan computes a dry run for req.
func (s *Service) Plan(ctx context.Context, req rename.Request) (rename.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, plan, err := s.plan(ctx, req)
	if err != nil {
		return rename.Result{}, err
	}
	return rename.NewResult(plan, nil), nil
}

// Rename plans req again and executes it. A non-empty expectChecksum must
// match the fresh plan, otherwise the folder changed since review and
// apperr.ErrConflict is returned without touching anything.
func (s *Service) Rename(ctx context.Context, req rename.Request, expectChecksum string) (rename.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fsys, plan, err := s.plan(ctx, req)
	if err != nil {
		return rename.Result{}, err
	}
	if plan.Cancelled {
		return rename.NewResult(plan, nil), fmt.Errorf("session: rename: %w", context.Cause(ctx))
	}
	if expectChecksum != "" && expectChecksum != plan.Checksum() {
		return rename.NewResult(plan, nil), fmt.Errorf("session: plan changed since review: %w", apperr.ErrConflict)
	}
	return s.execute(fsys, plan, models.KindRename)
}

// Undo reverses the most recent batch. See undo.Stack.UndoLast.
func (s *Service) Undo(_ context.Context, confirmPartial, dryRun bool) (rename.UndoReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := s.stack.Peek()
	rep, err := s.stack.UndoLast(confirmPartial, dryRun)
	if err != nil {
		return rep, err
	}
	if dryRun || top == nil {
		return rep, nil
	}

	s.logger.Info("batch undone",
		slog.String("batch_id", rep.BatchID),
		slog.String("status", string(rep.Status)),
		slog.Int("undone", len(rep.Undone)))
	if s.journal != nil {
		err := s.journal.RecordUndo(journal.UndoRow{
			BatchID:         rep.BatchID,
			Status:          string(rep.Status),
			Undone:          len(rep.Undone),
			Skipped:         len(rep.Skipped),
			Missing:         len(rep.Missing),
			Conflicts:       len(rep.Conflicts),
			AlreadyRestored: len(rep.AlreadyRestored),
		})
		if err != nil {
			s.logger.Warn("journal: record undo failed", slog.String("error", err.Error()))
		}
	}
	s.publish(sse.Event{Type: sse.TypeBatchUndone, Data: rep})
	return rep, nil
}

// Pending lists batches that can still be undone, most recent first.
func (s *Service) Pending() []undo.Summary {
	return s.stack.Pending()
}

// History returns journaled batches newest first. Without a journal it is
// always empty.
func (s *Service) History(limit, offset int) ([]journal.BatchRow, int, error) {
	if s.journal == nil {
		return []journal.BatchRow{}, 0, nil
	}
	return s.journal.ListBatches(limit, offset)
}

// Batch returns one journaled batch with its entries.
func (s *Service) Batch(id string) (*BatchDetail, error) {
	if s.journal == nil {
		return nil, apperr.ErrNotFound
	}
	row, err := s.journal.GetBatch(id)
	if err != nil {
		return nil, err
	}
	entries, err := s.journal.Entries(id)
	if err != nil {
		return nil, err
	}
	return &BatchDetail{BatchRow: *row, Entries: entries}, nil
}

// CountMonths counts files in folder that spell out a month name.
func (s *Service) CountMonths(folder string) (int, error) {
	fsys, err := storage.NewFS(folder)
	if err != nil {
		return 0, err
	}
	return months.Count(fsys)
}

// NormalizeMonths rewrites full month names in folder to abbreviations.
// A real run is pushed onto the undo stack like any rename.
func (s *Service) NormalizeMonths(ctx context.Context, folder string, dryRun bool) (rename.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fsys, err := storage.NewFS(folder)
	if err != nil {
		return rename.Result{}, err
	}
	plan, err := months.Plan(ctx, fsys, s.reporter(ctx, "months", fsys.Root()))
	if err != nil {
		return rename.Result{}, err
	}
	s.follow(fsys.Root())
	if dryRun {
		return rename.NewResult(plan, nil), nil
	}
	if plan.Cancelled {
		return rename.NewResult(plan, nil), fmt.Errorf("session: months: %w", context.Cause(ctx))
	}
	return s.execute(fsys, plan, models.KindMonths)
}

func (s *Service) plan(ctx context.Context, req rename.Request) (*storage.FS, *rename.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	fsys, err := storage.NewFS(req.Folder)
	if err != nil {
		return nil, nil, err
	}
	plan, err := rename.PlanFolder(ctx, fsys, req, s.reporter(ctx, "plan", fsys.Root()))
	if err != nil {
		return nil, nil, err
	}
	s.follow(fsys.Root())
	s.logger.Debug("plan computed",
		slog.String("folder", plan.Folder),
		slog.Int("entries", len(plan.Entries)),
		slog.Int("skipped", len(plan.Skipped)),
		slog.Bool("cancelled", plan.Cancelled))
	return fsys, plan, nil
}

// execute pushes the batch before running it so a partial failure can still
// be undone.
func (s *Service) execute(fsys storage.Provider, plan *rename.Plan, kind string) (rename.Result, error) {
	s.progress(sse.Progress{Operation: kind, Folder: plan.Folder, Fraction: 0.8, Message: "Executing rename operations..."})

	batch := rename.NewBatch(fsys, plan, kind)
	s.stack.Push(batch)
	execErr := batch.Execute()

	res := rename.NewResult(plan, batch)
	if execErr != nil {
		res.Error = execErr.Error()
		s.logger.Error("batch failed",
			slog.String("batch_id", res.BatchID),
			slog.String("folder", plan.Folder),
			slog.Int("executed", len(batch.Executed)),
			slog.String("error", execErr.Error()))
	} else {
		s.logger.Info("batch executed",
			slog.String("batch_id", res.BatchID),
			slog.String("kind", kind),
			slog.String("folder", plan.Folder),
			slog.Int("renamed", len(batch.Executed)))
	}

	if s.journal != nil {
		err := s.journal.RecordBatch(journal.BatchRow{
			ID:        res.BatchID,
			Kind:      kind,
			Folder:    plan.Folder,
			Checksum:  res.Checksum,
			CreatedAt: batch.CreatedAt,
			Planned:   len(batch.Planned),
			Executed:  len(batch.Executed),
			Error:     res.Error,
		}, batch.Planned)
		if err != nil {
			s.logger.Warn("journal: record batch failed", slog.String("error", err.Error()))
		}
	}
	s.publish(sse.Event{Type: sse.TypeBatchExecuted, Data: res})
	s.progress(sse.Progress{Operation: kind, Folder: plan.Folder, Fraction: 1, Message: "Complete"})
	return res, execErr
}

func (s *Service) reporter(ctx context.Context, op, folder string) rename.Reporter {
	return rename.ReporterFunc(func(fraction float64, message string) bool {
		s.progress(sse.Progress{Operation: op, Folder: folder, Fraction: fraction, Message: message})
		return ctx.Err() == nil
	})
}

func (s *Service) progress(p sse.Progress) {
	if s.events != nil {
		s.events.PublishProgress(p)
	}
}

func (s *Service) publish(e sse.Event) {
	if s.events != nil {
		s.events.Publish(e)
	}
}

func (s *Service) follow(folder string) {
	if s.follower != nil {
		s.follower.Follow(folder)
	}
}
