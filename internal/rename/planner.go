package rename

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/starford/redate/internal/checksum"
	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/models"
	"github.com/starford/redate/internal/naming"
	"github.com/starford/redate/internal/storage"
)

// Plan is the dry-run result of a planning pass. It is consumed once by
// Execute.
type Plan struct {
	Folder  string
	Entries []models.RenameEntry
	// Skipped holds filenames that failed the length gate, did not parse or
	// built an empty name.
	Skipped []string
	// TotalScanned is len(Entries)+len(Skipped).
	TotalScanned int
	// TotalFiles is the number of regular files found in Folder.
	TotalFiles int
	Cancelled  bool
}

// Checksum identifies the planned renames. Two plans with the same entries
// in the same order share a checksum.
func (p *Plan) Checksum() string { return checksum.Entries(p.Entries) }

// PlanFolder computes the renames for every regular file in fsys without
// touching the disk. Files are visited in name order. Cancellation through
// ctx or reporter yields a partial plan with Cancelled set, never an error.
func PlanFolder(ctx context.Context, fsys storage.Provider, req Request, reporter Reporter) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	files, err := fsys.List()
	if err != nil {
		return nil, fmt.Errorf("rename: plan: %w", err)
	}

	plan := &Plan{
		Folder:     fsys.Root(),
		Entries:    []models.RenameEntry{},
		Skipped:    []string{},
		TotalFiles: len(files),
	}
	if len(files) == 0 {
		report(reporter, 1, EmptyFolderMessage)
		return plan, nil
	}

	layout := *req.Layout
	resolver := naming.NewResolver(fsys.Exists)
	total := float64(len(files))

	for i, f := range files {
		if ctx.Err() != nil {
			plan.Cancelled = true
			break
		}
		target, ok, err := planFile(f, req, layout, resolver)
		if err != nil {
			return nil, fmt.Errorf("rename: plan %s: %w", f.Name, err)
		}
		if ok {
			plan.Entries = append(plan.Entries, models.RenameEntry{
				SourcePath: f.Path,
				TargetPath: fsys.Path(target),
			})
		} else {
			plan.Skipped = append(plan.Skipped, f.Name)
		}
		// A stop request on the last file leaves a complete plan.
		if !report(reporter, float64(i+1)/total, "Processing: "+f.Name) && i+1 < len(files) {
			plan.Cancelled = true
			break
		}
	}
	plan.TotalScanned = len(plan.Entries) + len(plan.Skipped)
	return plan, nil
}

// planFile returns the collision-free target name for f, or ok=false when
// the file is skipped.
func planFile(f models.FileInfo, req Request, layout dateparts.Layout, resolver *naming.Resolver) (string, bool, error) {
	base, ext := naming.SplitExt(f.Name)
	if utf8.RuneCountInString(base) != req.ExpectedLength {
		return "", false, nil
	}
	date, err := dateparts.Parse(base, layout)
	if err != nil {
		return "", false, nil
	}
	built := naming.Build(req.Prefix, date.Year, date.Month, date.Day, req.Separator)
	if built == "" {
		return "", false, nil
	}
	target, err := resolver.Resolve(built, ext)
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}
