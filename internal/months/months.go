// Package months rewrites spelled-out month names in filenames to their
// three-letter abbreviations ("March" -> "Mar").
package months

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/models"
	"github.com/starford/redate/internal/naming"
	"github.com/starford/redate/internal/rename"
	"github.com/starford/redate/internal/storage"
)

// fullMonth matches any full month name except May, ignoring case.
var fullMonth = regexp.MustCompile("(?i)" + strings.Join(dateparts.FullMonthNames(), "|"))

// Normalize replaces every full month name in name with its abbreviation.
func Normalize(name string) string {
	return fullMonth.ReplaceAllStringFunc(name, func(m string) string {
		month, _ := dateparts.MonthByName(m)
		return month.Abbr
	})
}

// Count returns how many files in fsys contain a full month name.
func Count(fsys storage.Provider) (int, error) {
	files, err := fsys.List()
	if err != nil {
		return 0, fmt.Errorf("months: count: %w", err)
	}
	n := 0
	for _, f := range files {
		if fullMonth.MatchString(f.Name) {
			n++
		}
	}
	return n, nil
}

// Plan computes the normalising renames for fsys. Names without a full
// month are reported as skipped. The result executes like any other plan.
func Plan(ctx context.Context, fsys storage.Provider, reporter rename.Reporter) (*rename.Plan, error) {
	files, err := fsys.List()
	if err != nil {
		return nil, fmt.Errorf("months: plan: %w", err)
	}
	plan := &rename.Plan{
		Folder:     fsys.Root(),
		Entries:    []models.RenameEntry{},
		Skipped:    []string{},
		TotalFiles: len(files),
	}
	if len(files) == 0 {
		if reporter != nil {
			reporter.Report(1, rename.EmptyFolderMessage)
		}
		return plan, nil
	}

	resolver := naming.NewResolver(fsys.Exists)
	for i, f := range files {
		if ctx.Err() != nil {
			plan.Cancelled = true
			break
		}
		normalized := Normalize(f.Name)
		if normalized == f.Name {
			plan.Skipped = append(plan.Skipped, f.Name)
		} else {
			base, ext := naming.SplitExt(normalized)
			target, err := resolver.Resolve(base, ext)
			if err != nil {
				return nil, fmt.Errorf("months: plan %s: %w", f.Name, err)
			}
			plan.Entries = append(plan.Entries, models.RenameEntry{
				SourcePath: f.Path,
				TargetPath: fsys.Path(target),
			})
		}
		if reporter != nil && !reporter.Report(float64(i+1)/float64(len(files)), "Processing: "+f.Name) {
			plan.Cancelled = true
			break
		}
	}
	plan.TotalScanned = len(plan.Entries) + len(plan.Skipped)
	return plan, nil
}
