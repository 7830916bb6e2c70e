package rename

import (
	"unicode/utf8"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/models"
	"github.com/starford/redate/internal/naming"
)

// Preview returns the name sample would get, extension kept, without
// collision handling or disk access.
func Preview(sample string, layout dateparts.Layout, prefix, sep string) (string, error) {
	if sample == "" {
		return "", apperr.Validation("sample", "is required")
	}
	if err := layout.Validate(); err != nil {
		return "", err
	}
	base, ext := naming.SplitExt(sample)
	date, err := dateparts.Parse(base, layout)
	if err != nil {
		return "", err
	}
	built := naming.Build(prefix, date.Year, date.Month, date.Day, sep)
	if built == "" {
		return "", apperr.Validation("sample", "produces an empty name")
	}
	return built + ext, nil
}

// LengthMismatches counts files whose base name length differs from the
// sample's. Those files will be skipped by the planner.
func LengthMismatches(files []models.FileInfo, sample string) int {
	want, _ := naming.SplitExt(sample)
	n := utf8.RuneCountInString(want)
	count := 0
	for _, f := range files {
		base, _ := naming.SplitExt(f.Name)
		if utf8.RuneCountInString(base) != n {
			count++
		}
	}
	return count
}
