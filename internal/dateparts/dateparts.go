// Package dateparts extracts year, month and day substrings from a base name
// by fixed character offsets.
package dateparts

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/redate/internal/apperr"
)

// PositionSpec locates one date field inside a base name. Offsets count
// characters, not bytes.
type PositionSpec struct {
	Start  int `json:"start" yaml:"start"`
	Length int `json:"length" yaml:"length"`
}

// End returns the exclusive end offset.
func (p PositionSpec) End() int { return p.Start + p.Length }

func (p PositionSpec) String() string { return fmt.Sprintf("%d:%d", p.Start, p.Length) }

// Validate checks Start >= 0 and Length > 0.
func (p PositionSpec) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Start, validation.Min(0)),
		validation.Field(&p.Length, validation.Required, validation.Min(1)),
	)
}

// Layout describes where the date lives in a base name. Day is optional as
// a whole.
type Layout struct {
	Year         PositionSpec  `json:"year"`
	Month        PositionSpec  `json:"month"`
	Day          *PositionSpec `json:"day,omitempty"`
	TextualMonth bool          `json:"textual_month"`
}

// Validate returns an *apperr.ValidationError naming the first bad field.
func (l *Layout) Validate() error {
	fields := []struct {
		name string
		spec *PositionSpec
	}{
		{"year", &l.Year},
		{"month", &l.Month},
		{"day", l.Day},
	}
	for _, f := range fields {
		if f.spec == nil {
			continue
		}
		if err := f.spec.Validate(); err != nil {
			return apperr.Validation(f.name, err.Error())
		}
	}
	return nil
}

// Span returns the minimum base-name length the layout needs.
func (l *Layout) Span() int {
	n := max(l.Year.End(), l.Month.End())
	if l.Day != nil {
		n = max(n, l.Day.End())
	}
	return n
}

// ParsedDate holds the normalised date parts. Day is empty when the layout
// has no day field.
type ParsedDate struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
}

// Parse extracts the date parts of baseName according to layout.
//
// Textual months use only the first three characters of the extracted
// substring (so "December" and "Dec" both map to "12"). Single-digit numeric
// months and days are zero-padded; years are kept verbatim.
func Parse(baseName string, layout Layout) (ParsedDate, error) {
	runes := []rune(baseName)
	if needed := layout.Span(); len(runes) < needed {
		return ParsedDate{}, &apperr.ParseError{
			Filename: baseName,
			Reason:   fmt.Sprintf("too short for specified positions (needed %d chars)", needed),
		}
	}

	slice := func(p PositionSpec) string { return string(runes[p.Start:p.End()]) }

	out := ParsedDate{
		Year:  slice(layout.Year),
		Month: slice(layout.Month),
	}
	if layout.Day != nil {
		out.Day = padDigit(slice(*layout.Day))
	}

	if layout.TextualMonth {
		prefix := []rune(out.Month)
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		m, ok := MonthByAbbr(string(prefix))
		if !ok {
			return ParsedDate{}, &apperr.ParseError{
				Filename: baseName,
				Reason:   fmt.Sprintf("cannot map textual month %q to a numeric month", out.Month),
			}
		}
		out.Month = m.Number
	} else {
		out.Month = padDigit(out.Month)
	}
	return out, nil
}

func padDigit(s string) string {
	r := []rune(s)
	if len(r) == 1 && unicode.IsDigit(r[0]) {
		return "0" + s
	}
	return s
}

// ParseSpec parses a "start:length" flag value.
func ParseSpec(s string) (PositionSpec, error) {
	start, length, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return PositionSpec{}, apperr.Validation("position", fmt.Sprintf("%q is not start:length", s))
	}
	st, err := strconv.Atoi(start)
	if err != nil {
		return PositionSpec{}, apperr.Validation("position", fmt.Sprintf("bad start in %q", s))
	}
	ln, err := strconv.Atoi(length)
	if err != nil {
		return PositionSpec{}, apperr.Validation("position", fmt.Sprintf("bad length in %q", s))
	}
	p := PositionSpec{Start: st, Length: ln}
	if err := p.Validate(); err != nil {
		return PositionSpec{}, apperr.Validation("position", err.Error())
	}
	return p, nil
}
