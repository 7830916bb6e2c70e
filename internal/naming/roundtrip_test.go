package naming_test

import (
	"testing"

	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/naming"
)

func pos(start, length int) dateparts.PositionSpec {
	return dateparts.PositionSpec{Start: start, Length: length}
}

func dayPos(start, length int) *dateparts.PositionSpec {
	p := pos(start, length)
	return &p
}

func TestBuildParseRoundTrip(t *testing.T) {
	tests := []struct {
		name                 string
		prefix, y, m, d, sep string
		layout               dateparts.Layout
	}{
		{"prefixed", "NEW_", "2024", "01", "15", "",
			dateparts.Layout{Year: pos(4, 4), Month: pos(8, 2), Day: dayPos(10, 2)}},
		{"separated", "DOC_", "2023", "12", "31", "-",
			dateparts.Layout{Year: pos(4, 4), Month: pos(9, 2), Day: dayPos(12, 2)}},
		{"no prefix", "", "1999", "07", "04", "_",
			dateparts.Layout{Year: pos(0, 4), Month: pos(5, 2), Day: dayPos(8, 2)}},
		{"no day", "S", "2024", "03", "", "_",
			dateparts.Layout{Year: pos(1, 4), Month: pos(6, 2)}},
		{"two-digit year", "R", "24", "11", "09", "",
			dateparts.Layout{Year: pos(1, 2), Month: pos(3, 2), Day: dayPos(5, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built := naming.Build(tt.prefix, tt.y, tt.m, tt.d, tt.sep)
			got, err := dateparts.Parse(built, tt.layout)
			if err != nil {
				t.Fatalf("Parse(%q): %v", built, err)
			}
			want := dateparts.ParsedDate{Year: tt.y, Month: tt.m, Day: tt.d}
			if got != want {
				t.Errorf("Parse(Build()) = %+v, want %+v (built %q)", got, want, built)
			}
		})
	}
}

// Single-digit fields are padded on the way in, so the built name parses
// back to the padded date under the widened layout.
func TestBuildParseRoundTrip_Padded(t *testing.T) {
	src, err := dateparts.Parse("r2024-3-7", dateparts.Layout{Year: pos(1, 4), Month: pos(6, 1), Day: dayPos(8, 1)})
	if err != nil {
		t.Fatalf("Parse source: %v", err)
	}
	if src.Month != "03" || src.Day != "07" {
		t.Fatalf("padding = %+v", src)
	}

	built := naming.Build("R", src.Year, src.Month, src.Day, "-")
	if built != "R2024-03-07" {
		t.Fatalf("Build = %q", built)
	}
	got, err := dateparts.Parse(built, dateparts.Layout{Year: pos(1, 4), Month: pos(6, 2), Day: dayPos(9, 2)})
	if err != nil {
		t.Fatalf("Parse(%q): %v", built, err)
	}
	if got != src {
		t.Errorf("round trip = %+v, want %+v", got, src)
	}
}
