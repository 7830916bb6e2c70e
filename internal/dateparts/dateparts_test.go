package dateparts

import (
	"errors"
	"testing"

	"github.com/starford/redate/internal/apperr"
)

func spec(start, length int) PositionSpec { return PositionSpec{Start: start, Length: length} }

func day(start, length int) *PositionSpec {
	p := spec(start, length)
	return &p
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		layout Layout
		want   ParsedDate
	}{
		{
			name:   "numeric with day",
			base:   "stmt20240115",
			layout: Layout{Year: spec(4, 4), Month: spec(8, 2), Day: day(10, 2)},
			want:   ParsedDate{Year: "2024", Month: "01", Day: "15"},
		},
		{
			name:   "no day",
			base:   "doc202403",
			layout: Layout{Year: spec(3, 4), Month: spec(7, 2)},
			want:   ParsedDate{Year: "2024", Month: "03"},
		},
		{
			name:   "textual abbreviation",
			base:   "doc2024Jan15",
			layout: Layout{Year: spec(3, 4), Month: spec(7, 3), Day: day(10, 2), TextualMonth: true},
			want:   ParsedDate{Year: "2024", Month: "01", Day: "15"},
		},
		{
			name:   "textual full name ignores extra chars",
			base:   "doc2024January15",
			layout: Layout{Year: spec(3, 4), Month: spec(7, 7), Day: day(14, 2), TextualMonth: true},
			want:   ParsedDate{Year: "2024", Month: "01", Day: "15"},
		},
		{
			name:   "textual month case-insensitive",
			base:   "DEC2023",
			layout: Layout{Year: spec(3, 4), Month: spec(0, 3), TextualMonth: true},
			want:   ParsedDate{Year: "2023", Month: "12"},
		},
		{
			name:   "single digit month and day padded",
			base:   "r2024-3-7",
			layout: Layout{Year: spec(1, 4), Month: spec(6, 1), Day: day(8, 1)},
			want:   ParsedDate{Year: "2024", Month: "03", Day: "07"},
		},
		{
			name:   "single char year not padded",
			base:   "y4m05",
			layout: Layout{Year: spec(1, 1), Month: spec(3, 2)},
			want:   ParsedDate{Year: "4", Month: "05"},
		},
		{
			name:   "non-digit single char kept",
			base:   "ax",
			layout: Layout{Year: spec(0, 1), Month: spec(1, 1)},
			want:   ParsedDate{Year: "a", Month: "x"},
		},
		{
			name:   "offsets count characters",
			base:   "été2024-05",
			layout: Layout{Year: spec(3, 4), Month: spec(8, 2)},
			want:   ParsedDate{Year: "2024", Month: "05"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.base, tt.layout)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.base, got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		layout Layout
	}{
		{"too short for year", "short", Layout{Year: spec(10, 4), Month: spec(14, 2)}},
		{"too short for day", "doc202401", Layout{Year: spec(3, 4), Month: spec(7, 2), Day: day(9, 2)}},
		{"unknown textual month", "doc2024Invalid15", Layout{Year: spec(3, 4), Month: spec(7, 7), TextualMonth: true}},
		{"numeric under textual flag", "doc20240115", Layout{Year: spec(3, 4), Month: spec(7, 2), TextualMonth: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.base, tt.layout)
			if !errors.Is(err, apperr.ErrParse) {
				t.Fatalf("err = %v, want ParseError", err)
			}
			var pe *apperr.ParseError
			if !errors.As(err, &pe) || pe.Filename != tt.base {
				t.Errorf("ParseError filename = %+v", pe)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	l := Layout{Year: spec(4, 4), Month: spec(8, 2), Day: day(10, 2)}
	a, _ := Parse("stmt20240115", l)
	b, _ := Parse("stmt20240115", l)
	if a != b {
		t.Errorf("repeated parse differs: %+v vs %+v", a, b)
	}
}

func TestLayout_Validate(t *testing.T) {
	ok := Layout{Year: spec(0, 4), Month: spec(4, 2)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid layout rejected: %v", err)
	}

	bad := []Layout{
		{Year: spec(-1, 4), Month: spec(4, 2)},
		{Year: spec(0, 0), Month: spec(4, 2)},
		{Year: spec(0, 4), Month: spec(4, 2), Day: day(6, 0)},
	}
	for i, l := range bad {
		if err := l.Validate(); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("layout %d: err = %v, want ValidationError", i, err)
		}
	}
}

func TestParseSpec(t *testing.T) {
	p, err := ParseSpec(" 4:2 ")
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	if p != spec(4, 2) {
		t.Errorf("got %+v", p)
	}
	for _, s := range []string{"4", "a:2", "4:b", "4:0", "-1:2"} {
		if _, err := ParseSpec(s); err == nil {
			t.Errorf("ParseSpec(%q) should fail", s)
		}
	}
}

func TestMonthByAbbr(t *testing.T) {
	m, ok := MonthByAbbr("sEp")
	if !ok || m.Number != "09" {
		t.Errorf("MonthByAbbr(sEp) = %+v, %v", m, ok)
	}
	if _, ok := MonthByAbbr("foo"); ok {
		t.Error("foo should not map")
	}
	if len(Months()) != 12 {
		t.Error("month table must have 12 entries")
	}
}
