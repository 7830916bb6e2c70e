package dateparts

import "strings"

// Month is one entry of the month table.
type Month struct {
	Name   string // full English name, capitalised
	Abbr   string // three-letter abbreviation
	Number string // two-digit number
}

var months = [12]Month{
	{"January", "Jan", "01"},
	{"February", "Feb", "02"},
	{"March", "Mar", "03"},
	{"April", "Apr", "04"},
	{"May", "May", "05"},
	{"June", "Jun", "06"},
	{"July", "Jul", "07"},
	{"August", "Aug", "08"},
	{"September", "Sep", "09"},
	{"October", "Oct", "10"},
	{"November", "Nov", "11"},
	{"December", "Dec", "12"},
}

// Months returns the month table in calendar order.
func Months() []Month {
	out := make([]Month, len(months))
	copy(out, months[:])
	return out
}

// MonthByAbbr looks up a month by its three-letter abbreviation, ignoring case.
func MonthByAbbr(abbr string) (Month, bool) {
	lower := strings.ToLower(abbr)
	for _, m := range months {
		if strings.ToLower(m.Abbr) == lower {
			return m, true
		}
	}
	return Month{}, false
}

// MonthByName looks up a month by its full English name, ignoring case.
func MonthByName(name string) (Month, bool) {
	for _, m := range months {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Month{}, false
}

// FullMonthNames returns the full names of every month whose name differs
// from its abbreviation. May is excluded: it is already three letters.
func FullMonthNames() []string {
	out := make([]string, 0, len(months)-1)
	for _, m := range months {
		if m.Name != m.Abbr {
			out = append(out, m.Name)
		}
	}
	return out
}
