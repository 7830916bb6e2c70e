package naming

import "strings"

// Build joins the non-empty date parts with sep and prepends prefix. With
// every part empty the result is prefix alone, which may be "".
func Build(prefix, year, month, day, sep string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{year, month, day} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return prefix + strings.Join(parts, sep)
}

// SplitExt returns the base name and extension (with dot) of name. Leading
// dots do not start an extension, so ".env" has none.
func SplitExt(name string) (base, ext string) {
	trimmed := strings.TrimLeft(name, ".")
	i := strings.LastIndexByte(trimmed, '.')
	if i < 0 {
		return name, ""
	}
	cut := len(name) - len(trimmed) + i
	return name[:cut], name[cut:]
}
