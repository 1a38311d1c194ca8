package normalizers

import (
	"strings"
)

const Indentation = `  `

// LongDesc trims a command's long description.
func LongDesc(s string) string {
	return strings.TrimSpace(s)
}

// Examples trims and re-indents a command's example block so every line
// starts at the same two-space indentation regardless of source layout.
// Blank lines stay blank.
func Examples(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		lines[i] = Indentation + trimmed
	}
	return strings.Join(lines, "\n")
}
