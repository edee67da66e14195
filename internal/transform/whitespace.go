package transform

import "strings"

const nbsp = "\u00a0"

// NonBreakingSpaces replaces every U+00A0 with an ordinary space.
func NonBreakingSpaces(text string) string {
	return strings.ReplaceAll(text, nbsp, " ")
}

// TabIndentation replaces the leading tab run of each line with two spaces
// per tab. Tabs after the first non-tab character are left alone.
func TabIndentation(text string) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		n := 0
		for n < len(line) && line[n] == '\t' {
			n++
		}
		if n > 0 {
			lines[i] = strings.Repeat("  ", n) + line[n:]
		}
	}
	return strings.Join(lines, "\n")
}
