package transform

import "github.com/starford/vaultprep/internal/models"

// Pass is a single text transformation.
type Pass func(string) string

// Passes returns the per-note passes in pipeline order.
func Passes(renames models.RenameMap) []Pass {
	return []Pass{
		NonBreakingSpaces,
		TabIndentation,
		ImageLinks,
		WikiLinks,
		NestedHeadings,
		func(s string) string { return RenamedLinks(s, renames) },
	}
}

// Apply runs every pass over text and reports whether anything changed.
func Apply(text string, renames models.RenameMap) (string, bool) {
	out := text
	for _, p := range Passes(renames) {
		out = p(out)
	}
	return out, out != text
}
