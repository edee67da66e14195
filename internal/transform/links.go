package transform

import (
	"path"
	"regexp"
	"strings"

	"github.com/starford/vaultprep/internal/models"
)

var (
	// ![alt](attachments/name), ![alt](./attachments/name), ![alt](/attachments/name)
	imageLinkRe = regexp.MustCompile(`!\[[^\]]*\]\(\.?/?attachments/([^)]+)\)`)
	// [[#A#B]] or [[#A#B|alias]]; group 1 holds every heading segment after the first '#'.
	nestedHeadingRe = regexp.MustCompile(`\[\[#([^\]|#]+#[^\]|]+)(\|[^\]]*)?\]\]`)
	// [[target]], [[target|alias]], ![[target]]
	wikiLinkRe = regexp.MustCompile(`(!?)\[\[([^\]|]+)(\|[^\]]+)?\]\]`)
)

// ImageLinks rewrites markdown images under an attachments path into embeds.
// Percent-encoded and literal spaces in the file name become dashes.
func ImageLinks(text string) string {
	return imageLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		name := imageLinkRe.FindStringSubmatch(m)[1]
		name = strings.ReplaceAll(name, "%20", "-")
		name = strings.ReplaceAll(name, " ", "-")
		return "![[" + name + "]]"
	})
}

// NestedHeadings flattens [[#A#B|alias]] to [[#B|alias]]. Only the innermost
// heading survives; without an alias the heading name becomes the display text.
func NestedHeadings(text string) string {
	return nestedHeadingRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := nestedHeadingRe.FindStringSubmatch(m)
		segments := sub[1]
		heading := segments[strings.LastIndex(segments, "#")+1:]
		if heading == "" {
			return m
		}
		display := sub[2]
		if display == "" || display == "|" {
			display = "|" + heading
		}
		return "[[#" + heading + display + "]]"
	})
}

// WikiLinks replaces spaces in link and embed targets with dashes.
// Alias text after '|' is preserved verbatim.
func WikiLinks(text string) string {
	return wikiLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := wikiLinkRe.FindStringSubmatch(m)
		target := sub[2]
		if !strings.Contains(target, " ") {
			return m
		}
		return sub[1] + "[[" + strings.ReplaceAll(target, " ", "-") + sub[3] + "]]"
	})
}

// RenamedLinks points links at renamed notes. For every renamed path the
// old stem in [[old]] and [[old|alias]] is swapped for the new stem.
func RenamedLinks(text string, renames models.RenameMap) string {
	if len(renames) == 0 || !strings.Contains(text, "[[") {
		return text
	}
	for _, oldPath := range renames.Keys() {
		oldStem := stem(oldPath)
		newStem := stem(renames[oldPath])
		if oldStem == newStem || oldStem == "" {
			continue
		}
		text = strings.ReplaceAll(text, "[["+oldStem+"]]", "[["+newStem+"]]")
		text = strings.ReplaceAll(text, "[["+oldStem+"|", "[["+newStem+"|")
	}
	return text
}

func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
