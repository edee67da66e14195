// Package parser extracts frontmatter and embeds from Markdown notes.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
)

var embedRe = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)

// SplitFrontmatter separates a leading frontmatter block (YAML, TOML or JSON
// delimiters) from the Markdown body.
func SplitFrontmatter(data []byte) (map[string]any, string) {
	var fm map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, string(data)
	}
	if len(fm) == 0 {
		fm = nil
	}
	return fm, strings.TrimLeft(string(rest), "\r\n")
}

// Embeds returns the target names of every ![[...]] reference in order,
// with the alias and subpath stripped. Duplicates are kept.
func Embeds(text string) []string {
	matches := embedRe.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if name := EmbedTarget(m[1]); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// EmbedTarget reduces the inner text of an embed to its file name:
// "pic.png|300" and "pic.png#page=2" both become "pic.png".
func EmbedTarget(inner string) string {
	if i := strings.Index(inner, "|"); i >= 0 {
		inner = inner[:i]
	}
	if i := strings.Index(inner, "#"); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

// IsAssetName reports whether an embed target names a binary attachment
// rather than a note transclusion.
func IsAssetName(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext != "" && ext != ".md"
}
