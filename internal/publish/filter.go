package publish

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter decides which vault notes are published. Patterns use shell glob
// syntax where "*" also crosses "/".
type Filter struct {
	include  []glob.Glob
	exclude  []glob.Glob
	segments []glob.Glob
	anyMD    bool
}

// NewFilter compiles include and exclude patterns. An exclude containing
// "**" additionally rejects any path whose segment matches its directory
// part, so "**/drafts/**" excludes every file under a drafts directory.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		if p == "**/*.md" {
			f.anyMD = true
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("publish: include %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("publish: exclude %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
		if strings.Contains(p, "**") {
			seg := strings.ReplaceAll(strings.ReplaceAll(p, "**", "*"), "/", "")
			sg, err := glob.Compile(seg)
			if err != nil {
				return nil, fmt.Errorf("publish: exclude %q: %w", p, err)
			}
			f.segments = append(f.segments, sg)
		}
	}
	return f, nil
}

// Match reports whether the slash-separated relative path is published.
// Excludes take precedence over includes.
func (f *Filter) Match(rel string) bool {
	for _, g := range f.exclude {
		if g.Match(rel) {
			return false
		}
	}
	for _, part := range strings.Split(rel, "/") {
		for _, g := range f.segments {
			if g.Match(part) {
				return false
			}
		}
	}
	if f.anyMD && strings.HasSuffix(rel, ".md") {
		return true
	}
	for _, g := range f.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
