package parser

import (
	"testing"
)

func TestSplitFrontmatter(t *testing.T) {
	fm, body := SplitFrontmatter([]byte("---\ntitle: Hello\ntags:\n  - go\n---\n# Hello\nBody with ![[pic.png]].\n"))
	if fm == nil || fm["title"] != "Hello" {
		t.Errorf("frontmatter = %v", fm)
	}
	if body != "# Hello\nBody with ![[pic.png]].\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_None(t *testing.T) {
	fm, body := SplitFrontmatter([]byte("# Just a heading\nSome text.\n"))
	if fm != nil {
		t.Errorf("expected nil frontmatter, got %v", fm)
	}
	if body != "# Just a heading\nSome text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	fm, body := SplitFrontmatter(input)
	if fm != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if body != string(input) {
		t.Errorf("body = %q, want whole input", body)
	}
}

func TestEmbeds_StripsAliasAndSubpath(t *testing.T) {
	got := Embeds("![[a.png|300]] ![[b.pdf#page=2]] ![[ c.jpg ]] ![[a.png]]")
	want := []string{"a.png", "b.pdf", "c.jpg", "a.png"}
	if len(got) != len(want) {
		t.Fatalf("Embeds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Embeds[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsAssetName(t *testing.T) {
	cases := map[string]bool{
		"pic.png":      true,
		"Doc.PDF":      true,
		"Other Note":   false,
		"Other.md":     false,
		"archive.v2.z": true,
	}
	for name, want := range cases {
		if got := IsAssetName(name); got != want {
			t.Errorf("IsAssetName(%q) = %v, want %v", name, got, want)
		}
	}
}
