package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/vaultprep/internal/testutil"
)

func publishDirs(t *testing.T) Options {
	t.Helper()
	out := t.TempDir()
	return Options{
		NotesDir:  filepath.Join(out, "_notes"),
		AssetsDir: filepath.Join(out, "assets", "images"),
		Defaults:  map[string]any{"layout": "note"},
	}
}

func readOut(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestPublish_RewritesNote(t *testing.T) {
	vault := testutil.Tree(t, map[string]string{
		"Math/My Note.md":             "See [[Other_Note|the other]] and [[Unknown Page]].\n![[pic.png]]\n",
		"Math/Other_Note.md":          "---\ntitle: Custom\nlayout: page\n---\nbody\n",
		"Math/attachments/pic.png":    "png",
		"Math/attachments/inline.jpg": "jpg",
	})
	opts := publishDirs(t)

	res, err := Publish(vault, opts, testutil.Logger())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(res.Notes) != 2 {
		t.Fatalf("notes = %v, want 2", res.Notes)
	}

	got := readOut(t, filepath.Join(opts.NotesDir, "my-note.md"))
	for _, want := range []string{
		"layout: note\n",
		"title: My Note\n",
		"[the other](/notes/other-note/)",
		"[Unknown Page](/notes/unknown-page/)",
		"![pic](/assets/images/pic.png)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("my-note.md missing %q:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "---\n") {
		t.Errorf("missing frontmatter block:\n%s", got)
	}
	if readOut(t, filepath.Join(opts.AssetsDir, "pic.png")) != "png" {
		t.Error("asset not copied")
	}

	other := readOut(t, filepath.Join(opts.NotesDir, "other-note.md"))
	if !strings.Contains(other, "title: Custom\n") || !strings.Contains(other, "layout: page\n") {
		t.Errorf("note frontmatter should override defaults:\n%s", other)
	}
	if !strings.HasSuffix(other, "---\nbody\n") {
		t.Errorf("body not preserved:\n%s", other)
	}
}

func TestPublish_RelativeImagesAndURLs(t *testing.T) {
	vault := testutil.Tree(t, map[string]string{
		"a.md":                   "![x](attachments/My%20Pic.png) ![y](https://example.com/p.png) ![z](nope.png)\n",
		"attachments/My Pic.png": "png",
	})
	opts := publishDirs(t)

	if _, err := Publish(vault, opts, testutil.Logger()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got := readOut(t, filepath.Join(opts.NotesDir, "a.md"))
	for _, want := range []string{
		"![x](/assets/images/My Pic.png)",
		"![y](https://example.com/p.png)",
		"![z](nope.png)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("a.md missing %q:\n%s", want, got)
		}
	}
}

func TestPublish_UnresolvedEmbedKept(t *testing.T) {
	vault := testutil.Tree(t, map[string]string{"a.md": "![[ghost.png]] ![[Other Note]]\n"})
	opts := publishDirs(t)

	if _, err := Publish(vault, opts, testutil.Logger()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got := readOut(t, filepath.Join(opts.NotesDir, "a.md"))
	if !strings.Contains(got, "![[ghost.png]] ![[Other Note]]") {
		t.Errorf("unresolved embeds should be kept:\n%s", got)
	}
}

func TestPublish_CleansNotesDir(t *testing.T) {
	vault := testutil.Tree(t, map[string]string{"a.md": "a"})
	opts := publishDirs(t)
	testutil.WriteFiles(t, opts.NotesDir, map[string]string{"stale.md": "old"})

	if _, err := Publish(vault, opts, testutil.Logger()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.NotesDir, "stale.md")); !os.IsNotExist(err) {
		t.Error("stale output should be removed")
	}
}

func TestPublish_ExcludeWins(t *testing.T) {
	vault := testutil.Tree(t, map[string]string{
		"keep.md":          "k",
		"drafts/wip.md":    "w",
		"deep/drafts/x.md": "x",
	})
	opts := publishDirs(t)
	opts.Exclude = []string{"**/drafts/**"}

	res, err := Publish(vault, opts, testutil.Logger())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(res.Notes) != 1 || res.Notes[0] != "keep.md" {
		t.Errorf("notes = %v, want [keep.md]", res.Notes)
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		want    bool
	}{
		{"any md at root", []string{"**/*.md"}, nil, "a.md", true},
		{"any md nested", []string{"**/*.md"}, nil, "x/y/a.md", true},
		{"star crosses slash", []string{"Math/*"}, nil, "Math/sub/a.md", true},
		{"not included", []string{"Math/*"}, nil, "Other/a.md", false},
		{"exclude exact", []string{"**/*.md"}, []string{"private.md"}, "private.md", false},
		{"exclude segment", []string{"**/*.md"}, []string{"**/private/**"}, "private/a.md", false},
		{"non md", []string{"**/*.md"}, nil, "a.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("NewFilter: %v", err)
			}
			if got := f.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewFilter_BadPattern(t *testing.T) {
	if _, err := NewFilter([]string{"[unclosed"}, nil); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestSlugAndTitle(t *testing.T) {
	if got := Slug("My Note_Two"); got != "my-note-two" {
		t.Errorf("Slug = %q", got)
	}
	if got := Title("my_first-note"); got != "My First Note" {
		t.Errorf("Title = %q", got)
	}
}
