// Package publish copies selected vault notes into a flat static-site notes
// collection, rewriting wiki links and image references on the way.
package publish

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"

	"github.com/starford/vaultprep/internal/parser"
	"github.com/starford/vaultprep/internal/storage"
)

var (
	embedRe    = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	mdImageRe  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	wikilinkRe = regexp.MustCompile(`(!?)\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)
)

// Options configures a publish run.
type Options struct {
	// NotesDir is emptied and refilled with one file per published note.
	NotesDir string
	// AssetsDir receives every referenced image.
	AssetsDir string
	// AssetsURL is the public URL prefix of AssetsDir.
	AssetsURL string
	// NotesURL is the public URL prefix of published notes.
	NotesURL string
	Include  []string
	Exclude  []string
	// Defaults are merged under each note's own frontmatter.
	Defaults map[string]any
}

// Result lists what a publish run produced.
type Result struct {
	Notes  []string `json:"notes"`
	Assets []string `json:"assets"`
}

type publisher struct {
	vault  storage.Provider
	opts   Options
	urls   map[string]string
	files  map[string]string
	assets map[string]bool
	logger *slog.Logger
}

// Publish copies every note of vault accepted by the include/exclude filter
// into opts.NotesDir.
func Publish(vault storage.Provider, opts Options, logger *slog.Logger) (*Result, error) {
	if opts.AssetsURL == "" {
		opts.AssetsURL = "/assets/images"
	}
	if opts.NotesURL == "" {
		opts.NotesURL = "/notes"
	}
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.md"}
	}
	filter, err := NewFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(opts.NotesDir); err != nil {
		return nil, fmt.Errorf("publish: clean %s: %w", opts.NotesDir, err)
	}
	if err := os.MkdirAll(opts.NotesDir, 0o755); err != nil {
		return nil, fmt.Errorf("publish: create %s: %w", opts.NotesDir, err)
	}
	if err := os.MkdirAll(opts.AssetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("publish: create %s: %w", opts.AssetsDir, err)
	}

	metas, err := vault.List("")
	if err != nil {
		return nil, err
	}
	files, err := vault.Files("")
	if err != nil {
		return nil, err
	}

	p := &publisher{
		vault:  vault,
		opts:   opts,
		urls:   make(map[string]string),
		files:  make(map[string]string),
		assets: make(map[string]bool),
		logger: logger,
	}
	for _, rel := range files {
		name := path.Base(rel)
		if _, seen := p.files[name]; !seen {
			p.files[name] = rel
		}
	}

	var selected []string
	for _, m := range metas {
		if !filter.Match(m.Path) {
			continue
		}
		selected = append(selected, m.Path)
		p.urls[stem(m.Path)] = p.noteURL(Slug(stem(m.Path)))
	}
	logger.Info("publish: notes selected", slog.Int("count", len(selected)))

	res := &Result{}
	for _, rel := range selected {
		dest, err := p.publishNote(rel)
		if err != nil {
			logger.Warn("publish: skipping note", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		res.Notes = append(res.Notes, dest)
		logger.Info("publish: note written", slog.String("from", rel), slog.String("to", dest))
	}
	for name := range p.assets {
		res.Assets = append(res.Assets, name)
	}
	sort.Strings(res.Assets)
	return res, nil
}

func (p *publisher) publishNote(rel string) (string, error) {
	data, err := p.vault.ReadNote(rel)
	if err != nil {
		return "", err
	}
	fm, body := parser.SplitFrontmatter(data)

	body = p.rewriteEmbeds(body)
	body = p.rewriteImages(rel, body)
	body = p.rewriteWikiLinks(body)

	merged := make(map[string]any, len(p.opts.Defaults)+len(fm)+1)
	for k, v := range p.opts.Defaults {
		merged[k] = v
	}
	for k, v := range fm {
		merged[k] = v
	}
	if _, ok := merged["title"]; !ok {
		merged["title"] = Title(stem(rel))
	}
	head, err := yaml.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("publish: frontmatter for %s: %w", rel, err)
	}

	name := Slug(stem(rel)) + ".md"
	out := "---\n" + string(head) + "---\n" + body
	if err := os.WriteFile(filepath.Join(p.opts.NotesDir, name), []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("publish: write %s: %w", name, err)
	}
	return name, nil
}

// rewriteEmbeds resolves ![[name]] by file name anywhere in the vault.
// Unresolved embeds are kept.
func (p *publisher) rewriteEmbeds(body string) string {
	return embedRe.ReplaceAllStringFunc(body, func(m string) string {
		name := parser.EmbedTarget(embedRe.FindStringSubmatch(m)[1])
		if !parser.IsAssetName(name) {
			return m
		}
		src, ok := p.files[name]
		if !ok {
			return m
		}
		if err := p.copyAsset(src); err != nil {
			p.logger.Warn("publish: copy asset failed", slog.String("asset", src), slog.String("error", err.Error()))
			return m
		}
		return "![" + stem(name) + "](" + p.assetURL(name) + ")"
	})
}

// rewriteImages copies relative markdown images that exist and points them
// at the assets URL. Absolute paths and remote URLs are left alone.
func (p *publisher) rewriteImages(note, body string) string {
	return mdImageRe.ReplaceAllStringFunc(body, func(m string) string {
		sub := mdImageRe.FindStringSubmatch(m)
		alt, target := sub[1], sub[2]
		if strings.HasPrefix(target, "http") || strings.HasPrefix(target, "/") {
			return m
		}
		src := storage.Join(storage.Dir(note), target)
		if !p.vault.Exists(src) {
			unescaped, err := url.PathUnescape(target)
			if err != nil {
				return m
			}
			src = storage.Join(storage.Dir(note), unescaped)
			if !p.vault.Exists(src) {
				return m
			}
		}
		if err := p.copyAsset(src); err != nil {
			p.logger.Warn("publish: copy asset failed", slog.String("asset", src), slog.String("error", err.Error()))
			return m
		}
		return "![" + alt + "](" + p.assetURL(path.Base(src)) + ")"
	})
}

// rewriteWikiLinks turns [[Target|Text]] into [Text](url). Embeds that were
// not resolved keep their syntax.
func (p *publisher) rewriteWikiLinks(body string) string {
	return wikilinkRe.ReplaceAllStringFunc(body, func(m string) string {
		sub := wikilinkRe.FindStringSubmatch(m)
		if sub[1] == "!" {
			return m
		}
		target := strings.TrimSpace(sub[2])
		text := sub[3]
		if text == "" {
			text = target
		}
		u, ok := p.urls[target]
		if !ok {
			u = p.noteURL(Slug(target))
		}
		return "[" + text + "](" + u + ")"
	})
}

func (p *publisher) copyAsset(rel string) error {
	name := path.Base(rel)
	src := filepath.Join(p.vault.Root(), filepath.FromSlash(rel))
	if err := storage.CopyFile(src, filepath.Join(p.opts.AssetsDir, name)); err != nil {
		return err
	}
	p.assets[name] = true
	return nil
}

func (p *publisher) assetURL(name string) string {
	return strings.TrimSuffix(p.opts.AssetsURL, "/") + "/" + name
}

func (p *publisher) noteURL(s string) string {
	return strings.TrimSuffix(p.opts.NotesURL, "/") + "/" + s + "/"
}

// Slug derives the published file name and URL segment from a note name.
func Slug(name string) string {
	s := strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(name))
	if slug.IsValid(s) {
		return s
	}
	if normalized, err := slug.Normalize(name); err == nil && normalized != "" {
		return normalized
	}
	return s
}

// Title turns a file stem into a display title: "my_first-note" becomes
// "My First Note".
func Title(stem string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(stem))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func stem(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}
