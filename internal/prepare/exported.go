package prepare

import (
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/starford/vaultprep/internal/storage"
)

const attachmentsDir = "attachments"

var (
	exportedExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
	timestampRe  = regexp.MustCompile(`(\d{14}-\d+)`)
)

// isExported reports whether name is an exported image in spaced or dashed form.
func isExported(name, prefix string) bool {
	if !exportedExts[strings.ToLower(path.Ext(name))] {
		return false
	}
	return strings.HasPrefix(name, prefix+" ") ||
		strings.HasPrefix(name, strings.ReplaceAll(prefix, " ", "-")+"-")
}

// nameVariants lists the forms under which a note may reference name.
func nameVariants(name string) []string {
	return []string{
		name,
		strings.ReplaceAll(name, " ", "%20"),
		strings.ReplaceAll(name, " ", "-"),
	}
}

// RelocateExported moves exported images found at the content root into the
// attachments dir of the note referencing them (or opts.FallbackDir) and
// rewrites that note's markdown image links to embeds. Returns the number of
// relocated images and of rewritten notes.
func RelocateExported(store storage.Provider, opts ExportedImages, logger *slog.Logger) (int, int, error) {
	files, err := store.Files("")
	if err != nil {
		return 0, 0, err
	}
	var images []string
	for _, rel := range files {
		if storage.Dir(rel) == "" && isExported(rel, opts.Prefix) {
			images = append(images, rel)
		}
	}
	if len(images) == 0 {
		return 0, 0, nil
	}

	metas, err := store.List("")
	if err != nil {
		return 0, 0, err
	}
	owner := make(map[string]string, len(images))
	for _, m := range metas {
		data, err := store.ReadNote(m.Path)
		if err != nil {
			continue
		}
		content := string(data)
		for _, img := range images {
			for _, v := range nameVariants(img) {
				if strings.Contains(content, v) {
					owner[img] = m.Path
					break
				}
			}
		}
	}

	relocated := 0
	relinked := make(map[string]bool)
	for _, img := range images {
		targetDir := opts.FallbackDir
		note, referenced := owner[img]
		if referenced {
			targetDir = storage.Join(storage.Dir(note), attachmentsDir)
		}
		dest := storage.Join(targetDir, img)
		if err := store.Move(img, dest); err != nil {
			logger.Warn("exported: move failed", slog.String("image", img), slog.String("error", err.Error()))
			continue
		}
		relocated++
		logger.Info("exported: relocated", slog.String("image", img), slog.String("to", targetDir))

		if !referenced {
			continue
		}
		changed, err := relinkNote(store, note, img)
		if err != nil {
			logger.Warn("exported: relink failed", slog.String("note", note), slog.String("error", err.Error()))
			continue
		}
		if changed {
			relinked[note] = true
		}
	}
	return relocated, len(relinked), nil
}

// relinkNote replaces markdown image links to img with ![[img]].
func relinkNote(store storage.Provider, note, img string) (bool, error) {
	data, err := store.ReadNote(note)
	if err != nil {
		return false, err
	}
	content := string(data)
	embed := "![[" + img + "]]"
	for _, v := range nameVariants(img) {
		re, err := regexp.Compile(`!\[[^\]]*\]\([^)]*` + regexp.QuoteMeta(v) + `[^)]*\)`)
		if err != nil {
			return false, fmt.Errorf("exported: pattern for %s: %w", v, err)
		}
		content = re.ReplaceAllLiteralString(content, embed)
	}
	if content == string(data) {
		return false, nil
	}
	return true, store.Write(note, []byte(content))
}

// exportedLinkRe builds the matcher for markdown image links to exported
// images keyed by their capture timestamp.
func exportedLinkRe(prefix string) *regexp.Regexp {
	words := strings.Fields(prefix)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	sep := `(?:\s|%20|-)+`
	return regexp.MustCompile(`(?i)!\[[^\]]*\]\([^)]*` + strings.Join(words, sep) + sep +
		`(\d{14}-\d+)[^)]*\.(?:png|jpg|jpeg)\)`)
}

// FixExportedLinks rewrites leftover markdown image links to exported images
// into embeds of the attachment carrying the same timestamp. Links whose
// timestamp matches no attachment are kept. Returns the rewritten note count.
func FixExportedLinks(store storage.Provider, prefix string, logger *slog.Logger) (int, error) {
	files, err := store.Files("")
	if err != nil {
		return 0, err
	}
	byStamp := make(map[string]string)
	for _, rel := range files {
		if path.Base(storage.Dir(rel)) != attachmentsDir || !exportedExts[strings.ToLower(path.Ext(rel))] {
			continue
		}
		base := path.Base(rel)
		if m := timestampRe.FindString(strings.TrimSuffix(base, path.Ext(base))); m != "" {
			byStamp[m] = base
		}
	}
	if len(byStamp) == 0 {
		return 0, nil
	}

	re := exportedLinkRe(prefix)
	metas, err := store.List("")
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, m := range metas {
		data, err := store.ReadNote(m.Path)
		if err != nil {
			logger.Warn("exported: skipping note", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		content := re.ReplaceAllStringFunc(string(data), func(link string) string {
			stamp := re.FindStringSubmatch(link)[1]
			if file, ok := byStamp[stamp]; ok {
				return "![[" + file + "]]"
			}
			return link
		})
		if content == string(data) {
			continue
		}
		if err := store.Write(m.Path, []byte(content)); err != nil {
			logger.Warn("exported: write failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		updated++
		logger.Info("exported: fixed links", slog.String("path", m.Path))
	}
	return updated, nil
}
