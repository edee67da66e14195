package assets

import (
	"errors"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/checksum"
	"github.com/starford/vaultprep/internal/models"
	"github.com/starford/vaultprep/internal/parser"
	"github.com/starford/vaultprep/internal/storage"
)

// Result is the outcome of one reconciliation pass. Identical lists sources
// left in place because the destination already holds the same bytes.
type Result struct {
	Moved      []models.AssetMove
	Copied     []models.AssetMove
	Duplicates []models.AssetIssue
	Identical  []models.AssetIssue
	Missing    []models.AssetIssue
	Skipped    []string
}

type noteRefs struct {
	path     string
	expected string
	names    []string
}

// Reconcile makes every embedded asset available in the attachments dir of
// the note that embeds it. Assets found elsewhere are moved in, or copied when
// their current directory is itself expected by another note embedding them.
// Link text is never rewritten.
func Reconcile(store storage.Provider, logger *slog.Logger) (*Result, error) {
	idx, err := BuildIndex(store)
	if err != nil {
		return nil, err
	}
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var notes []noteRefs
	// claims: attachments dir → lowercase names some note there expects.
	claims := make(map[string]map[string]bool)

	for _, m := range metas {
		data, err := store.ReadNote(m.Path)
		if err != nil {
			logger.Warn("assets: skipping note", slog.String("path", m.Path), slog.String("error", err.Error()))
			res.Skipped = append(res.Skipped, m.Path)
			continue
		}
		nr := noteRefs{path: m.Path, expected: storage.Join(storage.Dir(m.Path), DirName)}
		for _, name := range parser.Embeds(string(data)) {
			if !parser.IsAssetName(name) {
				continue
			}
			nr.names = append(nr.names, name)
			if claims[nr.expected] == nil {
				claims[nr.expected] = make(map[string]bool)
			}
			claims[nr.expected][strings.ToLower(name)] = true
			claims[nr.expected][strings.ToLower(dashed(name))] = true
		}
		if len(nr.names) > 0 {
			notes = append(notes, nr)
		}
	}

	reported := make(map[models.AssetIssue]bool)
	for _, nr := range notes {
		for _, name := range nr.names {
			reconcileOne(store, idx, claims, nr, name, res, reported, logger)
		}
	}
	return res, nil
}

func reconcileOne(
	store storage.Provider,
	idx *Index,
	claims map[string]map[string]bool,
	nr noteRefs,
	name string,
	res *Result,
	reported map[models.AssetIssue]bool,
	logger *slog.Logger,
) {
	norm := dashed(name)
	if store.Exists(storage.Join(nr.expected, norm)) || store.Exists(storage.Join(nr.expected, name)) {
		return
	}

	found, ok := idx.Lookup(norm, name)
	if !ok || !store.Exists(found) {
		issue := models.AssetIssue{Asset: name, Page: nr.path}
		if !reported[issue] {
			reported[issue] = true
			res.Missing = append(res.Missing, issue)
			logger.Debug("assets: missing", slog.String("asset", name), slog.String("page", nr.path))
		}
		return
	}

	srcDir := storage.Dir(found)
	if srcDir == nr.expected {
		// Present under a different letter case.
		return
	}

	base := path.Base(found)
	dest := storage.Join(nr.expected, base)
	move := models.AssetMove{Name: base, From: found, To: dest}

	if claims[srcDir][strings.ToLower(base)] {
		if err := store.Copy(found, dest); err != nil {
			duplicateOrWarn(store, err, name, nr.path, found, dest, res, logger)
			return
		}
		res.Copied = append(res.Copied, move)
		logger.Info("assets: copied", slog.String("asset", base), slog.String("from", srcDir), slog.String("to", nr.expected))
		return
	}

	if err := store.Move(found, dest); err != nil {
		duplicateOrWarn(store, err, name, nr.path, found, dest, res, logger)
		return
	}
	idx.Relocate(found, dest)
	res.Moved = append(res.Moved, move)
	logger.Info("assets: moved", slog.String("asset", base), slog.String("from", srcDir), slog.String("to", nr.expected))
}

// duplicateOrWarn records a relocation that hit an existing destination.
// Same-content destinations go to Identical rather than Duplicates.
func duplicateOrWarn(store storage.Provider, err error, name, page, found, dest string, res *Result, logger *slog.Logger) {
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		logger.Warn("assets: relocation failed", slog.String("asset", name), slog.String("page", page), slog.String("error", err.Error()))
		return
	}
	same, sumErr := checksum.Same(
		filepath.Join(store.Root(), filepath.FromSlash(found)),
		filepath.Join(store.Root(), filepath.FromSlash(dest)),
	)
	if sumErr == nil && same {
		res.Identical = append(res.Identical, models.AssetIssue{Asset: name, Page: page, Location: found})
		logger.Info("assets: identical copy already present, left in place",
			slog.String("asset", name), slog.String("page", page), slog.String("source", found))
		return
	}
	res.Duplicates = append(res.Duplicates, models.AssetIssue{Asset: name, Page: page, Location: found})
	logger.Warn("assets: duplicate at destination, left in place",
		slog.String("asset", name), slog.String("page", page), slog.String("source", found))
}

func dashed(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}
