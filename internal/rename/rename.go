// Package rename normalizes entry names under the content root so that no
// file or directory name contains a space.
package rename

import (
	"errors"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/models"
	"github.com/starford/vaultprep/internal/storage"
)

// Normalize renames every entry whose name contains a space, replacing the
// spaces with dashes. Entries are processed deepest-first so that renaming a
// directory never invalidates a pending child path. An entry whose target
// name already exists is left untouched.
//
// The returned map holds one entry per rename, keyed by the old relative path
// as it was when the rename happened.
func Normalize(store storage.Provider, logger *slog.Logger) (models.RenameMap, error) {
	entries, err := store.Entries("")
	if err != nil {
		return nil, err
	}
	sortDeepestFirst(entries)

	renames := make(models.RenameMap)
	for _, rel := range entries {
		name := path.Base(rel)
		if !strings.Contains(name, " ") {
			continue
		}
		target := storage.Join(storage.Dir(rel), DashName(name))

		if err := store.Move(rel, target); err != nil {
			if errors.Is(err, apperr.ErrAlreadyExists) {
				logger.Warn("rename: target exists, skipped",
					slog.String("path", rel), slog.String("target", target))
				continue
			}
			logger.Warn("rename: failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		renames[rel] = target
		logger.Debug("rename: renamed", slog.String("from", rel), slog.String("to", target))
	}
	return renames, nil
}

// DashName replaces every space in name with a dash.
func DashName(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

func depth(rel string) int {
	return strings.Count(rel, "/")
}

// sortDeepestFirst orders entries by descending depth, then lexically.
func sortDeepestFirst(entries []string) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := depth(entries[i]), depth(entries[j])
		if di != dj {
			return di > dj
		}
		return entries[i] < entries[j]
	})
}
