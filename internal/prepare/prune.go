package prepare

import (
	"log/slog"
	"path"
	"strings"

	"github.com/starford/vaultprep/internal/storage"
)

// Prune deletes every file whose extension (case-insensitive) is listed.
func Prune(store storage.Provider, exts []string, logger *slog.Logger) ([]string, error) {
	if len(exts) == 0 {
		return nil, nil
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	files, err := store.Files("")
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, rel := range files {
		if !want[strings.ToLower(path.Ext(rel))] {
			continue
		}
		if err := store.Delete(rel); err != nil {
			logger.Warn("prune: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		deleted = append(deleted, rel)
		logger.Info("prune: deleted", slog.String("path", rel))
	}
	return deleted, nil
}
