package prepare

import (
	"log/slog"

	"github.com/starford/vaultprep/internal/storage"
)

// Flatten moves every direct child of rule.Dir/rule.Nested into rule.Dir.
// Children whose name already exists in rule.Dir are skipped. The nested
// directory is removed once empty. Returns the number of moved entries.
func Flatten(store storage.Provider, rule FlattenRule, logger *slog.Logger) (int, error) {
	nested := storage.Join(rule.Dir, rule.Nested)
	if !store.Exists(nested) {
		logger.Debug("flatten: nested dir not found", slog.String("path", nested))
		return 0, nil
	}

	entries, err := store.Entries(nested)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, rel := range entries {
		if storage.Dir(rel) != nested {
			continue
		}
		dest := storage.Join(rule.Dir, rel[len(nested)+1:])
		if store.Exists(dest) {
			logger.Warn("flatten: destination exists, skipped", slog.String("path", rel), slog.String("dest", dest))
			continue
		}
		if err := store.Move(rel, dest); err != nil {
			logger.Warn("flatten: move failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		moved++
		logger.Info("flatten: moved", slog.String("from", rel), slog.String("to", dest))
	}

	if rest, err := store.Entries(nested); err == nil && len(rest) == 0 {
		if err := store.Delete(nested); err == nil {
			logger.Info("flatten: removed empty dir", slog.String("path", nested))
		}
	}
	return moved, nil
}
