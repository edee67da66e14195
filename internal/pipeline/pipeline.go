// Package pipeline runs the vault preprocessing stages in order: optional
// prepare steps, path normalization, per-note text passes, the
// exported-image link fixer and asset reconciliation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/assets"
	"github.com/starford/vaultprep/internal/models"
	"github.com/starford/vaultprep/internal/prepare"
	"github.com/starford/vaultprep/internal/rename"
	"github.com/starford/vaultprep/internal/storage"
	"github.com/starford/vaultprep/internal/transform"
)

// Options configures a run. The zero value runs only the core stages.
type Options struct {
	Prepare prepare.Options
}

// Run executes every stage against store. ctx is checked between stages; a
// cancelled run leaves a tree that is safe to process again.
func Run(ctx context.Context, store storage.Provider, opts Options, logger *slog.Logger) (*models.RunReport, error) {
	report := &models.RunReport{Root: store.Root()}

	if opts.Prepare.Enabled() {
		if err := runPrepare(store, opts.Prepare, &report.Prepare, logger); err != nil {
			return report, err
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	renames, err := rename.Normalize(store, logger)
	if err != nil {
		return report, err
	}
	report.Renamed = renames
	logger.Info("pipeline: names normalized", slog.Int("renamed", len(renames)))
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := rewriteNotes(store, renames, report, logger); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	// Must precede Reconcile: the embeds it writes are resolved there.
	if opts.Prepare.Exported.Enabled {
		fixed, err := prepare.FixExportedLinks(store, opts.Prepare.Exported.Prefix, logger)
		if err != nil {
			return report, err
		}
		report.Prepare.FixedLinks = fixed
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	res, err := assets.Reconcile(store, logger)
	if err != nil {
		return report, err
	}
	report.Moved = res.Moved
	report.Copied = res.Copied
	report.Duplicates = res.Duplicates
	report.Identical = res.Identical
	report.Missing = res.Missing
	logger.Info("pipeline: assets reconciled",
		slog.Int("moved", len(res.Moved)),
		slog.Int("copied", len(res.Copied)),
		slog.Int("missing", len(res.Missing)))

	return report, nil
}

func runPrepare(store storage.Provider, opts prepare.Options, pr *models.PrepareReport, logger *slog.Logger) error {
	for _, rule := range opts.Flatten {
		n, err := prepare.Flatten(store, rule, logger)
		if err != nil {
			return err
		}
		pr.Flattened += n
	}
	deleted, err := prepare.Prune(store, opts.PruneExtensions, logger)
	if err != nil {
		return err
	}
	pr.Pruned = len(deleted)
	if opts.Exported.Enabled {
		relocated, relinked, err := prepare.RelocateExported(store, opts.Exported, logger)
		if err != nil {
			return err
		}
		pr.Relocated = relocated
		pr.RelinkedNotes = relinked
	}
	return nil
}

// rewriteNotes applies the fixed per-note pass order and writes back only
// notes whose content changed. Unreadable or undecodable notes are skipped.
func rewriteNotes(store storage.Provider, renames models.RenameMap, report *models.RunReport, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	report.Notes = len(metas)

	for _, m := range metas {
		data, err := store.ReadNote(m.Path)
		if err != nil {
			if errors.Is(err, apperr.ErrUndecodable) {
				logger.Warn("pipeline: skipping undecodable note", slog.String("path", m.Path))
			} else {
				logger.Warn("pipeline: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			}
			report.Skipped = append(report.Skipped, m.Path)
			continue
		}

		out, changed := transform.Apply(string(data), renames)
		if !changed {
			continue
		}
		if err := store.Write(m.Path, []byte(out)); err != nil {
			logger.Warn("pipeline: write failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		report.Modified = append(report.Modified, m.Path)
		logger.Debug("pipeline: note rewritten", slog.String("path", m.Path))
	}
	logger.Info("pipeline: notes rewritten",
		slog.Int("modified", len(report.Modified)),
		slog.Int("notes", report.Notes))
	return nil
}
