package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/models"
)

type event struct {
	kind, path, detail, location string
}

func events(r *models.RunReport) []event {
	var out []event
	for _, from := range r.Renamed.Keys() {
		out = append(out, event{KindRename, from, r.Renamed[from], ""})
	}
	for _, p := range r.Modified {
		out = append(out, event{KindModify, p, "", ""})
	}
	for _, p := range r.Skipped {
		out = append(out, event{KindSkip, p, "", ""})
	}
	for _, m := range r.Moved {
		out = append(out, event{KindMove, m.Name, m.From, m.To})
	}
	for _, m := range r.Copied {
		out = append(out, event{KindCopy, m.Name, m.From, m.To})
	}
	for _, d := range r.Duplicates {
		out = append(out, event{KindDuplicate, d.Page, d.Asset, d.Location})
	}
	for _, d := range r.Identical {
		out = append(out, event{KindIdentical, d.Page, d.Asset, d.Location})
	}
	for _, m := range r.Missing {
		out = append(out, event{KindMissing, m.Page, m.Asset, ""})
	}
	return out
}

// Record stores report as a new run and returns its id.
func (db *DB) Record(report *models.RunReport, started, finished time.Time) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO runs (id, root, started_at, finished_at, notes, renamed, modified, moved, copied, duplicates, missing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, report.Root, started.UTC(), finished.UTC(), report.Notes, len(report.Renamed), len(report.Modified),
		len(report.Moved), len(report.Copied), len(report.Duplicates), len(report.Missing))
	if err != nil {
		return "", fmt.Errorf("ledger: insert run: %w", err)
	}

	if evs := events(report); len(evs) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO events (run_id, seq, kind, path, detail, location) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("ledger: prepare event insert: %w", err)
		}
		defer stmt.Close()
		for i, ev := range evs {
			if _, err := stmt.Exec(id, i, ev.kind, ev.path, ev.detail, ev.location); err != nil {
				return "", fmt.Errorf("ledger: insert event: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("ledger: commit: %w", err)
	}
	return id, nil
}

const runColumns = `id, root, started_at, finished_at, notes, renamed, modified, moved, copied, duplicates, missing`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	err := s.Scan(&r.ID, &r.Root, &r.StartedAt, &r.FinishedAt, &r.Notes, &r.Renamed,
		&r.Modified, &r.Moved, &r.Copied, &r.Duplicates, &r.Missing)
	return r, err
}

// Runs returns up to limit runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestIssues returns the newest run with its duplicate and missing assets.
// It returns apperr.ErrNotFound when no run has been recorded.
func (db *DB) LatestIssues() (*Run, []models.AssetIssue, []models.AssetIssue, error) {
	r, err := scanRun(db.conn.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ledger: latest run: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT kind, path, detail, location FROM events
		WHERE run_id = ? AND kind IN (?, ?)
		ORDER BY seq
	`, r.ID, KindDuplicate, KindMissing)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ledger: issues: %w", err)
	}
	defer rows.Close()

	var dups, missing []models.AssetIssue
	for rows.Next() {
		var kind string
		var issue models.AssetIssue
		if err := rows.Scan(&kind, &issue.Page, &issue.Asset, &issue.Location); err != nil {
			return nil, nil, nil, err
		}
		if kind == KindMissing {
			missing = append(missing, issue)
		} else {
			dups = append(dups, issue)
		}
	}
	return &r, dups, missing, rows.Err()
}
