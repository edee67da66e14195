package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/testutil"
)

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
}

func TestRun_MissingRoot(t *testing.T) {
	err := Run(context.Background(),
		WithConfig(NewDefaultConfig()),
		WithRoot(filepath.Join(t.TempDir(), "nope")),
		WithOutput(io.Discard, io.Discard),
	)
	if !errors.Is(err, apperr.ErrRootNotFound) {
		t.Fatalf("err = %v, want ErrRootNotFound", err)
	}
}

func TestRun_JSONReport(t *testing.T) {
	store := testutil.Tree(t, map[string]string{"A Note.md": "[[Other Note]]\n"})
	var out bytes.Buffer

	err := Run(context.Background(),
		WithConfig(NewDefaultConfig()),
		WithRoot(store.Root()),
		WithOutput(&out, io.Discard),
		WithJSON(true),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var report struct {
		Notes    int               `json:"notes"`
		Renamed  map[string]string `json:"renamed"`
		Modified []string          `json:"modified"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if report.Notes != 1 || report.Renamed["A Note.md"] != "A-Note.md" || len(report.Modified) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRun_RecordsLedgerAndReports(t *testing.T) {
	store := testutil.Tree(t, map[string]string{"n.md": "![[ghost.png]]\n"})
	cfg := NewDefaultConfig()
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "runs.db")

	if err := Run(context.Background(), WithConfig(cfg), WithRoot(store.Root()), WithOutput(io.Discard, io.Discard)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var hist bytes.Buffer
	if err := History(context.Background(), WithConfig(cfg), WithOutput(&hist, io.Discard), WithLimit(5)); err != nil {
		t.Fatalf("History: %v", err)
	}
	if !strings.Contains(hist.String(), "missing=1") {
		t.Errorf("history output:\n%s", hist.String())
	}

	var rep bytes.Buffer
	if err := Report(context.Background(), WithConfig(cfg), WithOutput(&rep, io.Discard)); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(rep.String(), "ghost.png") {
		t.Errorf("report output:\n%s", rep.String())
	}
}

func TestHistory_RequiresLedgerPath(t *testing.T) {
	err := History(context.Background(), WithConfig(NewDefaultConfig()), WithOutput(io.Discard, io.Discard))
	if err == nil {
		t.Fatal("History without ledger path should fail")
	}
}

func TestPublish_RequiresVault(t *testing.T) {
	err := Publish(context.Background(), WithConfig(NewDefaultConfig()), WithOutput(io.Discard, io.Discard))
	if err == nil {
		t.Fatal("Publish without vault should fail")
	}
}

func TestPublish_WritesNotes(t *testing.T) {
	vault := testutil.Tree(t, map[string]string{"My Note.md": "hello\n"})
	site := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Publish.Vault = vault.Root()
	cfg.Publish.NotesDir = filepath.Join(site, "_notes")
	cfg.Publish.AssetsDir = filepath.Join(site, "assets", "images")

	var out bytes.Buffer
	if err := Publish(context.Background(), WithConfig(cfg), WithOutput(&out, io.Discard)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	snap := testutil.Snapshot(t, site)
	if _, ok := snap["_notes/my-note.md"]; !ok {
		t.Errorf("published files = %v", snap)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	store := testutil.Tree(t, map[string]string{"a.md": "a"})
	cfg := NewDefaultConfig()
	cfg.Watch.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, WithConfig(cfg), WithRoot(store.Root()), WithOutput(io.Discard, io.Discard))
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
