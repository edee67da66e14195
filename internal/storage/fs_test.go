package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vaultprep/internal/apperr"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWritePreservesMode(t *testing.T) {
	s := tempRoot(t)
	p := filepath.Join(s.Root(), "private.md")
	if err := os.WriteFile(p, []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}
	_ = os.Chmod(p, 0o600)
	if err := s.Write("private.md", []byte("b")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestReadNote_RejectsInvalidUTF8(t *testing.T) {
	s := tempRoot(t)
	_ = os.WriteFile(filepath.Join(s.Root(), "bad.md"), []byte{0xff, 0xfe, 'a'}, 0o644)

	_, err := s.ReadNote("bad.md")
	if !errors.Is(err, apperr.ErrUndecodable) {
		t.Fatalf("err = %v, want ErrUndecodable", err)
	}
}

func TestMove(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "sub/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if s.Exists("old.md") {
		t.Error("old path should not exist")
	}
}

func TestMove_RefusesOverwrite(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("b.md", []byte("b"))

	err := s.Move("a.md", "b.md")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	got, _ := s.Read("b.md")
	if string(got) != "b" {
		t.Errorf("destination was overwritten: %q", got)
	}
}

func TestCopy(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a/pic.png", []byte("png"))
	if err := s.Copy("a/pic.png", "b/attachments/pic.png"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if !s.Exists("a/pic.png") || !s.Exists("b/attachments/pic.png") {
		t.Error("copy should leave source and create destination")
	}
	if err := s.Copy("a/pic.png", "b/attachments/pic.png"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second copy err = %v, want ErrAlreadyExists", err)
	}
}

func TestListAndEntries(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("sub/attachments/c.png", []byte("c"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Path != "a.md" || items[1].Path != "sub/b.md" {
		t.Errorf("List = %+v", items)
	}

	entries, err := s.Entries("")
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	want := []string{"a.md", "sub", "sub/attachments", "sub/attachments/c.png", "sub/b.md"}
	if len(entries) != len(want) {
		t.Fatalf("Entries = %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("Entries[%d] = %q, want %q", i, entries[i], want[i])
		}
	}
}

func TestList_DoesNotReadNotes(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("A/note.md", []byte("ok"))
	if err := os.Symlink(filepath.Join(s.Root(), "A", "gone.md"), filepath.Join(s.Root(), "A", "broken.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Path != "A/broken.md" || items[1].Path != "A/note.md" {
		t.Errorf("List = %+v", items)
	}
	if _, err := s.ReadNote("A/broken.md"); err == nil {
		t.Error("expected ReadNote to fail on a dangling link")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("atomic.md", []byte("original"))
	if err := s.Write("atomic.md", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".vaultprep-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, apperr.ErrRootNotFound) {
		t.Errorf("err = %v, want ErrRootNotFound", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(p, nil, 0o644)
	if _, err := NewFS(p); !errors.Is(err, apperr.ErrRootNotFound) {
		t.Errorf("err = %v, want ErrRootNotFound", err)
	}
}

func TestJoinAndDir(t *testing.T) {
	if got := Join("", "attachments"); got != "attachments" {
		t.Errorf("Join = %q", got)
	}
	if got := Join("a/b", "attachments", "x.png"); got != "a/b/attachments/x.png" {
		t.Errorf("Join = %q", got)
	}
	if got := Dir("note.md"); got != "" {
		t.Errorf("Dir(root file) = %q, want empty", got)
	}
	if got := Dir("a/b/note.md"); got != "a/b" {
		t.Errorf("Dir = %q", got)
	}
}
