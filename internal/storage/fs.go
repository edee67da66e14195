package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the content root
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: %w: %s", apperr.ErrRootNotFound, abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: %w: not a directory: %s", apperr.ErrRootNotFound, abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content root.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" || rel == "." {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes content root: %s", rel)
	}
	return abs, nil
}

func (f *FS) rel(abs string) string {
	r, err := filepath.Rel(f.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(r)
}

// walkSkip keeps a walk going past an unreadable entry. Only a failure on
// the walk root itself is fatal.
func walkSkip(base, p string, d fs.DirEntry, walkErr error) error {
	if p == base {
		return walkErr
	}
	if d != nil && d.IsDir() {
		return fs.SkipDir
	}
	return nil
}

// List walks dir and returns every .md file in lexical order. Files are not
// opened.
func (f *FS) List(dir string) ([]models.NoteMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.NoteMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkSkip(base, p, d, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		out = append(out, models.NoteMetadata{Path: f.rel(p)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Entries returns every entry under dir in lexical walk order.
func (f *FS) Entries(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkSkip(base, p, d, walkErr)
		}
		if p == base {
			return nil
		}
		out = append(out, f.rel(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: entries: %w", err)
	}
	return out, nil
}

// Files returns every regular file under dir in lexical walk order.
func (f *FS) Files(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkSkip(base, p, d, walkErr)
		}
		if d.Type().IsRegular() {
			out = append(out, f.rel(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: files: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// ReadNote is Read plus a UTF-8 validity check.
func (f *FS) ReadNote(path string) ([]byte, error) {
	data, err := f.Read(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("storage: %w: %s", apperr.ErrUndecodable, path)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
// The existing file mode is preserved.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	perm := fs.FileMode(0o644)
	if info, statErr := os.Stat(abs); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".vaultprep-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Exists reports whether path exists.
func (f *FS) Exists(path string) bool {
	abs, err := f.safePath(path)
	if err != nil {
		return false
	}
	_, err = os.Lstat(abs)
	return err == nil
}

// Delete removes a file or empty directory.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("storage: refusing to delete content root")
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a file or directory. The destination must not exist.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(absNew); err == nil {
		return fmt.Errorf("storage: move %s: %w: %s", oldPath, apperr.ErrAlreadyExists, newPath)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Copy duplicates a regular file. The destination must not exist.
func (f *FS) Copy(src, dst string) error {
	absSrc, err := f.safePath(src)
	if err != nil {
		return err
	}
	absDst, err := f.safePath(dst)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(absDst); err == nil {
		return fmt.Errorf("storage: copy %s: %w: %s", src, apperr.ErrAlreadyExists, dst)
	}
	return CopyFile(absSrc, absDst)
}

// CopyFile copies src to dst on disk, creating parent directories and
// preserving the source mode and modification time.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for copy: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("storage: copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// Join joins slash-separated relative path elements.
func Join(elem ...string) string {
	return strings.TrimPrefix(path.Join(elem...), "./")
}

// Dir returns the parent of a relative path, "" for root-level entries.
func Dir(rel string) string {
	d := path.Dir(rel)
	if d == "." {
		return ""
	}
	return d
}
