// Package storage defines the content-tree file-system abstraction.
package storage

import "github.com/starford/vaultprep/internal/models"

// Provider is the interface for content tree file operations.
// All paths are relative to the root and use forward slashes.
type Provider interface {
	// Root returns the absolute path of the content root.
	Root() string
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.NoteMetadata, error)
	// Entries returns every file and directory under dir, excluding dir itself.
	Entries(dir string) ([]string, error)
	// Files returns every regular file under dir.
	Files(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// ReadNote reads path and rejects content that is not valid UTF-8.
	ReadNote(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Exists reports whether path exists (without following a final symlink).
	Exists(path string) bool
	// Delete removes the file or empty directory at path.
	Delete(path string) error
	// Move renames oldPath to newPath, refusing to overwrite.
	Move(oldPath, newPath string) error
	// Copy duplicates src to dst, refusing to overwrite.
	Copy(src, dst string) error
}
