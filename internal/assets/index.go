// Package assets reconciles embedded attachments with the attachments
// directory of the section that references them.
package assets

import (
	"path"
	"strings"

	"github.com/starford/vaultprep/internal/storage"
)

// DirName is the directory name that holds a section's attachments.
const DirName = "attachments"

// Index maps a lowercase file name to the relative path of the attachment.
// When two attachments share a name the later one in walk order wins.
type Index struct {
	byName map[string]string
}

// BuildIndex scans every attachments directory under the root.
// Only files directly inside an attachments directory are indexed.
func BuildIndex(store storage.Provider) (*Index, error) {
	files, err := store.Files("")
	if err != nil {
		return nil, err
	}
	idx := &Index{byName: make(map[string]string)}
	for _, rel := range files {
		if InAttachments(rel) {
			idx.Set(rel)
		}
	}
	return idx, nil
}

// InAttachments reports whether rel sits directly inside an attachments dir.
func InAttachments(rel string) bool {
	return path.Base(storage.Dir(rel)) == DirName
}

// Lookup returns the first hit among the candidate names.
func (i *Index) Lookup(names ...string) (string, bool) {
	for _, n := range names {
		if rel, ok := i.byName[strings.ToLower(n)]; ok {
			return rel, true
		}
	}
	return "", false
}

// Set records rel under its lowercase base name.
func (i *Index) Set(rel string) {
	i.byName[strings.ToLower(path.Base(rel))] = rel
}

// Relocate replaces the entry for from with to.
func (i *Index) Relocate(from, to string) {
	delete(i.byName, strings.ToLower(path.Base(from)))
	i.Set(to)
}

// Len returns the number of indexed names.
func (i *Index) Len() int { return len(i.byName) }
