// Package models defines the domain types shared by the pipeline stages.
package models

import "sort"

// NoteMetadata is the lightweight listing returned by storage walks.
type NoteMetadata struct {
	Path string `json:"path"`
}

// RenameMap maps an original relative path to its renamed relative path.
// Only entries that were actually renamed are present.
type RenameMap map[string]string

// Keys returns the original paths in lexical order.
func (m RenameMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
