// Package apperr defines the sentinel errors shared across pipeline stages.
package apperr

import "errors"

var (
	// ErrRootNotFound means the content root is missing or not a directory. Fatal.
	ErrRootNotFound = errors.New("content root not found")
	// ErrUndecodable marks a note that is not valid UTF-8. The note is skipped.
	ErrUndecodable = errors.New("undecodable note")
	// ErrAlreadyExists is returned when a rename or move would overwrite an entry.
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)
