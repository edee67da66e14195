// Package transform holds the pure text passes applied to every note.
//
// Each pass is idempotent: applying it to its own output changes nothing.
// Apply runs them in the fixed pipeline order, whitespace first so that the
// link passes never see non-breaking spaces inside targets.
package transform
