package models

// AssetMove records an attachment relocated (or copied) into a section.
type AssetMove struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// AssetIssue is an embed reference the reconciler could not satisfy.
type AssetIssue struct {
	Asset string `json:"asset"`
	Page  string `json:"page"`
	// Location is the file left in place for duplicates and identical
	// copies; empty for missing assets.
	Location string `json:"location,omitempty"`
}

// PrepareReport counts the optional prepare-step actions.
type PrepareReport struct {
	Flattened     int `json:"flattened"`
	Pruned        int `json:"pruned"`
	Relocated     int `json:"relocated"`
	RelinkedNotes int `json:"relinked_notes"`
	FixedLinks    int `json:"fixed_links"`
}

// RunReport summarizes one pipeline execution.
type RunReport struct {
	Root       string        `json:"root"`
	Notes      int           `json:"notes"`
	Renamed    RenameMap     `json:"renamed"`
	Modified   []string      `json:"modified"`
	Skipped    []string      `json:"skipped"`
	Moved      []AssetMove   `json:"moved"`
	Copied     []AssetMove   `json:"copied"`
	Duplicates []AssetIssue  `json:"duplicates"`
	Identical  []AssetIssue  `json:"identical"`
	Missing    []AssetIssue  `json:"missing"`
	Prepare    PrepareReport `json:"prepare"`
}

// Changed reports whether the run touched the filesystem.
func (r *RunReport) Changed() bool {
	p := r.Prepare
	return len(r.Renamed) > 0 || len(r.Modified) > 0 || len(r.Moved) > 0 || len(r.Copied) > 0 ||
		p.Flattened > 0 || p.Pruned > 0 || p.Relocated > 0 || p.RelinkedNotes > 0 || p.FixedLinks > 0
}
