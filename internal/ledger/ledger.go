package ledger

import (
	"time"

	"github.com/starford/vaultprep/internal/apperr"
	"github.com/starford/vaultprep/internal/models"
)

// Event kinds stored per run.
const (
	KindRename    = "rename"
	KindModify    = "modify"
	KindSkip      = "skip"
	KindMove      = "move"
	KindCopy      = "copy"
	KindDuplicate = "duplicate"
	KindIdentical = "identical"
	KindMissing   = "missing"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Notes      int       `json:"notes"`
	Renamed    int       `json:"renamed"`
	Modified   int       `json:"modified"`
	Moved      int       `json:"moved"`
	Copied     int       `json:"copied"`
	Duplicates int       `json:"duplicates"`
	Missing    int       `json:"missing"`
}

// Recorder persists run reports. Consumers depend on this interface so the
// pipeline works the same with or without a database.
type Recorder interface {
	Record(report *models.RunReport, started, finished time.Time) (string, error)
	Runs(limit int) ([]Run, error)
	LatestIssues() (*Run, []models.AssetIssue, []models.AssetIssue, error)
	Close() error
}

// Verify *DB and Nop satisfy Recorder at compile time.
var (
	_ Recorder = (*DB)(nil)
	_ Recorder = Nop{}
)

// Nop is the Recorder used when no ledger path is configured.
type Nop struct{}

// Record discards the report.
func (Nop) Record(*models.RunReport, time.Time, time.Time) (string, error) {
	return "", nil
}

// Runs returns no runs.
func (Nop) Runs(int) ([]Run, error) {
	return nil, nil
}

// LatestIssues always reports apperr.ErrNotFound.
func (Nop) LatestIssues() (*Run, []models.AssetIssue, []models.AssetIssue, error) {
	return nil, nil, nil, apperr.ErrNotFound
}

// Close is a no-op.
func (Nop) Close() error {
	return nil
}

// New opens the ledger at path, or returns Nop when path is empty.
func New(path string) (Recorder, error) {
	if path == "" {
		return Nop{}, nil
	}
	return Open(path)
}
