package output

import (
	"fmt"
	"time"

	"github.com/starford/vaultprep/internal/ledger"
	"github.com/starford/vaultprep/internal/models"
	"github.com/starford/vaultprep/internal/publish"
)

// Report renders the summary of one pipeline run.
func (p *Printer) Report(r *models.RunReport) error {
	if p.json {
		return p.WriteJSON(r)
	}

	p.Section("vaultprep " + r.Root)
	p.KeyValue("notes", r.Notes)
	p.KeyValue("renamed", len(r.Renamed))
	p.KeyValue("modified", len(r.Modified))
	p.KeyValue("assets moved", len(r.Moved))
	p.KeyValue("assets copied", len(r.Copied))
	if len(r.Skipped) > 0 {
		p.KeyValue("skipped", len(r.Skipped))
	}
	if pr := r.Prepare; pr != (models.PrepareReport{}) {
		p.KeyValue("prepare", fmt.Sprintf("flattened=%d pruned=%d relocated=%d relinked=%d fixed=%d",
			pr.Flattened, pr.Pruned, pr.Relocated, pr.RelinkedNotes, pr.FixedLinks))
	}

	p.Issues(r.Duplicates, r.Missing)
	if len(r.Identical) > 0 {
		p.Section(fmt.Sprintf("Identical copies left in place (%d)", len(r.Identical)))
		for _, d := range r.Identical {
			p.printf("%s %s  %s\n", p.styles.Muted.Render("="), d.Asset, p.styles.Muted.Render(d.Page+" -> "+d.Location))
		}
	}
	if !r.Changed() {
		p.println(p.styles.Muted.Render("nothing to do"))
	} else {
		p.println(p.styles.Success.Render("done"))
	}
	return nil
}

// Issues lists duplicate and missing assets.
func (p *Printer) Issues(dups, missing []models.AssetIssue) {
	if len(dups) > 0 {
		p.Section(fmt.Sprintf("Duplicate assets (%d)", len(dups)))
		for _, d := range dups {
			p.printf("%s %s  %s\n", p.styles.Warning.Render("!"), d.Asset, p.styles.Muted.Render(d.Page+" -> "+d.Location))
		}
	}
	if len(missing) > 0 {
		p.Section(fmt.Sprintf("Missing assets (%d)", len(missing)))
		for _, m := range missing {
			p.printf("%s %s  %s\n", p.styles.Error.Render("x"), m.Asset, p.styles.Muted.Render(m.Page))
		}
	}
}

// Runs renders a run history table.
func (p *Printer) Runs(runs []ledger.Run) error {
	if p.json {
		return p.WriteJSON(runs)
	}
	if len(runs) == 0 {
		p.println(p.styles.Muted.Render("no runs recorded"))
		return nil
	}
	p.Section("Runs")
	for _, r := range runs {
		p.printf("%s  %s  %s  notes=%d renamed=%d modified=%d moved=%d copied=%d missing=%d\n",
			p.styles.Key.Render(shortID(r.ID)), r.StartedAt.Local().Format(time.DateTime), r.Root,
			r.Notes, r.Renamed, r.Modified, r.Moved, r.Copied, r.Missing)
	}
	return nil
}

// LatestIssues renders the issues of the newest recorded run.
func (p *Printer) LatestIssues(run *ledger.Run, dups, missing []models.AssetIssue) error {
	if p.json {
		return p.WriteJSON(map[string]any{"run": run, "duplicates": dups, "missing": missing})
	}
	p.KeyValue("run", run.ID)
	p.KeyValue("finished", run.FinishedAt.Local().Format(time.DateTime))
	if len(dups) == 0 && len(missing) == 0 {
		p.println(p.styles.Success.Render("no asset issues"))
		return nil
	}
	p.Issues(dups, missing)
	return nil
}

// Published renders the result of a publish run.
func (p *Printer) Published(res *publish.Result) error {
	if p.json {
		return p.WriteJSON(res)
	}
	p.Section("Published")
	for _, n := range res.Notes {
		p.printf("%s %s\n", p.styles.Success.Render("✓"), n)
	}
	p.KeyValue("notes", len(res.Notes))
	p.KeyValue("assets", len(res.Assets))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
