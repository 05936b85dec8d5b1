package ui

import (
	"fmt"
	"io"

	"github.com/starford/inkwell/internal/attachfmt"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/orphan"
	"github.com/starford/inkwell/internal/refs"
)

// PrintIngest writes one line per draft followed by a summary.
func PrintIngest(w io.Writer, rep ingest.Report) {
	for _, r := range rep.Results {
		switch r.State {
		case ingest.StateCommitted:
			fmt.Fprintf(w, "%s %s -> %s\n", SymbolSuccess, Path(r.Draft), Path(r.Output))
		case ingest.StatePreviewed:
			fmt.Fprintf(w, "%s %s -> %s %s\n", SymbolPreview, Path(r.Draft), Path(r.Output), Hint("(dry run)"))
		case ingest.StateFailed:
			fmt.Fprintf(w, "%s %s %s %s\n", SymbolError, Path(r.Draft), Hint("["+string(r.Stage)+"]"), r.Reason)
			continue
		}
		if len(r.Topics) > 0 {
			fmt.Fprintf(w, "    %s %v\n", Hint("topics"), r.Topics)
		}
		for _, m := range r.Moves {
			fmt.Fprintf(w, "    %s %s -> %s\n", Hint("move"), m.From, Path(m.Name))
		}
		for _, m := range r.Missing {
			fmt.Fprintf(w, "    %s missing attachment %s\n", SymbolWarning, m)
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "    %s %s\n", SymbolWarning, warn)
		}
	}
	fmt.Fprintf(w, "%s %s, %s, %s\n", Header("ingest:"),
		Count(rep.Count(ingest.StateCommitted), "committed", "committed"),
		Count(rep.Count(ingest.StatePreviewed), "previewed", "previewed"),
		Count(rep.Count(ingest.StateFailed), "failed", "failed"))
}

// PrintReferences lists every occurrence of name in grep style.
func PrintReferences(w io.Writer, name string, res refs.ScanResult) {
	fmt.Fprintf(w, "%s %s\n", Header("references to"), Path(name))
	for _, r := range res.Refs {
		fmt.Fprintf(w, "  %s:%s %s\n", Path(r.Document), LineNum(r.Line), r.Text)
	}
	for _, err := range res.Errors {
		fmt.Fprintf(w, "  %s %v\n", SymbolError, err)
	}
	fmt.Fprintf(w, "%s in %s\n", Count(len(res.Refs), "reference", "references"), Count(len(res.Documents()), "document", "documents"))
}

// PrintOrphans lists the orphan set.
func PrintOrphans(w io.Writer, rep orphan.Report) {
	for _, n := range rep.Orphans {
		fmt.Fprintf(w, "  %s\n", Path(n))
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(w, "  %s %s\n", SymbolError, e)
	}
	fmt.Fprintf(w, "%s %s\n", Header("orphans:"), Count(len(rep.Orphans), "attachment", "attachments"))
}

// PrintDeleted reports a deletion pass.
func PrintDeleted(w io.Writer, rep orphan.DeleteReport) {
	for _, n := range rep.Deleted {
		fmt.Fprintf(w, "%s deleted %s\n", SymbolSuccess, Path(n))
	}
	for _, f := range rep.Failed {
		fmt.Fprintf(w, "%s %s\n", SymbolError, f)
	}
}

// PrintFormat writes one line per attachment considered by a formatting pass.
func PrintFormat(w io.Writer, rep attachfmt.Report) {
	renamed := 0
	for _, it := range rep.Items {
		switch it.State {
		case attachfmt.StateRenamed, attachfmt.StatePlanned:
			renamed++
			sym := SymbolSuccess
			if it.State == attachfmt.StatePlanned {
				sym = SymbolPreview
			}
			fmt.Fprintf(w, "%s %s -> %s %s\n", sym, Path(it.Name), Path(it.NewName), Hint("from "+it.Source))
			for _, d := range it.Documents {
				if d.Err != nil {
					fmt.Fprintf(w, "    %s %s: %v\n", SymbolWarning, d.Path, d.Err)
				}
			}
		case attachfmt.StateSkipped:
			fmt.Fprintf(w, "%s %s %s\n", SymbolPreview, Path(it.Name), Hint("skipped: "+it.Reason))
		case attachfmt.StateFailed:
			fmt.Fprintf(w, "%s %s %s\n", SymbolError, Path(it.Name), it.Reason)
		}
	}
	verb := "renamed"
	if rep.DryRun {
		verb = "planned"
	}
	fmt.Fprintf(w, "%s %d %s, %d considered\n", Header("format:"), renamed, verb, len(rep.Items))
}
