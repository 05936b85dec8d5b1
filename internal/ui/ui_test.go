package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/inkwell/internal/attachfmt"
	"github.com/starford/inkwell/internal/ingest"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/orphan"
	"github.com/starford/inkwell/internal/refs"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		if got := Confirm(strings.NewReader(tt.in), &out, "Delete?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !strings.Contains(out.String(), "Delete?") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestPrintIngest(t *testing.T) {
	var b strings.Builder
	PrintIngest(&b, ingest.Report{Results: []ingest.Result{
		{Draft: "Drafts/plan.md", State: ingest.StateCommitted, Output: "References/健身计划.md",
			Topics: []string{"健身"}, Moves: []models.Move{{From: "Drafts/pic.png", Name: "健身计划-pic.png"}}},
		{Draft: "Drafts/x.md", State: ingest.StateFailed, Stage: ingest.StageRead, Reason: "unreadable"},
	}})
	out := b.String()
	for _, want := range []string{
		SymbolSuccess + " Drafts/plan.md -> References/健身计划.md",
		"Drafts/pic.png -> 健身计划-pic.png",
		SymbolError + " Drafts/x.md [read] unreadable",
		"1 committed, 0 previewed, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrintReferences(t *testing.T) {
	var b strings.Builder
	PrintReferences(&b, "pic.png", refs.ScanResult{Refs: []models.Reference{
		{Document: "References/a.md", Line: 3, Text: "![[pic.png]]", Target: "pic.png"},
		{Document: "References/a.md", Line: 5, Text: "![x](pic.png)", Target: "pic.png"},
	}})
	out := b.String()
	if !strings.Contains(out, "References/a.md:3: ![[pic.png]]") || !strings.Contains(out, "2 references in 1 document") {
		t.Errorf("output:\n%s", out)
	}
}

func TestPrintOrphansAndFormat(t *testing.T) {
	var b strings.Builder
	PrintOrphans(&b, orphan.Report{Orphans: []string{"lone.png"}})
	PrintDeleted(&b, orphan.DeleteReport{Deleted: []string{"lone.png"}})
	PrintFormat(&b, attachfmt.Report{DryRun: true, Items: []attachfmt.Item{
		{Name: "IMG_1.jpg", NewName: "架构-示意图.jpg", State: attachfmt.StatePlanned, Source: "References/架构.md",
			Documents: []refs.DocumentResult{{Path: "Daily/d.md", Err: errors.New("denied")}}},
		{Name: "123.png", State: attachfmt.StateSkipped, Reason: "unreferenced"},
	}})
	out := b.String()
	for _, want := range []string{
		"orphans: 1 attachment",
		SymbolSuccess + " deleted lone.png",
		"IMG_1.jpg -> 架构-示意图.jpg",
		"Daily/d.md: denied",
		"skipped: unreferenced",
		"format: 1 planned, 2 considered",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown_PlainHasNoEscapes(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nbody **bold**\n", 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("notty output has escape codes: %q", out)
	}
	if !strings.Contains(out, "Title") || !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Errorf("output = %q", out)
	}
}
