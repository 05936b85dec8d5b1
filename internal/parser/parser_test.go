package parser

import (
	"testing"

	"github.com/starford/inkwell/internal/models"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - inkwell\n---\n# Heading\nBody text.\n")
	r := Parse(input)
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if tags := Strings(r.Frontmatter, "tags"); len(tags) != 2 || tags[1] != "inkwell" {
		t.Errorf("tags = %v", tags)
	}
	if r.Body != "# Heading\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatterUsesH1(t *testing.T) {
	r := Parse([]byte("intro\n\n# 健身计划\nSome text.\n"))
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "健身计划" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r := Parse(input)
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Body != string(input) {
		t.Errorf("body should be the whole input")
	}
}

func TestStrings_ScalarList(t *testing.T) {
	fm := map[string]any{"aliases": "a, b ,", "n": []any{1, "x"}}
	if got := Strings(fm, "aliases"); len(got) != 2 || got[1] != "b" {
		t.Errorf("aliases = %v", got)
	}
	if got := Strings(fm, "n"); len(got) != 2 || got[0] != "1" {
		t.Errorf("n = %v", got)
	}
	if got := Strings(fm, "missing"); got != nil {
		t.Errorf("missing = %v", got)
	}
}

func TestHeadings_LevelsAndLines(t *testing.T) {
	hs := Headings("# One\n\ntext\n\n## Two *bold*\n")
	if len(hs) != 2 {
		t.Fatalf("headings = %+v", hs)
	}
	if hs[0].Level != 1 || hs[0].Text != "One" || hs[0].Line != 1 {
		t.Errorf("first = %+v", hs[0])
	}
	if hs[1].Level != 2 || hs[1].Text != "Two bold" || hs[1].Line != 5 {
		t.Errorf("second = %+v", hs[1])
	}
}

func TestEmbeds_AllSyntaxes(t *testing.T) {
	line := `a ![[pic.png]] b ![[Attachments/pic.png|300]] c [[pic.png]] d ![alt](../Attachments/my%20pic.png "t")`
	es := Embeds(line)
	if len(es) != 4 {
		t.Fatalf("embeds = %+v", es)
	}
	wantKinds := []string{models.KindEmbed, models.KindEmbedAlias, models.KindLink, models.KindImage}
	for i, e := range es {
		if e.Kind != wantKinds[i] {
			t.Errorf("embed %d kind = %q, want %q", i, e.Kind, wantKinds[i])
		}
	}
	if es[1].Name() != "pic.png" || es[1].Alias != "300" {
		t.Errorf("alias embed = %+v name=%q", es[1], es[1].Name())
	}
	if es[3].Name() != "my pic.png" || es[3].Dir() != "../Attachments/" {
		t.Errorf("image name=%q dir=%q", es[3].Name(), es[3].Dir())
	}
}

func TestEmbeds_ExternalAndAngled(t *testing.T) {
	es := Embeds("![x](https://example.com/a.png) ![y](<my pic.png>)")
	if len(es) != 2 {
		t.Fatalf("embeds = %+v", es)
	}
	if !es[0].IsExternal() || es[1].IsExternal() {
		t.Error("external detection wrong")
	}
	if es[1].Name() != "my pic.png" {
		t.Errorf("angled name = %q", es[1].Name())
	}
}

func TestReplaceEmbeds_PreservesAliasAndTitle(t *testing.T) {
	in := "see ![[old.png|200]] and ![a](dir/old.png \"cap\") and ![[keep.png]]\n[[old.png]]"
	out := ReplaceEmbeds(in, func(e Embed) (string, bool) {
		if e.Name() != "old.png" {
			return "", false
		}
		return e.Dir() + "new.png", true
	})
	want := "see ![[new.png|200]] and ![a](dir/new.png \"cap\") and ![[keep.png]]\n[[new.png]]"
	if out != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}
}
