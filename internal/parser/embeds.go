package parser

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/starford/inkwell/internal/models"
)

var (
	// ![[target]], ![[target|alias]], [[target]], [[target|alias]]
	wikiRe = regexp.MustCompile(`(!?)\[\[([^\[\]|\n]+?)(?:\|([^\[\]\n]*))?\]\]`)
	// ![alt](path), ![alt](<path with spaces>), ![alt](path "title")
	imageRe = regexp.MustCompile(`!\[([^\]\n]*)\]\(\s*(<[^>\n]+>|[^)\s]+)((?:\s+"[^"\n]*")?\s*)\)`)
)

// Embed is one attachment or note reference found on a line.
type Embed struct {
	Kind   string // one of the models.Kind* constants
	Target string // raw target as written (without angle brackets)
	Alias  string // wiki alias or image alt text
	Start  int    // byte offset of the whole match
	End    int

	angled bool
	suffix string // image title and trailing space inside the parentheses
}

// Name returns the attachment name the embed points at: the URL-decoded base
// name of the target, without any #subpath.
func (e Embed) Name() string {
	return TargetName(e.Target, e.Kind == models.KindImage)
}

// Dir returns the directory part of the target ("" for bare names).
func (e Embed) Dir() string {
	t := decodeTarget(e.Target, e.Kind == models.KindImage)
	if i := strings.LastIndex(t, "/"); i >= 0 {
		return t[:i+1]
	}
	return ""
}

// IsExternal reports whether the target is a URL or data URI.
func (e Embed) IsExternal() bool {
	lower := strings.ToLower(e.Target)
	for _, p := range []string{"http://", "https://", "data:", "mailto:", "ftp://"} {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// TargetName normalizes a link target to the bare attachment name.
func TargetName(target string, image bool) string {
	t := decodeTarget(target, image)
	if !image {
		if i := strings.Index(t, "#"); i >= 0 {
			t = t[:i]
		}
	}
	return path.Base(strings.TrimSpace(t))
}

func decodeTarget(target string, image bool) string {
	t := strings.TrimSpace(target)
	if image {
		if i := strings.IndexAny(t, "?#"); i >= 0 {
			t = t[:i]
		}
		if dec, err := url.PathUnescape(t); err == nil {
			t = dec
		}
	}
	return strings.ReplaceAll(t, `\`, "/")
}

// Embeds returns every reference on line, ordered by position.
func Embeds(line string) []Embed {
	var out []Embed
	for _, m := range wikiRe.FindAllStringSubmatchIndex(line, -1) {
		e := Embed{Start: m[0], End: m[1], Target: line[m[4]:m[5]]}
		embed := m[3] > m[2]
		hasAlias := m[6] >= 0
		if hasAlias {
			e.Alias = line[m[6]:m[7]]
		}
		switch {
		case embed && hasAlias:
			e.Kind = models.KindEmbedAlias
		case embed:
			e.Kind = models.KindEmbed
		default:
			e.Kind = models.KindLink
		}
		out = append(out, e)
	}
	for _, m := range imageRe.FindAllStringSubmatchIndex(line, -1) {
		target := line[m[4]:m[5]]
		e := Embed{
			Kind:   models.KindImage,
			Alias:  line[m[2]:m[3]],
			Start:  m[0],
			End:    m[1],
			suffix: line[m[6]:m[7]],
		}
		if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
			e.angled = true
			target = target[1 : len(target)-1]
		}
		e.Target = target
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Render writes the embed back out with a new target.
func (e Embed) Render(target string) string {
	switch e.Kind {
	case models.KindImage:
		if e.angled || strings.ContainsAny(target, " ()") {
			target = "<" + target + ">"
		}
		return "![" + e.Alias + "](" + target + e.suffix + ")"
	case models.KindEmbedAlias:
		return "![[" + target + "|" + e.Alias + "]]"
	case models.KindEmbed:
		return "![[" + target + "]]"
	default:
		if e.Alias != "" {
			return "[[" + target + "|" + e.Alias + "]]"
		}
		return "[[" + target + "]]"
	}
}

// ReplaceEmbeds rewrites every embed in content for which fn returns a new
// target. Lines are processed independently so offsets stay line-local.
func ReplaceEmbeds(content string, fn func(e Embed) (string, bool)) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		embeds := Embeds(line)
		if len(embeds) == 0 {
			continue
		}
		var b strings.Builder
		last := 0
		for _, e := range embeds {
			target, ok := fn(e)
			if !ok {
				continue
			}
			b.WriteString(line[last:e.Start])
			b.WriteString(e.Render(target))
			last = e.End
		}
		if last == 0 {
			continue
		}
		b.WriteString(line[last:])
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}
