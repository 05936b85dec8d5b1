// Package extract derives a title, topic tags, keywords and aliases from raw
// draft text using pattern heuristics. It performs no I/O.
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/parser"
)

// Caps bounding downstream name length.
const (
	MaxTopics   = 3
	MaxKeywords = 5
)

// document is the parsed view every strategy works on.
type document struct {
	origin string
	parsed *parser.Result
	lines  []string
}

// strategy returns a match and true, or false to let the next strategy try.
type strategy func(doc *document) ([]string, bool)

var (
	topicMarkerRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s+)?(?:[-*>]\s*)?(?:\*\*)?(?:topics?|categories|category|主题|分类)(?:\*\*)?\s*[:：]\s*(.*)$`)
	aliasMarkerRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s+)?(?:[-*>]\s*)?(?:\*\*)?(?:also known as|aliases|alias|别名)(?:\*\*)?\s*[:：]\s*(.*)$`)
	splitRe       = regexp.MustCompile(`[,，、;；\s]+`)
	separatorRe   = regexp.MustCompile(`[-_.\s]+`)
)

var (
	titleStrategies = []strategy{frontmatterTitle, headingTitle, originTitle}
	topicStrategies = []strategy{
		frontmatterList("topics", "tags", "categories"),
		markerList(topicMarkerRe),
		frequencyTopics,
	}
	aliasStrategies = []strategy{
		frontmatterList("aliases"),
		markerList(aliasMarkerRe),
	}
)

// Extract derives the Context of text. origin is the document's stable name
// and is used as the fallback title.
func Extract(text, origin string) models.Context {
	doc := &document{
		origin: origin,
		parsed: parser.Parse([]byte(text)),
	}
	doc.lines = strings.Split(doc.parsed.Body, "\n")

	var title string
	if vals, ok := first(doc, titleStrategies); ok && len(vals) > 0 {
		title = vals[0]
	}
	topics, _ := first(doc, topicStrategies)
	aliases, _ := first(doc, aliasStrategies)

	return models.Context{
		Title:      title,
		Topics:     capped(dedupe(topics), MaxTopics),
		Keywords:   Keywords(doc.parsed.Body, MaxKeywords),
		Aliases:    dedupe(aliases),
		Descriptor: Descriptor(text),
	}
}

// StripMarkers removes topic and alias marker lines from body.
func StripMarkers(body string) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	for _, l := range lines {
		if isMarker(l) {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func isMarker(line string) bool {
	return topicMarkerRe.MatchString(line) || aliasMarkerRe.MatchString(line)
}

func first(doc *document, strategies []strategy) ([]string, bool) {
	for _, s := range strategies {
		if vals, ok := s(doc); ok {
			return vals, true
		}
	}
	return nil, false
}

func frontmatterTitle(doc *document) ([]string, bool) {
	t, ok := doc.parsed.Frontmatter["title"].(string)
	if !ok || strings.TrimSpace(t) == "" {
		return nil, false
	}
	return []string{strings.TrimSpace(t)}, true
}

func headingTitle(doc *document) ([]string, bool) {
	for _, h := range parser.Headings(doc.parsed.Body) {
		if h.Level == 1 && !isMarker(h.Text) {
			return []string{h.Text}, true
		}
	}
	return nil, false
}

func originTitle(doc *document) ([]string, bool) {
	name := strings.TrimSpace(separatorRe.ReplaceAllString(doc.origin, " "))
	if name == "" {
		return nil, false
	}
	return []string{cases.Title(language.Und, cases.NoLower).String(name)}, true
}

func frontmatterList(keys ...string) strategy {
	return func(doc *document) ([]string, bool) {
		for _, k := range keys {
			var vals []string
			for _, v := range parser.Strings(doc.parsed.Frontmatter, k) {
				if v = unwrapLink(v); v != "" {
					vals = append(vals, v)
				}
			}
			if len(vals) > 0 {
				return vals, true
			}
		}
		return nil, false
	}
}

func markerList(re *regexp.Regexp) strategy {
	return func(doc *document) ([]string, bool) {
		var vals []string
		for _, l := range doc.lines {
			m := re.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			for _, v := range splitRe.Split(m[1], -1) {
				if v = unwrapLink(strings.Trim(v, "#\"'`*")); v != "" {
					vals = append(vals, v)
				}
			}
		}
		return vals, len(vals) > 0
	}
}

func frequencyTopics(doc *document) ([]string, bool) {
	kw := Keywords(doc.parsed.Body, MaxTopics)
	return kw, len(kw) > 0
}

// unwrapLink turns "[[topic]]" or "[[topic|label]]" into "topic".
func unwrapLink(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]") {
		s = s[2 : len(s)-2]
		if i := strings.Index(s, "|"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func dedupe(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func capped(vals []string, n int) []string {
	if len(vals) > n {
		return vals[:n]
	}
	return vals
}
