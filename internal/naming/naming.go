// Package naming decides whether attachment filenames are meaningful and
// synthesizes new ones from extracted context.
package naming

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// Length limits, in runes.
const (
	MaxNameLen = 50
	MaxStemLen = 40
)

// Stems produced by cameras, screenshot tools and paste handlers. All are
// ASCII-only so no name containing ideographs can match.
var unstructured = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^screenshot[\x20-\x7e]*$`),
	regexp.MustCompile(`(?i)^screen shot[\x20-\x7e]*$`),
	regexp.MustCompile(`(?i)^pasted image[\x20-\x7e]*$`),
	regexp.MustCompile(`(?i)^img[_-][\x20-\x7e]*$`),
	regexp.MustCompile(`(?i)^cleanshot[\x20-\x7e]*$`),
	regexp.MustCompile(`(?i)^snipaste[\x20-\x7e]*$`),
	regexp.MustCompile(`(?i)^image[\x20-\x7e]*$`),
	regexp.MustCompile(`^[\x00-\x7f]*$`),
}

// IsValidFilename reports whether name already carries meaning: it must not
// look machine-generated and its stem must contain Han ideographs.
func IsValidFilename(name string) bool {
	stem := Stem(name)
	for _, re := range unstructured {
		if re.MatchString(stem) {
			return false
		}
	}
	return hasHan(stem)
}

// Stem returns name without its extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Sanitize replaces every rune outside letters, digits, Han ideographs, '-'
// and '.' with '_'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Han, r), r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// SafeTitle turns a title into a note filename stem: whitespace runs become
// hyphens and characters unsafe in paths become underscores.
func SafeTitle(title string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '#', '^', '[', ']':
			return '_'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.Join(strings.Fields(title), "-"))
	s = strings.Trim(s, ".-")
	if s == "" {
		return "Untitled"
	}
	return s
}

// Unique returns candidate when it is free, otherwise the first free
// "stem-N.ext" for N = 1, 2, ...
func Unique(candidate string, taken func(string) bool) string {
	if !taken(candidate) {
		return candidate
	}
	dir, file := path.Split(candidate)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	for n := 1; ; n++ {
		c := dir + stem + "-" + strconv.Itoa(n) + ext
		if !taken(c) {
			return c
		}
	}
}

// Namespace reports whether an attachment name is taken.
type Namespace interface {
	Exists(name string) bool
}

// Synthesizer builds "primary-secondary.ext" names from a Context.
type Synthesizer struct {
	ns Namespace
}

// NewSynthesizer returns a Synthesizer checking candidates against ns.
func NewSynthesizer(ns Namespace) *Synthesizer {
	return &Synthesizer{ns: ns}
}

// Name synthesizes a new name for old. It returns ErrAmbiguousContext when the
// context yields no segment and ErrConflict when the candidate is taken; it
// never appends a counter. A candidate equal to old is returned as is.
func (s *Synthesizer) Name(old string, ctx models.Context) (string, error) {
	primary, secondary := segments(ctx)
	if primary == "" {
		return "", fmt.Errorf("naming: %s: %w", old, apperr.ErrAmbiguousContext)
	}
	stem := primary
	if secondary != "" {
		stem += "-" + secondary
	}
	ext := path.Ext(old)
	name := Sanitize(stem + ext)
	if n := []rune(name); len(n) > MaxNameLen {
		st := []rune(Stem(name))
		if len(st) > MaxStemLen {
			st = st[:MaxStemLen]
		}
		name = string(st) + Sanitize(ext)
	}
	if name == old {
		return old, nil
	}
	if s.ns.Exists(name) {
		return "", fmt.Errorf("naming: %s -> %s: %w", old, name, apperr.ErrConflict)
	}
	return name, nil
}

func segments(ctx models.Context) (primary, secondary string) {
	var rest []string
	switch {
	case len(ctx.Topics) > 0:
		primary = strings.TrimSpace(ctx.Topics[0])
		rest = ctx.Keywords
	case len(ctx.Keywords) > 0:
		primary = strings.TrimSpace(ctx.Keywords[0])
		rest = ctx.Keywords[1:]
	}
	if primary == "" {
		return "", ""
	}
	if d := strings.TrimSpace(ctx.Descriptor); d != "" && d != primary {
		return primary, d
	}
	for _, k := range rest {
		if k = strings.TrimSpace(k); k != "" && k != primary {
			return primary, k
		}
	}
	return primary, ""
}
