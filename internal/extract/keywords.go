package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	fenceRe    = regexp.MustCompile("(?s)```.*?```|~~~.*?~~~")
	inlineRe   = regexp.MustCompile("`[^`\n]*`")
	embedRe    = regexp.MustCompile(`!?\[\[[^\]\n]*\]\]|!\[[^\]\n]*\]\([^)\n]*\)`)
	linkRe     = regexp.MustCompile(`\[([^\]\n]*)\]\([^)\n]*\)`)
	urlRe      = regexp.MustCompile(`(?i)\b(?:https?|ftp)://\S+`)
	markerRe   = regexp.MustCompile(`(?im)^\s*(?:#{1,6}\s+)?(?:[-*>]\s*)?(?:\*\*)?(?:topics?|categories|category|主题|分类|also known as|aliases|alias|别名)(?:\*\*)?\s*[:：].*$`)
	descWordRe = regexp.MustCompile(`(?i)screenshot|example|diagram|截图|截屏|示例|例子|图表|示意图|流程图`)
)

var stopwords = map[string]struct{}{}

// Han particles that split a run of ideographs into words.
var hanParticles = map[rune]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the and for are but not you all any can had has have her his its our out was were
		with this that these those from into onto over under then than them they their there
		what when where which while who whom why how will would should could about after
		before your yours also just only some such very more most other each both been being
		does did doing done here use used using via per etc get got let may might must shall
		没有 我们 你们 他们 她们 它们 这个 那个 这些 那些 因为 所以 但是 而且 如果 就是 还是 或者
		可以 已经 什么 怎么 一个 自己 这样 那样 然后 以及`) {
		stopwords[w] = struct{}{}
	}
	for _, r := range "的了是在和与及或我你他她它们这那也都就而着过吗呢吧啊把被让给对从向于" {
		hanParticles[r] = struct{}{}
	}
}

// Keywords returns up to n content words of body ranked by frequency. Ties
// keep first-occurrence order.
func Keywords(body string, n int) []string {
	text := clean(body)

	counts := map[string]int{}
	var order []string
	for _, w := range words(text) {
		if _, stop := stopwords[strings.ToLower(w)]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Descriptor returns the first domain word (screenshot, example, diagram and
// their Chinese forms) present in text, lowercased for ASCII words.
func Descriptor(text string) string {
	m := descWordRe.FindString(text)
	return strings.ToLower(m)
}

func clean(body string) string {
	body = fenceRe.ReplaceAllString(body, " ")
	body = markerRe.ReplaceAllString(body, " ")
	body = embedRe.ReplaceAllString(body, " ")
	body = linkRe.ReplaceAllString(body, "$1")
	body = urlRe.ReplaceAllString(body, " ")
	return inlineRe.ReplaceAllString(body, " ")
}

// words splits text into Han runs of at least two ideographs and ASCII words
// of at least three characters.
func words(text string) []string {
	var (
		out  []string
		cur  []rune
		han  bool
		emit = func() {
			if han && len(cur) >= 2 {
				out = append(out, string(cur))
			}
			if !han && len(cur) >= 3 && !allDigits(cur) {
				out = append(out, string(cur))
			}
			cur = cur[:0]
		}
	)
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			if _, p := hanParticles[r]; p {
				emit()
				continue
			}
			if !han {
				emit()
				han = true
			}
			cur = append(cur, r)
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if han {
				emit()
				han = false
			}
			cur = append(cur, r)
		default:
			emit()
		}
	}
	emit()
	return out
}

func allDigits(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
