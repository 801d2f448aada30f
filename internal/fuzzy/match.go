// Package fuzzy ranks selector options against free-text queries.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	sfuzzy "github.com/sahilm/fuzzy"
)

// Option is a labeled choice offered by a selector widget.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// FromLabels builds options whose value is the label itself, the shape
// column selectors use.
func FromLabels(labels []string) []Option {
	out := make([]Option, len(labels))
	for i, l := range labels {
		out[i] = Option{Label: l, Value: l}
	}
	return out
}

// Options tunes matching.
type Options struct {
	// MaxErrorRatio is the edit budget for a query token, as a fraction of
	// its length, before the token counts as not matching.
	MaxErrorRatio float64
}

// DefaultOptions allows roughly one typo per three characters.
func DefaultOptions() Options {
	return Options{MaxErrorRatio: 0.4}
}

const (
	scoreExact     = 3.0
	scoreFoldExact = 2.0
)

// Match ranks options against query with DefaultOptions.
func Match(options []Option, query string) []Option {
	return MatchWith(options, query, DefaultOptions())
}

// MatchWith returns the options whose label approximately matches query,
// best first. An empty query returns options unchanged. The result depends
// only on the arguments; ties keep the input order.
func MatchWith(options []Option, query string, opt Options) []Option {
	q := strings.TrimSpace(query)
	if q == "" {
		return options
	}
	if opt.MaxErrorRatio <= 0 {
		opt.MaxErrorRatio = DefaultOptions().MaxErrorRatio
	}
	tokens := strings.Fields(strings.ToLower(q))
	src := labelSource(options)
	lower := make([][]rune, len(options))
	for i, o := range options {
		lower[i] = []rune(strings.ToLower(o.Label))
	}

	total := make([]float64, len(options))
	alive := make([]bool, len(options))
	for i := range alive {
		alive[i] = true
	}
	for _, tok := range tokens {
		pattern := []rune(tok)
		subseq := make(map[int]float64)
		for _, m := range sfuzzy.FindFrom(tok, src) {
			subseq[m.Index] = contiguity(runePositions(m.Str, m.MatchedIndexes), len(pattern))
		}
		for i := range options {
			if !alive[i] {
				continue
			}
			s := tokenScore(lower[i], pattern, subseq[i], opt)
			if s <= 0 {
				alive[i] = false
				continue
			}
			total[i] += s
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	var hits []ranked
	for i, o := range options {
		switch {
		case o.Label == query || o.Label == q:
			hits = append(hits, ranked{i, scoreExact})
		case strings.EqualFold(o.Label, q):
			hits = append(hits, ranked{i, scoreFoldExact})
		case alive[i]:
			hits = append(hits, ranked{i, total[i] / float64(len(tokens))})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	out := make([]Option, len(hits))
	for i, h := range hits {
		out[i] = options[h.idx]
	}
	return out
}

// tokenScore grades one query token against a lower-cased label in (0, 1];
// 0 means no match. Prefix beats word start beats inner substring beats
// approximate and scattered matches.
func tokenScore(label, tok []rune, subseq float64, opt Options) float64 {
	if idx := runeIndex(label, tok); idx >= 0 {
		switch {
		case idx == 0:
			return 1
		case !isWordRune(label[idx-1]):
			return 0.95 - 0.05*float64(idx)/float64(len(label))
		default:
			return 0.9 - 0.05*float64(idx)/float64(len(label))
		}
	}
	best := 0.0
	if subseq > 0 {
		best = 0.3 + 0.4*subseq
	}
	errs := float64(approxDistance(label, tok)) / float64(len(tok))
	if errs <= opt.MaxErrorRatio {
		if s := 0.8 * (1 - errs); s > best {
			best = s
		}
	}
	return best
}

// contiguity is 1 when matched characters are adjacent and falls toward 0
// as they spread across the label.
func contiguity(matched []int, n int) float64 {
	if len(matched) == 0 {
		return 0
	}
	span := matched[len(matched)-1] - matched[0] + 1
	if span <= n {
		return 1
	}
	return float64(n) / float64(span)
}

// runePositions converts byte offsets into s to rune positions.
func runePositions(s string, offsets []int) []int {
	out := make([]int, len(offsets))
	for i, b := range offsets {
		out[i] = utf8.RuneCountInString(s[:min(b, len(s))])
	}
	return out
}

// approxDistance is the fewest edits that turn pattern into some substring
// of text (Sellers' variant of Levenshtein: starting anywhere in text is free).
func approxDistance(text, pattern []rune) int {
	m := len(pattern)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	best := prev[m]
	for _, tc := range text {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == tc {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
		}
		prev, cur = cur, prev
	}
	return best
}

func runeIndex(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

type labelSource []Option

func (s labelSource) String(i int) string { return s[i].Label }
func (s labelSource) Len() int            { return len(s) }
