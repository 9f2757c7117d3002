// Package similarity computes the weighted sentence-level diff between
// template candidates and document paragraphs. The LCS underneath is
// difflib's SequenceMatcher over token sequences; synonym classes, numeric
// normalization and numbering prefixes are folded into the tokens so that
// equivalent spans diff as EQUAL.
package similarity

import (
	"strconv"
	"strings"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// SynonymClass is a set of regex alternatives whose members compare equal.
// Equivalence is by class membership, so it is transitive within a class.
type SynonymClass struct {
	Name    string
	Pattern *pattern.Collection
}

// NewSynonymClass compiles a synonym class from its member expressions.
func NewSynonymClass(name string, members ...string) *SynonymClass {
	return &SynonymClass{Name: name, Pattern: pattern.MustNew("synonym:"+name, members...)}
}

// Options configures one similarity run.
type Options struct {
	MinRatio        float64
	IgnoreExtraPara bool
	FillParagraph   bool
	SplitSentence   bool
	Synonyms        []*SynonymClass
	ConvertTypes    []textnorm.ConvertType
}

// token is one diff unit: Key drives equality, Text is the display form.
type token struct {
	Key  string
	Text string
}

// sentence is one tokenized side of a pairing.
type sentence struct {
	Raw       string
	Norm      string
	Tokens    []token
	ParaIndex int
	Page      int
	Outlines  model.Outlines
}

var sentenceSplit = pattern.MustNew("sentence_end", `[。；;！!？?]`)

// SplitSentences cuts a paragraph into sentences at terminal punctuation,
// keeping the punctuation with the preceding sentence.
func SplitSentences(s string) []string {
	var out []string
	src := []rune(s)
	start := 0
	for i, r := range src {
		if sentenceSplit.Matches(string(r)) != nil {
			out = append(out, string(src[start:i+1]))
			start = i + 1
		}
	}
	if start < len(src) {
		out = append(out, string(src[start:]))
	}
	return out
}

// tokenize normalizes raw text and produces the token sequence for one
// sentence.
func tokenize(raw string, opts Options) []token {
	norm := textnorm.Normalize(raw, opts.ConvertTypes)

	var toks []token
	// Leading numbering folds to a value token so regenerated numbering
	// diffs EQUAL against the observed form.
	if _, n, rest, ok := textnorm.ParseSerial(norm); ok {
		toks = append(toks, token{Key: "\x00num:" + strconv.FormatInt(n, 10), Text: norm[:len(norm)-len(rest)]})
		norm = rest
	}

	src := []rune(norm)
	covered := spansFor(norm, opts.Synonyms)
	for i := 0; i < len(src); {
		if sp, ok := covered[i]; ok {
			toks = append(toks, token{Key: "\x00syn:" + sp.class, Text: string(src[i:sp.end])})
			i = sp.end
			continue
		}
		toks = append(toks, token{Key: string(src[i]), Text: string(src[i])})
		i++
	}
	return toks
}

type synSpan struct {
	class string
	end   int
}

// spansFor maps start offsets to synonym spans, earliest class first per
// position, non-overlapping.
func spansFor(s string, classes []*SynonymClass) map[int]synSpan {
	out := make(map[int]synSpan)
	taken := make(map[int]bool)
	for _, c := range classes {
		for _, m := range c.Pattern.FindAll(s) {
			start, end := m.Span()
			free := true
			for i := start; i < end; i++ {
				if taken[i] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			for i := start; i < end; i++ {
				taken[i] = true
			}
			out[start] = synSpan{class: c.Name, end: end}
		}
	}
	return out
}

func newSentence(raw string, opts Options) sentence {
	return sentence{
		Raw:       raw,
		Norm:      textnorm.Normalize(raw, opts.ConvertTypes),
		Tokens:    tokenize(raw, opts),
		ParaIndex: -1,
	}
}

func newRightSentence(raw string, p model.Paragraph, opts Options) sentence {
	s := newSentence(raw, opts)
	s.ParaIndex = p.Index
	s.Page = p.Page
	s.Outlines = p.Outlines()
	return s
}

func keys(toks []token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Key
	}
	return out
}

func isPunct(s string) bool {
	if s == "" {
		return false
	}
	return strings.ContainsAny(s, ",.;:!?。、；：！？") && len([]rune(s)) == 1
}
