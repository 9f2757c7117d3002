package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sells-group/fundaudit/internal/model"
)

// DefaultMinRatio is the engine-wide match threshold when a template does
// not declare its own.
const DefaultMinRatio = 0.8

// pair is one left sentence with its chosen right sentence and diff.
type pair struct {
	left      int
	right     int // -1 when the left sentence found no counterpart
	frames    []model.DiffFrame
	equalLen  int
	deleteLen int
	insertLen int
	ratio     float64
}

// Result is the outcome of one similarity run.
type Result struct {
	opts  Options
	lefts []sentence
	right []sentence
	pairs []pair
	extra []int // unmatched right sentence indices, in document order
}

// Compare diffs the template sentences (left) against the scoped document
// paragraphs (right).
func Compare(left []string, right []model.Paragraph, opts Options) *Result {
	if opts.MinRatio <= 0 {
		opts.MinRatio = DefaultMinRatio
	}

	r := &Result{opts: opts}
	for _, l := range left {
		parts := []string{l}
		if opts.SplitSentence {
			parts = SplitSentences(l)
		}
		for _, part := range parts {
			r.lefts = append(r.lefts, newSentence(part, opts))
		}
	}
	for _, p := range right {
		parts := []string{p.Text}
		if opts.SplitSentence {
			parts = SplitSentences(p.Text)
		}
		for _, part := range parts {
			r.right = append(r.right, newRightSentence(part, p, opts))
		}
	}

	used := make([]bool, len(r.right))
	for i := range r.lefts {
		// A left sentence empty after normalization is trivially satisfied;
		// pairing it would consume a right sentence another left needs.
		if len(r.lefts[i].Tokens) == 0 {
			r.pairs = append(r.pairs, missPair(i, r.lefts[i]))
			continue
		}
		best, bestPair := -1, pair{}
		for j := range r.right {
			if used[j] {
				continue
			}
			cand := diffPair(r.lefts[i], r.right[j])
			if cand.ratio > bestPair.ratio || best < 0 {
				best, bestPair = j, cand
			}
		}
		if best >= 0 && bestPair.ratio > 0 {
			used[best] = true
			bestPair.left, bestPair.right = i, best
			r.pairs = append(r.pairs, bestPair)
			continue
		}
		r.pairs = append(r.pairs, missPair(i, r.lefts[i]))
	}
	for j := range r.right {
		if !used[j] && len(r.right[j].Tokens) != 0 {
			r.extra = append(r.extra, j)
		}
	}
	return r
}

// diffPair diffs one left sentence against one right sentence.
func diffPair(l, r sentence) pair {
	if len(l.Tokens) == 0 && len(r.Tokens) == 0 {
		return pair{right: -1, ratio: 1}
	}

	m := difflib.NewMatcher(keys(l.Tokens), keys(r.Tokens))
	var frames []model.DiffFrame
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			frames = appendFrame(frames, model.DiffEqual, text(l.Tokens[op.I1:op.I2]))
		case 'd':
			frames = appendFrame(frames, model.DiffDelete, text(l.Tokens[op.I1:op.I2]))
		case 'i':
			frames = appendFrame(frames, model.DiffInsert, text(r.Tokens[op.J1:op.J2]))
		case 'r':
			frames = appendFrame(frames, model.DiffDelete, text(l.Tokens[op.I1:op.I2]))
			frames = appendFrame(frames, model.DiffInsert, text(r.Tokens[op.J1:op.J2]))
		}
	}
	frames = fixTailPunctuation(frames)

	p := pair{frames: frames}
	for _, f := range frames {
		n := len([]rune(f.Text))
		switch f.Op {
		case model.DiffEqual:
			p.equalLen += n
		case model.DiffDelete:
			p.deleteLen += n
		case model.DiffInsert:
			p.insertLen += n
		}
	}
	if p.equalLen+p.deleteLen == 0 {
		p.ratio = 1
	} else {
		p.ratio = float64(p.equalLen) / float64(p.equalLen+p.deleteLen)
	}
	return p
}

func missPair(i int, l sentence) pair {
	p := pair{left: i, right: -1}
	if len(l.Tokens) == 0 {
		p.ratio = 1
		return p
	}
	p.frames = []model.DiffFrame{{Op: model.DiffDelete, Text: text(l.Tokens)}}
	p.deleteLen = len([]rune(text(l.Tokens)))
	return p
}

// fixTailPunctuation upgrades a trailing single-punctuation diff frame to
// EQUAL when the preceding frame is EQUAL and ends in a non-punctuation
// character. Clause boundaries otherwise produce spurious conflicts.
func fixTailPunctuation(frames []model.DiffFrame) []model.DiffFrame {
	n := len(frames)
	if n < 2 {
		return frames
	}
	last, prev := frames[n-1], frames[n-2]
	if last.Op == model.DiffEqual || !isPunct(last.Text) {
		return frames
	}
	if prev.Op != model.DiffEqual || prev.Text == "" {
		return frames
	}
	tail := []rune(prev.Text)
	if isPunct(string(tail[len(tail)-1])) {
		return frames
	}
	frames[n-1].Op = model.DiffEqual
	return frames
}

func appendFrame(frames []model.DiffFrame, op model.DiffOp, txt string) []model.DiffFrame {
	if txt == "" {
		return frames
	}
	if n := len(frames); n > 0 && frames[n-1].Op == op {
		frames[n-1].Text += txt
		return frames
	}
	return append(frames, model.DiffFrame{Op: op, Text: txt})
}

func text(toks []token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

// IsFullMatched reports that every left sentence paired at ratio 1 and the
// document scope carried no extra sentences.
func (r *Result) IsFullMatched() bool {
	return r.IsFullMatchedWithoutExtraPara() && len(r.extra) == 0
}

// IsFullMatchedWithoutExtraPara reports that every left sentence paired at
// ratio 1, ignoring extra right sentences.
func (r *Result) IsFullMatchedWithoutExtraPara() bool {
	for _, p := range r.pairs {
		if p.ratio < 1 {
			return false
		}
	}
	return true
}

// IsMatched reports whether the weighted ratio reaches the configured
// minimum.
func (r *Result) IsMatched() bool {
	return r.Ratio() >= r.opts.MinRatio
}

// Ratio is the weighted average match ratio: equal length over template
// length, with unmatched document sentences charged into the denominator
// unless IgnoreExtraPara is set.
func (r *Result) Ratio() float64 {
	var num, den int
	for _, p := range r.pairs {
		num += p.equalLen
		den += len([]rune(r.lefts[p.left].Norm))
	}
	if !r.opts.IgnoreExtraPara {
		for _, j := range r.extra {
			den += len([]rune(r.right[j].Norm))
		}
	}
	if den == 0 {
		return 1
	}
	return float64(num) / float64(den)
}

// MatchedCount is the number of left sentences whose pair ratio reaches the
// minimum ratio.
func (r *Result) MatchedCount() int {
	n := 0
	for _, p := range r.pairs {
		if p.ratio >= r.opts.MinRatio {
			n++
		}
	}
	return n
}

// SimpleResults is the compact diff for rendering: pair frames in template
// order, then unmatched document sentences as inserts when they charge the
// ratio.
func (r *Result) SimpleResults() []model.DiffFrame {
	var out []model.DiffFrame
	for _, p := range r.pairs {
		out = append(out, p.frames...)
	}
	if !r.opts.IgnoreExtraPara {
		for _, j := range r.extra {
			if t := r.right[j].Raw; t != "" {
				out = append(out, model.DiffFrame{Op: model.DiffInsert, Text: t})
			}
		}
	}
	return out
}

// LeftContent is the reference text of this run.
func (r *Result) LeftContent() string {
	parts := make([]string, len(r.lefts))
	for i, l := range r.lefts {
		parts[i] = l.Raw
	}
	return strings.Join(parts, "\n")
}

// RightContent is the matched document text, in template order. Under
// FillParagraph, left sentences without a counterpart contribute their own
// text.
func (r *Result) RightContent() string {
	var parts []string
	for _, p := range r.pairs {
		if p.right >= 0 {
			parts = append(parts, r.right[p.right].Raw)
		} else if r.opts.FillParagraph {
			parts = append(parts, r.lefts[p.left].Raw)
		}
	}
	return strings.Join(parts, "\n")
}

// RightOutlines merges the outlines of every paired document sentence.
func (r *Result) RightOutlines() model.Outlines {
	out := model.Outlines{}
	for _, p := range r.pairs {
		if p.right >= 0 {
			out.Merge(r.right[p.right].Outlines)
		}
	}
	return out
}

// MinPage is the smallest page among paired document sentences, 0 when
// nothing paired.
func (r *Result) MinPage() int {
	min := 0
	for _, p := range r.pairs {
		if p.right < 0 {
			continue
		}
		page := r.right[p.right].Page
		if page > 0 && (min == 0 || page < min) {
			min = page
		}
	}
	return min
}
