package rewrite

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/condition"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// innerReplace resolves each key through the attribute dispatch table and
// substitutes {key} in the subtree. A missing function logs and substitutes
// "***" so the rule keeps evaluating.
func (s *state) innerReplace(n *model.RewriteNode) [][]string {
	values := make(map[string]string, len(n.Replace))
	for key, rule := range n.Replace {
		fn, ok := s.env.Funcs[rule.Func]
		if !ok {
			zap.L().Error("rewrite: missing attribute func",
				zap.String("key", key),
				zap.String("func", rule.Func),
			)
			values[key] = "***"
			continue
		}
		values[key] = fn(s.env)
	}
	return substitute(s.sequence(n.Items), values)
}

// innerRecombination reorders the conjunction-split subterms of the clause
// matched by ParaPattern, keeping only condition-enabled items, ordered by
// their first matching pattern.
func (s *state) innerRecombination(n *model.RewriteNode) [][]string {
	rule := n.Recomb
	if rule == nil {
		return s.sequence(n.Items)
	}

	value := rule.Default
	for _, p := range s.env.Paras {
		m := rule.ParaPattern.Matches(textnorm.CleanText(p.Text))
		if m == nil {
			continue
		}
		content := m.Group()
		if v, ok := m.GroupDict()["content"]; ok {
			content = v
		} else if g := m.GroupN(1); g != "" {
			content = g
		}
		if v, ok := recombineClause(content, rule, s.env.Cls); ok {
			value = v
		}
		break
	}
	return substitute(s.sequence(n.Items), map[string]string{rule.Key: value})
}

// recombineClause splits content into coordinate items and reorders them by
// pattern precedence.
func recombineClause(content string, rule *model.InnerRecombRule, cls model.Classification) (string, bool) {
	keep := protectedTokens(rule.Patterns)
	fields, seps := pattern.SplitConjunction(content, keep...)
	if len(fields) == 0 {
		return "", false
	}

	type hit struct {
		text string
		rank int
	}
	var hits []hit
	for _, f := range fields {
		for rank, rp := range rule.Patterns {
			if rp.Pattern.Matches(f) == nil {
				continue
			}
			if !condition.Verify(cls, rp.Conditions) {
				break // recognized but disabled: drop the item
			}
			hits = append(hits, hit{text: f, rank: rank})
			break
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	linker := "、"
	if len(seps) > 0 {
		linker = seps[0]
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.text
	}
	return strings.Join(parts, linker), true
}

// protectedTokens extracts the literal CJK runs of the pattern expressions;
// split characters appearing inside them must not act as separators.
func protectedTokens(pats []model.RecombPattern) []string {
	var out []string
	for _, rp := range pats {
		for _, expr := range rp.Pattern.Exprs() {
			var run []rune
			for _, r := range expr {
				if r >= 0x4e00 && r <= 0x9fff {
					run = append(run, r)
					continue
				}
				if len(run) > 0 {
					out = append(out, string(run))
					run = run[:0]
				}
			}
			if len(run) > 0 {
				out = append(out, string(run))
			}
		}
	}
	return out
}

// recombination reorders slot subtrees to the document order of their
// matching paragraphs. Slots that never match keep their declared position
// and numbering prefixes are regenerated with a running counter.
func (s *state) recombination(n *model.RewriteNode) [][]string {
	order := slotOrder(n.Slots, s.env.Paras)

	cands := [][]string{{}}
	for _, si := range order {
		slot := n.Slots[si]
		if !condition.Verify(s.env.Cls, slot.Conditions) {
			continue
		}
		alts := s.sequence(slot.Items)
		var next [][]string
		for _, base := range cands {
			for _, alt := range alts {
				next = append(next, append(append([]string(nil), base...), alt...))
				if len(next) >= maxCandidates {
					break
				}
			}
			if len(next) >= maxCandidates {
				break
			}
		}
		cands = next
	}

	for i, cand := range cands {
		cands[i] = renumber(cand, n)
	}
	return cands
}

// slotOrder returns slot indices with matched slots rearranged into the
// document order of their anchors; unmatched slots stay put.
func slotOrder(slots []model.RecombSlot, paras []model.Paragraph) []int {
	anchor := make([]int, len(slots))
	for i := range anchor {
		anchor[i] = -1
	}
	for _, p := range paras {
		text := textnorm.CleanText(p.Text)
		for i, slot := range slots {
			if anchor[i] >= 0 {
				continue
			}
			if slot.Pattern != nil && slot.Pattern.Matches(text) != nil {
				anchor[i] = p.Index
				break
			}
		}
	}

	var matchedPos []int
	var matchedIdx []int
	for i, a := range anchor {
		if a >= 0 {
			matchedPos = append(matchedPos, i)
			matchedIdx = append(matchedIdx, i)
		}
	}
	sort.SliceStable(matchedIdx, func(a, b int) bool {
		return anchor[matchedIdx[a]] < anchor[matchedIdx[b]]
	})

	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	for k, pos := range matchedPos {
		order[pos] = matchedIdx[k]
	}
	return order
}

// renumber rewrites leading numbering prefixes with an auto-incremented
// counter, preserving the observed kind or falling back to the declared
// default prefix type.
func renumber(cand []string, n *model.RewriteNode) []string {
	counter := int64(0)
	out := make([]string, len(cand))
	for i, text := range cand {
		kind, _, rest, ok := textnorm.ParseSerial(text)
		if !ok && n.SerialNumPattern != nil && n.SerialNumPattern.Matches(text) != nil {
			kind, rest, ok = n.DefaultPrefixType, text, true
		}
		if !ok {
			out[i] = text
			continue
		}
		counter++
		if kind == textnorm.SerialNone {
			kind = n.DefaultPrefixType
		}
		out[i] = textnorm.FormatSerial(kind, counter) + rest
	}
	return out
}

// innerRefer resolves "第X项" style references from the numeric prefixes of
// matching paragraphs. A contiguous set also yields the range form as a
// second alternative.
func (s *state) innerRefer(n *model.RewriteNode) [][]string {
	base := s.sequence(n.Items)
	out := base
	for key, rule := range n.Refer {
		nums := s.referNumbers(rule)
		if len(nums) == 0 {
			continue
		}
		forms := referForms(nums)
		var next [][]string
		for _, form := range forms {
			next = append(next, substitute(out, map[string]string{key: form})...)
			if len(next) >= maxCandidates {
				break
			}
		}
		out = next
	}
	return out
}

func (s *state) referNumbers(rule model.ReferRule) []int64 {
	paras := s.env.Paras
	if rule.ReferChapters != nil {
		if _, scoped, ok := chapters.Scope(s.env.Reader, rule.ReferChapters); ok {
			paras = scoped
		} else {
			paras = s.env.Reader.Paragraphs()
		}
	} else if s.env.Reader != nil {
		paras = s.env.Reader.Paragraphs()
	}

	seen := make(map[int64]bool)
	var nums []int64
	for _, p := range paras {
		text := textnorm.CleanText(p.Text)
		hit := false
		for _, pat := range rule.Patterns {
			if pat.Matches(text) != nil {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		if _, v, _, ok := textnorm.ParseSerial(text); ok && !seen[v] {
			seen[v] = true
			nums = append(nums, v)
			if !rule.Multiple {
				break
			}
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// referForms renders the reference: the enumerated form always, the range
// form first when the set is contiguous.
func referForms(nums []int64) []string {
	parts := make([]string, len(nums))
	contiguous := true
	for i, v := range nums {
		parts[i] = strconv.FormatInt(v, 10)
		if i > 0 && v != nums[i-1]+1 {
			contiguous = false
		}
	}
	enumerated := "第" + strings.Join(parts, "、") + "项"
	if contiguous && len(nums) > 1 {
		ranged := "第" + parts[0] + "-" + parts[len(parts)-1] + "项"
		return []string{ranged, enumerated}
	}
	return []string{enumerated}
}

// singleSelect picks the vocabulary variant selected by the document
// clause. An unmatched selector leaves {key} verbatim.
func (s *state) singleSelect(n *model.RewriteNode) [][]string {
	rule := n.Select
	if rule == nil {
		return s.sequence(n.Items)
	}
	for _, p := range s.env.Paras {
		m := rule.ParaPattern.Matches(textnorm.CleanText(p.Text))
		if m == nil {
			continue
		}
		content := m.Group()
		if v, ok := m.GroupDict()["content"]; ok {
			content = v
		} else if g := m.GroupN(1); g != "" {
			content = g
		}
		for _, sp := range rule.Patterns {
			if sp.Pattern.Matches(content) != nil {
				return substitute(s.sequence(n.Items), map[string]string{rule.Key: sp.Content})
			}
		}
		break
	}
	return s.sequence(n.Items)
}

// chapterCombination reorders slot subtrees by their anchor paragraph and
// evaluates each slot over the paragraphs following its anchor, up to the
// next anchor.
func (s *state) chapterCombination(n *model.RewriteNode) [][]string {
	type span struct {
		slot  int
		start int // anchor paragraph index, -1 when unmatched
		end   int
	}
	anchors := make([]span, len(n.Slots))
	for i := range anchors {
		anchors[i] = span{slot: i, start: -1, end: 1 << 30}
	}
	for _, p := range s.env.Paras {
		text := textnorm.CleanText(p.Text)
		for i, slot := range n.Slots {
			if anchors[i].start >= 0 {
				continue
			}
			if slot.Pattern != nil && slot.Pattern.Matches(text) != nil {
				anchors[i].start = p.Index
				break
			}
		}
	}
	// Close each matched span at the next anchor in document order.
	starts := make([]int, 0, len(anchors))
	for _, a := range anchors {
		if a.start >= 0 {
			starts = append(starts, a.start)
		}
	}
	sort.Ints(starts)
	for i := range anchors {
		if anchors[i].start < 0 {
			continue
		}
		for _, st := range starts {
			if st > anchors[i].start {
				anchors[i].end = st
				break
			}
		}
	}

	order := slotOrder(n.Slots, s.env.Paras)
	cands := [][]string{{}}
	for _, si := range order {
		slot := n.Slots[si]
		if !condition.Verify(s.env.Cls, slot.Conditions) {
			continue
		}
		sub := s.env.Paras
		if a := anchors[si]; a.start >= 0 {
			sub = nil
			for _, p := range s.env.Paras {
				if p.Index > a.start && p.Index < a.end {
					sub = append(sub, p)
				}
			}
		}
		child := &state{env: s.env.child(sub)}
		alts := child.sequence(slot.Items)
		s.ignored = append(s.ignored, child.ignored...)
		var next [][]string
		for _, base := range cands {
			for _, alt := range alts {
				next = append(next, append(append([]string(nil), base...), alt...))
				if len(next) >= maxCandidates {
					break
				}
			}
			if len(next) >= maxCandidates {
				break
			}
		}
		cands = next
	}
	return cands
}
