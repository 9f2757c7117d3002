// Package rewrite turns a rule's template tree into concrete candidate
// paragraph lists. Each candidate is one acceptable phrasing of the full
// rule after applying gating, alternatives and the rewrite transformations
// over document-derived data. Output is deterministic given the document
// and its classification.
package rewrite

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/condition"
	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
)

// maxCandidates bounds the cartesian product across alternatives.
const maxCandidates = 64

// AttrFunc computes one INNER_REPLACE attribute from the document.
type AttrFunc func(env *Env) string

// Env is the rewrite context for one template evaluation.
type Env struct {
	Reader       docreader.Reader
	Answers      *docreader.Manager
	Cls          model.Classification
	Paras        []model.Paragraph // scoped paragraphs bound to the template
	Funcs        map[string]AttrFunc
	TemplateName model.TemplateName
}

func (e *Env) child(paras []model.Paragraph) *Env {
	c := *e
	c.Paras = paras
	return &c
}

// Ignored records a condition-gated block skipped during an EDITING-family
// rewrite; the engine renders these as IgnoreCondition reasons.
type Ignored struct {
	Conditions []model.TemplateRelation
}

// Candidates rewrites the template items into candidate paragraph lists.
func Candidates(env *Env, items []model.TemplateItem) ([][]string, []Ignored) {
	if env.Funcs == nil {
		env.Funcs = DefaultFuncs
	}
	st := &state{env: env}
	cands := st.sequence(items)
	return cands, st.ignored
}

type state struct {
	env     *Env
	ignored []Ignored
}

// sequence evaluates an item list: the candidate set is the cartesian
// product of each item's alternatives, concatenated in order.
func (s *state) sequence(items []model.TemplateItem) [][]string {
	cands := [][]string{{}}
	for _, item := range items {
		alts := s.item(item)
		if alts == nil {
			continue // dropped subtree
		}
		var next [][]string
		for _, base := range cands {
			for _, alt := range alts {
				merged := append(append([]string(nil), base...), alt...)
				next = append(next, merged)
				if len(next) >= maxCandidates {
					break
				}
			}
			if len(next) >= maxCandidates {
				zap.L().Warn("rewrite: candidate product capped",
					zap.Int("cap", maxCandidates),
				)
				break
			}
		}
		cands = next
	}
	return cands
}

// item returns the alternatives of one node, or nil when the node drops out.
func (s *state) item(item model.TemplateItem) [][]string {
	switch n := item.(type) {
	case model.Leaf:
		return [][]string{{string(n)}}
	case model.Alt:
		out := make([][]string, 0, len(n))
		for _, alt := range n {
			out = append(out, []string{alt})
		}
		return out
	case *model.Gated:
		if !condition.Verify(s.env.Cls, n.Conditions) {
			if s.env.TemplateName == model.TemplateEditing {
				s.ignored = append(s.ignored, Ignored{Conditions: n.Conditions})
			}
			return nil
		}
		return s.sequence(n.Items)
	case *model.SingleOptional:
		return s.singleOptional(n)
	case *model.RewriteNode:
		return s.rewriteNode(n)
	}
	zap.L().Error("rewrite: unknown template item type")
	return nil
}

// singleOptional picks the first branch whose conditions hold; a trailing
// unconditional branch is the default.
func (s *state) singleOptional(n *model.SingleOptional) [][]string {
	var fallback *model.Gated
	for _, br := range n.Branches {
		if len(br.Conditions) == 0 {
			fallback = br
			continue
		}
		if condition.Verify(s.env.Cls, br.Conditions) {
			return s.sequence(br.Items)
		}
	}
	if fallback != nil {
		return s.sequence(fallback.Items)
	}
	return nil
}

func (s *state) rewriteNode(n *model.RewriteNode) [][]string {
	switch n.Type {
	case model.InnerReplace:
		return s.innerReplace(n)
	case model.InnerRecombination:
		return s.innerRecombination(n)
	case model.Recombination:
		return s.recombination(n)
	case model.InnerRefer:
		return s.innerRefer(n)
	case model.SingleSelect:
		return s.singleSelect(n)
	case model.ChapterCombination:
		return s.chapterCombination(n)
	}
	zap.L().Error("rewrite: unknown rewrite type", zap.String("type", string(n.Type)))
	return nil
}

// substitute replaces {key} occurrences in every candidate string.
func substitute(cands [][]string, values map[string]string) [][]string {
	if len(values) == 0 {
		return cands
	}
	out := make([][]string, len(cands))
	for i, cand := range cands {
		repl := make([]string, len(cand))
		for j, s := range cand {
			for key, v := range values {
				s = strings.ReplaceAll(s, "{"+key+"}", v)
			}
			repl[j] = s
		}
		out[i] = repl
	}
	return out
}
