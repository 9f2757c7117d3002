// Package engine evaluates compliance rules against a parsed document. The
// evaluator walks one rule through schema-field checks, chapter scoping,
// template rewriting, content-value checks and paragraph similarity, and
// folds the outcome into a typed ResultItem.
package engine

import (
	"strings"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/classify"
	"github.com/sells-group/fundaudit/internal/condition"
	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/rewrite"
	"github.com/sells-group/fundaudit/internal/similarity"
)

// Default winner-selection constants; Config overrides them.
const (
	DefaultThreshold           = 0.8
	DefaultDifferenceThreshold = 0.2
)

// Config tunes the evaluator.
type Config struct {
	// Threshold is the minimum similarity ratio a template needs to count
	// as matched, and the ceiling under which the tie-break may switch
	// winners.
	Threshold float64
	// DifferenceThreshold is the ratio gap that lets a higher-ratio
	// candidate displace a winner with more matched sentences.
	DifferenceThreshold float64
}

func (c Config) withDefaults() Config {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.DifferenceThreshold == 0 {
		c.DifferenceThreshold = DefaultDifferenceThreshold
	}
	return c
}

// Evaluator runs rules against one document. It is read-only over the
// reader and answer manager and safe for sequential reuse across rules.
type Evaluator struct {
	reader docreader.Reader
	mgr    *docreader.Manager
	cls    model.Classification
	cfg    Config
	funcs  map[string]rewrite.AttrFunc
}

// NewEvaluator classifies the document (memoized on the answer manager)
// and returns an evaluator for it.
func NewEvaluator(r docreader.Reader, mgr *docreader.Manager, mold model.Mold, cfg Config) *Evaluator {
	cls := mgr.Memoize(func() model.Classification {
		return classify.Resolve(r, mgr, mold)
	})
	return &Evaluator{
		reader: r,
		mgr:    mgr,
		cls:    cls,
		cfg:    cfg.withDefaults(),
	}
}

// Classification exposes the memoized document classification.
func (e *Evaluator) Classification() model.Classification { return e.cls }

// Evaluate runs one rule and finalizes its result.
func (e *Evaluator) Evaluate(rule model.Rule) model.ResultItem {
	res := model.ResultItem{
		Name:            rule.Name,
		RelatedName:     rule.RelatedName,
		Label:           rule.Label,
		RuleType:        rule.RuleType,
		ContractContent: rule.ContractContent,
	}

	if !condition.Verify(e.cls, rule.Conditions) {
		res.Reasons = append(res.Reasons, ignoreReason("本规则不适用于本基金"))
		res.Finalize()
		return res
	}

	// Drop schema fields whose own conditions fail. A rule whose entire
	// field list drops out does not apply to this document.
	fields := make([]model.SchemaField, 0, len(rule.SchemaFields))
	for _, f := range rule.SchemaFields {
		if condition.Verify(e.cls, f.Conditions) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 && len(rule.SchemaFields) > 0 {
		res.Reasons = append(res.Reasons, ignoreReason("本规则的约定事项不适用于本基金"))
		res.Finalize()
		return res
	}
	res.SchemaResults = e.mgr.BuildSchemaResults(fields)

	for _, f := range fields {
		if !f.Required || !e.mgr.Get(f.Field).Empty() {
			continue
		}
		r := model.Reason{
			Kind: model.ReasonSchemaFailed,
			Text: "未提取到\"" + f.Field + "\"",
		}
		// required_schema=false keeps the reason visible but non-blocking.
		if !rule.RequiredSchema {
			r.Matched = true
		}
		res.Reasons = append(res.Reasons, r)
	}

	outcomes := make([]templateOutcome, 0, len(rule.Templates))
	anyMatched := false
	for _, tmpl := range rule.Templates {
		o := e.evaluateTemplate(rule, tmpl, fields)
		if o.matched {
			anyMatched = true
		}
		outcomes = append(outcomes, o)
	}

	// A rule is a disjunction across templates: one matched template
	// satisfies it, and only a missing required template still blocks.
	for _, o := range outcomes {
		if anyMatched && !o.matched && !o.required {
			for i := range o.reasons {
				o.reasons[i].Ignored = true
			}
		}
		res.Reasons = append(res.Reasons, o.reasons...)
		if o.content != "" {
			res.OriginContents = append(res.OriginContents, o.content)
		}
	}

	res.Finalize()
	return res
}

type templateOutcome struct {
	reasons  []model.Reason
	matched  bool
	required bool
	content  string // matched document text, for reports
}

func (e *Evaluator) evaluateTemplate(rule model.Rule, tmpl model.Template, fields []model.SchemaField) templateOutcome {
	o := templateOutcome{required: tmpl.Required}

	paras, miss := e.scope(tmpl, fields)
	if miss != nil {
		o.reasons = append(o.reasons, *miss)
		return o
	}

	env := &rewrite.Env{
		Reader:       e.reader,
		Answers:      e.mgr,
		Cls:          e.cls,
		Paras:        paras,
		Funcs:        e.funcs,
		TemplateName: tmpl.Name,
	}
	cands, ignored := rewrite.Candidates(env, tmpl.Items)
	for _, ig := range ignored {
		o.reasons = append(o.reasons, ignoreReason(renderConditions(ig.Conditions)))
	}
	if len(cands) == 0 || allEmpty(cands) {
		// Every subtree was condition-gated away: vacuously satisfied.
		o.matched = true
		return o
	}

	if tmpl.ContentCondition != nil {
		if errs := condition.EvaluateContentValues(tmpl.ContentCondition, paras); len(errs) > 0 {
			r := model.Reason{
				Kind: model.ReasonMatchFailed,
				Text: strings.Join(errs, "；"),
				Page: minParaPage(paras),
			}
			o.reasons = append(o.reasons, r)
			return o
		}
	}

	minRatio := tmpl.MinRatio
	if minRatio == 0 {
		minRatio = e.cfg.Threshold
	}
	opts := similarity.Options{
		MinRatio:        minRatio,
		IgnoreExtraPara: rule.RuleType != model.FamilyMultipleSentences,
		FillParagraph:   true,
		SplitSentence:   rule.RuleType == model.FamilySingleSentenceMultiple,
		Synonyms:        similarity.Named(tmpl.SynonymNames),
		ConvertTypes:    tmpl.ConvertTypes,
	}

	var winner *similarity.Result
	for _, cand := range cands {
		r := similarity.Compare(cand, paras, opts)
		if e.better(r, winner) {
			winner = r
		}
	}

	o.reasons = append(o.reasons, e.verdict(tmpl, winner))
	o.matched = !o.reasons[len(o.reasons)-1].Blocking()
	if o.matched {
		o.content = winner.RightContent()
	}
	return o
}

// scope resolves the paragraphs a template is checked against: the
// chapters anchored by the rule's answer outlines when the rule names
// schema fields, else the declared chapter, else the whole document.
func (e *Evaluator) scope(tmpl model.Template, fields []model.SchemaField) ([]model.Paragraph, *model.Reason) {
	if len(fields) > 0 {
		if paras := e.answerScope(fields); len(paras) > 0 {
			return paras, nil
		}
	}
	if tmpl.Chapter != nil {
		_, paras, ok := chapters.Scope(e.reader, tmpl.Chapter)
		if !ok {
			miss := chapters.MissReason(tmpl.Chapter)
			return nil, &miss
		}
		return paras, nil
	}
	return e.reader.Paragraphs(), nil
}

// answerScope resolves the chapters containing the rule's extracted
// answers and returns their paragraphs. An answer outline names pages; the
// paragraphs on those pages locate the chapters, and the chapters bound
// the scope, so same-page neighbors from other chapters stay out and the
// chapter's later pages stay in.
func (e *Evaluator) answerScope(fields []model.SchemaField) []model.Paragraph {
	pages := map[int]bool{}
	for _, f := range fields {
		for page := range e.mgr.Get(f.Field).Outlines {
			pages[page] = true
		}
	}
	if len(pages) == 0 {
		return nil
	}

	var anchors []*model.Chapter
	seen := map[*model.Chapter]bool{}
	for _, p := range e.reader.Paragraphs() {
		if !pages[p.Page] {
			continue
		}
		ch := e.chapterOf(p.Index)
		if ch == nil || seen[ch] {
			continue
		}
		seen[ch] = true
		anchors = append(anchors, ch)
	}

	var out []model.Paragraph
	taken := map[int]bool{}
	for _, ch := range anchors {
		for _, p := range e.reader.Paragraphs() {
			if p.Index == ch.ElementIndex || taken[p.Index] || !ch.Contains(p.Index) {
				continue
			}
			taken[p.Index] = true
			out = append(out, p)
		}
	}
	return out
}

// chapterOf returns the top-level chapter containing the element at idx.
func (e *Evaluator) chapterOf(idx int) *model.Chapter {
	for _, ch := range e.reader.Syllabuses() {
		if ch.Contains(idx) {
			return ch
		}
	}
	return nil
}

// better implements winner selection: most matched sentences, then higher
// ratio; a clearly higher ratio may still displace a low-ratio winner.
func (e *Evaluator) better(cand, cur *similarity.Result) bool {
	if cur == nil {
		return true
	}
	if cand.MatchedCount() != cur.MatchedCount() {
		if cand.MatchedCount() > cur.MatchedCount() {
			return true
		}
		return cand.Ratio()-cur.Ratio() > e.cfg.DifferenceThreshold &&
			cur.Ratio() < e.cfg.Threshold
	}
	return cand.Ratio() > cur.Ratio()
}

// verdict renders the winner into a reason.
func (e *Evaluator) verdict(tmpl model.Template, winner *similarity.Result) model.Reason {
	switch {
	case winner.IsMatched():
		return model.Reason{
			Kind:     model.ReasonMatch,
			Text:     tmpl.ContentTitle,
			Page:     winner.MinPage(),
			Outlines: winner.RightOutlines(),
			Matched:  true,
		}
	case winner.MatchedCount() > 0 || winner.Ratio() > 0:
		return model.Reason{
			Kind:     model.ReasonConflict,
			Text:     "\"" + tmpl.ContentTitle + "\"的表述与范本存在差异",
			Page:     winner.MinPage(),
			Outlines: winner.RightOutlines(),
			Template: winner.LeftContent(),
			Content:  winner.RightContent(),
			Diff:     winner.SimpleResults(),
			Source:   sourceLine(tmpl),
		}
	default:
		return model.Reason{
			Kind:     model.ReasonNoMatch,
			Text:     "未找到\"" + tmpl.ContentTitle + "\"的相关表述",
			Template: winner.LeftContent(),
			Source:   sourceLine(tmpl),
		}
	}
}

func sourceLine(tmpl model.Template) string {
	if tmpl.Name == model.TemplateLaw {
		return "参考法规范本：" + tmpl.ContentTitle
	}
	return "参考行文范本：" + tmpl.ContentTitle
}

func ignoreReason(text string) model.Reason {
	return model.Reason{
		Kind:    model.ReasonIgnoreCondition,
		Text:    text,
		Ignored: true,
	}
}

// renderConditions names the classification axes a skipped block was gated
// on.
func renderConditions(conds []model.TemplateRelation) string {
	names := make([]string, 0, len(conds))
	for _, c := range conds {
		names = append(names, string(c.Name))
	}
	return "因基金分类（" + strings.Join(names, "、") + "）未满足，相关条款按约定省略"
}

func allEmpty(cands [][]string) bool {
	for _, c := range cands {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

func minParaPage(paras []model.Paragraph) int {
	min := 0
	for _, p := range paras {
		if p.Page > 0 && (min == 0 || p.Page < min) {
			min = p.Page
		}
	}
	return min
}
