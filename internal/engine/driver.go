package engine

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/registry"
	"github.com/sells-group/fundaudit/internal/schema"
)

// Driver runs every registered rule of a mold against a document, in
// family order, then the mold's schema checkers. Results come back in
// registry order.
type Driver struct {
	reg *registry.Registry
	cfg Config
}

// NewDriver wires a driver over a validated registry.
func NewDriver(reg *registry.Registry, cfg Config) *Driver {
	return &Driver{reg: reg, cfg: cfg.withDefaults()}
}

// Run evaluates the document. Cancellation is checked between rules; a
// panicking family is logged and aborted without taking down the others.
func (d *Driver) Run(ctx context.Context, r docreader.Reader, mgr *docreader.Manager, mold model.Mold) ([]model.ResultItem, error) {
	eval := NewEvaluator(r, mgr, mold, d.cfg)

	var out []model.ResultItem
	for _, family := range model.Families {
		results, err := d.runFamily(ctx, eval, mold, family)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}

	for _, checker := range schema.ForMold(mold) {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "engine: run canceled")
		}
		res := model.ResultItem{
			Label:    checker.Label(),
			Name:     checker.Name(),
			RuleType: model.FamilyNormal,
		}
		res.Reasons = dedupReasons(checker.Check(&schema.Ctx{
			Reader:  r,
			Answers: mgr,
			Cls:     eval.Classification(),
			Mold:    mold,
		}))
		res.Finalize()
		out = append(out, res)
	}
	return out, nil
}

func (d *Driver) runFamily(ctx context.Context, eval *Evaluator, mold model.Mold, family model.RuleType) (results []model.ResultItem, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("engine: rule family aborted",
				zap.String("mold", string(mold)),
				zap.String("family", string(family)),
				zap.Any("panic", rec),
			)
			results = nil
		}
	}()

	for _, rule := range d.reg.Family(mold, family) {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrapf(err, "engine: run canceled at rule %s", rule.Label)
		}
		res := eval.Evaluate(rule)
		res.Reasons = dedupReasons(res.Reasons)
		if res.Suggestion == "" && !res.IsCompliance {
			res.Suggestion = suggestion(rule, res.Reasons)
		}
		results = append(results, res)
	}
	return results, nil
}

// dedupReasons drops repeated reasons keyed by (kind, text, page),
// keeping first occurrence order.
func dedupReasons(reasons []model.Reason) []model.Reason {
	type key struct {
		kind model.ReasonKind
		text string
		page int
	}
	seen := map[key]bool{}
	out := reasons[:0]
	for _, r := range reasons {
		k := key{kind: r.Kind, text: r.Text, page: r.Page}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// suggestion renders the fix-it text for a non-compliant result: the
// rule's tip, then one line per blocking reason, deduplicated in first
// occurrence order.
func suggestion(rule model.Rule, reasons []model.Reason) string {
	var lines []string
	seen := map[string]bool{}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		lines = append(lines, s)
	}

	add(rule.Tip)
	for _, r := range reasons {
		if !r.Blocking() {
			continue
		}
		if r.Kind == model.ReasonConflict && r.Template != "" {
			add("建议参考范本表述修改：" + r.Template)
			continue
		}
		add(r.Text)
	}
	return strings.Join(lines, "\n")
}
