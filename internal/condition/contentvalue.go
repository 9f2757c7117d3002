package condition

import (
	"fmt"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// Hit is one extracted pattern value with its position.
type Hit struct {
	Value     string
	ParaIndex int // -1 for constants
	Outlines  model.Outlines
}

// ExtractValues runs every pattern of the relation over the scoped
// paragraphs and returns the hits per key. Constants yield a single
// position-less hit.
func ExtractValues(rel *model.ContentValueRelation, paras []model.Paragraph) map[string][]Hit {
	out := make(map[string][]Hit, len(rel.Patterns))
	for key, src := range rel.Patterns {
		if src.Pattern == nil {
			out[key] = []Hit{{Value: src.Const, ParaIndex: -1}}
			continue
		}
		for _, p := range paras {
			m := src.Pattern.Matches(textnorm.CleanText(p.Text))
			if m == nil {
				continue
			}
			value := m.Group()
			if v, ok := m.GroupDict()["value"]; ok {
				value = v
			} else if g := m.GroupN(1); g != "" {
				value = g
			}
			out[key] = append(out[key], Hit{Value: value, ParaIndex: p.Index, Outlines: p.Outlines()})
		}
	}
	return out
}

// EvaluateContentValues checks every condition of the relation against the
// scoped paragraphs and returns the accumulated error strings; an empty
// result means the relation holds.
//
// When a key has several hits and some other key has exactly one, the hit
// closest to that single-hit reference by paragraph index wins.
func EvaluateContentValues(rel *model.ContentValueRelation, paras []model.Paragraph) []string {
	if rel == nil {
		return nil
	}
	hits := ExtractValues(rel, paras)

	refIndex := -1
	for _, hs := range hits {
		if len(hs) == 1 && hs[0].ParaIndex >= 0 {
			refIndex = hs[0].ParaIndex
			break
		}
	}

	var errs []string
	for _, cond := range rel.Conditions {
		chosen, ok := pick(hits[cond.Key], refIndex)
		if !ok {
			errs = append(errs, "请补充"+cond.Name)
			continue
		}
		for _, r := range cond.Rules {
			other, ok := pick(hits[r.RefName], refIndex)
			if !ok {
				errs = append(errs, "请补充"+r.Name)
				continue
			}
			if !CompareValueWithRelation(chosen.Value, other.Value, r.Relation, cond.Type) {
				errs = append(errs, fmt.Sprintf("%s应%s%s", cond.Name, relText(r.Relation), r.Name))
			}
		}
	}
	return errs
}

func pick(hs []Hit, refIndex int) (Hit, bool) {
	switch len(hs) {
	case 0:
		return Hit{}, false
	case 1:
		return hs[0], true
	}
	if refIndex < 0 {
		return hs[0], true
	}
	best := hs[0]
	bestDist := dist(best.ParaIndex, refIndex)
	for _, h := range hs[1:] {
		if d := dist(h.ParaIndex, refIndex); d < bestDist {
			best, bestDist = h, d
		}
	}
	return best, true
}

func dist(a, b int) int {
	if a < 0 {
		return 1 << 30
	}
	if a > b {
		return a - b
	}
	return b - a
}

func relText(rel model.Relation) string {
	switch rel {
	case model.RelGTE:
		return "不低于"
	case model.RelLTE:
		return "不高于"
	case model.RelGT:
		return "高于"
	case model.RelLT:
		return "低于"
	case model.RelUnequal:
		return "不等于"
	}
	return "等于"
}
