// Package condition evaluates classification conditions and content-value
// constraints. Conditions gate rules and template branches; content-value
// relations verify numeric facts extracted from scoped paragraphs.
package condition

import (
	"math/big"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// Verify reports whether every condition holds against the classification.
// An empty condition list holds vacuously.
func Verify(cls model.Classification, conds []model.TemplateRelation) bool {
	for _, c := range conds {
		if !VerifyOne(cls, c) {
			return false
		}
	}
	return true
}

// VerifyOne evaluates a single TemplateRelation: it holds iff some value
// branch holds. An all-match branch holds iff every inner relation holds.
func VerifyOne(cls model.Classification, cond model.TemplateRelation) bool {
	for _, v := range cond.Values {
		if v.Single != nil {
			if holds(cls, cond.Name, *v.Single) {
				return true
			}
			continue
		}
		all := len(v.AllMatch) > 0
		for _, rel := range v.AllMatch {
			if !holds(cls, cond.Name, rel) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func holds(cls model.Classification, name model.ClassifyName, rel model.FundTypeRelation) bool {
	axis := name
	if rel.TargetName != "" {
		axis = rel.TargetName
	}
	tags := cls[axis]

	switch rel.Relation {
	case model.RelEqual:
		for _, t := range tags {
			if t == rel.Value {
				return true
			}
		}
		return false
	case model.RelUnequal:
		for _, t := range tags {
			if t == rel.Value {
				return false
			}
		}
		return true
	case model.RelGTE, model.RelLTE, model.RelLT, model.RelGT:
		// Ordering relations require both sides to reduce to numerics.
		want, ok := textnorm.ParseDecimal(string(rel.Value))
		if !ok {
			return false
		}
		for _, t := range tags {
			got, ok := textnorm.ParseDecimal(string(t))
			if !ok {
				continue
			}
			if ordered(got.Cmp(want), rel.Relation) {
				return true
			}
		}
		return false
	}
	return false
}

func ordered(cmp int, rel model.Relation) bool {
	switch rel {
	case model.RelGTE:
		return cmp >= 0
	case model.RelLTE:
		return cmp <= 0
	case model.RelLT:
		return cmp < 0
	case model.RelGT:
		return cmp > 0
	}
	return false
}

// CompareValueWithRelation normalizes both operands under the declared
// content type and applies the relation. Non-numeric input under a numeric
// type simply fails the comparison.
func CompareValueWithRelation(a, b string, rel model.Relation, ct model.ContentType) bool {
	switch ct {
	case model.ContentNumber:
		ra, okA := textnorm.ParseDecimal(a)
		rb, okB := textnorm.ParseDecimal(b)
		if !okA || !okB {
			return false
		}
		return compareRats(ra, rb, rel)
	case model.ContentPercentage:
		ra, okA := textnorm.ParsePercent(a)
		rb, okB := textnorm.ParsePercent(b)
		if !okA || !okB {
			return false
		}
		return compareRats(ra, rb, rel)
	default:
		na := textnorm.CleanText(a)
		nb := textnorm.CleanText(b)
		switch rel {
		case model.RelEqual:
			return na == nb
		case model.RelUnequal:
			return na != nb
		}
		return false
	}
}

func compareRats(a, b *big.Rat, rel model.Relation) bool {
	cmp := a.Cmp(b)
	switch rel {
	case model.RelEqual:
		return cmp == 0
	case model.RelUnequal:
		return cmp != 0
	}
	return ordered(cmp, rel)
}
