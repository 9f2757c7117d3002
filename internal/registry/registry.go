// Package registry holds the rule packs the driver evaluates: built-in
// packs per document mold plus YAML packs loaded at startup. Every rule is
// structurally validated before registration; an invalid rule is surfaced
// at build time, not mid-evaluation.
package registry

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/model"
)

// Registry groups rules by mold, preserving registration order within each
// family.
type Registry struct {
	byMold map[model.Mold][]model.Rule
}

// New returns a registry pre-populated with the built-in packs.
func New() (*Registry, error) {
	r := &Registry{byMold: make(map[model.Mold][]model.Rule)}
	packs := map[model.Mold][]model.Rule{
		model.MoldContract:  contractRules(),
		model.MoldCustody:   custodyRules(),
		model.MoldAssetPlan: assetPlanRules(),
	}
	for mold, rules := range packs {
		for _, rule := range rules {
			if err := r.Register(mold, rule); err != nil {
				return nil, eris.Wrapf(err, "registry: built-in pack %s", mold)
			}
		}
	}
	return r, nil
}

// Empty returns a registry with no packs, for callers that assemble their
// own rule set.
func Empty() *Registry {
	return &Registry{byMold: make(map[model.Mold][]model.Rule)}
}

// MustNew is New for package-level wiring where a bad built-in pack is a
// programming error.
func MustNew() *Registry {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Register validates and appends one rule under mold.
func (r *Registry) Register(mold model.Mold, rule model.Rule) error {
	if err := checkRule(rule); err != nil {
		return eris.Wrapf(err, "registry: rule %s", rule.Label)
	}
	r.byMold[mold] = append(r.byMold[mold], rule)
	return nil
}

// Rules returns the rules for mold grouped by family, families in driver
// order, registration order within each family.
func (r *Registry) Rules(mold model.Mold) []model.Rule {
	all := r.byMold[mold]
	out := make([]model.Rule, 0, len(all))
	for _, family := range model.Families {
		for _, rule := range all {
			if rule.RuleType == family {
				out = append(out, rule)
			}
		}
	}
	return out
}

// Family returns the rules of one family for mold, in registration order.
func (r *Registry) Family(mold model.Mold, family model.RuleType) []model.Rule {
	var out []model.Rule
	for _, rule := range r.byMold[mold] {
		if rule.RuleType == family {
			out = append(out, rule)
		}
	}
	return out
}

// Molds returns the molds with at least one registered rule.
func (r *Registry) Molds() []model.Mold {
	out := make([]model.Mold, 0, len(r.byMold))
	for _, m := range []model.Mold{model.MoldContract, model.MoldCustody, model.MoldAssetPlan} {
		if len(r.byMold[m]) > 0 {
			out = append(out, m)
		}
	}
	return out
}

// Len reports the total rule count across molds.
func (r *Registry) Len() int {
	n := 0
	for _, rules := range r.byMold {
		n += len(rules)
	}
	return n
}

// LoadPackFile parses a YAML rule pack and registers its rules. Rules that
// fail the structural check reject the whole pack.
func (r *Registry) LoadPackFile(path string) error {
	mold, rules, err := LoadPack(path)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if err := r.Register(mold, rule); err != nil {
			return eris.Wrapf(err, "registry: pack %s", path)
		}
	}
	zap.L().Info("registry: loaded rule pack",
		zap.String("path", path),
		zap.String("mold", string(mold)),
		zap.Int("rules", len(rules)),
	)
	return nil
}
