package registry

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/rewrite"
)

// knownFamilies mirrors model.Families for O(1) membership.
var knownFamilies = map[model.RuleType]bool{
	model.FamilyNormal:                 true,
	model.FamilyReplace:                true,
	model.FamilyMultipleSentences:      true,
	model.FamilySingleSentenceMultiple: true,
}

// checkRule asserts the structural invariants of one rule: valid family,
// valid template name/content_title pairs, well-formed template trees.
func checkRule(rule model.Rule) error {
	if rule.Label == "" {
		return eris.New("rule has no label")
	}
	if !knownFamilies[rule.RuleType] {
		return eris.Errorf("unknown rule family %q", rule.RuleType)
	}
	if len(rule.Templates) == 0 {
		return eris.New("rule has no templates")
	}
	for i, tmpl := range rule.Templates {
		if err := checkTemplate(tmpl); err != nil {
			return eris.Wrapf(err, "template %d", i)
		}
	}
	return nil
}

func checkTemplate(tmpl model.Template) error {
	switch tmpl.Name {
	case model.TemplateLaw, model.TemplateEditing:
	default:
		return eris.Errorf("invalid template name %q", tmpl.Name)
	}
	if tmpl.ContentTitle == "" {
		return eris.New("template has no content_title")
	}
	if len(tmpl.Items) == 0 {
		return eris.New("template has no items")
	}
	return checkItems(tmpl.Items)
}

func checkItems(items []model.TemplateItem) error {
	for _, item := range items {
		if err := checkItem(item); err != nil {
			return err
		}
	}
	return nil
}

func checkItem(item model.TemplateItem) error {
	switch n := item.(type) {
	case model.Leaf:
		if n == "" {
			return eris.New("empty leaf")
		}
	case model.Alt:
		if len(n) < 2 {
			return eris.New("alternative list needs at least 2 entries")
		}
	case *model.Gated:
		if len(n.Conditions) == 0 {
			return eris.New("gated block has no conditions")
		}
		return checkItems(n.Items)
	case *model.SingleOptional:
		return checkSingleOptional(n)
	case *model.RewriteNode:
		return checkRewrite(n)
	default:
		return eris.New("unknown template item type")
	}
	return nil
}

// checkSingleOptional enforces at most one unconditional branch, which
// must be the last.
func checkSingleOptional(n *model.SingleOptional) error {
	if len(n.Branches) == 0 {
		return eris.New("single_optional has no branches")
	}
	for i, br := range n.Branches {
		if len(br.Conditions) == 0 && i != len(n.Branches)-1 {
			return eris.New("single_optional: unconditional branch must be last")
		}
		if err := checkItems(br.Items); err != nil {
			return err
		}
	}
	return nil
}

func checkRewrite(n *model.RewriteNode) error {
	switch n.Type {
	case model.InnerReplace:
		if len(n.Replace) == 0 {
			return eris.New("INNER_REPLACE has no replace rules")
		}
		// An unknown func is not a structural defect: the rewriter
		// substitutes "***" for it at evaluation time.
		for key, rule := range n.Replace {
			if _, ok := rewrite.DefaultFuncs[rule.Func]; !ok {
				zap.L().Warn("registry: unknown attribute func",
					zap.String("key", key),
					zap.String("func", rule.Func),
				)
			}
		}
	case model.InnerRecombination:
		if n.Recomb == nil || n.Recomb.Key == "" || n.Recomb.ParaPattern == nil {
			return eris.New("INNER_RECOMBINATION needs key and para_pattern")
		}
	case model.Recombination, model.ChapterCombination:
		if len(n.Slots) == 0 {
			return eris.Errorf("%s has no slots", n.Type)
		}
		for i, slot := range n.Slots {
			if slot.Pattern == nil {
				return eris.Errorf("%s slot %d has no pattern", n.Type, i)
			}
			if len(slot.Items) == 0 {
				return eris.Errorf("%s slot %d has no items", n.Type, i)
			}
			if err := checkItems(slot.Items); err != nil {
				return err
			}
		}
	case model.InnerRefer:
		if len(n.Refer) == 0 {
			return eris.New("INNER_REFER has no refer rules")
		}
		for key, rule := range n.Refer {
			if len(rule.Patterns) == 0 {
				return eris.Errorf("INNER_REFER %s has no patterns", key)
			}
		}
	case model.SingleSelect:
		if n.Select == nil || n.Select.Key == "" || n.Select.ParaPattern == nil {
			return eris.New("SINGLE_SELECT needs key and para_pattern")
		}
	default:
		return eris.Errorf("unknown rewrite type %q", n.Type)
	}
	return checkItems(n.Items)
}
