package registry

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// LoadPack parses a YAML rule pack into registry rules. The structural
// self-check still runs at Register time; LoadPack only validates shape.
func LoadPack(path string) (model.Mold, []model.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, eris.Wrap(err, "registry: read pack")
	}
	var pack packYAML
	if err := yaml.Unmarshal(raw, &pack); err != nil {
		return "", nil, eris.Wrapf(err, "registry: parse pack %s", path)
	}

	mold := model.Mold(pack.Mold)
	switch mold {
	case model.MoldContract, model.MoldCustody, model.MoldAssetPlan:
	default:
		return "", nil, eris.Errorf("registry: pack %s: unknown mold %q", path, pack.Mold)
	}

	rules := make([]model.Rule, 0, len(pack.Rules))
	for i, ry := range pack.Rules {
		rule, err := ry.toRule()
		if err != nil {
			return "", nil, eris.Wrapf(err, "registry: pack %s rule %d", path, i)
		}
		rules = append(rules, rule)
	}
	return mold, rules, nil
}

type packYAML struct {
	Mold  string     `yaml:"mold"`
	Rules []ruleYAML `yaml:"rules"`
}

type ruleYAML struct {
	Label           string            `yaml:"label"`
	RelatedName     string            `yaml:"related_name"`
	Name            string            `yaml:"name"`
	Origin          string            `yaml:"origin"`
	From            string            `yaml:"from"`
	RuleType        string            `yaml:"rule_type"`
	Tip             string            `yaml:"tip"`
	ContractContent string            `yaml:"contract_content"`
	RequiredSchema  *bool             `yaml:"required_schema"`
	SchemaFields    []schemaFieldYAML `yaml:"schema_fields"`
	Conditions      []conditionYAML   `yaml:"conditions"`
	Templates       []templateYAML    `yaml:"templates"`
}

type schemaFieldYAML struct {
	Field      string          `yaml:"field"`
	Required   bool            `yaml:"required"`
	Conditions []conditionYAML `yaml:"conditions"`
}

type conditionYAML struct {
	Name   string               `yaml:"name"`
	Values []conditionValueYAML `yaml:"values"`
}

type conditionValueYAML struct {
	Value      string        `yaml:"value"`
	Relation   string        `yaml:"relation"`
	TargetName string        `yaml:"target_name"`
	AllMatch   []fundRelYAML `yaml:"all_match"`
}

type fundRelYAML struct {
	Value      string `yaml:"value"`
	Relation   string `yaml:"relation"`
	TargetName string `yaml:"target_name"`
}

type chapterYAML struct {
	Names      []string `yaml:"names"`
	WithParent bool     `yaml:"with_parent"`
	Continued  bool     `yaml:"continued"`
}

type templateYAML struct {
	Name             string            `yaml:"name"`
	ContentTitle     string            `yaml:"content_title"`
	Chapter          *chapterYAML      `yaml:"chapter"`
	Required         bool              `yaml:"required"`
	MinRatio         float64           `yaml:"min_ratio"`
	ConvertTypes     []string          `yaml:"convert_types"`
	SynonymNames     []string          `yaml:"synonyms"`
	ContentCondition *contentCondYAML  `yaml:"content_condition"`
	Items            []itemYAML        `yaml:"items"`
}

type contentCondYAML struct {
	Patterns   map[string]contentSourceYAML `yaml:"patterns"`
	Conditions []contentYAML                `yaml:"conditions"`
}

type contentSourceYAML struct {
	Pattern []string `yaml:"pattern"`
	Const   string   `yaml:"const"`
}

type contentYAML struct {
	Key   string             `yaml:"key"`
	Name  string             `yaml:"name"`
	Type  string             `yaml:"content_type"`
	Rules []contentRuleYAML  `yaml:"rules"`
}

type contentRuleYAML struct {
	RefName  string `yaml:"ref_name"`
	Relation string `yaml:"relation"`
	Name     string `yaml:"name"`
}

// itemYAML is one polymorphic template item: a scalar leaf, a string list
// of alternatives, or a mapping (gated block, single_optional, rewrite
// node).
type itemYAML struct {
	leaf string
	alt  []string
	node *itemMapYAML
}

type itemMapYAML struct {
	Conditions     []conditionYAML `yaml:"conditions"`
	Items          []itemYAML      `yaml:"items"`
	SingleOptional []branchYAML    `yaml:"single_optional"`

	Type              string                 `yaml:"type"`
	Replace           map[string]replYAML    `yaml:"replace"`
	Recomb            *recombYAML            `yaml:"recomb"`
	Slots             []slotYAML             `yaml:"slots"`
	Refer             map[string]referYAML   `yaml:"refer"`
	Select            *selectYAML            `yaml:"select"`
	SerialNumPattern  []string               `yaml:"serial_num_pattern"`
	DefaultPrefixType string                 `yaml:"default_prefix_type"`
}

type branchYAML struct {
	Conditions []conditionYAML `yaml:"conditions"`
	Items      []itemYAML      `yaml:"items"`
}

type replYAML struct {
	Func string `yaml:"func"`
}

type recombYAML struct {
	Key         string             `yaml:"key"`
	ParaPattern []string           `yaml:"para_pattern"`
	Patterns    []recombPatYAML    `yaml:"patterns"`
	Default     string             `yaml:"default"`
}

type recombPatYAML struct {
	Pattern    []string        `yaml:"pattern"`
	Conditions []conditionYAML `yaml:"conditions"`
}

type slotYAML struct {
	Pattern    []string        `yaml:"pattern"`
	Conditions []conditionYAML `yaml:"conditions"`
	Items      []itemYAML      `yaml:"items"`
}

type referYAML struct {
	Patterns [][]string   `yaml:"patterns"`
	Chapter  *chapterYAML `yaml:"refer_chapters"`
	Multiple bool         `yaml:"multiple"`
}

type selectYAML struct {
	Key         string          `yaml:"key"`
	ParaPattern []string        `yaml:"para_pattern"`
	Patterns    []selectPatYAML `yaml:"patterns"`
}

type selectPatYAML struct {
	Pattern []string `yaml:"pattern"`
	Content string   `yaml:"content"`
}

// UnmarshalYAML dispatches on node kind. A mapping carrying a "condition"
// key is rejected: that is the classic misspelling of "conditions" and
// silently yields an always-active block.
func (it *itemYAML) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&it.leaf)
	case yaml.SequenceNode:
		return value.Decode(&it.alt)
	case yaml.MappingNode:
		for i := 0; i < len(value.Content); i += 2 {
			if value.Content[i].Value == "condition" {
				return fmt.Errorf("line %d: \"condition\" is not a template key; use \"conditions\"", value.Content[i].Line)
			}
		}
		it.node = &itemMapYAML{}
		return value.Decode(it.node)
	}
	return fmt.Errorf("line %d: unsupported template item node", value.Line)
}

func (ry ruleYAML) toRule() (model.Rule, error) {
	rule := model.Rule{
		Label:           ry.Label,
		RelatedName:     ry.RelatedName,
		Name:            ry.Name,
		Origin:          ry.Origin,
		From:            ry.From,
		RuleType:        model.RuleType(ry.RuleType),
		Tip:             ry.Tip,
		ContractContent: ry.ContractContent,
		RequiredSchema:  true,
	}
	if ry.RequiredSchema != nil {
		rule.RequiredSchema = *ry.RequiredSchema
	}
	for _, sf := range ry.SchemaFields {
		rule.SchemaFields = append(rule.SchemaFields, model.SchemaField{
			Field:      sf.Field,
			Required:   sf.Required,
			Conditions: toConditions(sf.Conditions),
		})
	}
	rule.Conditions = toConditions(ry.Conditions)

	for i, ty := range ry.Templates {
		tmpl, err := ty.toTemplate(ry.Label, i)
		if err != nil {
			return model.Rule{}, err
		}
		rule.Templates = append(rule.Templates, tmpl)
	}
	return rule, nil
}

func toConditions(conds []conditionYAML) []model.TemplateRelation {
	var out []model.TemplateRelation
	for _, c := range conds {
		tr := model.TemplateRelation{Name: model.ClassifyName(c.Name)}
		for _, v := range c.Values {
			if len(v.AllMatch) > 0 {
				cv := model.ConditionValue{}
				for _, am := range v.AllMatch {
					cv.AllMatch = append(cv.AllMatch, model.FundTypeRelation{
						TargetName: model.ClassifyName(am.TargetName),
						Value:      model.Tag(am.Value),
						Relation:   model.Relation(am.Relation),
					})
				}
				tr.Values = append(tr.Values, cv)
				continue
			}
			tr.Values = append(tr.Values, model.ConditionValue{
				Single: &model.FundTypeRelation{
					TargetName: model.ClassifyName(v.TargetName),
					Value:      model.Tag(v.Value),
					Relation:   model.Relation(v.Relation),
				},
			})
		}
		out = append(out, tr)
	}
	return out
}

func toChapter(cy *chapterYAML) (*model.ChapterRule, error) {
	if cy == nil {
		return nil, nil
	}
	rule := &model.ChapterRule{WithParent: cy.WithParent, Continued: cy.Continued}
	for _, name := range cy.Names {
		p, err := pattern.New(name, name)
		if err != nil {
			return nil, err
		}
		rule.Chapters = append(rule.Chapters, p)
	}
	rule.Miss = model.MissDetail{Reason: missChapterReason(cy.Names)}
	return rule, nil
}

func missChapterReason(names []string) string {
	joined := ""
	for i, n := range names {
		if i > 0 {
			joined += "-"
		}
		joined += n
	}
	return "未找到\"" + joined + "\"章节"
}

func (ty templateYAML) toTemplate(label string, idx int) (model.Template, error) {
	chapter, err := toChapter(ty.Chapter)
	if err != nil {
		return model.Template{}, err
	}
	tmpl := model.Template{
		Name:         model.TemplateName(ty.Name),
		ContentTitle: ty.ContentTitle,
		Chapter:      chapter,
		Required:     ty.Required,
		MinRatio:     ty.MinRatio,
		SynonymNames: ty.SynonymNames,
	}
	for _, ct := range ty.ConvertTypes {
		tmpl.ConvertTypes = append(tmpl.ConvertTypes, textnorm.ConvertType(ct))
	}
	if ty.ContentCondition != nil {
		cc, err := ty.ContentCondition.toRelation(label, idx)
		if err != nil {
			return model.Template{}, err
		}
		tmpl.ContentCondition = cc
	}
	items, err := toItems(ty.Items, label)
	if err != nil {
		return model.Template{}, err
	}
	tmpl.Items = items
	return tmpl, nil
}

func (cy contentCondYAML) toRelation(label string, idx int) (*model.ContentValueRelation, error) {
	rel := &model.ContentValueRelation{Patterns: map[string]model.ContentSource{}}
	for key, src := range cy.Patterns {
		cs := model.ContentSource{Const: src.Const}
		if len(src.Pattern) > 0 {
			p, err := pattern.New(fmt.Sprintf("%s/%d/%s", label, idx, key), src.Pattern...)
			if err != nil {
				return nil, err
			}
			cs.Pattern = p
		}
		rel.Patterns[key] = cs
	}
	for _, c := range cy.Conditions {
		content := model.Content{
			Key:  c.Key,
			Name: c.Name,
			Type: model.ContentType(c.Type),
		}
		for _, r := range c.Rules {
			content.Rules = append(content.Rules, model.ContentRule{
				RefName:  r.RefName,
				Relation: model.Relation(r.Relation),
				Name:     r.Name,
			})
		}
		rel.Conditions = append(rel.Conditions, content)
	}
	return rel, nil
}

func toItems(items []itemYAML, label string) ([]model.TemplateItem, error) {
	var out []model.TemplateItem
	for _, it := range items {
		item, err := it.toItem(label)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (it itemYAML) toItem(label string) (model.TemplateItem, error) {
	switch {
	case it.leaf != "":
		return model.Leaf(it.leaf), nil
	case len(it.alt) > 0:
		return model.Alt(it.alt), nil
	case it.node != nil:
		return it.node.toItem(label)
	}
	return nil, eris.New("empty template item")
}

func (n *itemMapYAML) toItem(label string) (model.TemplateItem, error) {
	if len(n.SingleOptional) > 0 {
		so := &model.SingleOptional{}
		for _, by := range n.SingleOptional {
			items, err := toItems(by.Items, label)
			if err != nil {
				return nil, err
			}
			so.Branches = append(so.Branches, &model.Gated{
				Conditions: toConditions(by.Conditions),
				Items:      items,
			})
		}
		return so, nil
	}

	items, err := toItems(n.Items, label)
	if err != nil {
		return nil, err
	}

	if n.Type == "" {
		return &model.Gated{Conditions: toConditions(n.Conditions), Items: items}, nil
	}

	node := &model.RewriteNode{
		Type:              model.TemplateCheckType(n.Type),
		Items:             items,
		DefaultPrefixType: textnorm.SerialKind(n.DefaultPrefixType),
	}
	if len(n.SerialNumPattern) > 0 {
		p, err := pattern.New(label+"/serial", n.SerialNumPattern...)
		if err != nil {
			return nil, err
		}
		node.SerialNumPattern = p
	}
	for key, ry := range n.Replace {
		if node.Replace == nil {
			node.Replace = map[string]model.ReplaceRule{}
		}
		node.Replace[key] = model.ReplaceRule{Func: ry.Func}
	}
	if n.Recomb != nil {
		rule := &model.InnerRecombRule{
			Key:     n.Recomb.Key,
			Default: n.Recomb.Default,
		}
		if len(n.Recomb.ParaPattern) > 0 {
			p, err := pattern.New(label+"/"+rule.Key, n.Recomb.ParaPattern...)
			if err != nil {
				return nil, err
			}
			rule.ParaPattern = p
		}
		for i, py := range n.Recomb.Patterns {
			p, err := pattern.New(fmt.Sprintf("%s/%s/%d", label, rule.Key, i), py.Pattern...)
			if err != nil {
				return nil, err
			}
			rule.Patterns = append(rule.Patterns, model.RecombPattern{
				Pattern:    p,
				Conditions: toConditions(py.Conditions),
			})
		}
		node.Recomb = rule
	}
	for i, sy := range n.Slots {
		slotItems, err := toItems(sy.Items, label)
		if err != nil {
			return nil, err
		}
		p, err := pattern.New(fmt.Sprintf("%s/slot/%d", label, i), sy.Pattern...)
		if err != nil {
			return nil, err
		}
		node.Slots = append(node.Slots, model.RecombSlot{
			Pattern:    p,
			Conditions: toConditions(sy.Conditions),
			Items:      slotItems,
		})
	}
	for key, ry := range n.Refer {
		if node.Refer == nil {
			node.Refer = map[string]model.ReferRule{}
		}
		chapter, err := toChapter(ry.Chapter)
		if err != nil {
			return nil, err
		}
		rule := model.ReferRule{ReferChapters: chapter, Multiple: ry.Multiple}
		for i, exprs := range ry.Patterns {
			p, err := pattern.New(fmt.Sprintf("%s/%s/%d", label, key, i), exprs...)
			if err != nil {
				return nil, err
			}
			rule.Patterns = append(rule.Patterns, p)
		}
		node.Refer[key] = rule
	}
	if n.Select != nil {
		rule := &model.SingleSelectRule{Key: n.Select.Key}
		if len(n.Select.ParaPattern) > 0 {
			p, err := pattern.New(label+"/"+rule.Key, n.Select.ParaPattern...)
			if err != nil {
				return nil, err
			}
			rule.ParaPattern = p
		}
		for i, py := range n.Select.Patterns {
			p, err := pattern.New(fmt.Sprintf("%s/%s/%d", label, rule.Key, i), py.Pattern...)
			if err != nil {
				return nil, err
			}
			rule.Patterns = append(rule.Patterns, model.SelectPattern{Pattern: p, Content: py.Content})
		}
		node.Select = rule
	}
	return node, nil
}
