package model

import "github.com/sells-group/fundaudit/internal/pattern"

// Relation is a comparison operator used by classification conditions and
// content-value rules.
type Relation string

const (
	RelEqual   Relation = "EQUAL"
	RelUnequal Relation = "UNEQUAL"
	RelGTE     Relation = "GTE"
	RelLTE     Relation = "LTE"
	RelLT      Relation = "LT"
	RelGT      Relation = "GT"
)

// FundTypeRelation tests one tag (or numeric value) against a classification
// axis. TargetName overrides the axis of the enclosing TemplateRelation when
// set.
type FundTypeRelation struct {
	TargetName ClassifyName `yaml:"target_name,omitempty"`
	Value      Tag          `yaml:"value"`
	Relation   Relation     `yaml:"relation"`
}

// ConditionValue is one value branch of a TemplateRelation: either a single
// relation or an all-match conjunction.
type ConditionValue struct {
	Single   *FundTypeRelation  `yaml:"single,omitempty"`
	AllMatch []FundTypeRelation `yaml:"all_match,omitempty"`
}

// TemplateRelation gates a rule, template or template branch on the
// document's classification. It holds iff some value branch holds.
type TemplateRelation struct {
	Name   ClassifyName     `yaml:"name"`
	Values []ConditionValue `yaml:"values"`
}

// Equal builds the common "axis contains tag" condition.
func Equal(name ClassifyName, tags ...Tag) TemplateRelation {
	tr := TemplateRelation{Name: name}
	for _, tag := range tags {
		tr.Values = append(tr.Values, ConditionValue{
			Single: &FundTypeRelation{Value: tag, Relation: RelEqual},
		})
	}
	return tr
}

// Unequal builds the "axis does not contain tag" condition.
func Unequal(name ClassifyName, tags ...Tag) TemplateRelation {
	tr := TemplateRelation{Name: name}
	for _, tag := range tags {
		tr.Values = append(tr.Values, ConditionValue{
			Single: &FundTypeRelation{Value: tag, Relation: RelUnequal},
		})
	}
	return tr
}

// AllOf builds a single all-match value branch.
func AllOf(name ClassifyName, rels ...FundTypeRelation) TemplateRelation {
	return TemplateRelation{
		Name:   name,
		Values: []ConditionValue{{AllMatch: rels}},
	}
}

// ContentType declares how a content-value operand is normalized before an
// ordering comparison.
type ContentType string

const (
	ContentStr        ContentType = "STR"
	ContentNumber     ContentType = "NUMBER"
	ContentPercentage ContentType = "PERCENTAGE"
)

// ContentSource supplies one operand of a content-value rule: a pattern
// extracted from scoped paragraphs, or a constant.
type ContentSource struct {
	Pattern *pattern.Collection
	Const   string
}

// ContentRule is one comparison inside a Content condition: the value bound
// to the enclosing Content's key, related to the value named RefName.
type ContentRule struct {
	RefName  string   `yaml:"ref_name"`
	Relation Relation `yaml:"relation"`
	Name     string   `yaml:"name"` // human label used in failure text
}

// Content is one named numeric/percentage constraint.
type Content struct {
	Key   string        `yaml:"key"`
	Name  string        `yaml:"name"`
	Rules []ContentRule `yaml:"rules"`
	Type  ContentType   `yaml:"content_type"`
}

// ContentValueRelation verifies that values extracted from the scoped
// paragraphs satisfy ordering constraints against each other or constants.
type ContentValueRelation struct {
	Patterns   map[string]ContentSource
	Conditions []Content
}
