package model

import (
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// MissDetail carries the human-readable explanation emitted when a chapter
// path cannot be located.
type MissDetail struct {
	Reason  string `yaml:"reason_text"`
	Content string `yaml:"miss_content"`
}

// ChapterRule locates a chapter path by successive title regexes,
// parent to child. Continued extends the scope over sibling continuation
// blocks under the same title pattern.
type ChapterRule struct {
	Chapters   []*pattern.Collection
	WithParent bool
	Continued  bool
	Miss       MissDetail
}

// TemplateName distinguishes the two template families.
type TemplateName string

const (
	TemplateLaw     TemplateName = "LAW"
	TemplateEditing TemplateName = "EDITING"
)

// TemplateCheckType names a rewrite transformation.
type TemplateCheckType string

const (
	InnerReplace       TemplateCheckType = "INNER_REPLACE"
	InnerRecombination TemplateCheckType = "INNER_RECOMBINATION"
	Recombination      TemplateCheckType = "RECOMBINATION"
	InnerRefer         TemplateCheckType = "INNER_REFER"
	SingleSelect       TemplateCheckType = "SINGLE_SELECT"
	ChapterCombination TemplateCheckType = "CHAPTER_COMBINATION"
)

// TemplateItem is one node of a template AST. It is a sealed union: Leaf,
// Alt, Gated, SingleOptional and RewriteNode are the only implementations.
type TemplateItem interface {
	templateItem()
}

// Leaf is a literal template paragraph.
type Leaf string

func (Leaf) templateItem() {}

// Alt is a set of at least two alternative phrasings of one paragraph.
type Alt []string

func (Alt) templateItem() {}

// Gated is a block whose Items are evaluated only when Conditions hold.
type Gated struct {
	Conditions []TemplateRelation
	Items      []TemplateItem
}

func (*Gated) templateItem() {}

// SingleOptional picks the first branch whose conditions hold. A trailing
// branch with no conditions is the default; at most one such branch is
// allowed and it must be last.
type SingleOptional struct {
	Branches []*Gated
}

func (*SingleOptional) templateItem() {}

// ReplaceRule binds an INNER_REPLACE key to a named attribute function.
type ReplaceRule struct {
	Func string `yaml:"func"`
}

// RecombPattern is one orderable item of an INNER_RECOMBINATION: hits whose
// first matching regex is earlier in the pattern list sort earlier; hits
// whose Conditions fail are dropped.
type RecombPattern struct {
	Pattern    *pattern.Collection
	Conditions []TemplateRelation
}

// InnerRecombRule reorders and filters the conjunction-split subterms of a
// clause matched by ParaPattern.
type InnerRecombRule struct {
	Key         string
	ParaPattern *pattern.Collection
	Patterns    []RecombPattern
	Default     string
}

// RecombSlot is one paragraph slot of a RECOMBINATION or
// CHAPTER_COMBINATION: a matching regex plus the slot's template subtree.
type RecombSlot struct {
	Pattern    *pattern.Collection
	Items      []TemplateItem
	Conditions []TemplateRelation
}

// ReferRule resolves a cross-reference key ("第X项") from the numeric
// prefixes of paragraphs matching Patterns, optionally restricted to
// ReferChapters.
type ReferRule struct {
	Patterns      []*pattern.Collection
	ReferChapters *ChapterRule
	Multiple      bool
}

// SelectPattern maps a recognizer to the fixed vocabulary variant it
// selects.
type SelectPattern struct {
	Pattern *pattern.Collection
	Content string
}

// SingleSelectRule picks one vocabulary variant from the clause matched by
// ParaPattern.
type SingleSelectRule struct {
	Key         string
	ParaPattern *pattern.Collection
	Patterns    []SelectPattern
}

// RewriteNode applies one transformation over the bound slice of document
// paragraphs before descending into Items. Exactly the field set matching
// Type is populated.
type RewriteNode struct {
	Type TemplateCheckType

	Replace map[string]ReplaceRule // INNER_REPLACE
	Recomb  *InnerRecombRule       // INNER_RECOMBINATION
	Slots   []RecombSlot           // RECOMBINATION, CHAPTER_COMBINATION
	Refer   map[string]ReferRule   // INNER_REFER
	Select  *SingleSelectRule      // SINGLE_SELECT

	// RECOMBINATION numbering.
	SerialNumPattern  *pattern.Collection
	DefaultPrefixType textnorm.SerialKind

	Items []TemplateItem
}

func (*RewriteNode) templateItem() {}

// Template is one reference text of a rule.
type Template struct {
	Name             TemplateName
	ContentTitle     string
	Chapter          *ChapterRule
	Items            []TemplateItem
	Required         bool
	MinRatio         float64 // 0 means the engine default
	ContentCondition *ContentValueRelation
	ConvertTypes     []textnorm.ConvertType
	SynonymNames     []string // named synonym classes applied during diff
}

// RuleType is the rule family.
type RuleType string

const (
	FamilyNormal                 RuleType = "NORMAL_CONDITION"
	FamilyReplace                RuleType = "REPLACE_CONDITION"
	FamilyMultipleSentences      RuleType = "MULTIPLE_SENTENCES"
	FamilySingleSentenceMultiple RuleType = "SINGLE_SENTENCE_MULTIPLE"
)

// Families lists the rule families in driver iteration order.
var Families = []RuleType{
	FamilyNormal,
	FamilyReplace,
	FamilyMultipleSentences,
	FamilySingleSentenceMultiple,
}

// SchemaField names an answer field a rule depends on, with optional
// gating.
type SchemaField struct {
	Field      string
	Required   bool
	Conditions []TemplateRelation
}

// Rule is one registry record.
type Rule struct {
	Label           string // stable external identifier, template_NNN / schema_NNN
	RelatedName     string
	Name            string
	Origin          string
	From            string
	SchemaFields    []SchemaField
	Templates       []Template
	RuleType        RuleType
	Tip             string
	ContractContent string
	Conditions      []TemplateRelation
	RequiredSchema  bool // false demotes SchemaFailed to shown-but-matched
}
