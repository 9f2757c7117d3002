package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/registry"
)

type docFixture struct {
	ID         string                 `json:"id"`
	Mold       model.Mold             `json:"mold"`
	Paragraphs []model.Paragraph      `json:"paragraphs"`
	Chapters   []chapterFixture       `json:"chapters"`
	Answers    map[string]answerValue `json:"answers"`
}

type chapterFixture struct {
	ElementIndex int              `json:"element_index"`
	Title        string           `json:"title"`
	Start        int              `json:"start"`
	End          int              `json:"end"`
	Children     []chapterFixture `json:"children,omitempty"`
}

type answerValue struct {
	Value    string         `json:"value"`
	Outlines model.Outlines `json:"outlines,omitempty"`
}

func loadFixture(t *testing.T, fx docFixture) *docreader.Document {
	t.Helper()
	raw, err := json.Marshal(fx)
	require.NoError(t, err)
	doc, err := docreader.Parse(raw)
	require.NoError(t, err)
	return doc
}

// investDoc is a minimal contract with a 基金的投资/投资限制 chapter whose
// text restates the double-ten restriction verbatim.
func investDoc(t *testing.T, restriction string) *docreader.Document {
	return loadFixture(t, docFixture{
		ID:   "doc-1",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 1, Text: "华夏成长混合型证券投资基金基金合同", Kind: model.KindParagraph},
			{Index: 1, Page: 8, Text: "第十二部分 基金的投资", Kind: model.KindParagraph},
			{Index: 2, Page: 8, Text: "二、投资限制", Kind: model.KindParagraph},
			{Index: 3, Page: 8, Text: restriction, Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{
				ElementIndex: 1, Title: "第十二部分 基金的投资", Start: 1, End: 3,
				Children: []chapterFixture{
					{ElementIndex: 2, Title: "二、投资限制", Start: 2, End: 3},
				},
			},
		},
		Answers: map[string]answerValue{
			"运作方式": {Value: "开放式"},
			"基金名称": {Value: "华夏成长混合型证券投资基金"},
			"基金类型": {Value: "混合型"},
		},
	})
}

func singleTemplateRule(text string) model.Rule {
	return model.Rule{
		Label:          "template_800",
		Name:           "测试条款",
		RuleType:       model.FamilyNormal,
		RequiredSchema: true,
		Templates: []model.Template{
			{
				Name:         model.TemplateLaw,
				ContentTitle: "测试条款",
				Chapter:      chapters.NewRule([]string{"基金的投资", "投资限制"}, chapters.WithParent()),
				Required:     true,
				Items:        []model.TemplateItem{model.Leaf(text)},
			},
		},
	}
}

func newEval(t *testing.T, doc *docreader.Document) *Evaluator {
	t.Helper()
	return NewEvaluator(doc, doc.Answers(), doc.Mold, Config{})
}

func TestEvaluateFullMatch(t *testing.T) {
	const clause = "一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。"
	doc := investDoc(t, clause)

	res := newEval(t, doc).Evaluate(singleTemplateRule(clause))

	assert.True(t, res.IsCompliance)
	require.NotEmpty(t, res.Reasons)
	assert.Equal(t, model.ReasonMatch, res.Reasons[0].Kind)
	assert.True(t, res.Reasons[0].Matched)
	assert.Equal(t, 8, res.Reasons[0].Page)
}

func TestEvaluateConflict(t *testing.T) {
	doc := investDoc(t, "本基金投资于股票资产的比例不低于基金资产的百分之六十。")

	rule := singleTemplateRule("一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。")
	res := newEval(t, doc).Evaluate(rule)

	assert.False(t, res.IsCompliance)
	require.NotEmpty(t, res.Reasons)
	conflict := res.Reasons[0]
	assert.Equal(t, model.ReasonConflict, conflict.Kind)
	assert.NotEmpty(t, conflict.Diff)
	assert.Contains(t, conflict.Template, "10%")
	assert.Contains(t, conflict.Content, "股票")
}

func TestEvaluateMissingChapter(t *testing.T) {
	doc := loadFixture(t, docFixture{
		ID:   "doc-2",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 1, Text: "封面", Kind: model.KindParagraph},
		},
		Answers: map[string]answerValue{"基金名称": {Value: "测试基金"}},
	})

	res := newEval(t, doc).Evaluate(singleTemplateRule("任意条款。"))

	assert.False(t, res.IsCompliance)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, model.ReasonMissContent, res.Reasons[0].Kind)
	assert.Contains(t, res.Reasons[0].Text, "未找到")
}

func TestEvaluateRuleConditionsSkip(t *testing.T) {
	doc := investDoc(t, "条款内容。")

	rule := singleTemplateRule("完全不同的条款。")
	rule.Conditions = []model.TemplateRelation{
		model.Equal(model.ClassifyFundType, model.TagMoney), // doc is 混合型
	}
	res := newEval(t, doc).Evaluate(rule)

	assert.True(t, res.IsCompliance)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, model.ReasonIgnoreCondition, res.Reasons[0].Kind)
	assert.True(t, res.Reasons[0].Ignored)
}

func TestEvaluateSchemaFailed(t *testing.T) {
	doc := investDoc(t, "条款内容。")

	rule := singleTemplateRule("条款内容。")
	rule.SchemaFields = []model.SchemaField{{Field: "登记机构", Required: true}}

	res := newEval(t, doc).Evaluate(rule)
	assert.False(t, res.IsCompliance)

	found := false
	for _, r := range res.Reasons {
		if r.Kind == model.ReasonSchemaFailed {
			found = true
			assert.Contains(t, r.Text, "登记机构")
		}
	}
	assert.True(t, found)
}

func TestEvaluateSchemaFailedNonBlockingWhenNotRequired(t *testing.T) {
	doc := investDoc(t, "条款内容。")

	rule := singleTemplateRule("条款内容。")
	rule.SchemaFields = []model.SchemaField{{Field: "登记机构", Required: true}}
	rule.RequiredSchema = false

	res := newEval(t, doc).Evaluate(rule)

	assert.True(t, res.IsCompliance)
	found := false
	for _, r := range res.Reasons {
		if r.Kind == model.ReasonSchemaFailed {
			found = true
			assert.True(t, r.Matched, "shown but marked matched")
		}
	}
	assert.True(t, found)
}

func TestEvaluateTemplateDisjunction(t *testing.T) {
	const clause = "一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。"
	doc := investDoc(t, clause)

	rule := singleTemplateRule(clause)
	rule.Templates[0].Required = false
	alt := rule.Templates[0]
	alt.ContentTitle = "替代条款"
	alt.Items = []model.TemplateItem{model.Leaf("完全不同的另一种表述方式。")}
	alt.Required = false
	rule.Templates = append(rule.Templates, alt)

	res := newEval(t, doc).Evaluate(rule)

	assert.True(t, res.IsCompliance, "one matched template satisfies the rule")
	for _, r := range res.Reasons {
		if r.Kind != model.ReasonMatch {
			assert.True(t, r.Ignored, "non-required unmatched template reasons are informational")
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	const clause = "一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。"
	rule := singleTemplateRule(clause)

	doc := investDoc(t, clause)
	eval := newEval(t, doc)
	first := eval.Evaluate(rule)
	second := eval.Evaluate(rule)
	assert.Equal(t, first, second)
}

func TestDriverRunsFamiliesInOrder(t *testing.T) {
	doc := investDoc(t, "一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。")

	reg := &registryWith{}
	r := reg.build(t)
	driver := NewDriver(r, Config{})

	results, err := driver.Run(context.Background(), doc, doc.Answers(), model.MoldContract)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	pos := map[model.RuleType]int{}
	for i, f := range model.Families {
		pos[f] = i
	}
	last := -1
	for _, res := range results {
		if res.Label == "" || res.Label[0] != 't' {
			continue // schema checker results come after rule results
		}
		fi := pos[res.RuleType]
		assert.GreaterOrEqual(t, fi, last)
		if fi > last {
			last = fi
		}
	}
}

func TestDriverCancellation(t *testing.T) {
	doc := investDoc(t, "条款内容。")

	reg := &registryWith{}
	r := reg.build(t)
	driver := NewDriver(r, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.Run(ctx, doc, doc.Answers(), model.MoldContract)
	assert.Error(t, err)
}

// registryWith builds a small registry without the built-in packs, so
// driver tests stay hermetic.
type registryWith struct{}

func (registryWith) build(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.Empty()
	rules := []model.Rule{
		singleTemplateRule("一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。"),
	}
	replace := rules[0]
	replace.Label = "template_801"
	replace.RuleType = model.FamilyReplace
	rules = append(rules, replace)
	for _, rule := range rules {
		require.NoError(t, r.Register(model.MoldContract, rule))
	}
	return r
}

func TestDedupReasons(t *testing.T) {
	in := []model.Reason{
		{Kind: model.ReasonMatchFailed, Text: "重复", Page: 3},
		{Kind: model.ReasonMatchFailed, Text: "重复", Page: 3},
		{Kind: model.ReasonMatchFailed, Text: "重复", Page: 4},
	}
	out := dedupReasons(in)
	assert.Len(t, out, 2)
}

// answerDoc carries the clause in the 前言 chapter on page 1 and anchors
// the 基金名称 answer in the 当事人 chapter spanning pages 5-6.
func answerDoc(t *testing.T, page5Text, page6Text string) *docreader.Document {
	return loadFixture(t, docFixture{
		ID:   "doc-3",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 1, Text: "第一部分 前言", Kind: model.KindParagraph},
			{Index: 1, Page: 1, Text: "基金管理人的董事会已批准本基金合同。", Kind: model.KindParagraph},
			{Index: 2, Page: 5, Text: "第三部分 基金合同当事人", Kind: model.KindParagraph},
			{Index: 3, Page: 5, Text: page5Text, Kind: model.KindParagraph},
			{Index: 4, Page: 6, Text: page6Text, Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 0, Title: "第一部分 前言", Start: 0, End: 1},
			{ElementIndex: 2, Title: "第三部分 基金合同当事人", Start: 2, End: 4},
		},
		Answers: map[string]answerValue{
			"基金名称": {
				Value:    "华夏成长混合型证券投资基金",
				Outlines: model.Outlines{5: {{10, 10, 200, 30}}},
			},
		},
	})
}

func prologueRule(text string) model.Rule {
	return model.Rule{
		Label:          "template_810",
		Name:           "批准条款",
		RuleType:       model.FamilyNormal,
		RequiredSchema: true,
		SchemaFields:   []model.SchemaField{{Field: "基金名称", Required: true}},
		Templates: []model.Template{
			{
				Name:         model.TemplateLaw,
				ContentTitle: "批准条款",
				Chapter:      chapters.NewRule([]string{"前言"}),
				Required:     true,
				Items:        []model.TemplateItem{model.Leaf(text)},
			},
		},
	}
}

func TestEvaluateAnswerOutlineScopeWins(t *testing.T) {
	// The clause sits in the declared chapter but nowhere near the answer;
	// with schema fields present the answer's chapter bounds the scope, so
	// the declared chapter must not rescue the match.
	const clause = "基金管理人的董事会已批准本基金合同。"
	doc := answerDoc(t, "基金管理人为华夏基金管理有限公司。", "基金托管人为中国建设银行股份有限公司。")

	res := newEval(t, doc).Evaluate(prologueRule(clause))

	assert.False(t, res.IsCompliance)
	for _, r := range res.Reasons {
		assert.NotEqual(t, 1, r.Page, "scope must not include the declared chapter's pages")
	}
}

func TestEvaluateAnswerScopeCoversWholeChapter(t *testing.T) {
	// The answer outline names page 5 only, but the clause sits on page 6
	// of the same chapter: scope follows the chapter, not the page.
	const clause = "基金托管人为中国建设银行股份有限公司。"
	doc := answerDoc(t, "基金管理人为华夏基金管理有限公司。", clause)

	res := newEval(t, doc).Evaluate(prologueRule(clause))

	assert.True(t, res.IsCompliance)
	require.NotEmpty(t, res.Reasons)
	assert.Equal(t, model.ReasonMatch, res.Reasons[0].Kind)
	assert.Equal(t, 6, res.Reasons[0].Page)
}

func TestSuggestionConcatenatesBlockingReasons(t *testing.T) {
	rule := model.Rule{Tip: "建议核对条款表述。"}
	reasons := []model.Reason{
		{Kind: model.ReasonConflict, Template: "范本条款甲。"},
		{Kind: model.ReasonMatch, Matched: true},
		{Kind: model.ReasonMissContent, Text: "未找到\"签署页\"章节"},
		{Kind: model.ReasonConflict, Template: "范本条款甲。"}, // duplicate line
		{Kind: model.ReasonMatchFailed, Text: "已忽略的原因", Ignored: true},
	}

	got := suggestion(rule, reasons)
	assert.Equal(t,
		"建议核对条款表述。\n建议参考范本表述修改：范本条款甲。\n未找到\"签署页\"章节",
		got)
}
