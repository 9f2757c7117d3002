package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
)

func TestVerifyEmptyHoldsVacuously(t *testing.T) {
	assert.True(t, Verify(model.Classification{}, nil))
}

func TestVerifyEqual(t *testing.T) {
	cls := model.Classification{
		model.ClassifyOperateMode: {model.TagOpen},
		model.ClassifyFundType:    {model.TagMixture},
	}

	assert.True(t, Verify(cls, []model.TemplateRelation{
		model.Equal(model.ClassifyOperateMode, model.TagOpen),
	}))
	assert.False(t, Verify(cls, []model.TemplateRelation{
		model.Equal(model.ClassifyOperateMode, model.TagClose),
	}))

	// Several tags on one condition are a disjunction.
	assert.True(t, Verify(cls, []model.TemplateRelation{
		model.Equal(model.ClassifyFundType, model.TagMoney, model.TagMixture),
	}))

	// Several conditions are a conjunction.
	assert.False(t, Verify(cls, []model.TemplateRelation{
		model.Equal(model.ClassifyOperateMode, model.TagOpen),
		model.Equal(model.ClassifyFundType, model.TagMoney),
	}))
}

func TestVerifyUnequal(t *testing.T) {
	cls := model.Classification{
		model.ClassifyOperateMode: {model.TagRegularOpen},
	}

	assert.True(t, VerifyOne(cls, model.Unequal(model.ClassifyOperateMode, model.TagClose)))
	assert.False(t, VerifyOne(cls, model.Unequal(model.ClassifyOperateMode, model.TagRegularOpen)))

	// An axis with no tags satisfies any inequality.
	assert.True(t, VerifyOne(cls, model.Unequal(model.ClassifyFundType, model.TagMoney)))
}

func TestVerifyAllMatch(t *testing.T) {
	cls := model.Classification{
		model.ClassifyOperateMode: {model.TagOpen},
		model.ClassifyFundType:    {model.TagBond},
	}

	cond := model.AllOf(model.ClassifyOperateMode,
		model.FundTypeRelation{Value: model.TagOpen, Relation: model.RelEqual},
		model.FundTypeRelation{Value: model.TagBond, Relation: model.RelEqual, TargetName: model.ClassifyFundType},
	)
	assert.True(t, VerifyOne(cls, cond))

	cond = model.AllOf(model.ClassifyOperateMode,
		model.FundTypeRelation{Value: model.TagOpen, Relation: model.RelEqual},
		model.FundTypeRelation{Value: model.TagMoney, Relation: model.RelEqual, TargetName: model.ClassifyFundType},
	)
	assert.False(t, VerifyOne(cls, cond))
}

func TestCompareValueWithRelation(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		rel  model.Relation
		ct   model.ContentType
		want bool
	}{
		{"number gte holds", "3亿", "2亿", model.RelGTE, model.ContentNumber, true},
		{"number gte fails", "1亿", "2亿", model.RelGTE, model.ContentNumber, false},
		{"chinese numeral", "两千", "2000", model.RelEqual, model.ContentNumber, true},
		{"percent unit forms", "百分之五十", "50%", model.RelEqual, model.ContentPercentage, true},
		{"percent lte", "35%", "百分之三十五", model.RelLTE, model.ContentPercentage, true},
		{"percent lt fails", "40%", "35%", model.RelLT, model.ContentPercentage, false},
		{"string equal after clean", "（一）申购", "(一)申购", model.RelEqual, model.ContentStr, true},
		{"string ordering unsupported", "a", "b", model.RelGTE, model.ContentStr, false},
		{"non numeric under number", "甲", "2", model.RelEqual, model.ContentNumber, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValueWithRelation(tt.a, tt.b, tt.rel, tt.ct))
		})
	}
}

func paras(texts ...string) []model.Paragraph {
	out := make([]model.Paragraph, len(texts))
	for i, text := range texts {
		out[i] = model.Paragraph{Index: i, Page: i + 1, Text: text, Kind: model.KindParagraph}
	}
	return out
}

func TestExtractValuesNamedGroup(t *testing.T) {
	rel := &model.ContentValueRelation{
		Patterns: map[string]model.ContentSource{
			"share": {Pattern: pattern.MustNew("share", `不少于(?P<value>\d+亿)份`)},
			"floor": {Const: "2亿"},
		},
	}
	hits := ExtractValues(rel, paras("基金募集份额总额不少于2亿份。"))

	require.Len(t, hits["share"], 1)
	assert.Equal(t, "2亿", hits["share"][0].Value)
	assert.Equal(t, 0, hits["share"][0].ParaIndex)

	require.Len(t, hits["floor"], 1)
	assert.Equal(t, "2亿", hits["floor"][0].Value)
	assert.Equal(t, -1, hits["floor"][0].ParaIndex)
}

func TestEvaluateContentValuesHolds(t *testing.T) {
	rel := &model.ContentValueRelation{
		Patterns: map[string]model.ContentSource{
			"share": {Pattern: pattern.MustNew("share", `不少于(?P<value>\d+亿)份`)},
			"floor": {Const: "2亿"},
		},
		Conditions: []model.Content{
			{
				Key:  "share",
				Name: "募集份额总额",
				Type: model.ContentNumber,
				Rules: []model.ContentRule{
					{RefName: "floor", Relation: model.RelGTE, Name: "2亿份"},
				},
			},
		},
	}

	assert.Empty(t, EvaluateContentValues(rel, paras("基金募集份额总额不少于3亿份。")))

	errs := EvaluateContentValues(rel, paras("基金募集份额总额不少于1亿份。"))
	require.Len(t, errs, 1)
	assert.Equal(t, "募集份额总额应不低于2亿份", errs[0])
}

func TestEvaluateContentValuesMissingValue(t *testing.T) {
	rel := &model.ContentValueRelation{
		Patterns: map[string]model.ContentSource{
			"share": {Pattern: pattern.MustNew("share", `不少于(?P<value>\d+亿)份`)},
		},
		Conditions: []model.Content{
			{Key: "share", Name: "募集份额总额", Type: model.ContentNumber},
		},
	}

	errs := EvaluateContentValues(rel, paras("本基金为契约型开放式基金。"))
	require.Len(t, errs, 1)
	assert.Equal(t, "请补充募集份额总额", errs[0])
}

func TestEvaluateContentValuesPicksNearestHit(t *testing.T) {
	rel := &model.ContentValueRelation{
		Patterns: map[string]model.ContentSource{
			"sub":   {Pattern: pattern.MustNew("sub", `申购费率[^0-9]*(?P<value>\d+(?:\.\d+)?%)`)},
			"bound": {Pattern: pattern.MustNew("bound", `费率上限为(?P<value>\d+(?:\.\d+)?%)`)},
		},
		Conditions: []model.Content{
			{
				Key:  "sub",
				Name: "申购费率",
				Type: model.ContentPercentage,
				Rules: []model.ContentRule{
					{RefName: "bound", Relation: model.RelLTE, Name: "费率上限"},
				},
			},
		},
	}

	// Two extracted rates; the one nearest the single bound hit wins.
	errs := EvaluateContentValues(rel, paras(
		"A类份额申购费率为5%。",
		"本基金的费率安排如下。",
		"费率上限为2%。",
		"B类份额申购费率为1.5%。",
	))
	assert.Empty(t, errs)
}

func TestVerifyNil(t *testing.T) {
	assert.Empty(t, EvaluateContentValues(nil, paras("任意内容")))
}
