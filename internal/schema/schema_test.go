package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
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

func newCtx(t *testing.T, fx docFixture, cls model.Classification) *Ctx {
	t.Helper()
	raw, err := json.Marshal(fx)
	require.NoError(t, err)
	doc, err := docreader.Parse(raw)
	require.NoError(t, err)
	return &Ctx{Reader: doc, Answers: doc.Answers(), Cls: cls, Mold: fx.Mold}
}

func TestRaisePeriodWithinLimit(t *testing.T) {
	ctx := newCtx(t, docFixture{
		ID:   "d1",
		Mold: model.MoldAssetPlan,
		Answers: map[string]answerValue{
			"募集期限": {Value: "自基金份额发售之日起不超过六十天"},
		},
	}, model.Classification{model.ClassifyProjectName: {model.TagPooled}})

	reasons := (&raisePeriodChecker{}).Check(ctx)
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)
	assert.Equal(t, "募集期限未超过60天", reasons[0].Text)
}

func TestRaisePeriodExceeded(t *testing.T) {
	ctx := newCtx(t, docFixture{
		ID:   "d2",
		Mold: model.MoldAssetPlan,
		Answers: map[string]answerValue{
			"募集期限": {Value: "自基金份额发售之日起不超过九十天"},
		},
	}, model.Classification{model.ClassifyProjectName: {model.TagPooled}})

	reasons := (&raisePeriodChecker{}).Check(ctx)
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)
	assert.Equal(t, "募集期限不应超过60天", reasons[0].Text)
}

func TestRaisePeriodStockRightLiftsLimit(t *testing.T) {
	ctx := newCtx(t, docFixture{
		ID:   "d3",
		Mold: model.MoldAssetPlan,
		Answers: map[string]answerValue{
			"募集期限": {Value: "自基金份额发售之日起不超过九十天"},
		},
	}, model.Classification{
		model.ClassifyProjectName: {model.TagPooled},
		model.ClassifySpecialType: {model.TagStockRight},
	})

	reasons := (&raisePeriodChecker{}).Check(ctx)
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)
}

func TestSubscribeAmountFixedIncome(t *testing.T) {
	fx := docFixture{
		ID:   "d4",
		Mold: model.MoldAssetPlan,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 5, Text: "单个投资者的认购金额应不低于30万元。", Kind: model.KindParagraph},
		},
	}

	okCtx := newCtx(t, fx, model.Classification{
		model.ClassifyInvestCategory: {model.TagFixedIncomeCategory},
		model.ClassifyNonStandard:    {model.TagNonStandardNo},
	})
	reasons := (&subscribeAmountChecker{}).Check(okCtx)
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)

	badCtx := newCtx(t, fx, model.Classification{
		model.ClassifyInvestCategory: {model.TagFixedIncomeCategory},
		model.ClassifyNonStandard:    {model.TagNonStandardYes},
	})
	reasons = (&subscribeAmountChecker{}).Check(badCtx)
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)
	assert.Equal(t, "最低认购金额不得低于100万元", reasons[0].Text)
}

func TestSubscribeAmountChineseNumerals(t *testing.T) {
	ctx := newCtx(t, docFixture{
		ID:   "d5",
		Mold: model.MoldAssetPlan,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 5, Text: "认购金额应不低于四十万元。", Kind: model.KindParagraph},
		},
	}, model.Classification{
		model.ClassifyInvestCategory: {model.TagMixedCategory},
	})

	reasons := (&subscribeAmountChecker{}).Check(ctx)
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)
}

func TestOpenDayFrequency(t *testing.T) {
	doc := func(clause string) docFixture {
		return docFixture{
			ID:   "d6",
			Mold: model.MoldContract,
			Paragraphs: []model.Paragraph{
				{Index: 0, Page: 10, Text: "第八部分 基金份额的申购与赎回", Kind: model.KindParagraph},
				{Index: 1, Page: 10, Text: clause, Kind: model.KindParagraph},
			},
			Chapters: []chapterFixture{
				{ElementIndex: 0, Title: "第八部分 基金份额的申购与赎回", Start: 0, End: 1},
			},
		}
	}
	regularOpen := model.Classification{model.ClassifyOperateMode: {model.TagRegularOpen}}

	reasons := (&openDayChecker{}).Check(newCtx(t, doc("本基金每三个月开放一次申购与赎回。"), regularOpen))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)

	reasons = (&openDayChecker{}).Check(newCtx(t, doc("本基金每个月开放一次申购与赎回。"), regularOpen))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)

	// Not a regular-open fund: the check does not apply.
	reasons = (&openDayChecker{}).Check(newCtx(t, doc("本基金每个月开放一次申购与赎回。"),
		model.Classification{model.ClassifyOperateMode: {model.TagOpen}}))
	assert.Empty(t, reasons)
}

func TestCatalogAccuracy(t *testing.T) {
	fx := docFixture{
		ID:   "d7",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 2, Text: "目录", Kind: model.KindParagraph},
			{Index: 1, Page: 2, Text: "基金的募集.........9", Kind: model.KindParagraph},
			{Index: 2, Page: 2, Text: "基金的投资.........12", Kind: model.KindParagraph},
			{Index: 3, Page: 9, Text: "第五部分 基金的募集", Kind: model.KindParagraph},
			{Index: 4, Page: 12, Text: "其他内容", Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 0, Title: "目录", Start: 0, End: 2},
			{ElementIndex: 3, Title: "第五部分 基金的募集", Start: 3, End: 4},
		},
	}

	reasons := (&catalogChecker{}).Check(newCtx(t, fx, model.Classification{}))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)
	assert.Equal(t, "目录章节\"基金的投资\"未找到", reasons[0].Text)
}

func TestCatalogAllResolved(t *testing.T) {
	fx := docFixture{
		ID:   "d8",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 2, Text: "目录", Kind: model.KindParagraph},
			{Index: 1, Page: 2, Text: "基金的募集.........9", Kind: model.KindParagraph},
			{Index: 2, Page: 9, Text: "第五部分 基金的募集", Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 0, Title: "目录", Start: 0, End: 1},
			{ElementIndex: 2, Title: "第五部分 基金的募集", Start: 2, End: 2},
		},
	}

	reasons := (&catalogChecker{}).Check(newCtx(t, fx, model.Classification{}))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)
}

func TestNameConsistency(t *testing.T) {
	fx := docFixture{
		ID:   "d9",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 1, Text: "华夏成长混合型证券投资基金基金合同", Kind: model.KindParagraph},
			{Index: 1, Page: 30, Text: "第二十二部分 签署页", Kind: model.KindParagraph},
			{Index: 2, Page: 30, Text: "基金管理人：华夏基金管理有限公司", Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 1, Title: "第二十二部分 签署页", Start: 1, End: 2},
		},
		Answers: map[string]answerValue{
			"基金名称": {Value: "华夏成长混合型证券投资基金"},
		},
	}

	reasons := (&nameChecker{}).Check(newCtx(t, fx, model.Classification{}))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)
	assert.Contains(t, reasons[0].Text, "签署页")
}

func TestInvestRatioConsistency(t *testing.T) {
	fx := docFixture{
		ID:   "d10",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 8, Text: "本基金投资于股票的资产不低于基金资产的80%。", Kind: model.KindParagraph},
			{Index: 1, Page: 20, Text: "本基金投资于股票的资产不低于基金资产的百分之六十。", Kind: model.KindParagraph},
		},
	}

	reasons := (&investRatioChecker{}).Check(newCtx(t, fx, model.Classification{}))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)
	assert.Contains(t, reasons[0].Text, "股票")
}

func TestItemEnumeration(t *testing.T) {
	fx := docFixture{
		ID:   "d11",
		Mold: model.MoldContract,
		Paragraphs: []model.Paragraph{
			{Index: 0, Page: 22, Text: "第十五部分 基金的费用与税收", Kind: model.KindParagraph},
			{Index: 1, Page: 22, Text: "1、基金管理人的管理费。", Kind: model.KindParagraph},
			{Index: 2, Page: 22, Text: "2、基金托管人的托管费。", Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 0, Title: "第十五部分 基金的费用与税收", Start: 0, End: 2},
		},
	}

	checker := &itemChecker{spec: costItems}
	reasons := checker.Check(newCtx(t, fx, model.Classification{}))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatchFailed, reasons[0].Kind)
	assert.Equal(t, "未载明\"信息披露费用\"", reasons[0].Text)

	// Gated items only apply to matching classifications.
	checker = &itemChecker{spec: costItems}
	fx.Paragraphs = append(fx.Paragraphs, model.Paragraph{
		Index: 3, Page: 22, Text: "3、基金合同生效后与基金相关的信息披露费用。", Kind: model.KindParagraph,
	})
	fx.Chapters[0].End = 3
	reasons = checker.Check(newCtx(t, fx, model.Classification{}))
	require.Len(t, reasons, 1)
	assert.Equal(t, model.ReasonMatch, reasons[0].Kind)
}

func TestForMoldRegistration(t *testing.T) {
	for _, mold := range []model.Mold{model.MoldContract, model.MoldCustody, model.MoldAssetPlan} {
		checkers := ForMold(mold)
		assert.NotEmpty(t, checkers, string(mold))
		seen := map[string]bool{}
		for _, c := range checkers {
			assert.NotEmpty(t, c.Label())
			assert.False(t, seen[c.Label()], "duplicate label %s", c.Label())
			seen[c.Label()] = true
		}
	}
}
