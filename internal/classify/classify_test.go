package classify

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
	Value string `json:"value"`
}

func loadDoc(t *testing.T, fx docFixture) *docreader.Document {
	t.Helper()
	if fx.ID == "" {
		fx.ID = "doc"
	}
	raw, err := json.Marshal(fx)
	require.NoError(t, err)
	doc, err := docreader.Parse(raw)
	require.NoError(t, err)
	return doc
}

func resolve(t *testing.T, fx docFixture) model.Classification {
	t.Helper()
	doc := loadDoc(t, fx)
	return Resolve(doc, doc.Answers(), fx.Mold)
}

func TestOperateMode(t *testing.T) {
	tests := []struct {
		name string
		mode string
		fund string
		want []model.Tag
	}{
		{"open", "契约型开放式", "华夏成长混合型证券投资基金", []model.Tag{model.TagOpen}},
		{"regular open", "契约型开放式", "鹏华丰泽定期开放债券型基金", []model.Tag{model.TagOpen, model.TagRegularOpen}},
		{"close drops open", "契约型开放式", "易方达瑞景封闭式混合型基金", []model.Tag{model.TagClose}},
		{"closed mode", "契约型封闭式", "招商丰利混合型基金", []model.Tag{model.TagClose}},
		{"initiate", "契约型开放式", "南方卓利发起式债券型基金", []model.Tag{model.TagOpen, model.TagInitiate}},
		{"no mode answer", "", "华夏成长混合型基金", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := resolve(t, docFixture{Answers: map[string]answerValue{
				FieldOperateMode: {Value: tt.mode},
				FieldFundName:    {Value: tt.fund},
			}})
			assert.Equal(t, tt.want, cls[model.ClassifyOperateMode])
		})
	}
}

func TestFundTypePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		ftype string
		fund  string
		want  []model.Tag
	}{
		{"money wins over mixture", "货币市场基金", "天弘余额宝货币市场基金", []model.Tag{model.TagMoney}},
		{"mixture", "混合型证券投资基金", "华夏成长混合型基金", []model.Tag{model.TagMixture}},
		{"stock", "股票型证券投资基金", "易方达消费行业股票型基金", []model.Tag{model.TagStock}},
		{"bond", "债券型证券投资基金", "南方通利债券型基金", []model.Tag{model.TagBond}},
		{"commodities", "商品基金", "华安黄金商品基金", []model.Tag{model.TagCommodities}},
		{"index additive", "股票型证券投资基金", "富国中证500指数股票型基金", []model.Tag{model.TagStock, model.TagIndex}},
		{"enhance index", "股票型证券投资基金", "富国沪深300指数增强股票型基金", []model.Tag{model.TagStock, model.TagIndex, model.TagEnhanceIndex}},
		{"unknown", "", "某某资产管理计划", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := resolve(t, docFixture{Answers: map[string]answerValue{
				FieldFundType: {Value: tt.ftype},
				FieldFundName: {Value: tt.fund},
			}})
			assert.Equal(t, tt.want, cls[model.ClassifyFundType])
		})
	}
}

func TestSpecialType(t *testing.T) {
	tests := []struct {
		name  string
		mold  model.Mold
		fund  string
		scope string
		want  []model.Tag
	}{
		{
			"gold etf", model.MoldContract,
			"华安黄金易ETF", "",
			[]model.Tag{model.TagGoldETF, model.TagETF},
		},
		{
			"gold etf linked", model.MoldContract,
			"华安黄金易ETF联接基金", "",
			[]model.Tag{model.TagGoldETFLinked, model.TagLinkedFund},
		},
		{
			"gold etf linked custody", model.MoldCustody,
			"华安黄金易ETF联接基金", "",
			[]model.Tag{model.TagLinkedFund},
		},
		{
			"features etf", model.MoldContract,
			"海富通上证城投债ETF", "",
			[]model.Tag{model.TagFeaturesETF, model.TagETF},
		},
		{
			"plain etf", model.MoldContract,
			"华泰柏瑞沪深300ETF", "",
			[]model.Tag{model.TagETF},
		},
		{
			"lof", model.MoldContract,
			"嘉实多利分级LOF", "",
			[]model.Tag{model.TagLOF, model.TagClassification},
		},
		{
			"classification custody excluded", model.MoldCustody,
			"嘉实多利分级基金", "",
			nil,
		},
		{
			"stock right from scope", model.MoldAssetPlan,
			"某某集合资产管理计划", "投资于未上市企业股权",
			[]model.Tag{model.TagStockRight},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := resolve(t, docFixture{
				Mold: tt.mold,
				Answers: map[string]answerValue{
					FieldFundName:    {Value: tt.fund},
					FieldInvestScope: {Value: tt.scope},
				},
			})
			assert.Equal(t, tt.want, cls[model.ClassifySpecialType])
		})
	}
}

func TestInvestScope(t *testing.T) {
	cls := resolve(t, docFixture{Answers: map[string]answerValue{
		FieldInvestScope: {Value: "本基金投资于股票、债券及黄金现货合约"},
	}})
	assert.Equal(t,
		[]model.Tag{model.TagStock, model.TagBond, model.TagCommodities},
		cls[model.ClassifyInvestScope])
}

func TestShareCategory(t *testing.T) {
	fx := docFixture{
		Paragraphs: []model.Paragraph{
			{Index: 0, Text: "第一部分 释义", Kind: model.KindParagraph},
			{Index: 1, Text: "A类基金份额：指认购费在认购时收取的份额。", Kind: model.KindParagraph},
			{Index: 2, Text: "C类基金份额：指从本类别基金资产中计提销售服务费的份额。", Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 0, Title: "第一部分 释义", Start: 0, End: 2},
		},
	}
	cls := resolve(t, fx)
	assert.Equal(t, []model.Tag{model.TagShareA, model.TagShareC}, cls[model.ClassifyShareCategory])
}

func TestShareCategoryNoDefinitionChapter(t *testing.T) {
	cls := resolve(t, docFixture{Paragraphs: []model.Paragraph{
		{Index: 0, Text: "A类基金份额", Kind: model.KindParagraph},
	}})
	assert.Empty(t, cls[model.ClassifyShareCategory])
}

func TestSettleMode(t *testing.T) {
	trader := docFixture{
		Paragraphs: []model.Paragraph{
			{Index: 0, Text: "第十部分 托管财产", Kind: model.KindParagraph},
			{Index: 1, Text: "基金管理人通过证券资金账户进行资金结算。", Kind: model.KindParagraph},
		},
		Chapters: []chapterFixture{
			{ElementIndex: 0, Title: "第十部分 托管财产", Start: 0, End: 1},
		},
	}
	cls := resolve(t, trader)
	assert.Equal(t, []model.Tag{model.TagSecuritiesTrader}, cls[model.ClassifySettleMode])

	cls = resolve(t, docFixture{})
	assert.Equal(t, []model.Tag{model.TagTrustee}, cls[model.ClassifySettleMode])
}

func TestAssetPlanAxes(t *testing.T) {
	cls := resolve(t, docFixture{
		Mold: model.MoldAssetPlan,
		Answers: map[string]answerValue{
			FieldProjectName: {Value: "某某集合资产管理计划"},
			FieldInvestClass: {Value: "固定收益类"},
			FieldInvestScope: {Value: "投资于非标准化债权类资产"},
		},
	})
	assert.Equal(t, []model.Tag{model.TagPooled}, cls[model.ClassifyProjectName])
	assert.Equal(t, []model.Tag{model.TagFixedIncomeCategory}, cls[model.ClassifyInvestCategory])
	assert.Equal(t, []model.Tag{model.TagNonStandardYes}, cls[model.ClassifyNonStandard])
}

func TestAssetPlanAxesAbsentForContract(t *testing.T) {
	cls := resolve(t, docFixture{
		Mold: model.MoldContract,
		Answers: map[string]answerValue{
			FieldProjectName: {Value: "某某集合资产管理计划"},
		},
	})
	_, ok := cls[model.ClassifyProjectName]
	assert.False(t, ok)
}

func TestInvestCategory(t *testing.T) {
	tests := []struct {
		class string
		want  []model.Tag
	}{
		{"固定收益类", []model.Tag{model.TagFixedIncomeCategory}},
		{"权益类", []model.Tag{model.TagEquitiesCategory}},
		{"混合类", []model.Tag{model.TagMixedCategory}},
		{"商品及金融衍生品类", []model.Tag{model.TagFuturesCategory}},
		{"", nil},
	}
	for _, tt := range tests {
		cls := resolve(t, docFixture{
			Mold:    model.MoldAssetPlan,
			Answers: map[string]answerValue{FieldInvestClass: {Value: tt.class}},
		})
		assert.Equal(t, tt.want, cls[model.ClassifyInvestCategory], tt.class)
	}
}

func TestNonStandardNo(t *testing.T) {
	cls := resolve(t, docFixture{
		Mold: model.MoldAssetPlan,
		Answers: map[string]answerValue{
			FieldInvestScope: {Value: "投资于标准化债券"},
		},
	})
	assert.Equal(t, []model.Tag{model.TagNonStandardNo}, cls[model.ClassifyNonStandard])

	cls = resolve(t, docFixture{Mold: model.MoldAssetPlan})
	assert.Nil(t, cls[model.ClassifyNonStandard])
}
