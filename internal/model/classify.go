package model

// ClassifyName names one categorical axis of the fund classification.
type ClassifyName string

const (
	ClassifyOperateMode    ClassifyName = "OPERATE_MODE"
	ClassifyFundType       ClassifyName = "FUND_TYPE"
	ClassifySpecialType    ClassifyName = "SPECIAL_TYPE"
	ClassifyInvestScope    ClassifyName = "INVEST_SCOPE"
	ClassifyShareCategory  ClassifyName = "SHARE_CATEGORY"
	ClassifySettleMode     ClassifyName = "SETTLE_ACCOUNTS_MODE"
	ClassifyProjectName    ClassifyName = "PROJECT_NAME"
	ClassifyInvestCategory ClassifyName = "INVEST_CATEGORY"
	ClassifyNonStandard    ClassifyName = "NON_STANDARD_INVESTMENT"
)

// Tag is one categorical value inside a classification axis.
type Tag string

// Operate mode tags.
const (
	TagOpen        Tag = "OPEN"
	TagClose       Tag = "CLOSE"
	TagRegularOpen Tag = "REGULAR_OPEN"
	TagInitiate    Tag = "INITIATE"
)

// Fund type tags.
const (
	TagMoney        Tag = "MONEY"
	TagMixture      Tag = "MIXTURE"
	TagStock        Tag = "STOCK"
	TagBond         Tag = "BOND"
	TagCommodities  Tag = "COMMODITIES"
	TagIndex        Tag = "INDEX"
	TagEnhanceIndex Tag = "ENHANCE_INDEX"
)

// Special type tags.
const (
	TagETF            Tag = "ETF"
	TagFeaturesETF    Tag = "FEATURES_ETF"
	TagGoldETF        Tag = "GOLD_ETF"
	TagGoldETFLinked  Tag = "GOLD_ETF_LINKED"
	TagLinkedFund     Tag = "LINKED_FUND"
	TagLOF            Tag = "LOF"
	TagClassification Tag = "CLASSIFICATION"
	TagStockRight     Tag = "STOCK_RIGHT"
)

// Settle-accounts mode tags.
const (
	TagTrustee          Tag = "TRUSTEE"
	TagSecuritiesTrader Tag = "SECURITIES_TRADER"
)

// Share category tags.
const (
	TagShareA Tag = "A"
	TagShareC Tag = "C"
)

// Project and asset-plan tags.
const (
	TagPooled Tag = "POOLED"
	TagSingle Tag = "SINGLE"
)

// Invest category tags (asset-management plans).
const (
	TagFixedIncomeCategory Tag = "FIXED_INCOME_CATEGORY"
	TagEquitiesCategory    Tag = "EQUITIES_CATEGORY"
	TagMixedCategory       Tag = "MIXED_CATEGORY"
	TagFuturesCategory     Tag = "FUTURES_CATEGORY"
)

// Non-standard investment tags.
const (
	TagNonStandardYes Tag = "NON_STANDARD_INVESTMENT_YES"
	TagNonStandardNo  Tag = "NON_STANDARD_INVESTMENT_NO"
)

// TagUniverse lists the valid tags per classification axis. Classification
// output is always a subset of the axis universe.
var TagUniverse = map[ClassifyName][]Tag{
	ClassifyOperateMode:    {TagOpen, TagClose, TagRegularOpen, TagInitiate},
	ClassifyFundType:       {TagMoney, TagMixture, TagStock, TagBond, TagCommodities, TagIndex, TagEnhanceIndex},
	ClassifySpecialType:    {TagETF, TagFeaturesETF, TagGoldETF, TagGoldETFLinked, TagLinkedFund, TagLOF, TagClassification, TagStockRight},
	ClassifyInvestScope:    {TagStock, TagBond, TagCommodities},
	ClassifyShareCategory:  {TagShareA, TagShareC},
	ClassifySettleMode:     {TagTrustee, TagSecuritiesTrader},
	ClassifyProjectName:    {TagPooled, TagSingle},
	ClassifyInvestCategory: {TagFixedIncomeCategory, TagEquitiesCategory, TagMixedCategory, TagFuturesCategory},
	ClassifyNonStandard:    {TagNonStandardYes, TagNonStandardNo},
}

// Classification maps an axis to the tags derived for one document. Tag
// order is the documented precedence order; the set is stable per document.
type Classification map[ClassifyName][]Tag

// Has reports whether tag is present on the named axis. A missing axis has
// no tags, so Has is false.
func (c Classification) Has(name ClassifyName, tag Tag) bool {
	for _, t := range c[name] {
		if t == tag {
			return true
		}
	}
	return false
}

// HasTag reports whether tag is present on any axis.
func (c Classification) HasTag(tag Tag) bool {
	for name := range c {
		if c.Has(name, tag) {
			return true
		}
	}
	return false
}
