// Package classify derives the per-document classification map from
// extracted answers. The map is computed once per document and memoized on
// the answer manager; every condition in the rule engine evaluates against
// it.
package classify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// Answer fields the resolver reads.
const (
	FieldOperateMode = "运作方式"
	FieldFundName    = "基金名称"
	FieldFundType    = "基金类型"
	FieldInvestScope = "投资范围"
	FieldProjectName = "产品名称"
	FieldInvestClass = "投资类别"
)

var (
	moneyFund     = pattern.MustNew("money_fund", `货币市场基金`, `货币基金`)
	etfName       = pattern.MustNew("etf", `ETF`, `交易型开放式`)
	goldETF       = pattern.MustNew("gold_etf", `黄金.{0,6}ETF`, `黄金交易型开放式`)
	linkedName    = pattern.MustNew("linked", `联接`)
	lofName       = pattern.MustNew("lof", `LOF`, `上市开放式`)
	featuresETF   = pattern.MustNew("features_etf", `(债券|货币|跨境|商品).{0,6}ETF`)
	stockRight    = pattern.MustNew("stock_right", `股权`, `未上市企业`)
	nonStandard   = pattern.MustNew("non_standard", `非标准化`, `非标资产`)
	settleAccount = pattern.MustNew("settle_account", `证券资金账户`)
	shareClassA   = pattern.MustNew("share_a", `A类(基金)?份额`)
	shareClassC   = pattern.MustNew("share_c", `C类(基金)?份额`)
)

// Resolve computes the classification for one document. Missing answers
// produce empty tag lists, which makes dependent conditions fail cleanly.
func Resolve(r docreader.Reader, mgr *docreader.Manager, mold model.Mold) model.Classification {
	cls := model.Classification{}

	name := ans(mgr, FieldFundName)
	mode := ans(mgr, FieldOperateMode)
	ftype := ans(mgr, FieldFundType)
	scope := ans(mgr, FieldInvestScope)

	cls[model.ClassifyOperateMode] = operateMode(mode, name)
	cls[model.ClassifyFundType] = fundType(ftype, name)
	cls[model.ClassifySpecialType] = specialType(name, scope, mold)
	cls[model.ClassifyInvestScope] = investScope(scope)
	cls[model.ClassifyShareCategory] = shareCategory(r)
	cls[model.ClassifySettleMode] = settleMode(r)

	if mold == model.MoldAssetPlan {
		cls[model.ClassifyProjectName] = projectName(ans(mgr, FieldProjectName), name)
		cls[model.ClassifyInvestCategory] = investCategory(ans(mgr, FieldInvestClass))
		cls[model.ClassifyNonStandard] = nonStandardInvest(scope)
	}

	zap.L().Debug("classify: resolved",
		zap.String("mold", string(mold)),
		zap.Int("axes", len(cls)),
	)
	return cls
}

func ans(mgr *docreader.Manager, field string) string {
	return textnorm.CleanText(mgr.Get(field).Value)
}

// operateMode: OPEN iff the mode answer says 开放式 without 封闭; the fund
// name adds REGULAR_OPEN (定期开放), CLOSE (封闭, which drops OPEN) and
// INITIATE (发起式).
func operateMode(mode, name string) []model.Tag {
	var tags []model.Tag
	if strings.Contains(mode, "开放式") && !strings.Contains(mode, "封闭") {
		tags = append(tags, model.TagOpen)
	}
	if strings.Contains(name, "定期开放") {
		tags = append(tags, model.TagRegularOpen)
	}
	if strings.Contains(name, "封闭") || strings.Contains(mode, "封闭") {
		tags = remove(tags, model.TagOpen)
		tags = append(tags, model.TagClose)
	}
	if strings.Contains(name, "发起式") {
		tags = append(tags, model.TagInitiate)
	}
	return tags
}

// fundType precedence: MONEY, then MIXTURE, then STOCK/BOND/COMMODITIES,
// with INDEX / ENHANCE_INDEX additive from the fund name.
func fundType(ftype, name string) []model.Tag {
	hay := ftype + name
	var tags []model.Tag
	switch {
	case moneyFund.Matches(name) != nil || moneyFund.Matches(ftype) != nil:
		tags = append(tags, model.TagMoney)
	case strings.Contains(hay, "混合型"):
		tags = append(tags, model.TagMixture)
	case strings.Contains(hay, "股票型"):
		tags = append(tags, model.TagStock)
	case strings.Contains(hay, "债券型"):
		tags = append(tags, model.TagBond)
	case strings.Contains(hay, "商品型") || strings.Contains(hay, "商品基金"):
		tags = append(tags, model.TagCommodities)
	}
	if strings.Contains(name, "指数") {
		tags = append(tags, model.TagIndex)
	}
	if strings.Contains(name, "指数增强") || strings.Contains(name, "增强指数") {
		tags = append(tags, model.TagEnhanceIndex)
	}
	return tags
}

// specialType is additive. FEATURES_ETF and GOLD_ETF imply ETF;
// GOLD_ETF_LINKED implies LINKED_FUND. The custody mold never carries
// GOLD_ETF_LINKED or CLASSIFICATION.
func specialType(name, scope string, mold model.Mold) []model.Tag {
	var tags []model.Tag
	isGold := goldETF.Matches(name) != nil
	isLinked := linkedName.Matches(name) != nil

	if isGold && isLinked {
		if mold != model.MoldCustody {
			tags = append(tags, model.TagGoldETFLinked)
		}
		tags = append(tags, model.TagLinkedFund)
	} else {
		if isGold {
			tags = append(tags, model.TagGoldETF, model.TagETF)
		} else if featuresETF.Matches(name) != nil {
			tags = append(tags, model.TagFeaturesETF, model.TagETF)
		} else if etfName.Matches(name) != nil {
			tags = append(tags, model.TagETF)
		}
		if isLinked {
			tags = append(tags, model.TagLinkedFund)
		}
	}
	if lofName.Matches(name) != nil {
		tags = append(tags, model.TagLOF)
	}
	if strings.Contains(name, "分级") && mold != model.MoldCustody {
		tags = append(tags, model.TagClassification)
	}
	if stockRight.Matches(scope) != nil {
		tags = append(tags, model.TagStockRight)
	}
	return tags
}

func investScope(scope string) []model.Tag {
	var tags []model.Tag
	if strings.Contains(scope, "股票") {
		tags = append(tags, model.TagStock)
	}
	if strings.Contains(scope, "债券") {
		tags = append(tags, model.TagBond)
	}
	if strings.Contains(scope, "商品") || strings.Contains(scope, "黄金") {
		tags = append(tags, model.TagCommodities)
	}
	return tags
}

// shareCategory scans the definition chapter for A/C share classes. The
// result is the ordered set {A, C}.
func shareCategory(r docreader.Reader) []model.Tag {
	rule := chapters.NewRule([]string{"释义"})
	_, paras, ok := chapters.Scope(r, rule)
	if !ok {
		return nil
	}
	var hasA, hasC bool
	for _, p := range paras {
		t := textnorm.CleanText(p.Text)
		if shareClassA.Matches(t) != nil {
			hasA = true
		}
		if shareClassC.Matches(t) != nil {
			hasC = true
		}
	}
	var tags []model.Tag
	if hasA {
		tags = append(tags, model.TagShareA)
	}
	if hasC {
		tags = append(tags, model.TagShareC)
	}
	return tags
}

// settleMode defaults to TRUSTEE; a 证券资金账户 mention inside the
// custody-property or instructions chapter switches to SECURITIES_TRADER.
func settleMode(r docreader.Reader) []model.Tag {
	for _, name := range []string{"托管财产", "指令的发送与执行"} {
		_, paras, ok := chapters.Scope(r, chapters.NewRule([]string{name}))
		if !ok {
			continue
		}
		for _, p := range paras {
			if settleAccount.Matches(textnorm.CleanText(p.Text)) != nil {
				return []model.Tag{model.TagSecuritiesTrader}
			}
		}
	}
	return []model.Tag{model.TagTrustee}
}

func projectName(project, name string) []model.Tag {
	hay := project + name
	switch {
	case strings.Contains(hay, "集合"):
		return []model.Tag{model.TagPooled}
	case strings.Contains(hay, "单一"):
		return []model.Tag{model.TagSingle}
	}
	return nil
}

func investCategory(class string) []model.Tag {
	switch {
	case strings.Contains(class, "固定收益"):
		return []model.Tag{model.TagFixedIncomeCategory}
	case strings.Contains(class, "权益"):
		return []model.Tag{model.TagEquitiesCategory}
	case strings.Contains(class, "混合"):
		return []model.Tag{model.TagMixedCategory}
	case strings.Contains(class, "期货") || strings.Contains(class, "衍生品"):
		return []model.Tag{model.TagFuturesCategory}
	}
	return nil
}

func nonStandardInvest(scope string) []model.Tag {
	if scope == "" {
		return nil
	}
	if nonStandard.Matches(scope) != nil {
		return []model.Tag{model.TagNonStandardYes}
	}
	return []model.Tag{model.TagNonStandardNo}
}

func remove(tags []model.Tag, tag model.Tag) []model.Tag {
	out := tags[:0]
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
