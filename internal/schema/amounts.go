package schema

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// spanRe matches a duration bound after numeral normalization.
var spanRe = regexp.MustCompile(`不超过(\d+)(天|日|个月|月|年|季度)`)

// parseSpanDays converts a duration bound to days. Months count as 30
// days, quarters as 91, years as 365.
func parseSpanDays(s string) (int, bool) {
	norm := textnorm.Normalize(textnorm.CleanText(s), []textnorm.ConvertType{textnorm.ConvertNumber})
	m := spanRe.FindStringSubmatch(norm)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "天", "日":
		return n, true
	case "个月", "月":
		return n * 30, true
	case "季度":
		return n * 91, true
	case "年":
		return n * 365, true
	}
	return 0, false
}

// raisePeriodChecker bounds the raising period declared in the contract:
// 60 days, lifted to 365 for stock-right plans.
type raisePeriodChecker struct{}

func (*raisePeriodChecker) Label() string { return "schema_201" }
func (*raisePeriodChecker) Name() string  { return "募集期限上限" }

func (c *raisePeriodChecker) Check(ctx *Ctx) []model.Reason {
	a := ctx.Answers.Get("募集期限")
	if a.Empty() {
		return nil
	}
	days, ok := parseSpanDays(a.Value)
	if !ok {
		return nil
	}
	limit := 60
	if ctx.Cls.Has(model.ClassifySpecialType, model.TagStockRight) {
		limit = 365
	}
	page := a.Outlines.MinPage()
	if days > limit {
		return []model.Reason{matchFailed(fmt.Sprintf("募集期限不应超过%d天", limit), page)}
	}
	return []model.Reason{matched(fmt.Sprintf("募集期限未超过%d天", limit), page)}
}

// subscribeRe matches the minimum subscription amount after numeral
// normalization, in 万元 or plain 元.
var subscribeRe = regexp.MustCompile(`认购金额[^0-9]*不低于(\d+)(万)?元`)

// subscribeAmountChecker asserts the qualified-investor minimum by
// investment category: 30万 for fixed income, 40万 for mixed, 100万 for
// equities, futures and any plan investing in non-standard assets.
type subscribeAmountChecker struct{}

func (*subscribeAmountChecker) Label() string { return "schema_202" }
func (*subscribeAmountChecker) Name() string  { return "最低认购金额" }

func (c *subscribeAmountChecker) Check(ctx *Ctx) []model.Reason {
	floor := subscribeFloor(ctx.Cls)
	for _, p := range ctx.Reader.Paragraphs() {
		norm := textnorm.Normalize(textnorm.CleanText(p.Text), []textnorm.ConvertType{textnorm.ConvertNumber})
		m := subscribeRe.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if m[2] == "" {
			amount /= 10000
		}
		if amount < floor {
			return []model.Reason{matchFailed(fmt.Sprintf("最低认购金额不得低于%d万元", floor), p.Page)}
		}
		return []model.Reason{matched(fmt.Sprintf("最低认购金额不低于%d万元", floor), p.Page)}
	}
	return nil
}

func subscribeFloor(cls model.Classification) int {
	if cls.Has(model.ClassifyNonStandard, model.TagNonStandardYes) {
		return 100
	}
	switch {
	case cls.Has(model.ClassifyInvestCategory, model.TagEquitiesCategory),
		cls.Has(model.ClassifyInvestCategory, model.TagFuturesCategory):
		return 100
	case cls.Has(model.ClassifyInvestCategory, model.TagMixedCategory):
		return 40
	default:
		return 30
	}
}

// openRe matches an opening-frequency expression after numeral
// normalization; the count group is empty for bare 每季度 / 每月 forms.
var openRe = regexp.MustCompile(`每(\d*)(季度|个月|月|个?工作日|日|天)开放`)

// openDayChecker asserts a regular-open fund opens at most once per
// quarter: 每季度, 每N个月 with N >= 3, or 每N日 with N >= 91.
type openDayChecker struct{}

func (*openDayChecker) Label() string { return "schema_104" }
func (*openDayChecker) Name() string  { return "开放频率" }

func (c *openDayChecker) Check(ctx *Ctx) []model.Reason {
	if !ctx.Cls.Has(model.ClassifyOperateMode, model.TagRegularOpen) {
		return nil
	}
	rule := chapters.NewRule([]string{"基金份额的申购与赎回"})
	_, paras, ok := chapters.Scope(ctx.Reader, rule)
	if !ok {
		paras = ctx.Reader.Paragraphs()
	}
	for _, p := range paras {
		norm := textnorm.Normalize(textnorm.CleanText(p.Text), []textnorm.ConvertType{textnorm.ConvertNumber})
		m := openRe.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		if openAtMostQuarterly(m[1], m[2]) {
			return []model.Reason{matched("开放频率不高于每季度一次", p.Page)}
		}
		return []model.Reason{matchFailed("定期开放基金的开放频率不得高于每季度一次", p.Page)}
	}
	return nil
}

func openAtMostQuarterly(count, unit string) bool {
	n := 1
	if count != "" {
		if v, err := strconv.Atoi(count); err == nil {
			n = v
		}
	}
	switch unit {
	case "季度":
		return true
	case "个月", "月":
		return n >= 3
	default: // 日、天、工作日
		return n >= 91
	}
}
