package schema

import (
	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/condition"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// itemRequirement is one enumerated clause a chapter must carry, with
// optional classification gating.
type itemRequirement struct {
	name       string
	pattern    *pattern.Collection
	conditions []model.TemplateRelation
}

// itemSpec drives one enumeration check: every applicable item must be
// present in the chapter.
type itemSpec struct {
	label   string
	name    string
	chapter []string
	items   []itemRequirement
}

// itemChecker runs one enumeration spec.
type itemChecker struct {
	spec itemSpec
}

func (c *itemChecker) Label() string { return c.spec.label }
func (c *itemChecker) Name() string  { return c.spec.name }

func (c *itemChecker) Check(ctx *Ctx) []model.Reason {
	rule := chapters.NewRule(c.spec.chapter)
	_, paras, ok := chapters.Scope(ctx.Reader, rule)
	if !ok {
		miss := chapters.MissReason(rule)
		return []model.Reason{miss}
	}

	var out []model.Reason
	for _, item := range c.spec.items {
		if !condition.Verify(ctx.Cls, item.conditions) {
			continue
		}
		if itemPresent(paras, item.pattern) {
			continue
		}
		out = append(out, matchFailed("未载明\""+item.name+"\"", sectionPage(paras)))
	}
	if len(out) == 0 {
		out = append(out, matched(c.spec.name+"逐项载明", sectionPage(paras)))
	}
	return out
}

func itemPresent(paras []model.Paragraph, p *pattern.Collection) bool {
	for _, para := range paras {
		if p.Matches(textnorm.CleanText(para.Text)) != nil {
			return true
		}
	}
	return false
}

var holderMeetingItems = itemSpec{
	label:   "schema_105",
	name:    "持有人大会事项",
	chapter: []string{"基金份额持有人大会"},
	items: []itemRequirement{
		{name: "大会的召集", pattern: pattern.MustNew("meeting_convene", `召集`)},
		{name: "议事内容与程序", pattern: pattern.MustNew("meeting_agenda", `议事内容|审议事项`)},
		{name: "表决方式", pattern: pattern.MustNew("meeting_vote", `表决`)},
		{name: "决议的生效与公告", pattern: pattern.MustNew("meeting_effect", `生效|公告`)},
	},
}

var costItems = itemSpec{
	label:   "schema_106",
	name:    "基金费用种类",
	chapter: []string{"基金的费用与税收"},
	items: []itemRequirement{
		{name: "基金管理人的管理费", pattern: pattern.MustNew("cost_manage", `管理费`)},
		{name: "基金托管人的托管费", pattern: pattern.MustNew("cost_trustee", `托管费`)},
		{name: "信息披露费用", pattern: pattern.MustNew("cost_disclosure", `信息披露费`)},
		{
			name:    "销售服务费",
			pattern: pattern.MustNew("cost_sales", `销售服务费`),
			conditions: []model.TemplateRelation{
				model.Equal(model.ClassifyFundType, model.TagMoney),
			},
		},
		{
			name:    "指数使用许可费",
			pattern: pattern.MustNew("cost_index", `指数使用(许可)?费`),
			conditions: []model.TemplateRelation{
				model.Equal(model.ClassifyFundType, model.TagIndex, model.TagEnhanceIndex),
			},
		},
	},
}

var orderPactItems = itemSpec{
	label:   "schema_107",
	name:    "指令约定事项",
	chapter: []string{"指令的发送与执行"},
	items: []itemRequirement{
		{name: "指令的内容", pattern: pattern.MustNew("order_content", `指令的内容|指令应包含|指令须载明`)},
		{name: "指令的发送", pattern: pattern.MustNew("order_send", `指令的发送|发送指令`)},
		{name: "指令的确认与执行", pattern: pattern.MustNew("order_confirm", `指令的确认|执行指令|指令的执行`)},
		{name: "错误指令的处理", pattern: pattern.MustNew("order_error", `错误指令|指令错误`)},
	},
}

var valuationItems = itemSpec{
	label:   "schema_108",
	name:    "估值约定事项",
	chapter: []string{"基金资产估值"},
	items: []itemRequirement{
		{name: "估值对象", pattern: pattern.MustNew("value_target", `估值对象`)},
		{name: "估值方法", pattern: pattern.MustNew("value_method", `估值方法`)},
		{name: "估值程序", pattern: pattern.MustNew("value_process", `估值程序`)},
		{name: "估值错误的处理", pattern: pattern.MustNew("value_error", `估值错误`)},
		{name: "暂停估值的情形", pattern: pattern.MustNew("value_suspend", `暂停估值`)},
	},
}
