package registry

import (
	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
)

// assetPlanRules is the built-in pack for 资产管理计划合同 documents.
func assetPlanRules() []model.Rule {
	return []model.Rule{
		{
			Label:       "template_201",
			RelatedName: "风险揭示",
			Name:        "非保本揭示",
			Origin:      "《证券期货经营机构私募资产管理业务管理办法》第三十五条",
			From:        "资管业务管理办法",
			RuleType:    model.FamilyNormal,
			Tip:         "风险揭示应当载明资产管理计划不保本不保收益。",
			ContractContent: "特别风险揭示",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "非保本揭示",
					Chapter:      chapters.NewRule([]string{"风险揭示"}),
					Required:     true,
					Items: []model.TemplateItem{
						model.Leaf("本资产管理计划不保证本金和收益，投资者应当充分认识投资风险并自行承担投资损失。"),
						model.Alt{
							"管理人以往的业绩不代表本计划未来的收益，管理人不承诺本计划最低收益。",
							"管理人的过往业绩并不预示本计划的未来表现，管理人不对本计划的收益作出任何承诺。",
						},
					},
				},
			},
		},
		{
			Label:       "template_202",
			RelatedName: "基金的投资",
			Name:        "非标投资限额",
			Origin:      "《证券期货经营机构私募资产管理业务管理办法》第三十七条",
			From:        "资管业务管理办法",
			RuleType:    model.FamilyNormal,
			Tip:         "投资非标准化资产的，应当载明投资限额及锁定安排。",
			ContractContent: "投资范围与投资限制",
			RequiredSchema:  true,
			Conditions: []model.TemplateRelation{
				model.Equal(model.ClassifyNonStandard, model.TagNonStandardYes),
			},
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "非标投资限额",
					Chapter:      chapters.NewRule([]string{"基金的投资", "投资限制"}, chapters.WithParent()),
					Required:     true,
					ContentCondition: &model.ContentValueRelation{
						Patterns: map[string]model.ContentSource{
							"nonstd_ratio": {
								Pattern: pattern.MustNew("nonstd_ratio",
									`投资于非标准化资产的资金不得超过[^0-9]*(?P<value>\d+(?:\.\d+)?%)`),
							},
							"nonstd_cap": {Const: "35%"},
						},
						Conditions: []model.Content{
							{
								Key:  "nonstd_ratio",
								Name: "非标准化资产投资比例",
								Type: model.ContentPercentage,
								Rules: []model.ContentRule{
									{RefName: "nonstd_cap", Relation: model.RelLTE, Name: "35%"},
								},
							},
						},
					},
					Items: []model.TemplateItem{
						model.Leaf("同一证券期货经营机构管理的全部集合资产管理计划投资于非标准化资产的资金不得超过其管理的全部集合资产管理计划净资产的35%。"),
					},
				},
			},
		},
		{
			Label:       "template_203",
			RelatedName: "前言",
			Name:        "管理人名称一致",
			Origin:      "《证券期货经营机构私募资产管理计划运作管理规定》",
			From:        "资管运作管理规定",
			RuleType:    model.FamilyReplace,
			Tip:         "合同当事人条款应当载明管理人与托管人的全称。",
			ContractContent: "合同当事人",
			RequiredSchema:  true,
			SchemaFields: []model.SchemaField{
				{Field: "产品名称", Required: true},
				{Field: "基金管理人", Required: true},
			},
			Templates: []model.Template{
				{
					Name:         model.TemplateEditing,
					ContentTitle: "管理人名称一致",
					Chapter:      chapters.NewRule([]string{"基金合同当事人"}),
					Required:     true,
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.InnerReplace,
							Replace: map[string]model.ReplaceRule{
								"IRP_1": {Func: "get_manager_name"},
							},
							Items: []model.TemplateItem{
								model.Leaf("本计划的管理人为{IRP_1}，依法履行管理人职责。"),
							},
						},
					},
				},
			},
		},
	}
}
