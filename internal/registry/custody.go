package registry

import (
	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
)

// custodyRules is the built-in pack for 托管协议 documents.
func custodyRules() []model.Rule {
	return []model.Rule{
		{
			Label:       "template_101",
			RelatedName: "托管财产",
			Name:        "基金财产独立性",
			Origin:      "《中华人民共和国证券投资基金法》第五条",
			From:        "基金法",
			RuleType:    model.FamilyNormal,
			Tip:         "托管财产章节应当载明基金财产独立于管理人与托管人固有财产。",
			ContractContent: "基金财产的独立性",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "基金财产独立性",
					Chapter:      chapters.NewRule([]string{"托管财产"}),
					Required:     true,
					Items: []model.TemplateItem{
						model.Leaf("基金财产独立于基金管理人、基金托管人的固有财产，并由基金托管人保管。"),
						model.Leaf("基金管理人、基金托管人不得将基金财产归入其固有财产。"),
						model.Alt{
							"基金管理人、基金托管人因基金财产的管理、运用或者其他情形而取得的财产和收益，归入基金财产。",
							"基金管理人、基金托管人因基金财产的管理、运用或其他情形取得的财产和收益归入基金财产。",
						},
					},
				},
			},
		},
		{
			Label:       "template_102",
			RelatedName: "指令的发送与执行",
			Name:        "托管人指令复核",
			Origin:      "《证券投资基金托管业务管理办法》第二十一条",
			From:        "托管业务管理办法",
			RuleType:    model.FamilyNormal,
			Tip:         "指令章节应当约定托管人对划款指令的复核义务。",
			ContractContent: "指令的发送、确认与执行",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "托管人指令复核",
					Chapter:      chapters.NewRule([]string{"指令的发送与执行"}, chapters.Continued()),
					Required:     true,
					Items: []model.TemplateItem{
						model.Leaf("基金托管人应当对基金管理人发送的划款指令的要素完整性进行复核，对指令的合法合规性负有监督义务。"),
						&model.Gated{
							Conditions: []model.TemplateRelation{
								model.Equal(model.ClassifySettleMode, model.TagSecuritiesTrader),
							},
							Items: []model.TemplateItem{
								model.Leaf("采用证券资金账户结算模式的，基金托管人应当与证券公司核对资金交收结果。"),
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_103",
			RelatedName: "前言",
			Name:        "托管协议当事人",
			Origin:      "《中华人民共和国证券投资基金法》",
			From:        "基金法",
			RuleType:    model.FamilyReplace,
			Tip:         "前言应当载明托管协议当事人的全称。",
			ContractContent: "托管协议当事人",
			RequiredSchema:  true,
			SchemaFields: []model.SchemaField{
				{Field: "基金名称", Required: true},
				{Field: "基金托管人", Required: true},
			},
			Templates: []model.Template{
				{
					Name:         model.TemplateEditing,
					ContentTitle: "托管协议当事人",
					Chapter:      chapters.NewRule([]string{"前言"}),
					Required:     true,
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.InnerReplace,
							Replace: map[string]model.ReplaceRule{
								"IRP_1": {Func: "get_fund_name"},
								"IRP_2": {Func: "get_trustee_name"},
							},
							Items: []model.TemplateItem{
								model.Leaf("为明确{IRP_1}基金管理人与基金托管人{IRP_2}之间的权利义务关系，特订立本托管协议。"),
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_104",
			RelatedName: "托管财产",
			Name:        "账户开立顺序",
			Origin:      "《证券投资基金托管业务管理办法》第十六条",
			From:        "托管业务管理办法",
			RuleType:    model.FamilyMultipleSentences,
			Tip:         "账户开立条款应当逐项列明并保持文件内顺序。",
			ContractContent: "基金财产相关账户的开立和管理",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "账户开立顺序",
					Chapter:      chapters.NewRule([]string{"托管财产"}),
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.ChapterCombination,
							Slots: []model.RecombSlot{
								{
									Pattern: pattern.MustNew("bank_account", `银行存款账户`),
									Items: []model.TemplateItem{
										model.Leaf("（一）银行存款账户"),
										model.Leaf("基金托管人以基金的名义开立银行存款账户，保管基金的银行存款。"),
									},
								},
								{
									Pattern: pattern.MustNew("securities_account", `证券账户`),
									Items: []model.TemplateItem{
										model.Leaf("（二）证券账户"),
										model.Leaf("基金托管人以基金托管人与基金联名的方式开立证券账户。"),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
