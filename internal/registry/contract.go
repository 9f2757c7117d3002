package registry

import (
	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// contractRules is the built-in pack for 基金合同 documents. Labels are
// stable external identifiers; reports and stored results key on them.
func contractRules() []model.Rule {
	return []model.Rule{
		{
			Label:       "template_001",
			RelatedName: "投资限制",
			Name:        "双十比例限制",
			Origin:      "《公开募集证券投资基金运作管理办法》第三十二条",
			From:        "运作管理办法",
			RuleType:    model.FamilyNormal,
			Tip:         "投资限制章节应当完整载明双十比例限制条款。",
			ContractContent: "基金投资组合比例限制",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "双十比例限制",
					Chapter:      chapters.NewRule([]string{"基金的投资", "投资限制"}, chapters.WithParent()),
					Required:     true,
					Items: []model.TemplateItem{
						model.Leaf("1、一只基金持有一家公司发行的证券，其市值不得超过基金资产净值的10%。"),
						model.Leaf("2、同一基金管理人管理的全部基金持有一家公司发行的证券，不得超过该证券的10%。"),
						&model.Gated{
							Conditions: []model.TemplateRelation{
								model.Unequal(model.ClassifySpecialType, model.TagETF),
							},
							Items: []model.TemplateItem{
								model.Alt{
									"完全按照有关指数的构成比例进行证券投资的基金品种不受前述比例限制。",
									"完全按照有关指数的构成比例进行证券投资的基金品种可不受前述比例限制。",
								},
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_002",
			RelatedName: "基金的募集",
			Name:        "募集规模下限",
			Origin:      "《中华人民共和国证券投资基金法》第五十八条",
			From:        "基金法",
			RuleType:    model.FamilyNormal,
			Tip:         "募集份额总额与持有人人数应不低于法定下限。",
			ContractContent: "基金募集失败的处理",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "募集规模下限",
					Chapter:      chapters.NewRule([]string{"基金的募集"}),
					Required:     true,
					ContentCondition: &model.ContentValueRelation{
						Patterns: map[string]model.ContentSource{
							"raise_amount": {
								Pattern: pattern.MustNew("raise_amount",
									`基金募集份额总额不少于(?P<value>\d+(?:\.\d+)?)亿份`),
							},
							"raise_floor": {Const: "2"},
						},
						Conditions: []model.Content{
							{
								Key:  "raise_amount",
								Name: "基金募集份额总额",
								Type: model.ContentNumber,
								Rules: []model.ContentRule{
									{RefName: "raise_floor", Relation: model.RelGTE, Name: "2亿份"},
								},
							},
						},
					},
					Items: []model.TemplateItem{
						model.Leaf("基金募集期限届满，基金募集份额总额不少于2亿份，基金募集金额不少于2亿元人民币且基金份额持有人的人数不少于200人的，基金管理人应当自募集期限届满之日起10日内聘请法定验资机构验资。"),
					},
				},
			},
		},
		{
			Label:       "template_003",
			RelatedName: "前言",
			Name:        "订立合同的依据",
			Origin:      "《中华人民共和国证券投资基金法》",
			From:        "基金法",
			RuleType:    model.FamilyReplace,
			Tip:         "前言应当载明订立合同依据的法律法规并落款基金全称。",
			ContractContent: "前言",
			RequiredSchema:  true,
			SchemaFields: []model.SchemaField{
				{Field: "基金名称", Required: true},
			},
			Templates: []model.Template{
				{
					Name:         model.TemplateEditing,
					ContentTitle: "订立合同的依据",
					Chapter:      chapters.NewRule([]string{"前言"}),
					Required:     true,
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.InnerReplace,
							Replace: map[string]model.ReplaceRule{
								"IRP_1": {Func: "get_fund_name"},
							},
							Items: []model.TemplateItem{
								model.Leaf("订立本基金合同的目的是保护投资人合法权益，明确{IRP_1}基金合同当事人的权利义务，规范基金运作。"),
							},
						},
						model.Leaf("订立本基金合同的依据是《中华人民共和国民法典》《中华人民共和国证券投资基金法》和其他有关法律法规。"),
					},
				},
			},
		},
		{
			Label:       "template_004",
			RelatedName: "基金的投资",
			Name:        "投资范围表述顺序",
			Origin:      "《公开募集证券投资基金运作管理办法》第三十条",
			From:        "运作管理办法",
			RuleType:    model.FamilyReplace,
			Tip:         "投资范围的列举应当与基金类型一致并按占比从高到低排列。",
			ContractContent: "投资范围",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateEditing,
					ContentTitle: "投资范围",
					Chapter:      chapters.NewRule([]string{"基金的投资", "投资范围"}, chapters.WithParent()),
					Required:     true,
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.InnerRecombination,
							Recomb: &model.InnerRecombRule{
								Key:         "IRC_1",
								ParaPattern: pattern.MustNew("invest_scope", `本基金的投资范围为(?P<content>.+?)等`),
								Patterns: []model.RecombPattern{
									{Pattern: pattern.MustNew("scope_stock", `股票|存托凭证`)},
									{Pattern: pattern.MustNew("scope_bond", `债券|央行票据`)},
									{
										Pattern: pattern.MustNew("scope_gold", `黄金合约`),
										Conditions: []model.TemplateRelation{
											model.Equal(model.ClassifyFundType, model.TagCommodities),
										},
									},
									{Pattern: pattern.MustNew("scope_money", `银行存款|同业存单`)},
								},
								Default: "股票、债券",
							},
							Items: []model.TemplateItem{
								model.Leaf("本基金的投资范围为具有良好流动性的金融工具，包括{IRC_1}以及法律法规或中国证监会允许基金投资的其他金融工具。"),
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_005",
			RelatedName: "基金份额持有人大会",
			Name:        "持有人大会召集程序",
			Origin:      "《中华人民共和国证券投资基金法》第八十三条",
			From:        "基金法",
			RuleType:    model.FamilyMultipleSentences,
			Tip:         "召集程序条款应当逐项列明并保持文件内顺序。",
			ContractContent: "基金份额持有人大会的召集",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "持有人大会召集程序",
					Chapter:      chapters.NewRule([]string{"基金份额持有人大会"}),
					Required:     true,
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type:              model.Recombination,
							DefaultPrefixType: textnorm.SerialArabicDot,
							Slots: []model.RecombSlot{
								{
									Pattern: pattern.MustNew("convene_manager", `基金管理人召集`),
									Items: []model.TemplateItem{
										model.Leaf("1、基金份额持有人大会由基金管理人召集。"),
									},
								},
								{
									Pattern: pattern.MustNew("convene_trustee", `基金托管人召集`),
									Items: []model.TemplateItem{
										model.Leaf("2、基金管理人未按规定召集或者不能召集的，由基金托管人召集。"),
									},
								},
								{
									Pattern: pattern.MustNew("convene_holder", `10%以上基金份额的持有人`),
									Items: []model.TemplateItem{
										model.Leaf("3、代表基金份额10%以上的基金份额持有人就同一事项要求召开基金份额持有人大会，而基金管理人、基金托管人都不召集的，有权自行召集。"),
									},
								},
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_006",
			RelatedName: "投资限制",
			Name:        "禁止行为引用",
			Origin:      "《中华人民共和国证券投资基金法》第二十一条",
			From:        "基金法",
			RuleType:    model.FamilyNormal,
			Tip:         "禁止行为的交叉引用应当与实际列举的项号一致。",
			ContractContent: "基金财产投资的禁止行为",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "禁止行为引用",
					Chapter:      chapters.NewRule([]string{"基金的投资", "投资限制"}, chapters.WithParent()),
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.InnerRefer,
							Refer: map[string]model.ReferRule{
								"IRF_1": {
									Patterns: []*pattern.Collection{
										pattern.MustNew("forbidden", `承销证券|向他人贷款|提供担保|无限责任`),
									},
									ReferChapters: chapters.NewRule([]string{"基金的投资", "投资限制"}, chapters.WithParent()),
									Multiple:      true,
								},
							},
							Items: []model.TemplateItem{
								model.Leaf("基金财产不得用于本章{IRF_1}所列的投资或者活动。"),
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_007",
			RelatedName: "基金的收益与分配",
			Name:        "收益分配方式",
			Origin:      "《公开募集证券投资基金运作管理办法》第三十六条",
			From:        "运作管理办法",
			RuleType:    model.FamilySingleSentenceMultiple,
			Tip:         "收益分配方式的表述应当与约定的分配方式一致。",
			ContractContent: "基金收益分配原则",
			RequiredSchema:  true,
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "收益分配方式",
					Chapter:      chapters.NewRule([]string{"基金的收益与分配"}),
					Required:     true,
					Items: []model.TemplateItem{
						&model.RewriteNode{
							Type: model.SingleSelect,
							Select: &model.SingleSelectRule{
								Key:         "SS_1",
								ParaPattern: pattern.MustNew("dividend", `收益分配方式[为有：:](?P<content>[^。]+)`),
								Patterns: []model.SelectPattern{
									{Pattern: pattern.MustNew("dividend_both", `现金.*再投资|再投资.*现金`), Content: "现金分红与红利再投资"},
									{Pattern: pattern.MustNew("dividend_cash", `现金`), Content: "现金分红"},
									{Pattern: pattern.MustNew("dividend_reinvest", `再投资`), Content: "红利再投资"},
								},
							},
							Items: []model.TemplateItem{
								model.Leaf("本基金收益分配方式为{SS_1}，投资者可选择的方式以招募说明书的约定为准。"),
							},
						},
						&model.SingleOptional{
							Branches: []*model.Gated{
								{
									Conditions: []model.TemplateRelation{
										model.Equal(model.ClassifyFundType, model.TagMoney),
									},
									Items: []model.TemplateItem{
										model.Leaf("本基金收益分配方式为红利再投资，每日分配收益并按月结转为基金份额。"),
									},
								},
								{
									Items: []model.TemplateItem{
										model.Leaf("在符合有关基金分红条件的前提下，本基金每年收益分配次数最多为12次。"),
									},
								},
							},
						},
					},
				},
			},
		},
		{
			Label:       "template_008",
			RelatedName: "基金份额的申购与赎回",
			Name:        "申购赎回开放安排",
			Origin:      "《公开募集证券投资基金运作管理办法》第十九条",
			From:        "运作管理办法",
			RuleType:    model.FamilySingleSentenceMultiple,
			Tip:         "申购赎回开放安排应当与基金运作方式一致。",
			ContractContent: "申购与赎回的开放日及开放时间",
			RequiredSchema:  true,
			SchemaFields: []model.SchemaField{
				{Field: "运作方式", Required: true},
			},
			Conditions: []model.TemplateRelation{
				model.Equal(model.ClassifyOperateMode, model.TagOpen, model.TagRegularOpen),
			},
			Templates: []model.Template{
				{
					Name:         model.TemplateLaw,
					ContentTitle: "申购赎回开放安排",
					Chapter:      chapters.NewRule([]string{"基金份额的申购与赎回"}),
					Required:     true,
					Items: []model.TemplateItem{
						&model.SingleOptional{
							Branches: []*model.Gated{
								{
									Conditions: []model.TemplateRelation{
										model.Equal(model.ClassifyOperateMode, model.TagRegularOpen),
									},
									Items: []model.TemplateItem{
										model.Leaf("本基金在封闭期内不办理申购与赎回业务，开放期的具体时间以基金管理人届时公告为准。"),
									},
								},
								{
									Items: []model.TemplateItem{
										model.Leaf("投资人在开放日办理基金份额的申购和赎回，具体办理时间为上海证券交易所、深圳证券交易所的正常交易日的交易时间。"),
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
