// Package chapters holds the catalog of named regular chapters and the
// chapter-rule scoping used to bind rules to document slices.
package chapters

import (
	"strings"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/pattern"
)

// catalog maps a chapter's canonical name to the regexes recognizing its
// title. Titles are matched after textnorm cleaning, so only ASCII
// punctuation appears here.
var catalog = map[string]*pattern.Collection{
	"目录":        pattern.MustNew("目录", `^目\s*录$`, `^目录$`),
	"前言":        pattern.MustNew("前言", `前言`),
	"释义":        pattern.MustNew("释义", `释义`, `定义`),
	"基金合同当事人":   pattern.MustNew("基金合同当事人", `(基金)?合同当事人`, `协议当事人`),
	"基金的募集":     pattern.MustNew("基金的募集", `基金的募集`, `基金份额的发售`, `计划的募集`),
	"基金备案":      pattern.MustNew("基金备案", `基金备案`, `基金合同的生效`),
	"基金份额的申购与赎回": pattern.MustNew("基金份额的申购与赎回", `基金份额的申购[与和]赎回`, `申购[与和]赎回`, `参与[与和、]退出`),
	"基金的投资":     pattern.MustNew("基金的投资", `基金的投资`, `财产的投资`, `^投资$`),
	"投资范围":      pattern.MustNew("投资范围", `投资范围`),
	"投资限制":      pattern.MustNew("投资限制", `投资限制`, `投资禁止`),
	"投资顾问":      pattern.MustNew("投资顾问", `投资顾问`),
	"基金的财产":     pattern.MustNew("基金的财产", `基金的财产`, `基金财产`, `计划财产`),
	"托管财产":      pattern.MustNew("托管财产", `托管财产`, `基金财产的保管`, `财产的保管`),
	"指令的发送与执行":  pattern.MustNew("指令的发送与执行", `指令的(发送|传递)`, `业务指令`, `指令的确认[与及和]执行`),
	"基金份额持有人大会": pattern.MustNew("基金份额持有人大会", `基金份额持有人大会`, `份额持有人大会`),
	"基金的费用与税收":  pattern.MustNew("基金的费用与税收", `基金的?费用[与和]税收`, `基金费用`, `计划的?费用`),
	"基金资产估值":    pattern.MustNew("基金资产估值", `基金资产估值`, `资产估值`, `估值方法`),
	"基金的收益与分配":  pattern.MustNew("基金的收益与分配", `基金的收益[与和]分配`, `收益分配`),
	"基金的信息披露":   pattern.MustNew("基金的信息披露", `信息披露`),
	"基金合同的变更与终止": pattern.MustNew("基金合同的变更与终止", `合同的变更.{0,4}终止`, `合同的解除[与和]终止`),
	"基金财产的清算":   pattern.MustNew("基金财产的清算", `财产的清算`, `计划的清算`),
	"风险揭示":      pattern.MustNew("风险揭示", `风险(揭示|提示)`),
	"签署页":       pattern.MustNew("签署页", `签署`, `签章`, `盖章`, `签字页`),
	"违约责任":      pattern.MustNew("违约责任", `违约责任`),
	"争议的处理":     pattern.MustNew("争议的处理", `争议的?(处理|解决)`),
}

// Title returns the title patterns for a cataloged chapter name, or nil
// when the name is unknown.
func Title(name string) *pattern.Collection { return catalog[name] }

// MustTitle is Title for registry literals; it panics on an unknown name.
func MustTitle(name string) *pattern.Collection {
	c := catalog[name]
	if c == nil {
		panic("chapters: unknown chapter " + name)
	}
	return c
}

// Names returns every cataloged chapter name.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	return out
}

// Option customizes rule construction.
type Option func(*model.ChapterRule)

// WithParent includes parent chapters in the scope's chapter list.
func WithParent() Option {
	return func(r *model.ChapterRule) { r.WithParent = true }
}

// Continued extends the scope over sibling continuation blocks.
func Continued() Option {
	return func(r *model.ChapterRule) { r.Continued = true }
}

// NewRule composes a chapter rule from cataloged names, parent to child,
// pre-rendering the miss-reason text for the path.
func NewRule(names []string, opts ...Option) *model.ChapterRule {
	r := &model.ChapterRule{
		Miss: model.MissDetail{
			Reason:  "未找到\"" + strings.Join(names, "-") + "\"章节",
			Content: strings.Join(names, "-"),
		},
	}
	for _, name := range names {
		r.Chapters = append(r.Chapters, MustTitle(name))
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reader is the slice of the document reader that chapter scoping needs.
type Reader interface {
	FindParagraphsByChapters(patterns []*pattern.Collection, withParent, continued bool) ([]*model.Chapter, []model.Paragraph)
}

// Scope resolves a chapter rule against the document. ok is false when the
// chapter path does not exist; callers turn that into the rule's
// MissContent reason.
func Scope(r Reader, rule *model.ChapterRule) (chs []*model.Chapter, paras []model.Paragraph, ok bool) {
	chs, paras = r.FindParagraphsByChapters(rule.Chapters, rule.WithParent, rule.Continued)
	return chs, paras, len(chs) > 0
}

// MissReason renders the MissContent reason for an unresolved rule.
func MissReason(rule *model.ChapterRule) model.Reason {
	return model.Reason{
		Kind:    model.ReasonMissContent,
		Text:    rule.Miss.Reason,
		Content: rule.Miss.Content,
	}
}
