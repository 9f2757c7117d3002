package schema

import (
	"strings"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// nameChecker asserts the canonical party names occur wherever the
// document restates them: the cover, the definitions chapter and the
// signature block. A name that was never extracted is skipped; missing
// extraction is the template rules' concern.
type nameChecker struct{}

func (*nameChecker) Label() string { return "schema_102" }
func (*nameChecker) Name() string  { return "名称前后一致" }

func (c *nameChecker) Check(ctx *Ctx) []model.Reason {
	fields := []string{"基金名称", "基金管理人", "基金托管人"}
	if ctx.Mold == model.MoldAssetPlan {
		fields = []string{"产品名称", "基金管理人", "基金托管人"}
	}

	sections := []struct {
		label string
		paras []model.Paragraph
	}{
		{"封面", coverParagraphs(ctx.Reader.Paragraphs())},
		{"释义", chapterParagraphs(ctx, "释义")},
		{"签署页", chapterParagraphs(ctx, "签署页")},
	}

	var out []model.Reason
	for _, field := range fields {
		a := ctx.Answers.Get(field)
		if a.Empty() {
			continue
		}
		name := textnorm.CleanText(a.Value)
		for _, sec := range sections {
			if len(sec.paras) == 0 {
				continue
			}
			if sectionContains(sec.paras, name) {
				continue
			}
			out = append(out, matchFailed(
				field+"\""+name+"\"在"+sec.label+"中未出现",
				sectionPage(sec.paras),
			))
		}
	}
	if len(out) == 0 {
		out = append(out, matched("当事人名称前后一致", 0))
	}
	return out
}

// coverParagraphs approximates the cover as the first page.
func coverParagraphs(paras []model.Paragraph) []model.Paragraph {
	var out []model.Paragraph
	for _, p := range paras {
		if p.Page == 1 {
			out = append(out, p)
		}
	}
	return out
}

func chapterParagraphs(ctx *Ctx, name string) []model.Paragraph {
	rule := chapters.NewRule([]string{name})
	_, paras, ok := chapters.Scope(ctx.Reader, rule)
	if !ok {
		return nil
	}
	return paras
}

func sectionContains(paras []model.Paragraph, name string) bool {
	for _, p := range paras {
		if strings.Contains(textnorm.CleanText(p.Text), name) {
			return true
		}
	}
	return false
}

func sectionPage(paras []model.Paragraph) int {
	if len(paras) == 0 {
		return 0
	}
	return paras[0].Page
}
