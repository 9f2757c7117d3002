package schema

import (
	"regexp"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// ratioRe matches one investment-proportion statement after percentage
// normalization: subject, direction, bound.
var ratioRe = regexp.MustCompile(`投资于([^,，。;；]{1,24}?)的(?:资金|资产|比例|市值)不(低于|超过|高于)基金资产(?:净值)?的(\d+(?:\.\d+)?%)`)

// investRatioChecker asserts that the proportion bounds declared in the
// investment chapter are restated identically wherever the document
// repeats them. The same (subject, direction) pair carrying a different
// bound is a drafting error that template matching cannot see.
type investRatioChecker struct{}

func (*investRatioChecker) Label() string { return "schema_103" }
func (*investRatioChecker) Name() string  { return "投资比例前后一致" }

func (c *investRatioChecker) Check(ctx *Ctx) []model.Reason {
	type stmt struct {
		bound string
		page  int
	}
	seen := map[string]stmt{}
	var out []model.Reason

	for _, p := range ctx.Reader.Paragraphs() {
		norm := textnorm.Normalize(textnorm.CleanText(p.Text), []textnorm.ConvertType{textnorm.ConvertPercentage})
		for _, m := range ratioRe.FindAllStringSubmatch(norm, -1) {
			key := m[1] + "/不" + m[2]
			bound := m[3]
			first, ok := seen[key]
			if !ok {
				seen[key] = stmt{bound: bound, page: p.Page}
				continue
			}
			if samePercent(first.bound, bound) {
				continue
			}
			out = append(out, matchFailed(
				"\"投资于"+m[1]+"\"的比例前后不一致："+first.bound+"与"+bound,
				p.Page,
			))
		}
	}
	if len(out) == 0 && len(seen) > 0 {
		out = append(out, matched("投资比例表述前后一致", 0))
	}
	return out
}

func samePercent(a, b string) bool {
	ra, oka := textnorm.ParsePercent(a)
	rb, okb := textnorm.ParsePercent(b)
	if !oka || !okb {
		return a == b
	}
	return ra.Cmp(rb) == 0
}
