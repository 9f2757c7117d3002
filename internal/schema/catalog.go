package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/fundaudit/internal/chapters"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/textnorm"
)

// tocEntryRe matches one table-of-contents line after CleanText: an
// optional part prefix, the entry title, a dot leader, a page number.
var tocEntryRe = regexp.MustCompile(`^(?:第[零〇一二三四五六七八九十百\d]+部分)?(.+?)[.…·]{2,}(\d+)$`)

// catalogChecker asserts every 目录 entry resolves to a real chapter
// title, or failing that to matching text on the page it points at.
type catalogChecker struct{}

func (*catalogChecker) Label() string { return "schema_101" }
func (*catalogChecker) Name() string  { return "目录完整性" }

func (c *catalogChecker) Check(ctx *Ctx) []model.Reason {
	rule := chapters.NewRule([]string{"目录"})
	_, paras, ok := chapters.Scope(ctx.Reader, rule)
	if !ok {
		return nil
	}

	titles := chapterTitleSet(ctx.Reader.Syllabuses())
	var out []model.Reason
	for _, p := range paras {
		text := textnorm.CleanText(p.Text)
		m := tocEntryRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		title := stripSerial(strings.TrimSpace(m[1]))
		if title == "" {
			continue
		}
		if titles[title] {
			continue
		}
		page, _ := strconv.Atoi(m[2])
		if pageContains(ctx.Reader.Paragraphs(), page, title) {
			continue
		}
		out = append(out, matchFailed("目录章节\""+title+"\"未找到", p.Page))
	}
	if len(out) == 0 {
		out = append(out, matched("目录条目均可对应到正文章节", 0))
	}
	return out
}

// chapterTitleSet collects every syllabus title, serial prefix stripped.
func chapterTitleSet(chs []*model.Chapter) map[string]bool {
	titles := map[string]bool{}
	var walk func([]*model.Chapter)
	walk = func(chs []*model.Chapter) {
		for _, ch := range chs {
			titles[stripSerial(textnorm.CleanText(ch.Title))] = true
			walk(ch.Children)
		}
	}
	walk(chs)
	return titles
}

var partPrefixRe = regexp.MustCompile(`^第[零〇一二三四五六七八九十百\d]+(部分|章)`)

func stripSerial(s string) string {
	s = partPrefixRe.ReplaceAllString(s, "")
	if _, _, rest, ok := textnorm.ParseSerial(s); ok {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}

func pageContains(paras []model.Paragraph, page int, title string) bool {
	for _, p := range paras {
		if p.Page != page {
			continue
		}
		if strings.Contains(textnorm.CleanText(p.Text), title) {
			return true
		}
	}
	return false
}
