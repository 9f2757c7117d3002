// Package report renders stored audits into reviewer-facing files.
package report

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/fundaudit/internal/model"
)

// AuditReport pairs one audit with its per-rule results.
type AuditReport struct {
	Audit   model.Audit
	Results []model.ResultItem
}

var summaryHeader = []string{"审核编号", "文档", "文档类型", "状态", "规则数", "合规", "不合规", "创建时间"}

var detailHeader = []string{"审核编号", "规则编号", "规则名称", "是否合规", "不合规原因", "页码", "修改建议"}

// WriteXLSX writes a two-sheet workbook: per-audit summaries and per-rule
// detail rows.
func WriteXLSX(path string, reports []AuditReport) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("审核汇总")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	writeRow(summary, summaryHeader)
	for _, r := range reports {
		writeRow(summary, []string{
			r.Audit.ID,
			r.Audit.Document,
			string(r.Audit.Mold),
			string(r.Audit.Status),
			strconv.Itoa(r.Audit.Summary.Rules),
			strconv.Itoa(r.Audit.Summary.Compliant),
			strconv.Itoa(r.Audit.Summary.Violations),
			r.Audit.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	detail, err := f.AddSheet("审核明细")
	if err != nil {
		return eris.Wrap(err, "report: add detail sheet")
	}
	writeRow(detail, detailHeader)
	for _, r := range reports {
		for _, item := range r.Results {
			writeRow(detail, detailRow(r.Audit.ID, item))
		}
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

func detailRow(auditID string, item model.ResultItem) []string {
	compliance := "是"
	if !item.IsCompliance {
		compliance = "否"
	}
	var texts []string
	var pages []string
	for _, reason := range item.Reasons {
		if !reason.Blocking() {
			continue
		}
		texts = append(texts, reason.Text)
		if reason.Page > 0 {
			pages = append(pages, strconv.Itoa(reason.Page))
		}
	}
	return []string{
		auditID,
		item.Label,
		item.Name,
		compliance,
		strings.Join(texts, "\n"),
		strings.Join(pages, ","),
		item.Suggestion,
	}
}

func writeRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
