package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/report"
	"github.com/sells-group/fundaudit/internal/store"
)

var (
	exportOut    string
	exportStatus string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored audits to an XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		audits, err := st.ListAudits(ctx, store.AuditFilter{
			Status: model.AuditStatus(exportStatus),
			Limit:  exportLimit,
		})
		if err != nil {
			return err
		}

		reports := make([]report.AuditReport, 0, len(audits))
		for _, a := range audits {
			results, err := st.GetResults(ctx, a.ID)
			if err != nil {
				return err
			}
			reports = append(reports, report.AuditReport{Audit: a, Results: results})
		}

		if err := report.WriteXLSX(exportOut, reports); err != nil {
			return err
		}

		zap.L().Info("report written",
			zap.String("path", exportOut),
			zap.Int("audits", len(reports)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "audits.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "filter by audit status")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 500, "max audits to export")
	rootCmd.AddCommand(exportCmd)
}
