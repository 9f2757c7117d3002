package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/store"
)

var (
	auditFile string
	auditMold string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a single parsed document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		audit, results, err := runAudit(ctx, e, auditFile, model.Mold(auditMold))
		if err != nil {
			return err
		}

		zap.L().Info("audit complete",
			zap.String("audit_id", audit.ID),
			zap.String("document", audit.Document),
			zap.Int("rules", len(results)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Audit   *model.Audit       `json:"audit"`
			Results []model.ResultItem `json:"results"`
		}{audit, results})
	},
}

// runAudit loads one parsed document, evaluates every applicable rule and
// persists the outcome. moldOverride, when non-empty, wins over the mold
// declared in the document.
func runAudit(ctx context.Context, e *env, path string, moldOverride model.Mold) (*model.Audit, []model.ResultItem, error) {
	doc, err := docreader.Load(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "load document %s", path)
	}

	mold := doc.Mold
	if moldOverride != "" {
		mold = moldOverride
	}

	audit, err := e.Store.CreateAudit(ctx, filepath.Base(path), mold)
	if err != nil {
		return nil, nil, err
	}

	if err := e.Store.UpdateAuditStatus(ctx, audit.ID, model.AuditStatusRunning, ""); err != nil {
		return nil, nil, err
	}

	results, err := e.Driver.Run(ctx, doc, doc.Answers(), mold)
	if err != nil {
		if stErr := e.Store.UpdateAuditStatus(ctx, audit.ID, model.AuditStatusFailed, err.Error()); stErr != nil {
			zap.L().Warn("mark audit failed", zap.String("audit_id", audit.ID), zap.Error(stErr))
		}
		return nil, nil, eris.Wrapf(err, "audit %s", path)
	}

	if err := e.Store.SaveResults(ctx, audit.ID, results); err != nil {
		return nil, nil, err
	}

	stored, err := e.Store.GetAudit(ctx, audit.ID)
	if err != nil {
		return nil, nil, err
	}
	return stored, results, nil
}

var auditsCmd = &cobra.Command{
	Use:   "audits",
	Short: "List stored audits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		audits, err := st.ListAudits(ctx, store.AuditFilter{
			Status: model.AuditStatus(auditsStatus),
			Limit:  auditsLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(audits)
	},
}

var (
	auditsStatus string
	auditsLimit  int
)

func init() {
	auditCmd.Flags().StringVar(&auditFile, "file", "", "parsed document JSON (required)")
	auditCmd.Flags().StringVar(&auditMold, "mold", "", "document mold override (fund_contract, custody, asset_plan)")
	_ = auditCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(auditCmd)

	auditsCmd.Flags().StringVar(&auditsStatus, "status", "", "filter by status")
	auditsCmd.Flags().IntVar(&auditsLimit, "limit", 50, "max audits to list")
	rootCmd.AddCommand(auditsCmd)
}
