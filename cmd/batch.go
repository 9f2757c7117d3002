package main

import (
	"os/signal"
	"path/filepath"
	"sort"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/fundaudit/internal/model"
)

var (
	batchDir  string
	batchMold string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Audit every parsed document in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		paths, err := filepath.Glob(filepath.Join(batchDir, "*.json"))
		if err != nil {
			return eris.Wrapf(err, "list documents in %s", batchDir)
		}
		if len(paths) == 0 {
			return eris.Errorf("no parsed documents in %s", batchDir)
		}
		sort.Strings(paths)

		limiter := rate.NewLimiter(rate.Limit(cfg.Batch.RatePerSecond), 1)

		var ok, failed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentDocuments)

		for _, path := range paths {
			g.Go(func() error {
				if err := limiter.Wait(gctx); err != nil {
					return eris.Wrap(err, "batch canceled")
				}

				audit, _, err := runAudit(gctx, e, path, model.Mold(batchMold))
				if err != nil {
					// One bad document does not abort the batch.
					failed.Add(1)
					zap.L().Error("audit failed",
						zap.String("document", path),
						zap.Error(err),
					)
					return nil
				}
				ok.Add(1)
				zap.L().Info("audit complete",
					zap.String("audit_id", audit.ID),
					zap.String("document", audit.Document),
					zap.Int("violations", audit.Summary.Violations),
				)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", ok.Load()),
			zap.Int64("failed", failed.Load()),
		)
		if failed.Load() > 0 {
			return eris.Errorf("%d of %d documents failed", failed.Load(), len(paths))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of parsed document JSON files (required)")
	batchCmd.Flags().StringVar(&batchMold, "mold", "", "document mold override applied to every file")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}
