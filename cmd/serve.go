package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/model"
	"github.com/sells-group/fundaudit/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the audit HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(ctx, e),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API route tree. runCtx outlives individual
// requests and bounds the asynchronous audit runs.
func newRouter(runCtx context.Context, e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/audits", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			File string `json:"file"`
			Mold string `json:"mold"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.File == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
			return
		}

		// Audits run detached from the request; poll GET /audits/{id}.
		go func() {
			audit, _, err := runAudit(runCtx, e, body.File, model.Mold(body.Mold))
			if err != nil {
				zap.L().Error("async audit failed",
					zap.String("document", body.File),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("async audit complete",
				zap.String("audit_id", audit.ID),
				zap.Int("violations", audit.Summary.Violations),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":   "accepted",
			"document": body.File,
		})
	})

	r.Get("/audits", func(w http.ResponseWriter, req *http.Request) {
		audits, err := e.Store.ListAudits(req.Context(), store.AuditFilter{
			Status: model.AuditStatus(req.URL.Query().Get("status")),
			Mold:   model.Mold(req.URL.Query().Get("mold")),
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, audits)
	})

	r.Get("/audits/{id}", func(w http.ResponseWriter, req *http.Request) {
		audit, err := e.Store.GetAudit(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "audit not found"})
			return
		}
		writeJSON(w, http.StatusOK, audit)
	})

	r.Get("/audits/{id}/results", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if _, err := e.Store.GetAudit(req.Context(), id); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "audit not found"})
			return
		}
		results, err := e.Store.GetResults(req.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, results)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
