package main

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/enrich"
	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/report"
	"github.com/influmetrics/integrations-cli/internal/store"
)

var (
	servePort     int
	servePrepared string
	serveEnriched string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve merged records and aggregation tables over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		prepared := servePrepared
		if prepared == "" {
			prepared = filepath.Join(cfg.Output.Dir, "prepared_integrations.csv")
		}
		enriched := serveEnriched
		if enriched == "" {
			enriched = filepath.Join(cfg.Output.Dir, "youtube_enriched.json")
		}

		merged, err := mergeRecords(prepared, enriched)
		if err != nil {
			return err
		}
		zap.L().Info("loaded dataset",
			zap.String("prepared", prepared),
			zap.String("enriched", enriched),
			zap.Int("records", len(merged)),
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newAPIRouter(merged, st),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newAPIRouter(merged []model.MergedRecord, st store.Store) http.Handler {
	rendered := enrich.Render(merged)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/records", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, rowMaps(rendered))
	})

	r.Get("/api/summary", func(w http.ResponseWriter, req *http.Request) {
		summary := datasetSummary(merged)
		// Surface the validation warnings from the most recent prepare run.
		runs, err := st.ListRuns(req.Context(), store.RunFilter{Stage: "prepare", Limit: 1})
		if err == nil && len(runs) > 0 && runs[0].Summary != nil {
			summary["warnings"] = runs[0].Summary.Warnings
		}
		writeJSON(w, http.StatusOK, summary)
	})

	r.Get("/api/report", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.ComputeAll(merged)))
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		filter := store.RunFilter{
			Stage:  req.URL.Query().Get("stage"),
			Status: model.RunStatus(req.URL.Query().Get("status")),
			Limit:  queryInt(req, "limit", 50),
			Offset: queryInt(req, "offset", 0),
		}
		runs, err := st.ListRuns(req.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list runs"})
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

func datasetSummary(merged []model.MergedRecord) map[string]any {
	total := len(merged)
	winners := 0
	enriched := 0
	parseable := 0
	budget := 0.0
	purchases := 0.0
	for i := range merged {
		rec := &merged[i]
		if rec.Enrichment != nil {
			enriched++
		}
		if rec.IsParseable {
			parseable++
		}
		if !math.IsNaN(rec.Budget) {
			budget += rec.Budget
		}
		if !math.IsNaN(rec.PurchaseFTotal) {
			purchases += rec.PurchaseFTotal
			if rec.PurchaseFTotal > 0 {
				winners++
			}
		}
	}
	return map[string]any{
		"total_records":   total,
		"parseable":       parseable,
		"enriched":        enriched,
		"with_purchases":  winners,
		"total_budget":    budget,
		"total_purchases": purchases,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(req *http.Request, key string, fallback int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&servePrepared, "prepared", "", "prepared CSV (default <output.dir>/prepared_integrations.csv)")
	serveCmd.Flags().StringVar(&serveEnriched, "enriched", "", "enriched JSON (default <output.dir>/youtube_enriched.json)")
	rootCmd.AddCommand(serveCmd)
}
