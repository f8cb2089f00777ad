package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sapelo-labs/fishstock/internal/export"
	"github.com/sapelo-labs/fishstock/internal/model"
	"github.com/sapelo-labs/fishstock/internal/view"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// First refresh before accepting traffic; failures degrade to an
		// empty (all-unknown) view rather than refusing to start.
		if err := env.refresh(ctx); err != nil {
			zap.L().Warn("initial refresh failed", zap.Error(err))
		}

		// Periodic re-fetch; the engine's generation guard discards any
		// refresh that loses the race against a newer one.
		interval := time.Duration(cfg.Server.RefreshSecs) * time.Second
		go func() {
			t := time.NewTicker(interval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if err := env.refresh(ctx); err != nil {
						zap.L().Warn("scheduled refresh failed", zap.Error(err))
					}
				}
			}
		}()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server.CORSOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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

// newRouter wires the dashboard API routes.
func newRouter(env *env, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The merged, filtered, sorted view: one row per species.
	r.Get("/api/stocks", func(w http.ResponseWriter, req *http.Request) {
		q, err := queryFromRequest(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		stocks := view.Apply(env.Engine.Merged(), q)
		writeJSON(w, http.StatusOK, map[string]any{
			"generation": env.Engine.Generation(),
			"total":      len(stocks),
			"stocks":     stocks,
		})
	})

	// Assessment-level counters. These back the summary cards and are
	// computed over the assessment registry alone, so they will not add up
	// to the per-species rows in /api/stocks.
	r.Get("/api/summary", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, env.Engine.Summary())
	})

	// All assessments qualifying at the winning cascade stage for one
	// species, so ambiguous links can be inspected.
	r.Get("/api/species/{name}/candidates", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		hits, stage := env.Matcher.Candidates(name, env.Engine.Assessments())
		writeJSON(w, http.StatusOK, map[string]any{
			"species":    name,
			"stage":      string(stage),
			"candidates": hits,
		})
	})

	r.Get("/api/export.csv", func(w http.ResponseWriter, req *http.Request) {
		q, err := queryFromRequest(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		stocks := view.Apply(env.Engine.Merged(), q)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(export.CSV(stocks)))
	})

	r.Get("/api/export.xlsx", func(w http.ResponseWriter, req *http.Request) {
		q, err := queryFromRequest(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		stocks := view.Apply(env.Engine.Merged(), q)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.WriteHeader(http.StatusOK)
		if err := export.XLSX(stocks, w); err != nil {
			zap.L().Error("xlsx export failed", zap.Error(err))
		}
	})

	return r
}

// queryFromRequest builds a view query from URL parameters: q, fmp
// (repeatable), status, sort, dir.
func queryFromRequest(req *http.Request) (view.Query, error) {
	params := req.URL.Query()
	q := view.Query{
		Search:    params.Get("q"),
		FMPs:      params["fmp"],
		Status:    params.Get("status"),
		SortBy:    view.SortField(params.Get("sort")),
		Direction: view.SortDirection(params.Get("dir")),
	}
	if s := params.Get("status"); s != "" && s != view.StatusAll {
		if !model.StockStatus(s).Valid() {
			return view.Query{}, eris.Errorf("unknown status %q", s)
		}
	}
	switch q.Direction {
	case "", view.Ascending, view.Descending:
	default:
		return view.Query{}, eris.Errorf("unknown sort direction %q", q.Direction)
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
