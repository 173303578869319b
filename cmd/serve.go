package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/normalize"
	"github.com/intrinsiq/valuation-cli/internal/retrieve"
	"github.com/intrinsiq/valuation-cli/internal/valuation"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server exposing valuations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, false)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
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

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *valuationEnv) http.Handler {
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

	r.Get("/api/v1/valuation/{ticker}", func(w http.ResponseWriter, req *http.Request) {
		ticker := chi.URLParam(req, "ticker")

		source, err := retrieve.ParseSource(req.URL.Query().Get("source"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		profile, err := env.Retriever.Profile(req.Context(), ticker, source)
		if err != nil {
			status := http.StatusBadGateway
			if normalize.IsValidationError(err) {
				status = http.StatusUnprocessableEntity
			}
			zap.L().Error("valuation request: retrieval failed",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		rpt, err := env.Engine.Valuate(profile)
		if err != nil {
			status := http.StatusInternalServerError
			if valuation.IsConfigError(err) {
				status = http.StatusBadRequest
			}
			zap.L().Error("valuation request: engine failed",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, rpt)
	})

	r.Get("/api/v1/cache/stats", func(w http.ResponseWriter, req *http.Request) {
		stats, err := env.Store.Stats(req.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
