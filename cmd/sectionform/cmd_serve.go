package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	sectionform "github.com/goliatone/go-sectionform"
	"github.com/goliatone/go-sectionform/internal/httpapi"
	"github.com/goliatone/go-sectionform/internal/logging"
)

var (
	serveAddr     string
	shutdownGrace time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the section admin API",
	Long: `Starts the admin API: contract discovery, section CRUD, server rendered
forms, structural edits and the browser runtime assets under /assets.`,
	Args: cobra.NoArgs,
	RunE: serve,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides http.addr)")
	serveCmd.Flags().DurationVar(&shutdownGrace, "grace", 5*time.Second, "shutdown grace period")
}

// newRouter mounts the admin API next to a /healthz endpoint.
func newRouter() (chi.Router, error) {
	runtime, err := runtimeOrErr()
	if err != nil {
		return nil, err
	}
	api := httpapi.New(runtime.Orchestrator,
		httpapi.WithLogger(logging.HTTPLogger(runtime.Provider)),
		csrfOption(runtime.Config.HTTP.CSRF),
	)
	router := api.Routes()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return router, nil
}

// csrfOption copies the configured cookie into rendered forms. It returns
// nil when no field is configured.
func csrfOption(cfg sectionform.CSRFConfig) httpapi.Option {
	if cfg.Field == "" {
		return nil
	}
	return httpapi.WithCSRF(cfg.Field, func(r *http.Request) string {
		cookie, err := r.Cookie(cfg.Cookie)
		if err != nil {
			return ""
		}
		return cookie.Value
	})
}

func serve(cmd *cobra.Command, args []string) error {
	runtime, err := runtimeOrErr()
	if err != nil {
		return err
	}
	router, err := newRouter()
	if err != nil {
		return err
	}
	addr := serveAddr
	if addr == "" {
		addr = runtime.Config.HTTP.Addr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	runtime.Logger.Info("listening", "addr", addr)

	ctx := commandContext(cmd)
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	runtime.Logger.Info("server stopped")
	return nil
}
