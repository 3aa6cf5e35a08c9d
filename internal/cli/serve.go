package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/OOP-2025-final-G02/Tabi-Navi/api"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/config"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/handler"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/middleware"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/service"
)

// ServeCmd returns the serve command, which runs the HTTP API until SIGINT
// or SIGTERM.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server on PORT against DATABASE_URL.
Set AUTO_MIGRATE=true to apply pending migrations before serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	store, err := openGateway(ctx, cfg, cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("database connection established")

	plans, err := newPlanService(cfg, store, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, logger, plans, service.NewExportService(store)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	// In-flight requests get up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// newRouter applies the middleware chain in order: RequestID, RealIP,
// request logging, metrics, Recoverer, CORS, body cap.
func newRouter(cfg config.Config, logger *slog.Logger, plans handler.PlanServicer, export handler.ExportServicer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	handler.NewServer(plans, export, api.OpenAPI).Routes(r)
	return r
}
