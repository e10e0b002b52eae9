package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hanzi_backend/internal/app/di"
	"hanzi_backend/internal/app/router"
	historyhandler "hanzi_backend/internal/feature/history/transport/handler"
	modelcataloghandler "hanzi_backend/internal/feature/modelcatalog/transport/handler"
	pronunciationhandler "hanzi_backend/internal/feature/pronunciation/transport/handler"
	recognitionhandler "hanzi_backend/internal/feature/recognition/transport/handler"
	settingshandler "hanzi_backend/internal/feature/settings/transport/handler"
	platformhandler "hanzi_backend/internal/platform/http/handler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()
	app.Config.Warn()

	r := router.NewRouter(app.Config.Server, newHandlers(app))
	srv := &http.Server{
		Addr:              app.Config.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandlers builds every HTTP handler from the wired application.
func newHandlers(app *di.App) router.Handlers {
	checks := map[string]platformhandler.Checker{}
	if sqlDB, err := app.DB.DB(); err == nil {
		checks["db"] = sqlDB.PingContext
	}
	if app.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}
	}

	return router.Handlers{
		Health:        platformhandler.NewHealthHandler(checks),
		Recognition:   recognitionhandler.NewRecognitionHandler(app.Flow, app.Snapshotter, app.Config.Server.MaxUploadBytes),
		Settings:      settingshandler.NewSettingsHandler(app.Settings),
		ModelCatalog:  modelcataloghandler.NewModelCatalogHandler(app.ModelCatalog),
		History:       historyhandler.NewHistoryHandler(app.History),
		Pronunciation: pronunciationhandler.NewPronunciationHandler(app.Pronunciation),
	}
}
