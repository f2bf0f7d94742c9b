package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"jobportal/internal/config"
	"jobportal/internal/telemetry"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error
	tracing    func(context.Context) error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	tracing := telemetry.Setup(ctx, cfg.ServiceName)

	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		_ = tracing(ctx)
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		httpServer: server,
		cleanup:    cleanup,
		tracing:    tracing,
	}, nil
}

// Run blocks until the server stops. A graceful Shutdown is not an error.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	var errs []error
	if a.cleanup != nil {
		errs = append(errs, a.cleanup())
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing(ctx))
	}
	return errors.Join(errs...)
}
