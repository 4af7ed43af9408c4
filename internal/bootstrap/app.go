package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
	"github.com/yanqian/learnmate/internal/infra/config"
	"github.com/yanqian/learnmate/internal/infra/queue"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server and job worker lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	svc    domain.Service
	jobs   queue.HandlerQueue
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, svc domain.Service, jobs queue.HandlerQueue) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With("component", "bootstrap"),
		server: server,
		svc:    svc,
		jobs:   jobs,
	}
}

// JobHandler routes queued jobs to the roadmap service.
func JobHandler(svc domain.Service, logger *slog.Logger) queue.Handler {
	log := logger.With("component", "bootstrap.jobs")
	return func(ctx context.Context, name string, payload map[string]any) {
		if name != domain.JobName {
			log.Warn("unknown job dropped", "name", name)
			return
		}
		id, err := domain.JobIDFromPayload(payload)
		if err != nil {
			log.Warn("job payload rejected", "error", err)
			return
		}
		if err := svc.ProcessJob(ctx, id); err != nil {
			log.Error("job processing failed", "jobId", id, "error", err)
		}
	}
}

// Run starts the job workers and the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	a.jobs.SetHandler(JobHandler(a.svc, a.logger))
	a.logger.Info("roadmap service ready", "catalogVersion", a.svc.CatalogVersion(), "jobsBackend", a.cfg.Jobs.Backend)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		_ = a.jobs.Close()
		return err
	}
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	serverErr := a.server.Shutdown(shutdownCtx)

	done := make(chan error, 1)
	go func() { done <- a.jobs.Close() }()
	select {
	case err := <-done:
		return errors.Join(serverErr, err)
	case <-shutdownCtx.Done():
		a.logger.Warn("job workers did not stop before shutdown timeout")
		return serverErr
	}
}
