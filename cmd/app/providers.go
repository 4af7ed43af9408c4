package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/learnmate/internal/domain/curriculum"
	domain "github.com/yanqian/learnmate/internal/domain/roadmap"
	"github.com/yanqian/learnmate/internal/infra/catalogsource"
	"github.com/yanqian/learnmate/internal/infra/config"
	"github.com/yanqian/learnmate/internal/infra/queue"
	"github.com/yanqian/learnmate/internal/infra/roadmapcache"
	"github.com/yanqian/learnmate/internal/infra/roadmaprepo"
)

func provideCatalog(cfg *config.Config, logger *slog.Logger) (*curriculum.Catalog, error) {
	src, err := catalogsource.New(cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return catalogsource.Load(ctx, src, logger)
}

func provideRoadmapConfig(cfg *config.Config) domain.Config {
	return domain.Config{
		Engine: domain.EngineConfig{
			TopSubjects:         cfg.Roadmap.TopSubjects,
			TemplatesPerSubject: cfg.Roadmap.TemplatesPerSubject,
		},
		BatchConcurrency: cfg.Roadmap.BatchConcurrency,
		CacheTTL:         cfg.Roadmap.CacheTTL,
		Jobs: domain.JobConfig{
			MaxAttempts: cfg.Jobs.MaxAttempts,
			BaseBackoff: cfg.Jobs.BaseBackoff,
		},
	}
}

func provideEngine(catalog *curriculum.Catalog, cfg domain.Config) *domain.Engine {
	return domain.NewEngine(catalog, cfg.Engine)
}

// providePostgresPool returns nil when postgres is not configured or unreachable,
// which selects the in-memory repositories.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	if err := roadmaprepo.EnsureSchema(ctx, pool); err != nil {
		logger.Error("postgres schema setup failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideRoadmapStore(pool *pgxpool.Pool) domain.Store {
	if pool == nil {
		return roadmaprepo.NewMemoryStore()
	}
	return roadmaprepo.NewPostgresStore(pool)
}

func provideJobRepository(pool *pgxpool.Pool) domain.JobRepository {
	if pool == nil {
		return roadmaprepo.NewMemoryJobRepository()
	}
	return roadmaprepo.NewPostgresJobRepository(pool)
}

// provideValkeyClient returns nil when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Cache.Valkey.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey enabled", "addr", cfg.Cache.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideRoadmapCache(cfg *config.Config, client valkey.Client, logger *slog.Logger) domain.Cache {
	var backend domain.Cache = roadmapcache.NewMemoryCache()
	if client != nil {
		backend = roadmapcache.NewValkeyCache(client, "learnmate")
	}
	return roadmapcache.NewBreakerCache(backend, roadmapcache.BreakerSettings{
		MaxFailures: cfg.Cache.Breaker.MaxFailures,
		OpenTimeout: cfg.Cache.Breaker.OpenTimeout,
	}, logger)
}

func provideHandlerQueue(cfg *config.Config, client valkey.Client, logger *slog.Logger) queue.HandlerQueue {
	if cfg.Jobs.Backend == config.QueueBackendValkey {
		if client != nil {
			logger.Info("valkey job queue enabled", "key", cfg.Jobs.QueueKey, "workers", cfg.Jobs.Workers)
			return queue.NewValkeyQueue(client, cfg.Jobs.QueueKey, cfg.Jobs.Workers, logger)
		}
		logger.Warn("valkey job queue requested but valkey is unavailable, using immediate queue")
	}
	return queue.NewImmediateQueue(nil)
}

func provideJobQueue(q queue.HandlerQueue) domain.JobQueue {
	return q
}
