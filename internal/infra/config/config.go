package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog source kinds.
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourceObject   = "object"
)

// Job queue backends.
const (
	QueueBackendImmediate = "immediate"
	QueueBackendValkey    = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Roadmap  RoadmapConfig  `yaml:"roadmap"`
	Cache    CacheConfig    `yaml:"cache"`
	Postgres PostgresConfig `yaml:"postgres"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	MaxBodyBytes   int64           `yaml:"maxBodyBytes"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig holds the credentials accepted by protected routes.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"apiKey"`
	JWTSecret string `yaml:"jwtSecret"`
}

// CatalogConfig selects where the curriculum catalog is loaded from.
type CatalogConfig struct {
	Source string              `yaml:"source"`
	Path   string              `yaml:"path"`
	Object ObjectStorageConfig `yaml:"object"`
}

// ObjectStorageConfig addresses a catalog document on S3 compatible storage.
type ObjectStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"useSSL"`
}

// RoadmapConfig tunes the scheduling engine and service.
type RoadmapConfig struct {
	DefaultWeeklyHours  float64       `yaml:"defaultWeeklyHours"`
	TopSubjects         int           `yaml:"topSubjects"`
	TemplatesPerSubject int           `yaml:"templatesPerSubject"`
	BatchConcurrency    int           `yaml:"batchConcurrency"`
	MaxBatchSize        int           `yaml:"maxBatchSize"`
	CacheTTL            time.Duration `yaml:"cacheTtl"`
}

// CacheConfig contains connection information for cache storage.
type CacheConfig struct {
	Valkey  ValkeyConfig  `yaml:"valkey"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// ValkeyConfig addresses the shared Valkey instance.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// BreakerConfig guards cache calls with a circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"maxFailures"`
	OpenTimeout time.Duration `yaml:"openTimeout"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// JobsConfig drives asynchronous generation.
type JobsConfig struct {
	Backend     string        `yaml:"backend"`
	QueueKey    string        `yaml:"queueKey"`
	Workers     int           `yaml:"workers"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
}

// MetricsConfig exposes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_MAX_BODY_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.HTTP.MaxBodyBytes = parsed
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = parseBool(v)
	}
	if v := os.Getenv("AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = strings.ToLower(v)
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("CATALOG_OBJECT_ENDPOINT"); v != "" {
		cfg.Catalog.Object.Endpoint = v
	}
	if v := os.Getenv("CATALOG_OBJECT_BUCKET"); v != "" {
		cfg.Catalog.Object.Bucket = v
	}
	if v := os.Getenv("CATALOG_OBJECT_KEY"); v != "" {
		cfg.Catalog.Object.Key = v
	}
	if v := os.Getenv("CATALOG_OBJECT_ACCESS_KEY"); v != "" {
		cfg.Catalog.Object.AccessKey = v
	}
	if v := os.Getenv("CATALOG_OBJECT_SECRET_KEY"); v != "" {
		cfg.Catalog.Object.SecretKey = v
	}
	if v := os.Getenv("CATALOG_OBJECT_REGION"); v != "" {
		cfg.Catalog.Object.Region = v
	}
	if v := os.Getenv("ROADMAP_DEFAULT_WEEKLY_HOURS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Roadmap.DefaultWeeklyHours = parsed
		}
	}
	if v := os.Getenv("ROADMAP_BATCH_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Roadmap.BatchConcurrency = parsed
		}
	}
	if v := os.Getenv("ROADMAP_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Roadmap.CacheTTL = parsed
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("JOBS_BACKEND"); v != "" {
		cfg.Jobs.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("JOBS_WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Jobs.Workers = parsed
		}
	}
	if v := os.Getenv("JOBS_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Jobs.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxBodyBytes: 50000,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/roadmaps/jobs",
				},
			},
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Catalog: CatalogConfig{
			Source: CatalogSourceEmbedded,
		},
		Roadmap: RoadmapConfig{
			DefaultWeeklyHours:  15,
			TopSubjects:         5,
			TemplatesPerSubject: 2,
			BatchConcurrency:    4,
			MaxBatchSize:        50,
			CacheTTL:            10 * time.Minute,
		},
		Cache: CacheConfig{
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Jobs: JobsConfig{
			Backend:     QueueBackendImmediate,
			QueueKey:    "learnmate:roadmap:jobs",
			Workers:     2,
			MaxAttempts: 3,
			BaseBackoff: 200 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("http.maxBodyBytes must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	switch c.Catalog.Source {
	case CatalogSourceEmbedded:
	case CatalogSourceFile:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			return errors.New("catalog.path cannot be empty when catalog.source is file")
		}
	case CatalogSourceObject:
		o := c.Catalog.Object
		if strings.TrimSpace(o.Endpoint) == "" || strings.TrimSpace(o.Bucket) == "" || strings.TrimSpace(o.Key) == "" {
			return errors.New("catalog.object endpoint, bucket and key are required when catalog.source is object")
		}
	default:
		return fmt.Errorf("catalog.source %q is not supported", c.Catalog.Source)
	}
	if c.Roadmap.DefaultWeeklyHours < 0 {
		return errors.New("roadmap.defaultWeeklyHours cannot be negative")
	}
	if c.Roadmap.TopSubjects <= 0 {
		return errors.New("roadmap.topSubjects must be positive")
	}
	if c.Roadmap.TemplatesPerSubject <= 0 {
		return errors.New("roadmap.templatesPerSubject must be positive")
	}
	if c.Roadmap.BatchConcurrency <= 0 {
		return errors.New("roadmap.batchConcurrency must be positive")
	}
	if c.Roadmap.MaxBatchSize <= 0 {
		return errors.New("roadmap.maxBatchSize must be positive")
	}
	if c.Roadmap.CacheTTL < 0 {
		return errors.New("roadmap.cacheTtl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey is enabled")
	}
	switch c.Jobs.Backend {
	case QueueBackendImmediate:
	case QueueBackendValkey:
		if !c.Cache.Valkey.Enabled {
			return errors.New("jobs.backend valkey requires cache.valkey to be enabled")
		}
	default:
		return fmt.Errorf("jobs.backend %q is not supported", c.Jobs.Backend)
	}
	if c.Jobs.Workers <= 0 {
		return errors.New("jobs.workers must be positive")
	}
	if c.Jobs.MaxAttempts <= 0 {
		return errors.New("jobs.maxAttempts must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
