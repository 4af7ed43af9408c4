package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, int64(50000), cfg.HTTP.MaxBodyBytes)
	require.Equal(t, CatalogSourceEmbedded, cfg.Catalog.Source)
	require.Equal(t, 15.0, cfg.Roadmap.DefaultWeeklyHours)
	require.Equal(t, 5, cfg.Roadmap.TopSubjects)
	require.Equal(t, 2, cfg.Roadmap.TemplatesPerSubject)
	require.Equal(t, QueueBackendImmediate, cfg.Jobs.Backend)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
catalog:
  source: file
  path: /etc/learnmate/catalog.yaml
roadmap:
  cacheTtl: 30s
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ROADMAP_DEFAULT_WEEKLY_HOURS", "12.5")
	t.Setenv("AUTH_API_KEY", "secret")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, CatalogSourceFile, cfg.Catalog.Source)
	require.Equal(t, 30*time.Second, cfg.Roadmap.CacheTTL)
	require.Equal(t, 12.5, cfg.Roadmap.DefaultWeeklyHours)
	require.Equal(t, "secret", cfg.Auth.APIKey)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 5, cfg.Roadmap.TopSubjects)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"file source without path", func(c *Config) { c.Catalog.Source = CatalogSourceFile }},
		{"object source without bucket", func(c *Config) {
			c.Catalog.Source = CatalogSourceObject
			c.Catalog.Object.Endpoint = "s3.example.com"
		}},
		{"unknown source", func(c *Config) { c.Catalog.Source = "ftp" }},
		{"valkey without addr", func(c *Config) { c.Cache.Valkey.Enabled = true }},
		{"valkey queue without valkey", func(c *Config) { c.Jobs.Backend = QueueBackendValkey }},
		{"negative weekly hours", func(c *Config) { c.Roadmap.DefaultWeeklyHours = -1 }},
		{"zero body limit", func(c *Config) { c.HTTP.MaxBodyBytes = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
