package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPopulatesExpectedValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, "aead", cfg.M2M.DefaultSecurityMode)
	require.Equal(t, "cl100k_base", cfg.M2M.DefaultEncoding)
	require.Equal(t, "memory", cfg.KeyStore.Type)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadFromFileAppliesDefaultsToMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m2m.yaml")
	require.NoError(t, SaveToFile(&Config{
		Org: "acme",
		KeyStore: KeyStoreConfig{
			Type: "postgres",
			Postgres: PostgresConfig{
				Host:     "db.internal",
				Port:     5432,
				Database: "m2m",
			},
		},
	}, path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "acme", cfg.Org)
	require.Equal(t, "postgres", cfg.KeyStore.Type)
	require.Equal(t, "db.internal", cfg.KeyStore.Postgres.Host)
	require.Equal(t, "disable", cfg.KeyStore.Postgres.SSLMode)
	require.Equal(t, "aead", cfg.M2M.DefaultSecurityMode)
}

func TestLoadFromFileMissingFileErrors(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/m2m.yaml")
	require.Error(t, err)
}
