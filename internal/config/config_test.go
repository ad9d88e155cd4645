package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.PageSize)
	assert.Equal(t, 10, cfg.Search.LocusBatchSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "Japonica Nipponbare", cfg.Export.ReferenceLabel)
	assert.Equal(t, 15*time.Second, cfg.Search.LeafTimeout)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
database:
  driver: pgx
  dsn: postgres://localhost/snpseek
search:
  page_size: 25
  leaf_timeout: 3s
  retry:
    attempts: 5
    initial_backoff: 50ms
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("SNPSEEK_PAGE_SIZE", "40")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 40, cfg.Search.PageSize)
	assert.Equal(t, 3*time.Second, cfg.Search.LeafTimeout)
	assert.Equal(t, 5, cfg.Search.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Search.Retry.InitialBackoff)
	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.Search.LocusBatchSize)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "UnknownDriver", body: "database:\n  driver: mysql\n"},
		{name: "ZeroPageSize", body: "search:\n  page_size: 0\n"},
		{name: "BadEnvPageSize", env: map[string]string{"SNPSEEK_PAGE_SIZE": "ten"}},
		{name: "BrokenYAML", body: "search: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSQLiteDirMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.DSN = ":memory:"
	assert.False(t, cfg.SQLiteDirMissing())

	cfg.Database.DSN = "file:" + filepath.Join(t.TempDir(), "snpseek.db") + "?mode=ro"
	assert.False(t, cfg.SQLiteDirMissing())

	cfg.Database.DSN = filepath.Join(t.TempDir(), "nope", "snpseek.db")
	assert.True(t, cfg.SQLiteDirMissing())
}
