package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Database.Dialect)
	assert.Equal(t, 5*time.Minute, cfg.Query.CacheTTL)
	assert.Equal(t, 0.7, cfg.Analysis.SimilarityThreshold)
	assert.Equal(t, 5, cfg.Analysis.WindowSize)
	assert.Equal(t, 15, cfg.Analysis.ComplexityThreshold)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("overrides_on_top_of_defaults", func(t *testing.T) {
		path := writeFile(t, dir, "quarry.yaml", `
database:
  dialect: postgres
  host: db.example.com
  name: quarry
analysis:
  similarity_threshold: 0.9
`)
		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Database.Dialect)
		assert.Equal(t, 0.9, cfg.Analysis.SimilarityThreshold)
		// Untouched sections keep their defaults.
		assert.Equal(t, 5, cfg.Analysis.WindowSize)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := config.LoadFromFile(filepath.Join(dir, "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed_yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "database: [not a mapping")
		_, err := config.LoadFromFile(path)
		require.Error(t, err)
	})

	t.Run("invalid_values_rejected", func(t *testing.T) {
		path := writeFile(t, dir, "invalid.yaml", `
analysis:
  similarity_threshold: 1.5
`)
		_, err := config.LoadFromFile(path)
		require.ErrorContains(t, err, "similarity_threshold")
	})
}

func TestSaveToFileRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := config.DefaultConfig()
	cfg.Database.Dialect = "mysql"
	cfg.Database.Host = "db.internal"
	cfg.Database.Name = "quarry"
	cfg.Logging.Format = "json"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "unknown_dialect",
			mutate:  func(c *config.Config) { c.Database.Dialect = "oracle" },
			wantErr: "database.dialect",
		},
		{
			name: "mysql_requires_host",
			mutate: func(c *config.Config) {
				c.Database = config.DatabaseConfig{Dialect: "mysql", Name: "quarry"}
			},
			wantErr: "database.host",
		},
		{
			name: "postgres_requires_name",
			mutate: func(c *config.Config) {
				c.Database = config.DatabaseConfig{Dialect: "postgres", Host: "localhost"}
			},
			wantErr: "database.name",
		},
		{
			name:    "sqlite_requires_path",
			mutate:  func(c *config.Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "negative_cache_ttl",
			mutate:  func(c *config.Config) { c.Query.CacheTTL = -time.Second },
			wantErr: "cache_ttl",
		},
		{
			name:    "zero_window",
			mutate:  func(c *config.Config) { c.Analysis.WindowSize = 0 },
			wantErr: "window_size",
		},
		{
			name:    "bad_level",
			mutate:  func(c *config.Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad_format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	t.Parallel()

	t.Run("mysql", func(t *testing.T) {
		d := config.DatabaseConfig{
			Dialect:  "mysql",
			Host:     "db.example.com",
			Port:     3307,
			User:     "quarry",
			Password: "secret",
			Name:     "codegraph",
		}
		assert.Equal(t, "quarry:secret@tcp(db.example.com:3307)/codegraph?parseTime=true", d.DSN())
	})

	t.Run("mysql_default_port", func(t *testing.T) {
		d := config.DatabaseConfig{Dialect: "mysql", Host: "localhost", User: "root", Name: "codegraph"}
		assert.Equal(t, "root@tcp(localhost:3306)/codegraph?parseTime=true", d.DSN())
	})

	t.Run("postgres", func(t *testing.T) {
		d := config.DatabaseConfig{
			Dialect:  "postgres",
			Host:     "localhost",
			User:     "quarry",
			Password: "secret",
			Name:     "codegraph",
		}
		assert.Equal(t, "host=localhost port=5432 dbname=codegraph user=quarry password=secret sslmode=disable", d.DSN())
	})

	t.Run("postgres_sslmode_param", func(t *testing.T) {
		d := config.DatabaseConfig{
			Dialect: "postgres",
			Host:    "localhost",
			Name:    "codegraph",
			Params:  map[string]string{"sslmode": "require"},
		}
		assert.Equal(t, "host=localhost port=5432 dbname=codegraph sslmode=require", d.DSN())
	})

	t.Run("sqlite", func(t *testing.T) {
		d := config.DatabaseConfig{Dialect: "sqlite", Path: "graph.db"}
		assert.Equal(t, "file:graph.db", d.DSN())
	})
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quarry.yaml", "logging:\n  level: info\n")

	w, err := config.NewWatcher(config.WatcherConfig{
		Path:          path,
		DebounceDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeFile(t, dir, "quarry.yaml", "logging:\n  level: debug\n")

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	// A broken rewrite keeps the previous configuration and emits
	// nothing.
	writeFile(t, dir, "quarry.yaml", "logging: [broken")
	select {
	case cfg := <-w.Updates():
		t.Fatalf("unexpected update after malformed rewrite: %+v", cfg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopDuringReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quarry.yaml", "logging:\n  level: info\n")

	w, err := config.NewWatcher(config.WatcherConfig{
		Path:          path,
		DebounceDelay: time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// Keep reloads in flight while stopping; the event loop owns the
	// updates channel, so a pending send never hits a closed channel.
	for i := 0; i < 10; i++ {
		writeFile(t, dir, "quarry.yaml", "logging:\n  level: debug\n")
	}
	require.NoError(t, w.Stop())

	for {
		select {
		case _, ok := <-w.Updates():
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("updates channel was not closed after Stop")
		}
	}
}
