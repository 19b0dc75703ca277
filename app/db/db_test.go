package database

import (
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/config"
)

func TestNewDatabaseConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("full settings", func(t *testing.T) {
		dbCfg, err := NewDatabaseConfig(config.PostgresConfig{
			Host:              "db",
			Port:              "6543",
			Username:          "flights",
			Password:          "p@ss word",
			DB:                "explorer",
			SSLMODE:           "require",
			MAXCONWAITINGTIME: 3,
		}, logger)
		require.NoError(t, err)

		u, err := url.Parse(dbCfg.ConnectionURL)
		require.NoError(t, err)
		assert.Equal(t, "postgresql", u.Scheme)
		assert.Equal(t, "db:6543", u.Host)
		assert.Equal(t, "/explorer", u.Path)
		pw, _ := u.User.Password()
		assert.Equal(t, "p@ss word", pw)
		assert.Equal(t, "require", u.Query().Get("sslmode"))
		assert.Equal(t, 3*time.Second, dbCfg.ConnectTimeout)
	})

	t.Run("defaults", func(t *testing.T) {
		dbCfg, err := NewDatabaseConfig(config.PostgresConfig{Host: "localhost", DB: "explorer"}, logger)
		require.NoError(t, err)
		u, err := url.Parse(dbCfg.ConnectionURL)
		require.NoError(t, err)
		assert.Equal(t, "localhost:5432", u.Host)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
		assert.Equal(t, 10*time.Second, dbCfg.ConnectTimeout)
	})

	t.Run("missing host", func(t *testing.T) {
		_, err := NewDatabaseConfig(config.PostgresConfig{}, logger)
		assert.Error(t, err)
	})
}

func TestRunMigrationsRejectsScheme(t *testing.T) {
	err := RunMigrations("mysql://localhost/db", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "invalid database URL scheme")
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_dataset.up.sql")
	assert.Contains(t, names, "000001_dataset.down.sql")
}
