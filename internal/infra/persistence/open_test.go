package persistence

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"example.com/category-admin/internal/config"
	domcategory "example.com/category-admin/internal/domain/category"
)

func TestOpen_SQLite(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.Defaults()
	cfg.DBDriver = config.DriverSQLite
	cfg.SQLiteDSN = filepath.Join(t.TempDir(), "nested", "app.db")

	store, err := Open(context.Background(), &cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping(context.Background()))

	c, err := store.Categories.Create(context.Background(), domcategory.CreatePayload{Name: "Books"})
	require.NoError(t, err)
	require.EqualValues(t, 1, c.Version)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBDriver = "oracle"
	_, err := Open(context.Background(), &cfg, logrus.New())
	require.Error(t, err)
}

func TestRetryPolicy(t *testing.T) {
	cfg := config.Defaults()
	cfg.UpdateBackoffBase = 0
	cfg.UpdateBackoffMax = time.Second

	p := RetryPolicy(&cfg)
	require.Equal(t, 5, p.MaxAttempts)
	require.Zero(t, p.BaseDelay)
	require.Equal(t, time.Second, p.MaxDelay)
}
