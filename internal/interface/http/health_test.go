package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/category-admin/internal/infra/flash"
)

func healthRouter(deps Dependencies) (http.Handler, *test.Hook) {
	log, hook := test.NewNullLogger()
	deps.Logger = log
	return NewAPI(deps).Router(), hook
}

func getHealth(t *testing.T, router http.Handler, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code, decodeBody(t, rec)
}

func TestHealth_Liveness(t *testing.T) {
	router, _ := healthRouter(Dependencies{})

	code, body := getHealth(t, router, "/health")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestHealth_Database(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router, _ := healthRouter(Dependencies{DBPing: func(context.Context) error { return nil }})

		code, body := getHealth(t, router, "/health/db")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "ok", body["status"])
	})

	t.Run("unavailable", func(t *testing.T) {
		router, hook := healthRouter(Dependencies{DBPing: func(context.Context) error { return errDriver }})

		code, body := getHealth(t, router, "/health/db")
		require.Equal(t, http.StatusServiceUnavailable, code)
		require.Equal(t, "unavailable", body["status"])
		require.Equal(t, errDriver.Error(), body["error"])

		warns := entriesAt(hook, logrus.WarnLevel)
		require.Len(t, warns, 1)
		require.Equal(t, "db", warns[0].Data["dependency"])
	})

	t.Run("unconfigured", func(t *testing.T) {
		router, _ := healthRouter(Dependencies{})

		code, body := getHealth(t, router, "/health/db")
		require.Equal(t, http.StatusServiceUnavailable, code)
		require.Equal(t, "unconfigured", body["status"])
	})
}

func TestHealth_FlashStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	router, _ := healthRouter(Dependencies{FlashStore: flash.NewRedisStore(rdb, time.Minute)})

	code, body := getHealth(t, router, "/health/flash")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])

	mr.Close()

	code, body = getHealth(t, router, "/health/flash")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unavailable", body["status"])
}

func TestHealth_FlashStoreUnconfigured(t *testing.T) {
	router, _ := healthRouter(Dependencies{})

	code, body := getHealth(t, router, "/health/flash")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unconfigured", body["status"])
}
