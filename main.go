package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"example.com/category-admin/internal/config"
	domuser "example.com/category-admin/internal/domain/user"
	"example.com/category-admin/internal/infra/flash"
	"example.com/category-admin/internal/infra/persistence"
	"example.com/category-admin/internal/infra/persistence/memory"
	"example.com/category-admin/internal/infra/security"
	httpapi "example.com/category-admin/internal/interface/http"
	"example.com/category-admin/internal/logging"
	authuc "example.com/category-admin/internal/usecase/auth"
	categoryuc "example.com/category-admin/internal/usecase/category"
)

func main() {
	log := logging.New("info", "json")

	cfg, err := config.Load(log)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	log = logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.DBDriver).Fatal("open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()
	log.WithField("driver", store.Driver).Info("database ready")

	flashStore, closeFlash := openFlashStore(cfg, log)
	defer closeFlash()

	users := memory.NewUserRepository()
	if cfg.AdminEmail != "" && cfg.AdminPasswordHash != "" {
		users.Add(&domuser.User{
			Name:         cfg.AdminName,
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			RoleCode:     domuser.RoleCodeAdmin,
		})
	} else {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, admin login is disabled")
	}

	tokens := security.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	hasher := security.NewBcryptService(0)

	api := httpapi.NewAPI(httpapi.Dependencies{
		Logger:             log,
		AuthService:        authuc.NewService(users, hasher, tokens),
		CategoryService:    categoryuc.NewService(store.Categories, log),
		FlashStore:         flashStore,
		DBPing:             store.Ping,
		AssetVersion:       cfg.AssetVersion,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookies:      cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
		os.Exit(1)
	}
}

// openFlashStore uses redis when REDIS_ADDR is set and an in-process store
// with a periodic sweeper otherwise.
func openFlashStore(cfg *config.Config, log logrus.FieldLogger) (flash.Store, func()) {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		log.WithField("addr", cfg.RedisAddr).Info("flash store: redis")
		s := flash.NewRedisStore(rdb, cfg.FlashTTL)
		return s, func() {
			if err := s.Close(); err != nil {
				log.WithError(err).Warn("close redis")
			}
		}
	}

	s := flash.NewMemoryStore(cfg.FlashTTL, log)
	if err := s.Start(); err != nil {
		log.WithError(err).Fatal("start flash sweeper")
	}
	log.Info("flash store: memory")
	return s, s.Stop
}
