package persistence

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"example.com/category-admin/internal/config"
	domcategory "example.com/category-admin/internal/domain/category"
	"example.com/category-admin/internal/infra/persistence/mysql"
	"example.com/category-admin/internal/infra/persistence/postgres"
	"example.com/category-admin/internal/infra/persistence/retry"
	"example.com/category-admin/internal/infra/persistence/sqlite"
)

// Store is the opened category storage for the configured driver.
type Store struct {
	Driver     string
	Categories domcategory.Repository
	Ping       func(ctx context.Context) error
	Close      func() error
}

func RetryPolicy(cfg *config.Config) retry.Policy {
	p := retry.DefaultPolicy()
	p.BaseDelay = cfg.UpdateBackoffBase
	p.MaxDelay = cfg.UpdateBackoffMax
	return p
}

// Open connects to the configured database and makes sure the schema exists.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Store, error) {
	policy := RetryPolicy(cfg)

	switch cfg.DBDriver {
	case config.DriverMySQL:
		db, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := mysql.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		repo := mysql.NewCategoryRepository(db, policy)
		return &Store{Driver: cfg.DBDriver, Categories: repo, Ping: repo.Ping, Close: db.Close}, nil

	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.PgDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		repo := postgres.NewCategoryRepository(pool, policy)
		closeFn := func() error {
			pool.Close()
			return nil
		}
		return &Store{Driver: cfg.DBDriver, Categories: repo, Ping: repo.Ping, Close: closeFn}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLiteDSN, log)
		if err != nil {
			return nil, err
		}
		repo := sqlite.NewCategoryRepository(db, policy)
		return &Store{Driver: cfg.DBDriver, Categories: repo, Ping: repo.Ping, Close: repo.Close}, nil
	}

	return nil, errors.Errorf("unknown database driver %q", cfg.DBDriver)
}
