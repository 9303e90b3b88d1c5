package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	domcategory "example.com/category-admin/internal/domain/category"
	"example.com/category-admin/internal/infra/persistence/retry"
	"example.com/category-admin/internal/infra/persistence/sqlquery"
)

// Conn is the part of *pgxpool.Pool the repository uses.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type CategoryRepository struct {
	pool  Conn
	retry retry.Policy
}

func NewCategoryRepository(pool Conn, policy retry.Policy) *CategoryRepository {
	return &CategoryRepository{pool: pool, retry: policy}
}

func (r *CategoryRepository) GetAll(ctx context.Context, q domcategory.ListQuery) (*domcategory.Page, error) {
	if err := domcategory.ValidateRelations(q.Expand); err != nil {
		return nil, err
	}
	page := q.Page.Normalize()
	where := sqlquery.CategoryWhere(sqlquery.Dollar, q.Filters)

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories`+where.SQL(), where.Args()...,
	).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "count categories")
	}

	columns := q.Columns()
	limit := where.Next(2)
	rows, err := r.pool.Query(ctx,
		`SELECT `+sqlquery.Columns(columns)+` FROM categories`+where.SQL()+
			sqlquery.OrderBy(q.Sort)+` LIMIT `+limit[0]+` OFFSET `+limit[1],
		where.Args(page.PerPage, page.Offset())...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer rows.Close()

	items := make([]*domcategory.Category, 0, page.PerPage)
	for rows.Next() {
		var c domcategory.Category
		if err := rows.Scan(sqlquery.ScanTargets(&c, columns)...); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		items = append(items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate categories")
	}

	return &domcategory.Page{
		Items:   items,
		Total:   total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, f domcategory.Filters) (bool, error) {
	where := sqlquery.CategoryWhere(sqlquery.Dollar, f)
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories`+where.SQL()+`)`, where.Args()...,
	).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check category exists")
	}
	return exists, nil
}

func (r *CategoryRepository) Find(ctx context.Context, f domcategory.Filters, expand []domcategory.Relation) (*domcategory.Category, error) {
	if err := domcategory.ValidateRelations(expand); err != nil {
		return nil, err
	}
	return r.first(ctx, r.pool, f)
}

func (r *CategoryRepository) Create(ctx context.Context, p domcategory.CreatePayload) (*domcategory.Category, error) {
	var created domcategory.Category
	columns := domcategory.AllFields()
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO categories (name, version)
            VALUES ($1, 1)
            RETURNING `+sqlquery.Columns(columns), p.Name,
		).Scan(sqlquery.ScanTargets(&created, columns)...)
		return errors.Wrap(err, "insert category")
	})
	if err != nil {
		return nil, &domcategory.CommitError{Err: errors.WithStack(err)}
	}
	return &created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domcategory.Category, changes domcategory.Changes) (*domcategory.Category, error) {
	if changes.IsEmpty() {
		return r.refresh(ctx, c.ID)
	}

	target := changes.Apply(*c)
	version := c.Version
	err := retry.Do(ctx, r.retry, func(ctx context.Context, n int) (bool, error) {
		if n > 1 {
			latest, err := r.first(ctx, r.pool, domcategory.Filters{ID: &c.ID})
			if err != nil {
				return false, err
			}
			if latest == nil {
				return false, errors.WithStack(domcategory.ErrCategoryNotFound)
			}
			version = latest.Version
		}

		tag, err := r.pool.Exec(ctx, `
            UPDATE categories
            SET name = $1, version = version + 1, updated_at = now()
            WHERE id = $2 AND version = $3
        `, target.Name, c.ID, version)
		if err != nil {
			return false, errors.Wrap(err, "update category")
		}
		return tag.RowsAffected() == 1, nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return nil, errors.WithStack(domcategory.ErrRetryExhausted)
	}
	if err != nil {
		return nil, err
	}

	return r.refresh(ctx, c.ID)
}

func (r *CategoryRepository) Delete(ctx context.Context, c *domcategory.Category) (domcategory.DeleteResult, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, c.ID)
	if err != nil {
		return domcategory.DeleteIndeterminate, errors.Wrap(err, "delete category")
	}
	if tag.RowsAffected() == 0 {
		return domcategory.NotDeleted, nil
	}
	return domcategory.Deleted, nil
}

func (r *CategoryRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(ctx)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *CategoryRepository) first(ctx context.Context, q queryer, f domcategory.Filters) (*domcategory.Category, error) {
	where := sqlquery.CategoryWhere(sqlquery.Dollar, f)
	columns := domcategory.AllFields()

	var c domcategory.Category
	err := q.QueryRow(ctx,
		`SELECT `+sqlquery.Columns(columns)+` FROM categories`+where.SQL()+` ORDER BY id ASC LIMIT 1`,
		where.Args()...,
	).Scan(sqlquery.ScanTargets(&c, columns)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find category")
	}
	return &c, nil
}

func (r *CategoryRepository) refresh(ctx context.Context, id int64) (*domcategory.Category, error) {
	c, err := r.first(ctx, r.pool, domcategory.Filters{ID: &id})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.WithStack(domcategory.ErrCategoryNotFound)
	}
	return c, nil
}
