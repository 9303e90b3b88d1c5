package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	domcategory "example.com/category-admin/internal/domain/category"
	"example.com/category-admin/internal/infra/persistence/retry"
	"example.com/category-admin/internal/infra/persistence/sqlquery"
)

type CategoryRepository struct {
	db    *sql.DB
	retry retry.Policy
}

func NewCategoryRepository(db *sql.DB, policy retry.Policy) *CategoryRepository {
	return &CategoryRepository{db: db, retry: policy}
}

func (r *CategoryRepository) GetAll(ctx context.Context, q domcategory.ListQuery) (*domcategory.Page, error) {
	if err := domcategory.ValidateRelations(q.Expand); err != nil {
		return nil, err
	}
	page := q.Page.Normalize()
	where := sqlquery.CategoryWhere(sqlquery.Question, q.Filters)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories`+where.SQL(), where.Args()...,
	).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "count categories")
	}

	columns := q.Columns()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqlquery.Columns(columns)+` FROM categories`+where.SQL()+
			sqlquery.OrderBy(q.Sort)+` LIMIT ? OFFSET ?`,
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
	where := sqlquery.CategoryWhere(sqlquery.Question, f)
	var exists bool
	if err := r.db.QueryRowContext(ctx,
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
	return r.first(ctx, r.db, f)
}

func (r *CategoryRepository) Create(ctx context.Context, p domcategory.CreatePayload) (_ *domcategory.Category, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domcategory.CommitError{Err: errors.WithStack(err)}
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO categories (name, version)
        VALUES (?, 1)
    `, p.Name)
	if err != nil {
		return nil, &domcategory.CommitError{Err: errors.Wrap(err, "insert category")}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &domcategory.CommitError{Err: errors.Wrap(err, "read inserted id")}
	}

	created, err := r.first(ctx, tx, domcategory.Filters{ID: &id})
	if err != nil {
		return nil, &domcategory.CommitError{Err: err}
	}
	if created == nil {
		return nil, &domcategory.CommitError{Err: errors.Errorf("inserted category %d not readable", id)}
	}

	if err := tx.Commit(); err != nil {
		return nil, &domcategory.CommitError{Err: errors.Wrap(err, "commit category")}
	}
	return created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domcategory.Category, changes domcategory.Changes) (*domcategory.Category, error) {
	if changes.IsEmpty() {
		return r.refresh(ctx, c.ID)
	}

	target := changes.Apply(*c)
	version := c.Version
	err := retry.Do(ctx, r.retry, func(ctx context.Context, n int) (bool, error) {
		if n > 1 {
			latest, err := r.first(ctx, r.db, domcategory.Filters{ID: &c.ID})
			if err != nil {
				return false, err
			}
			if latest == nil {
				return false, errors.WithStack(domcategory.ErrCategoryNotFound)
			}
			version = latest.Version
		}

		res, err := r.db.ExecContext(ctx, `
            UPDATE categories
            SET name = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP(6)
            WHERE id = ? AND version = ?
        `, target.Name, c.ID, version)
		if err != nil {
			return false, errors.Wrap(err, "update category")
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return false, errors.Wrap(err, "update category rows affected")
		}
		return rows == 1, nil
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, c.ID)
	if err != nil {
		return domcategory.DeleteIndeterminate, errors.Wrap(err, "delete category")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domcategory.DeleteIndeterminate, nil
	}
	if rows == 0 {
		return domcategory.NotDeleted, nil
	}
	return domcategory.Deleted, nil
}

func (r *CategoryRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *CategoryRepository) first(ctx context.Context, q queryer, f domcategory.Filters) (*domcategory.Category, error) {
	where := sqlquery.CategoryWhere(sqlquery.Question, f)
	columns := domcategory.AllFields()
	row := q.QueryRowContext(ctx,
		`SELECT `+sqlquery.Columns(columns)+` FROM categories`+where.SQL()+` ORDER BY id ASC LIMIT 1`,
		where.Args()...,
	)

	var c domcategory.Category
	if err := row.Scan(sqlquery.ScanTargets(&c, columns)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find category")
	}
	return &c, nil
}

func (r *CategoryRepository) refresh(ctx context.Context, id int64) (*domcategory.Category, error) {
	c, err := r.first(ctx, r.db, domcategory.Filters{ID: &id})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.WithStack(domcategory.ErrCategoryNotFound)
	}
	return c, nil
}
