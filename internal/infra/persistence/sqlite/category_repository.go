package sqlite

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domcategory "example.com/category-admin/internal/domain/category"
	"example.com/category-admin/internal/infra/persistence/retry"
	"example.com/category-admin/internal/infra/persistence/sqlquery"
)

type categoryRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:255;not null;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (categoryRecord) TableName() string {
	return "categories"
}

func (r categoryRecord) toDomain() *domcategory.Category {
	return &domcategory.Category{
		ID:        r.ID,
		Name:      r.Name,
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type CategoryRepository struct {
	db    *gorm.DB
	retry retry.Policy
}

func NewCategoryRepository(db *gorm.DB, policy retry.Policy) *CategoryRepository {
	return &CategoryRepository{db: db, retry: policy}
}

func (r *CategoryRepository) GetAll(ctx context.Context, q domcategory.ListQuery) (*domcategory.Page, error) {
	if err := domcategory.ValidateRelations(q.Expand); err != nil {
		return nil, err
	}
	page := q.Page.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&categoryRecord{}).
		Scopes(withFilters(q.Filters)).
		Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count categories")
	}

	var records []categoryRecord
	if err := r.db.WithContext(ctx).
		Model(&categoryRecord{}).
		Select(columnNames(q.Columns())).
		Scopes(withFilters(q.Filters), withSort(q.Sort)).
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	items := make([]*domcategory.Category, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toDomain())
	}
	return &domcategory.Page{
		Items:   items,
		Total:   total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, f domcategory.Filters) (bool, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&categoryRecord{}).
		Scopes(withFilters(f)).
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return false, errors.Wrap(err, "check category exists")
	}
	return len(ids) > 0, nil
}

func (r *CategoryRepository) Find(ctx context.Context, f domcategory.Filters, expand []domcategory.Relation) (*domcategory.Category, error) {
	if err := domcategory.ValidateRelations(expand); err != nil {
		return nil, err
	}
	return first(r.db.WithContext(ctx), f)
}

func (r *CategoryRepository) Create(ctx context.Context, p domcategory.CreatePayload) (*domcategory.Category, error) {
	var created *domcategory.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := categoryRecord{Name: p.Name, Version: 1}
		if err := tx.Create(&rec).Error; err != nil {
			return errors.Wrap(err, "insert category")
		}
		c, err := first(tx, domcategory.Filters{ID: &rec.ID})
		if err != nil {
			return err
		}
		if c == nil {
			return errors.Errorf("inserted category %d not readable", rec.ID)
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, &domcategory.CommitError{Err: errors.WithStack(err)}
	}
	return created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domcategory.Category, changes domcategory.Changes) (*domcategory.Category, error) {
	db := r.db.WithContext(ctx)
	if changes.IsEmpty() {
		return refresh(db, c.ID)
	}

	target := changes.Apply(*c)
	version := c.Version
	err := retry.Do(ctx, r.retry, func(ctx context.Context, n int) (bool, error) {
		db := r.db.WithContext(ctx)
		if n > 1 {
			latest, err := first(db, domcategory.Filters{ID: &c.ID})
			if err != nil {
				return false, err
			}
			if latest == nil {
				return false, errors.WithStack(domcategory.ErrCategoryNotFound)
			}
			version = latest.Version
		}

		res := db.Model(&categoryRecord{}).
			Where("id = ? AND version = ?", c.ID, version).
			Updates(map[string]any{
				"name":       target.Name,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return false, errors.Wrap(res.Error, "update category")
		}
		return res.RowsAffected == 1, nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return nil, errors.WithStack(domcategory.ErrRetryExhausted)
	}
	if err != nil {
		return nil, err
	}

	return refresh(db, c.ID)
}

func (r *CategoryRepository) Delete(ctx context.Context, c *domcategory.Category) (domcategory.DeleteResult, error) {
	res := r.db.WithContext(ctx).Delete(&categoryRecord{}, c.ID)
	if res.Error != nil {
		return domcategory.DeleteIndeterminate, errors.Wrap(res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return domcategory.NotDeleted, nil
	}
	return domcategory.Deleted, nil
}

func (r *CategoryRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (r *CategoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return sqlDB.Close()
}

func first(db *gorm.DB, f domcategory.Filters) (*domcategory.Category, error) {
	var records []categoryRecord
	if err := db.Model(&categoryRecord{}).
		Scopes(withFilters(f)).
		Order("id ASC").
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "find category")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain(), nil
}

func refresh(db *gorm.DB, id int64) (*domcategory.Category, error) {
	c, err := first(db, domcategory.Filters{ID: &id})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.WithStack(domcategory.ErrCategoryNotFound)
	}
	return c, nil
}

func withFilters(f domcategory.Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ID != nil {
			db = db.Where("id = ?", *f.ID)
		}
		if f.Name != nil {
			db = db.Where("name LIKE ? ESCAPE '"+sqlquery.LikeEscape+"'", sqlquery.ContainsPattern(*f.Name))
		}
		if f.CreatedAt != nil {
			db = db.Where("created_at BETWEEN ? AND ?", f.CreatedAt.From.UTC(), f.CreatedAt.To.UTC())
		}
		return db
	}
}

func withSort(s domcategory.Sort) func(*gorm.DB) *gorm.DB {
	s = s.OrDefault()
	desc := s.Order == domcategory.SortOrderDesc
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: string(s.Field)}, Desc: desc})
		if s.Field != domcategory.SortFieldID {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
		}
		return db
	}
}

func columnNames(fields []domcategory.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
