package category

import (
	"context"

	"github.com/sirupsen/logrus"

	dom "example.com/category-admin/internal/domain/category"
)

type Service struct {
	repo dom.Repository
	log  logrus.FieldLogger
}

func NewService(repo dom.Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

type CreateInput struct {
	Name string
}

// UpdateInput leaves nil fields untouched.
type UpdateInput struct {
	ID   int64
	Name *string
}

func (s *Service) GetAll(ctx context.Context, q dom.ListQuery) (*dom.Page, error) {
	if err := q.Filters.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetAll(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64, expand []dom.Relation) (*dom.Category, error) {
	c, err := s.repo.Find(ctx, dom.Filters{ID: &id}, expand)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, dom.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Service) Exists(ctx context.Context, f dom.Filters) (bool, error) {
	return s.repo.Exists(ctx, f)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*dom.Category, error) {
	name, err := dom.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, dom.CreatePayload{Name: name})
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*dom.Category, error) {
	var changes dom.Changes
	if in.Name != nil {
		name, err := dom.NormalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		changes.Name = &name
	}

	existed, err := s.Get(ctx, in.ID, nil)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, existed, changes)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	existed, err := s.Get(ctx, id, nil)
	if err != nil {
		return err
	}

	result, err := s.repo.Delete(ctx, existed)
	if err != nil {
		return err
	}
	switch result {
	case dom.NotDeleted:
		return dom.ErrCategoryNotFound
	case dom.DeleteIndeterminate:
		s.log.WithField("category_id", id).Warn("category delete could not confirm affected rows")
	}
	return nil
}
