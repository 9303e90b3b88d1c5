package category

import "context"

// DeleteResult reports what a delete did. Nothing to delete is not an error.
type DeleteResult int

const (
	DeleteIndeterminate DeleteResult = iota
	Deleted
	NotDeleted
)

func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case NotDeleted:
		return "not_deleted"
	}
	return "indeterminate"
}

type Repository interface {
	GetAll(ctx context.Context, q ListQuery) (*Page, error)
	Exists(ctx context.Context, f Filters) (bool, error)
	// Find returns nil, nil when nothing matches.
	Find(ctx context.Context, f Filters, expand []Relation) (*Category, error)
	Create(ctx context.Context, p CreatePayload) (*Category, error)
	Update(ctx context.Context, c *Category, changes Changes) (*Category, error)
	Delete(ctx context.Context, c *Category) (DeleteResult, error)
}
