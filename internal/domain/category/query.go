package category

import (
	"fmt"
	"time"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	// MaxPage keeps (MaxPage-1)*MaxPerPage well inside int range.
	MaxPage = 10_000_000
)

// TimeRange is inclusive on both ends.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Filters narrows a query. A nil field adds no constraint.
type Filters struct {
	ID        *int64
	Name      *string
	CreatedAt *TimeRange
}

func (f Filters) Validate() error {
	if f.CreatedAt != nil && f.CreatedAt.From.After(f.CreatedAt.To) {
		return fmt.Errorf("%w: created_at range starts after it ends", ErrInvalidFilter)
	}
	return nil
}

type Sort struct {
	Field SortField
	Order SortOrder
}

// OrDefault fills the unset parts of s with id ascending.
func (s Sort) OrDefault() Sort {
	if !s.Field.IsValid() {
		s.Field = SortFieldID
	}
	if !s.Order.IsValid() {
		s.Order = SortOrderAsc
	}
	return s
}

type PageRequest struct {
	Page    int
	PerPage int
}

func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PageRequest) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PerPage
}

type ListQuery struct {
	Filters Filters
	Sort    Sort
	Page    PageRequest
	Fields  []Field
	Expand  []Relation
}

// Columns is the projection for q. The id column is always included.
func (q ListQuery) Columns() []Field {
	return Projection(q.Fields)
}

func Projection(fields []Field) []Field {
	if len(fields) == 0 {
		return AllFields()
	}
	out := []Field{FieldID}
	seen := map[Field]bool{FieldID: true}
	for _, f := range fields {
		if seen[f] || !f.IsValid() {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

type Page struct {
	Items   []*Category
	Total   int64
	Page    int
	PerPage int
}

func (p *Page) LastPage() int {
	if p.PerPage < 1 || p.Total == 0 {
		return 1
	}
	last := int(p.Total / int64(p.PerPage))
	if p.Total%int64(p.PerPage) != 0 {
		last++
	}
	return last
}

// From is the 1-based position of the first item on the page, 0 when empty.
func (p *Page) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

func (p *Page) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}

func (p *Page) HasMore() bool {
	return p.Page < p.LastPage()
}
