package sqlquery

import (
	"strings"

	domcategory "example.com/category-admin/internal/domain/category"
)

// CategoryWhere turns a filter set into clauses. Absent filters add nothing.
func CategoryWhere(d Dialect, f domcategory.Filters) Where {
	w := New(d)
	w = w.When(f.ID != nil, "id = ?", derefInt64(f.ID))
	w = w.When(f.Name != nil, "name LIKE ? ESCAPE '"+LikeEscape+"'", namePattern(f.Name))
	if f.CreatedAt != nil {
		w = w.When(true, "created_at BETWEEN ? AND ?", f.CreatedAt.From.UTC(), f.CreatedAt.To.UTC())
	}
	return w
}

// OrderBy renders an ORDER BY from the closed sort enum with an id tiebreaker.
func OrderBy(s domcategory.Sort) string {
	s = s.OrDefault()
	dir := "ASC"
	if s.Order == domcategory.SortOrderDesc {
		dir = "DESC"
	}
	out := " ORDER BY " + string(s.Field) + " " + dir
	if s.Field != domcategory.SortFieldID {
		out += ", id " + dir
	}
	return out
}

func Columns(fields []domcategory.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ScanTargets returns the destinations for the projected columns of c.
func ScanTargets(c *domcategory.Category, fields []domcategory.Field) []any {
	dest := make([]any, 0, len(fields))
	for _, f := range fields {
		switch f {
		case domcategory.FieldID:
			dest = append(dest, &c.ID)
		case domcategory.FieldName:
			dest = append(dest, &c.Name)
		case domcategory.FieldVersion:
			dest = append(dest, &c.Version)
		case domcategory.FieldCreatedAt:
			dest = append(dest, &c.CreatedAt)
		case domcategory.FieldUpdatedAt:
			dest = append(dest, &c.UpdatedAt)
		}
	}
	return dest
}

func derefInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func namePattern(v *string) any {
	if v == nil {
		return nil
	}
	return ContainsPattern(*v)
}
