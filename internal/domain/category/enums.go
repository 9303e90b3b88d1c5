package category

import "fmt"

// Choice is a label/value pair rendered as a select option.
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Filter string

const (
	FilterID        Filter = "id"
	FilterName      Filter = "name"
	FilterCreatedAt Filter = "created_at"
)

func (f Filter) Label() string {
	switch f {
	case FilterID:
		return "ID"
	case FilterName:
		return "Name"
	case FilterCreatedAt:
		return "Created at"
	}
	return string(f)
}

// Field is a category column. Projection only accepts these.
type Field string

const (
	FieldID        Field = "id"
	FieldName      Field = "name"
	FieldVersion   Field = "version"
	FieldCreatedAt Field = "created_at"
	FieldUpdatedAt Field = "updated_at"
)

var allFields = []Field{FieldID, FieldName, FieldVersion, FieldCreatedAt, FieldUpdatedAt}

func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

func (f Field) IsValid() bool {
	for _, v := range allFields {
		if v == f {
			return true
		}
	}
	return false
}

func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, s)
	}
	return f, nil
}

type SortField string

const (
	SortFieldID        SortField = "id"
	SortFieldName      SortField = "name"
	SortFieldCreatedAt SortField = "created_at"
)

var sortFields = []SortField{SortFieldID, SortFieldName, SortFieldCreatedAt}

func (f SortField) IsValid() bool {
	for _, v := range sortFields {
		if v == f {
			return true
		}
	}
	return false
}

func (f SortField) Label() string {
	switch f {
	case SortFieldID:
		return "ID"
	case SortFieldName:
		return "Name"
	case SortFieldCreatedAt:
		return "Created at"
	}
	return string(f)
}

func ParseSortField(s string) (SortField, error) {
	f := SortField(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, s)
	}
	return f, nil
}

func SortFieldChoices() []Choice {
	out := make([]Choice, 0, len(sortFields))
	for _, f := range sortFields {
		out = append(out, Choice{Label: f.Label(), Value: string(f)})
	}
	return out
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}

func (o SortOrder) Label() string {
	if o == SortOrderDesc {
		return "Descending"
	}
	return "Ascending"
}

func ParseSortOrder(s string) (SortOrder, error) {
	o := SortOrder(s)
	if !o.IsValid() {
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidFilter, s)
	}
	return o, nil
}

func SortOrderChoices() []Choice {
	return []Choice{
		{Label: SortOrderAsc.Label(), Value: string(SortOrderAsc)},
		{Label: SortOrderDesc.Label(), Value: string(SortOrderDesc)},
	}
}

// FilterFieldType tells the admin UI which input widget renders a filter.
type FilterFieldType string

const (
	FilterFieldTypeString       FilterFieldType = "string"
	FilterFieldTypeSelectStatic FilterFieldType = "select_static"
)

// Relation names an eager-loadable association. Categories have none yet.
type Relation string

var relations = map[Relation]struct{}{}

func ParseRelation(s string) (Relation, error) {
	r := Relation(s)
	if _, ok := relations[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelation, s)
	}
	return r, nil
}

func ValidateRelations(rs []Relation) error {
	for _, r := range rs {
		if _, ok := relations[r]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRelation, string(r))
		}
	}
	return nil
}
