package category

import (
	"strings"
	"time"
)

const MaxNameLength = 255

type Category struct {
	ID        int64
	Name      string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePayload is a validated category without its storage-assigned attributes.
type CreatePayload struct {
	Name string
}

// Changes is an update change set. Nil fields are left untouched.
type Changes struct {
	Name *string
}

func (c Changes) IsEmpty() bool {
	return c.Name == nil
}

// Apply returns a copy of c with the change set applied.
func (c Changes) Apply(cat Category) Category {
	if c.Name != nil {
		cat.Name = *c.Name
	}
	return cat
}

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return "", ErrCategoryInvalidName
	}
	return name, nil
}
