package category

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{name: "zero value", in: PageRequest{}, want: PageRequest{Page: 1, PerPage: DefaultPerPage}},
		{name: "negative page", in: PageRequest{Page: -3, PerPage: 10}, want: PageRequest{Page: 1, PerPage: 10}},
		{name: "per page capped", in: PageRequest{Page: 2, PerPage: 1000}, want: PageRequest{Page: 2, PerPage: MaxPerPage}},
		{name: "page capped", in: PageRequest{Page: math.MaxInt, PerPage: 15}, want: PageRequest{Page: MaxPage, PerPage: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	require.Equal(t, 0, PageRequest{Page: 1, PerPage: 10}.Offset())
	require.Equal(t, 20, PageRequest{Page: 3, PerPage: 10}.Offset())

	for _, page := range []int{math.MaxInt64/15 + 2, math.MaxInt, MaxPage + 1} {
		off := PageRequest{Page: page, PerPage: 15}.Offset()
		require.Positive(t, off, "page %d", page)
		require.Equal(t, (MaxPage-1)*15, off)
	}
}

func TestPageBounds(t *testing.T) {
	p := &Page{
		Items:   []*Category{{ID: 11}, {ID: 12}, {ID: 13}},
		Total:   23,
		Page:    3,
		PerPage: 10,
	}
	require.Equal(t, 3, p.LastPage())
	require.Equal(t, 21, p.From())
	require.Equal(t, 23, p.To())
	require.False(t, p.HasMore())

	empty := &Page{Total: 0, Page: 1, PerPage: 10}
	require.Equal(t, 1, empty.LastPage())
	require.Zero(t, empty.From())
	require.Zero(t, empty.To())
}

func TestSortOrDefault(t *testing.T) {
	require.Equal(t, Sort{Field: SortFieldID, Order: SortOrderAsc}, Sort{}.OrDefault())
	require.Equal(t, Sort{Field: SortFieldName, Order: SortOrderAsc}, Sort{Field: SortFieldName}.OrDefault())
	require.Equal(t, Sort{Field: SortFieldID, Order: SortOrderDesc}, Sort{Order: SortOrderDesc}.OrDefault())
}

func TestProjectionAlwaysKeepsID(t *testing.T) {
	require.Equal(t, AllFields(), Projection(nil))
	require.Equal(t, []Field{FieldID, FieldName}, Projection([]Field{FieldName, FieldName}))
	require.Equal(t, []Field{FieldID, FieldCreatedAt}, Projection([]Field{FieldCreatedAt, FieldID}))
}

func TestTimeRangeContainsIsInclusive(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	r := TimeRange{From: from, To: to}

	require.True(t, r.Contains(from))
	require.True(t, r.Contains(to))
	require.False(t, r.Contains(from.Add(-time.Nanosecond)))
	require.False(t, r.Contains(to.Add(time.Second)))
}

func TestFiltersValidateRejectsInvertedRange(t *testing.T) {
	now := time.Now()
	f := Filters{CreatedAt: &TimeRange{From: now, To: now.Add(-time.Hour)}}
	require.ErrorIs(t, f.Validate(), ErrInvalidFilter)
	require.NoError(t, Filters{}.Validate())
}

func TestEnumsParse(t *testing.T) {
	f, err := ParseSortField("name")
	require.NoError(t, err)
	require.Equal(t, SortFieldName, f)

	_, err = ParseSortField("password")
	require.ErrorIs(t, err, ErrInvalidFilter)

	_, err = ParseSortOrder("sideways")
	require.ErrorIs(t, err, ErrInvalidFilter)

	_, err = ParseRelation("products")
	require.ErrorIs(t, err, ErrUnknownRelation)

	require.Equal(t, []Choice{
		{Label: "ID", Value: "id"},
		{Label: "Name", Value: "name"},
		{Label: "Created at", Value: "created_at"},
	}, SortFieldChoices())
}

func TestCommitErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&CommitError{Err: cause})

	require.ErrorIs(t, err, ErrCommitFailed)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "disk full")
}

func TestNormalizeName(t *testing.T) {
	name, err := NormalizeName("  Books  ")
	require.NoError(t, err)
	require.Equal(t, "Books", name)

	_, err = NormalizeName(" \t ")
	require.ErrorIs(t, err, ErrCategoryInvalidName)
}
