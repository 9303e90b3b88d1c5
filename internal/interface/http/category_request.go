package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domcategory "example.com/category-admin/internal/domain/category"
)

const inertiaDisabled = "disabled"

// categoryIndexRequest is the listing query string after type conversion.
// Validator rules run on it once parsing succeeded.
type categoryIndexRequest struct {
	ID        *int64   `json:"id" validate:"omitempty,gt=0"`
	Name      string   `json:"name" validate:"max=255"`
	CreatedAt []string `json:"created_at" validate:"omitempty,len=2"`
	SortBy    string   `json:"sort_by" validate:"omitempty,oneof=id name created_at"`
	SortOrder string   `json:"sort_order" validate:"omitempty,oneof=asc desc"`
	Page      int      `json:"page" validate:"gte=0,lte=10000000"`
	PerPage   int      `json:"per_page" validate:"gte=0,lte=100"`
	Fields    []string `json:"fields"`
	Expand    []string `json:"expand"`
	Inertia   string   `json:"inertia" validate:"omitempty,oneof=enabled disabled"`

	createdAt *domcategory.TimeRange
	fields    []domcategory.Field
	expand    []domcategory.Relation
}

func (req *categoryIndexRequest) machineReadable() bool {
	return req.Inertia == inertiaDisabled
}

type categoryCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type categoryUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

// parseCategoryIndex converts and validates the listing query. The returned
// map holds per-field errors and is nil when the request is valid.
func (a *API) parseCategoryIndex(r *http.Request) (*categoryIndexRequest, map[string]string) {
	q := r.URL.Query()
	req := &categoryIndexRequest{
		Name:      strings.TrimSpace(q.Get("name")),
		CreatedAt: createdAtValues(q),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Fields:    listValues(q, "fields"),
		Expand:    listValues(q, "expand"),
		Inertia:   q.Get("inertia"),
	}
	details := map[string]string{}

	if v := q.Get("id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			details["id"] = "integer"
		} else {
			req.ID = &id
		}
	}
	for key, dst := range map[string]*int{"page": &req.Page, "per_page": &req.PerPage} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				details[key] = "integer"
				continue
			}
			*dst = n
		}
	}

	if err := a.validator.Struct(req); err != nil {
		for field, msg := range validationDetails(err) {
			details[field] = msg
		}
	}

	if len(req.CreatedAt) == 2 && details["created_at"] == "" {
		rng, err := parseTimeRange(req.CreatedAt[0], req.CreatedAt[1])
		if err != nil {
			details["created_at"] = "date_range"
		} else {
			req.createdAt = rng
		}
	}

	for _, s := range req.Fields {
		f, err := domcategory.ParseField(s)
		if err != nil {
			details["fields"] = "field"
			break
		}
		req.fields = append(req.fields, f)
	}

	for _, s := range req.Expand {
		rel, err := domcategory.ParseRelation(s)
		if err != nil {
			details["expand"] = "relation"
			break
		}
		req.expand = append(req.expand, rel)
	}

	if len(details) > 0 {
		return nil, details
	}
	return req, nil
}

func (req *categoryIndexRequest) listQuery() domcategory.ListQuery {
	q := domcategory.ListQuery{
		Filters: domcategory.Filters{
			ID:        req.ID,
			CreatedAt: req.createdAt,
		},
		Sort: domcategory.Sort{
			Field: domcategory.SortField(req.SortBy),
			Order: domcategory.SortOrder(req.SortOrder),
		},
		Page:   domcategory.PageRequest{Page: req.Page, PerPage: req.PerPage},
		Expand: req.expand,
	}
	if req.Name != "" {
		name := req.Name
		q.Filters.Name = &name
	}
	q.Fields = req.fields
	if req.machineReadable() {
		q.Sort.Field = domcategory.SortFieldName
	}
	return q
}

// echo is the accepted query as the listing reports it back.
func (req *categoryIndexRequest) echo() map[string]any {
	out := map[string]any{}
	if req.ID != nil {
		out["id"] = *req.ID
	}
	if req.Name != "" {
		out["name"] = req.Name
	}
	if len(req.CreatedAt) == 2 {
		out["created_at"] = req.CreatedAt
	}
	if req.SortBy != "" {
		out["sort_by"] = req.SortBy
	}
	if req.SortOrder != "" {
		out["sort_order"] = req.SortOrder
	}
	if req.Page > 0 {
		out["page"] = req.Page
	}
	if req.PerPage > 0 {
		out["per_page"] = req.PerPage
	}
	if len(req.Fields) > 0 {
		out["fields"] = req.Fields
	}
	if len(req.Expand) > 0 {
		out["expand"] = req.Expand
	}
	if req.Inertia != "" {
		out["inertia"] = req.Inertia
	}
	if req.machineReadable() {
		out["sort_by"] = string(domcategory.SortFieldName)
	}
	return out
}

// createdAtValues accepts created_at[]=a&created_at[]=b, a repeated
// created_at, or created_at=a,b.
func createdAtValues(q url.Values) []string {
	vals := q["created_at[]"]
	if len(vals) == 0 {
		vals = q["created_at"]
	}
	if len(vals) == 1 {
		vals = strings.Split(vals[0], ",")
	}
	out := make([]string, 0, len(vals))
	empty := true
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			empty = false
		}
		out = append(out, v)
	}
	if empty {
		return nil
	}
	return out
}

func listValues(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

const dateLayout = "2006-01-02"

// parseTimeRange reads RFC3339 or date-only bounds. A date-only upper bound
// covers the whole day.
func parseTimeRange(from, to string) (*domcategory.TimeRange, error) {
	start, err := parseBound(from, false)
	if err != nil {
		return nil, err
	}
	end, err := parseBound(to, true)
	if err != nil {
		return nil, err
	}
	rng := &domcategory.TimeRange{From: start, To: end}
	if err := (domcategory.Filters{CreatedAt: rng}).Validate(); err != nil {
		return nil, err
	}
	return rng, nil
}

func parseBound(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
