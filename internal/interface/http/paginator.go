package http

import (
	"net/http"
	"strconv"

	domcategory "example.com/category-admin/internal/domain/category"
)

// paginator is a length-aware page whose links keep the request's query
// string. Empty pages report null from/to.
type paginator struct {
	CurrentPage  int              `json:"current_page"`
	Data         []map[string]any `json:"data"`
	FirstPageURL string           `json:"first_page_url"`
	From         *int             `json:"from"`
	LastPage     int              `json:"last_page"`
	LastPageURL  string           `json:"last_page_url"`
	NextPageURL  *string          `json:"next_page_url"`
	Path         string           `json:"path"`
	PerPage      int              `json:"per_page"`
	PrevPageURL  *string          `json:"prev_page_url"`
	To           *int             `json:"to"`
	Total        int64            `json:"total"`
	Query        map[string]any   `json:"query"`
}

func newPaginator(r *http.Request, page *domcategory.Page, fields []domcategory.Field, query map[string]any) paginator {
	data := make([]map[string]any, 0, len(page.Items))
	for _, c := range page.Items {
		data = append(data, mapCategory(c, fields))
	}

	last := page.LastPage()
	p := paginator{
		CurrentPage:  page.Page,
		Data:         data,
		FirstPageURL: pageURL(r, 1),
		LastPage:     last,
		LastPageURL:  pageURL(r, last),
		Path:         r.URL.Path,
		PerPage:      page.PerPage,
		Total:        page.Total,
		Query:        query,
	}
	if len(page.Items) > 0 {
		from, to := page.From(), page.To()
		p.From, p.To = &from, &to
	}
	if page.HasMore() {
		next := pageURL(r, page.Page+1)
		p.NextPageURL = &next
	}
	if page.Page > 1 {
		prev := pageURL(r, page.Page-1)
		p.PrevPageURL = &prev
	}
	return p
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return r.URL.Path + "?" + q.Encode()
}
