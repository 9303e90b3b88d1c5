package http

import (
	"errors"
	"net/http"

	domcategory "example.com/category-admin/internal/domain/category"
	"example.com/category-admin/internal/infra/flash"
	categoryuc "example.com/category-admin/internal/usecase/category"
)

const categoryIndexPath = "/admin/categories"

type filterField struct {
	Label       string                      `json:"label"`
	Placeholder string                      `json:"placeholder"`
	Type        domcategory.FilterFieldType `json:"type"`
	Value       string                      `json:"value"`
	Options     []domcategory.Choice        `json:"options,omitempty"`
}

type categoryFilters struct {
	Name      filterField `json:"name"`
	SortBy    filterField `json:"sort_by"`
	SortOrder filterField `json:"sort_order"`
}

func newCategoryFilters(req *categoryIndexRequest) categoryFilters {
	return categoryFilters{
		Name: filterField{
			Label:       domcategory.FilterName.Label(),
			Placeholder: "Enter name.",
			Type:        domcategory.FilterFieldTypeString,
			Value:       req.Name,
		},
		SortBy: filterField{
			Label:       "Sort By",
			Placeholder: "Select a sort field",
			Type:        domcategory.FilterFieldTypeSelectStatic,
			Value:       req.SortBy,
			Options:     domcategory.SortFieldChoices(),
		},
		SortOrder: filterField{
			Label:       "Sort order",
			Placeholder: "Select a sort order",
			Type:        domcategory.FilterFieldTypeSelectStatic,
			Value:       req.SortOrder,
			Options:     domcategory.SortOrderChoices(),
		},
	}
}

// handleCategoryIndex serves the listing page, or the bare paginator when
// inertia=disabled. The bare listing is always sorted by name.
func (a *API) handleCategoryIndex(w http.ResponseWriter, r *http.Request) {
	req, details := a.parseCategoryIndex(r)
	if details != nil {
		respondValidation(w, details)
		return
	}

	q := req.listQuery()
	page, err := a.categorySvc.GetAll(r.Context(), q)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	categories := newPaginator(r, page, q.Columns(), req.echo())

	if req.machineReadable() {
		writeJSON(w, http.StatusOK, categories)
		return
	}

	a.renderPage(w, r, "Category/Index", func() map[string]any {
		return map[string]any{
			"categories": categories,
			"filters":    newCategoryFilters(req),
			"flash":      a.popFlash(r),
		}
	})
}

func (a *API) handleStoreCategory(w http.ResponseWriter, r *http.Request) {
	const failed = "Category creation failed!"

	var req categoryCreateRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		a.rejectMutation(w, r, failed, err)
		return
	}

	_, err := a.categorySvc.Create(r.Context(), categoryuc.CreateInput{Name: req.Name})
	a.finishMutation(w, r, err, "Category created successfully.", failed)
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	const failed = "Category update failed!"

	id, err := parseIDParam(r, "id")
	if err != nil {
		a.rejectMutation(w, r, failed, err)
		return
	}
	var req categoryUpdateRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		a.rejectMutation(w, r, failed, err)
		return
	}

	_, err = a.categorySvc.Update(r.Context(), categoryuc.UpdateInput{ID: id, Name: req.Name})
	a.finishMutation(w, r, err, "Category updated successfully.", failed)
}

func (a *API) handleDestroyCategory(w http.ResponseWriter, r *http.Request) {
	const failed = "Category deletion failed!"

	id, err := parseIDParam(r, "id")
	if err != nil {
		a.rejectMutation(w, r, failed, err)
		return
	}

	err = a.categorySvc.Delete(r.Context(), id)
	a.finishMutation(w, r, err, "Category deleted successfully.", failed)
}

// finishMutation turns a mutation outcome into a flash and redirects to the
// listing. Not-found is shown as is and never logged.
func (a *API) finishMutation(w http.ResponseWriter, r *http.Request, err error, succeeded, failed string) {
	switch {
	case err == nil:
		a.redirectWithFlash(w, r, categoryIndexPath, flash.Success(succeeded))
	case errors.Is(err, domcategory.ErrCategoryNotFound):
		a.redirectWithFlash(w, r, categoryIndexPath, flash.Failure(err.Error()))
	case errors.Is(err, domcategory.ErrCategoryInvalidName):
		a.rejectMutation(w, r, failed, err)
	default:
		a.logFailure(r, failed, err)
		a.redirectWithFlash(w, r, categoryIndexPath, flash.Failure(failed))
	}
}

func (a *API) rejectMutation(w http.ResponseWriter, r *http.Request, failed string, err error) {
	a.log.WithError(err).WithField("path", r.URL.Path).Warn(failed)
	a.redirectWithFlash(w, r, categoryIndexPath, flash.Failure(failed))
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	req, details := a.parseCategoryIndex(r)
	if details != nil {
		respondValidation(w, details)
		return
	}

	q := req.listQuery()
	page, err := a.categorySvc.GetAll(r.Context(), q)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaginator(r, page, q.Columns(), req.echo()))
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var expand []domcategory.Relation
	for _, s := range listValues(r.URL.Query(), "expand") {
		rel, err := domcategory.ParseRelation(s)
		if err != nil {
			respondValidation(w, map[string]string{"expand": "relation"})
			return
		}
		expand = append(expand, rel)
	}

	category, err := a.categorySvc.Get(r.Context(), id, expand)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCategory(category, domcategory.AllFields()))
}
