package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	domcategory "example.com/category-admin/internal/domain/category"
	domuser "example.com/category-admin/internal/domain/user"
	"example.com/category-admin/internal/infra/flash"
	"example.com/category-admin/internal/infra/persistence/memory"
	"example.com/category-admin/internal/infra/security"
	authuc "example.com/category-admin/internal/usecase/auth"
	categoryuc "example.com/category-admin/internal/usecase/category"
)

type memoryCategoryRepo struct {
	nextID    int64
	items     map[int64]*domcategory.Category
	lastQuery domcategory.ListQuery
	createErr error
	deleteErr error
}

func newMemoryCategoryRepo() *memoryCategoryRepo {
	return &memoryCategoryRepo{items: map[int64]*domcategory.Category{}}
}

func (m *memoryCategoryRepo) seed(name string, createdAt time.Time) *domcategory.Category {
	m.nextID++
	c := &domcategory.Category{ID: m.nextID, Name: name, Version: 1, CreatedAt: createdAt, UpdatedAt: createdAt}
	m.items[c.ID] = c
	cp := *c
	return &cp
}

func (m *memoryCategoryRepo) matches(c *domcategory.Category, f domcategory.Filters) bool {
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.Name != nil && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.CreatedAt != nil && !f.CreatedAt.Contains(c.CreatedAt) {
		return false
	}
	return true
}

func (m *memoryCategoryRepo) GetAll(ctx context.Context, q domcategory.ListQuery) (*domcategory.Page, error) {
	if err := domcategory.ValidateRelations(q.Expand); err != nil {
		return nil, err
	}
	m.lastQuery = q
	var all []*domcategory.Category
	for _, c := range m.items {
		if m.matches(c, q.Filters) {
			cp := *c
			all = append(all, &cp)
		}
	}

	s := q.Sort.OrDefault()
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		var less bool
		switch s.Field {
		case domcategory.SortFieldName:
			less = a.Name < b.Name || (a.Name == b.Name && a.ID < b.ID)
		case domcategory.SortFieldCreatedAt:
			less = a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID)
		default:
			less = a.ID < b.ID
		}
		if s.Order == domcategory.SortOrderDesc {
			return !less
		}
		return less
	})

	page := q.Page.Normalize()
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PerPage
	if end > len(all) {
		end = len(all)
	}
	return &domcategory.Page{Items: all[start:end], Total: int64(len(all)), Page: page.Page, PerPage: page.PerPage}, nil
}

func (m *memoryCategoryRepo) Exists(ctx context.Context, f domcategory.Filters) (bool, error) {
	for _, c := range m.items {
		if m.matches(c, f) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryCategoryRepo) Find(ctx context.Context, f domcategory.Filters, expand []domcategory.Relation) (*domcategory.Category, error) {
	if err := domcategory.ValidateRelations(expand); err != nil {
		return nil, err
	}
	if f.ID != nil {
		if c, ok := m.items[*f.ID]; ok && m.matches(c, f) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryCategoryRepo) Create(ctx context.Context, p domcategory.CreatePayload) (*domcategory.Category, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.seed(p.Name, time.Now().UTC()), nil
}

func (m *memoryCategoryRepo) Update(ctx context.Context, c *domcategory.Category, changes domcategory.Changes) (*domcategory.Category, error) {
	existing, ok := m.items[c.ID]
	if !ok {
		return nil, domcategory.ErrCategoryNotFound
	}
	updated := changes.Apply(*existing)
	updated.Version++
	m.items[c.ID] = &updated
	cp := updated
	return &cp, nil
}

func (m *memoryCategoryRepo) Delete(ctx context.Context, c *domcategory.Category) (domcategory.DeleteResult, error) {
	if m.deleteErr != nil {
		return domcategory.DeleteIndeterminate, m.deleteErr
	}
	if _, ok := m.items[c.ID]; !ok {
		return domcategory.NotDeleted, nil
	}
	delete(m.items, c.ID)
	return domcategory.Deleted, nil
}

type testEnv struct {
	router http.Handler
	repo   *memoryCategoryRepo
	hook   *test.Hook
	token  string
	cookie *http.Cookie
}

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "password123"
)

func setupCategoryAPI(t *testing.T, opts ...func(*Dependencies)) *testEnv {
	t.Helper()

	log, hook := test.NewNullLogger()
	repo := newMemoryCategoryRepo()
	tokenSvc := security.NewJWTService("cat-secret", time.Hour)
	hasher := security.NewBcryptService(4)

	hash, err := hasher.Hash(testAdminPassword)
	require.NoError(t, err)
	users := memory.NewUserRepository(&domuser.User{
		Name:         "Root",
		Email:        testAdminEmail,
		PasswordHash: hash,
		RoleCode:     domuser.RoleCodeSuperAdmin,
	})

	deps := Dependencies{
		Logger:          log,
		AuthService:     authuc.NewService(users, hasher, tokenSvc),
		CategoryService: categoryuc.NewService(repo, log),
		FlashStore:      flash.NewMemoryStore(time.Minute, log),
		DBPing:          func(context.Context) error { return nil },
		AssetVersion:    "test-v1",
	}
	for _, opt := range opts {
		opt(&deps)
	}
	api := NewAPI(deps)

	token, err := tokenSvc.GenerateToken(&domuser.User{
		ID:       1,
		Name:     "Root",
		Email:    testAdminEmail,
		RoleCode: domuser.RoleCodeSuperAdmin,
	})
	require.NoError(t, err)

	return &testEnv{router: api.Router(), repo: repo, hook: hook, token: token}
}

type requestOption func(*http.Request)

func withInertia() requestOption {
	return func(r *http.Request) { r.Header.Set("X-Inertia", "true") }
}

func withoutAuth() requestOption {
	return func(r *http.Request) { r.Header.Del("Authorization") }
}

// do sends a request with the admin token and the flash cookie captured from
// earlier responses.
func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			e.cookie = c
		}
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// pageProps fetches the listing page as an X-Inertia visit and returns its props.
func (e *testEnv) pageProps(t *testing.T, path string) map[string]any {
	t.Helper()
	rec := e.do(t, http.MethodGet, path, nil, withInertia())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decodeBody(t, rec)
	return page["props"].(map[string]any)
}

func entriesAt(hook *test.Hook, level logrus.Level) []logrus.Entry {
	var out []logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			out = append(out, *e)
		}
	}
	return out
}

var errDriver = errors.New("driver: bad connection")
