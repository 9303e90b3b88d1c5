package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	domcategory "example.com/category-admin/internal/domain/category"
	domuser "example.com/category-admin/internal/domain/user"
	"example.com/category-admin/internal/infra/flash"
	authuc "example.com/category-admin/internal/usecase/auth"
	categoryuc "example.com/category-admin/internal/usecase/category"
)

var errInternal = errors.New("internal server error")

type PingFunc func(ctx context.Context) error

type API struct {
	log          logrus.FieldLogger
	authSvc      *authuc.Service
	categorySvc  *categoryuc.Service
	flash        flash.Store
	dbPing       PingFunc
	validator    *validator.Validate
	assetVersion string
	corsOrigins  []string
	secureCookie bool
}

type Dependencies struct {
	Logger             logrus.FieldLogger
	AuthService        *authuc.Service
	CategoryService    *categoryuc.Service
	FlashStore         flash.Store
	DBPing             PingFunc
	AssetVersion       string
	CORSAllowedOrigins []string
	SecureCookies      bool
}

func NewAPI(deps Dependencies) *API {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &API{
		log:          log,
		authSvc:      deps.AuthService,
		categorySvc:  deps.CategoryService,
		flash:        deps.FlashStore,
		dbPing:       deps.DBPing,
		validator:    validate,
		assetVersion: deps.AssetVersion,
		corsOrigins:  deps.CORSAllowedOrigins,
		secureCookie: deps.SecureCookies,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	// Credentials are only allowed for explicit origins; browsers reject them
	// alongside a wildcard origin.
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   a.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Inertia", "X-Inertia-Version"},
		ExposedHeaders:   []string{"X-Inertia", "X-Inertia-Location"},
		AllowCredentials: len(a.corsOrigins) > 0,
	}).Handler)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", a.handleHealth)
	r.Get("/health/db", a.handleDBHealth)
	r.Get("/health/flash", a.handleFlashHealth)

	r.Route("/admin/categories", func(cr chi.Router) {
		cr.Use(a.authMiddleware)
		cr.Use(a.requireRoles(domuser.RoleCodeAdmin, domuser.RoleCodeSuperAdmin))

		cr.Get("/", a.handleCategoryIndex)
		cr.Post("/", a.handleStoreCategory)
		cr.Put("/{id}", a.handleUpdateCategory)
		cr.Delete("/{id}", a.handleDestroyCategory)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)
			ar.Use(a.requireRoles(domuser.RoleCodeAdmin, domuser.RoleCodeSuperAdmin))

			ar.Route("/admin/categories", func(rr chi.Router) {
				rr.Get("/", a.handleListCategories)
				rr.Get("/{id}", a.handleGetCategory)
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func respondValidation(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:   "validation failed",
		Details: details,
	})
}

// validationDetails flattens validator errors into field -> rule.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[fe.Field()] = msg
	}
	return out
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func mapUser(u *domuser.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role_code": u.RoleCode,
	}
}

// mapCategory renders only the projected fields of c.
func mapCategory(c *domcategory.Category, fields []domcategory.Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case domcategory.FieldID:
			out["id"] = c.ID
		case domcategory.FieldName:
			out["name"] = c.Name
		case domcategory.FieldVersion:
			out["version"] = c.Version
		case domcategory.FieldCreatedAt:
			out["created_at"] = c.CreatedAt
		case domcategory.FieldUpdatedAt:
			out["updated_at"] = c.UpdatedAt
		}
	}
	return out
}

func domainErrorStatus(err error) int {
	switch {
	case errors.Is(err, domuser.ErrInvalidRoleCode),
		errors.Is(err, domuser.ErrInvalidCredential),
		errors.Is(err, domcategory.ErrCategoryInvalidName),
		errors.Is(err, domcategory.ErrInvalidFilter),
		errors.Is(err, domcategory.ErrUnknownRelation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domuser.ErrUserNotFound),
		errors.Is(err, domcategory.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domuser.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domcategory.ErrRetryExhausted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleDomainError maps known errors to a status. Anything unexpected is
// logged with its stack and answered with a generic 500.
func (a *API) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainErrorStatus(err)
	if status == http.StatusInternalServerError {
		a.logFailure(r, "request failed", err)
		respondError(w, status, errInternal)
		return
	}
	respondError(w, status, err)
}

func (a *API) logFailure(r *http.Request, msg string, err error) {
	a.log.WithFields(logrus.Fields{
		"request_id": chimw.GetReqID(r.Context()),
		"message":    err.Error(),
		"traces":     fmt.Sprintf("%+v", err),
	}).Error(msg)
}
