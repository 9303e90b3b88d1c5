package http

import (
	"net/http"

	"github.com/google/uuid"

	"example.com/category-admin/internal/infra/flash"
)

const flashCookie = "flash_session"

// flashKey returns the browser's flash key, issuing a new cookie when the
// request carries none.
func (a *API) flashKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(flashCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

func (a *API) putFlash(w http.ResponseWriter, r *http.Request, f flash.Flash) {
	if a.flash == nil {
		return
	}
	key := a.flashKey(w, r)
	if err := a.flash.Put(r.Context(), key, f); err != nil {
		a.log.WithError(err).Warn("store flash")
	}
}

// popFlash consumes the pending flash. A missing cookie or store error reads
// as no flash.
func (a *API) popFlash(r *http.Request) *flash.Flash {
	if a.flash == nil {
		return nil
	}
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	f, err := a.flash.Pop(r.Context(), c.Value)
	if err != nil {
		a.log.WithError(err).Warn("pop flash")
		return nil
	}
	return f
}

func (a *API) redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, f flash.Flash) {
	a.putFlash(w, r, f)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
