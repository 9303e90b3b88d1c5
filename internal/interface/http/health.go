package http

import (
	"context"
	"net/http"
	"time"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDBHealth(w http.ResponseWriter, r *http.Request) {
	a.respondPing(w, r, "db", a.dbPing)
}

func (a *API) handleFlashHealth(w http.ResponseWriter, r *http.Request) {
	var ping PingFunc
	if a.flash != nil {
		ping = a.flash.Ping
	}
	a.respondPing(w, r, "flash", ping)
}

func (a *API) respondPing(w http.ResponseWriter, r *http.Request, name string, ping PingFunc) {
	if ping == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unconfigured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := ping(ctx); err != nil {
		a.log.WithError(err).WithField("dependency", name).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
