package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("app").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Admin</title>
</head>
<body>
    <div id="app" data-page="{{.}}"></div>
</body>
</html>
`))

// pageObject is what the client-side router needs to mount a component.
type pageObject struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

// renderPage answers an X-Inertia request with the page object as JSON and
// any other request with the HTML shell embedding it. props is only called
// once the client's asset version is accepted, so a forced reload consumes
// nothing.
func (a *API) renderPage(w http.ResponseWriter, r *http.Request, component string, props func() map[string]any) {
	w.Header().Add("Vary", "X-Inertia")
	inertia := r.Header.Get("X-Inertia") == "true"

	if inertia && a.staleAssets(r) {
		w.Header().Set("X-Inertia-Location", r.URL.RequestURI())
		w.WriteHeader(http.StatusConflict)
		return
	}

	page := pageObject{
		Component: component,
		Props:     props(),
		URL:       r.URL.RequestURI(),
		Version:   a.assetVersion,
	}
	if inertia {
		w.Header().Set("X-Inertia", "true")
		writeJSON(w, http.StatusOK, page)
		return
	}

	data, err := json.Marshal(page)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := pageTemplate.Execute(w, string(data)); err != nil {
		a.log.WithError(err).Error("render page shell")
	}
}

func (a *API) staleAssets(r *http.Request) bool {
	v := r.Header.Get("X-Inertia-Version")
	return r.Method == http.MethodGet && v != "" && v != a.assetVersion
}
