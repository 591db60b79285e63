package handler

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/draftboard/internal/web/middleware"
	"github.com/mcoot/draftboard/internal/web/templates/layout"
	"github.com/mcoot/draftboard/internal/web/templates/pages"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// redirect navigates to path, client-side for HTMX requests
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithFlash sets a flash message and redirects
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, flashType, message string) {
	middleware.SetFlash(w, flashType, message)
	redirect(w, r, path)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	renderPage(w, r, status, pages.Error(pages.ErrorData{
		PageData: layout.PageData{Title: title},
		Message:  message,
	}))
}

// NotFound renders the 404 page
func NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "Not found", "The page you were looking for does not exist.")
}
