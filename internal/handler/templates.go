package handler

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type interstitialData struct {
	Target string
}

type textPageData struct {
	Name string
	Text string
}

// renderInterstitial writes the manual-redirect page used in restrictive
// in-app browser contexts. Status is 200: the page itself is the valid
// response, not an error.
func renderInterstitial(w http.ResponseWriter, target string) {
	renderPage(w, http.StatusOK, "interstitial.html", interstitialData{Target: target})
}

// renderTextPage writes stored plain text as an HTML page.
func renderTextPage(w http.ResponseWriter, name, text string) {
	renderPage(w, http.StatusOK, "textpage.html", textPageData{Name: name, Text: text})
}

// renderNotFound writes the shared 404 page.
func renderNotFound(w http.ResponseWriter) {
	renderPage(w, http.StatusNotFound, "notfound.html", nil)
}

func renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		_ = err
	}
}
