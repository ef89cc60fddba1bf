package api

import (
	"embed"
	"net/http"
)

//go:embed templates/dark.html templates/light.html
var templates embed.FS

// Editor skins. The choice is configuration passed into the handler, not
// ambient state.
const (
	SkinDark  = "dark"
	SkinLight = "light"
)

// EditorHandler serves the editor template the rendering surface loads.
// The template is an opaque shell: it exposes setMarkdown/refreshMarkdown
// hooks, reports load completion, and posts edits and console messages
// back to the session endpoints.
func EditorHandler(skin string) http.HandlerFunc {
	name := "templates/dark.html"
	if skin == SkinLight {
		name = "templates/light.html"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := templates.ReadFile(name)
		if err != nil {
			http.Error(w, "editor template missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
