// Package web serves the browser client: a single page that talks to the
// /todos API and holds no business rules of its own.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the dashboard at "/", the signed-out landing page at
// "/welcome" and the remaining assets under "/static/".
func Handler() http.Handler {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	files := http.FileServer(http.FS(static))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, static, "index.html")
	})
	mux.HandleFunc("GET /welcome", func(w http.ResponseWriter, r *http.Request) {
		servePage(w, r, static, "welcome.html")
	})
	mux.Handle("GET /static/", http.StripPrefix("/static/", files))
	return mux
}

func servePage(w http.ResponseWriter, r *http.Request, static fs.FS, name string) {
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFileFS(w, r, static, name)
}
