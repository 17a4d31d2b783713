package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	appLog "athletics/internal/log"
)

// staticFileServer serves the exported site front end from dir. Paths
// without an extension fall back to "<path>.html" and then "<path>/index.html"
// the way a static export lays out its pages. /api paths are never served
// from here.
func staticFileServer(dir string) http.Handler {
	if _, err := os.Stat(dir); err != nil {
		appLog.Error("static directory not available", err, "dir", dir)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "site UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			http.NotFound(w, r)
			return
		}

		if p != "/" && path.Ext(p) == "" {
			clean := filepath.FromSlash(path.Clean(p))
			if fi, err := os.Stat(filepath.Join(dir, clean+".html")); err == nil && !fi.IsDir() {
				r2 := r.Clone(r.Context())
				r2.URL.Path = p + ".html"
				fileServer.ServeHTTP(w, r2)
				return
			}
		}
		fileServer.ServeHTTP(w, r)
	})
}
