// Package static embeds the browser client. It is a single page that
// reads #forum:<token> or #users:<token> from the URL fragment and
// renders the matching API response, so links produced by the /forum and
// /users redirects open directly.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed dist
var clientFS embed.FS

// Handler serves dist/. Unknown paths fall back to index.html because
// the client routes on the fragment, not the path.
func Handler() http.Handler {
	dist, err := fs.Sub(clientFS, "dist")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	files := http.FileServerFS(dist)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			if _, err := fs.Stat(dist, r.URL.Path[1:]); err != nil {
				r2 := r.Clone(r.Context())
				r2.URL.Path = "/"
				files.ServeHTTP(w, r2)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
