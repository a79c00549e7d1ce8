// Package web serves the analyzer over HTTP: a small embedded page for
// pasting history and a JSON API. Binds to localhost only: no network
// exposure, no auth needed.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static/index.html
var staticFS embed.FS

// staticRoot serves static/ as the site root.
func staticRoot() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return sub
}
