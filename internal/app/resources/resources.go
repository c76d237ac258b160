// Package resources embeds the layout templates and the static assets
// (stylesheet and the small script behind notices, logout and the month
// selector) into the binary.
package resources

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var sharedFS embed.FS

//go:embed assets/css/*.css assets/js/*.js
var assetsFS embed.FS

var registerOnce sync.Once

// LoadSharedTemplates registers layout_start, layout_end and menu with the
// template engine. Call it before the engine boots.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       sharedFS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}

// assetCacheControl lets browsers keep assets for an hour; they are
// rebuilt with each release.
const assetCacheControl = "public, max-age=3600"

// AssetsHandler serves the embedded assets under prefix, e.g. /assets/css/app.css.
func AssetsHandler(prefix string) http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("resources: assets subtree: " + err.Error())
	}
	files := http.StripPrefix(prefix, http.FileServerFS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", assetCacheControl)
		files.ServeHTTP(w, r)
	})
}
