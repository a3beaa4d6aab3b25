// Package web bundles the HTML templates and static assets of the storefront.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the bundled assets rooted at the static directory.
func Static() fs.FS {
	return sub(staticFS, "static")
}

// NewViews returns the template engine for the embedded pages.
// Templates are addressed by file name without the .html extension.
func NewViews() *html.Engine {
	return html.NewFileSystem(http.FS(sub(templateFS, "templates")), ".html")
}

func sub(fsys fs.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return s
}
