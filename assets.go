package inlinecreate

import (
	"io/fs"

	"github.com/goliatone/go-inlinecreate/pkg/markup"
)

// TemplatesFS exposes the built-in button and dialog templates so callers can
// extend them without importing the markup package directly.
func TemplatesFS() fs.FS {
	return markup.TemplatesFS()
}

// AssetsFS exposes the widget stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(inlinecreate.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return markup.AssetsFS()
}
