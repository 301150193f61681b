// Package assets embeds the browser client served at "/".
package assets

import (
	"embed"
	"io/fs"
)

//go:embed web
var files embed.FS

// Web returns the client files rooted at web/.
func Web() fs.FS {
	sub, err := fs.Sub(files, "web")
	if err != nil {
		panic(err) // embed path is fixed at compile time
	}
	return sub
}

// Index returns the client's entry page.
func Index() ([]byte, error) {
	return files.ReadFile("web/index.html")
}
