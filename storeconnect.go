package storeconnect

import (
	"embed"
	"io/fs"
)

//go:embed public
var PublicFS embed.FS

// Public returns the storefront assets rooted at public/.
func Public() (fs.FS, error) {
	return fs.Sub(PublicFS, "public")
}
