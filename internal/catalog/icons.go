package catalog

import (
	"os"
	"path/filepath"
)

// Icon is an application's icon. Path is empty when no file was found.
type Icon struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// IconTheme looks icons up in the hicolor fallback theme and pixmaps.
type IconTheme struct {
	dirs  Dirs
	sizes []string
	exts  []string
}

// NewIconTheme creates a lookup over the data dirs, highest precedence first.
func NewIconTheme(dirs Dirs) *IconTheme {
	return &IconTheme{
		dirs:  dirs,
		sizes: []string{"48x48", "64x64", "128x128", "256x256", "32x32", "scalable"},
		exts:  []string{".png", ".svg", ".xpm"},
	}
}

// Lookup resolves name to a file. Absolute names are used as they are.
func (t *IconTheme) Lookup(name string) Icon {
	icon := Icon{Name: name}
	if name == "" || t == nil {
		return icon
	}
	if filepath.IsAbs(name) {
		if fileExists(name) {
			icon.Path = name
		}
		return icon
	}

	for _, dir := range t.dirs {
		for _, size := range t.sizes {
			for _, ext := range t.exts {
				p := filepath.Join(dir, "icons", "hicolor", size, "apps", name+ext)
				if fileExists(p) {
					icon.Path = p
					return icon
				}
			}
		}
	}
	for _, dir := range t.dirs {
		for _, ext := range t.exts {
			p := filepath.Join(dir, "pixmaps", name+ext)
			if fileExists(p) {
				icon.Path = p
				return icon
			}
		}
	}
	return icon
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
