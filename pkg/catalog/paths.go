package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/orbiter-mshx/pkg/encoding"
)

// Orbiter install folder names.
const (
	MeshesDir   = "Meshes"
	TexturesDir = "Textures"
	// Textures2 holds high resolution replacements and is searched first.
	Textures2Dir = "Textures2"
)

// OrbiterRoot returns the Orbiter install directory for a mesh file: the
// directory containing the outermost "Meshes" folder on the path. When the
// path has no such folder the mesh file's own directory is returned and
// found is false.
func OrbiterRoot(meshPath string) (root string, found bool) {
	dir := filepath.Dir(filepath.Clean(meshPath))
	for d := dir; ; d = filepath.Dir(d) {
		if strings.EqualFold(filepath.Base(d), MeshesDir) {
			root, found = filepath.Dir(d), true
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	if !found {
		return dir, false
	}
	return root, true
}

// RelativeTexturePath converts a host image path to the form stored in a
// mesh file: the part below the last Textures or Textures2 folder, joined
// with backslashes. Paths outside a texture folder keep only the file name.
func RelativeTexturePath(hostPath string) string {
	parts := encoding.SplitPath(hostPath)
	if len(parts) == 0 {
		return ""
	}
	for i := len(parts) - 2; i >= 0; i-- {
		if strings.EqualFold(parts[i], TexturesDir) || strings.EqualFold(parts[i], Textures2Dir) {
			return strings.Join(parts[i+1:], `\`)
		}
	}
	return parts[len(parts)-1]
}

// TextureStem returns the texture file name up to its first dot, without
// folders. It is used to name imported materials.
func TextureStem(texPath string) string {
	parts := encoding.SplitPath(texPath)
	if len(parts) == 0 {
		return ""
	}
	name := parts[len(parts)-1]
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}

// FileStore answers whether a file exists.
type FileStore interface {
	Exists(path string) bool
}

// DirStore is a FileStore on the local file system.
type DirStore struct{}

// Exists reports whether path names a regular file.
func (DirStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
