package catalog

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Faultbox/orbiter-mshx/pkg/encoding"
)

// ErrTextureNotFound is returned when a texture exists in neither texture folder.
var ErrTextureNotFound = errors.New("texture file not found")

// TextureResolver locates mesh texture references under an Orbiter root.
type TextureResolver struct {
	Root  string
	Store FileStore
}

// NewTextureResolver creates a resolver on the local file system.
func NewTextureResolver(root string) *TextureResolver {
	return &TextureResolver{Root: root, Store: DirStore{}}
}

// Candidates returns the paths tried for name, in search order.
func (r *TextureResolver) Candidates(name string) []string {
	rel := filepath.Join(encoding.SplitPath(name)...)
	return []string{
		filepath.Join(r.Root, Textures2Dir, rel),
		filepath.Join(r.Root, TexturesDir, rel),
	}
}

// Resolve returns the first existing candidate for name.
func (r *TextureResolver) Resolve(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	store := r.Store
	if store == nil {
		store = DirStore{}
	}
	for _, p := range r.Candidates(name) {
		if store.Exists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTextureNotFound, name)
}
