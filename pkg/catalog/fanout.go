package catalog

import (
	"errors"
	"fmt"

	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Fan-out warnings.
var (
	ErrMaterialIndex = errors.New("material index out of range, using 0")
	ErrTextureIndex  = errors.New("texture index out of range, using none")
)

// Pair is the (material, texture) index pair referenced by a mesh group.
type Pair struct {
	Material int
	Texture  int
}

// Source is the catalog content of a mesh file. Materials[0] and
// Textures[0] are the synthetic "none" entries.
type Source struct {
	Pairs     []Pair
	Materials []mesh.Material
	Textures  []mesh.Texture
}

// HostMaterial is one material synthesized for a (material, texture) pair.
type HostMaterial struct {
	Name     string
	Pair     Pair
	Material mesh.Material
	Texture  mesh.Texture
	// TextureFile is the resolved image path, empty when untextured or missing.
	TextureFile string
}

// Textured reports whether the source pair had a texture.
func (m *HostMaterial) Textured() bool {
	return m.Texture.Path != ""
}

// FanOutResult maps every pair referenced by the groups to its host material.
type FanOutResult struct {
	Materials []HostMaterial
	// Warnings holds the non-fatal problems met while resolving.
	Warnings []error

	byPair map[Pair]int
}

// Lookup returns the host material for a pair as referenced by a group.
func (r *FanOutResult) Lookup(p Pair) (*HostMaterial, bool) {
	i, ok := r.byPair[p]
	if !ok {
		return nil, false
	}
	return &r.Materials[i], true
}

// FanOut creates one host material per distinct pair in first-appearance
// order. Textured pairs are named <material>_<texture stem>_<scene>, others
// <material>_<scene>. resolver may be nil, in which case no image is located.
func FanOut(src Source, sceneName string, resolver *TextureResolver) *FanOutResult {
	res := &FanOutResult{byPair: make(map[Pair]int)}

	for _, p := range src.Pairs {
		if _, seen := res.byPair[p]; seen {
			continue
		}

		matIdx := p.Material
		if matIdx < 0 || matIdx >= len(src.Materials) {
			res.Warnings = append(res.Warnings, fmt.Errorf("%w: %d", ErrMaterialIndex, matIdx))
			matIdx = 0
		}
		var tex mesh.Texture
		if p.Texture < 0 || p.Texture >= len(src.Textures) {
			res.Warnings = append(res.Warnings, fmt.Errorf("%w: %d", ErrTextureIndex, p.Texture))
		} else {
			tex = src.Textures[p.Texture]
		}

		var mat mesh.Material
		if matIdx < len(src.Materials) {
			mat = src.Materials[matIdx]
		}
		hm := HostMaterial{Pair: p, Material: mat, Texture: tex}
		if tex.Path != "" {
			hm.Name = fmt.Sprintf("%s_%s_%s", mat.Name, TextureStem(tex.Path), sceneName)
			if resolver != nil {
				file, err := resolver.Resolve(tex.Path)
				if err != nil {
					res.Warnings = append(res.Warnings, err)
				}
				hm.TextureFile = file
			}
		} else {
			hm.Name = fmt.Sprintf("%s_%s", mat.Name, sceneName)
		}
		hm.Material.Name = hm.Name

		res.byPair[p] = len(res.Materials)
		res.Materials = append(res.Materials, hm)
	}
	return res
}
