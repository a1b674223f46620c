// Package mesh holds the host-independent geometry model written to and read
// from Orbiter mesh files.
package mesh

import (
	"fmt"
	"strings"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
)

// Group defaults applied when a host object carries no Orbiter properties.
const (
	DefaultSortOrder = 50
	DefaultFlag      = 0
)

// Vertex is one entry in a group's vertex table. Two vertices may share a
// position and differ in normal or UV.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	UV        math.Vec2
	HasNormal bool
	HasUV     bool
}

// Triangle holds three indices into the owning group's vertex table, stored
// in Orbiter winding.
type Triangle struct {
	V [3]int
}

// NewTriangle builds a triangle from a host-ordered corner triple. Orbiter
// winds the other way, so the last two corners are exchanged.
func NewTriangle(a, b, c int) Triangle {
	return Triangle{V: [3]int{a, c, b}}
}

// HostOrder returns the corners in host winding. It is the exact inverse of
// NewTriangle.
func (t Triangle) HostOrder() [3]int {
	return [3]int{t.V[0], t.V[2], t.V[1]}
}

// Group is one named sub-mesh of a mesh file.
type Group struct {
	Name      string
	Vertices  []Vertex
	Triangles []Triangle

	SortOrder int
	Flag      int

	// MaterialName is empty when the group has no material.
	MaterialName string
	// TexturePath is the texture path relative to the Orbiter texture root,
	// empty when the group is untextured.
	TexturePath        string
	DynamicTexture     bool
	IncludeVertexArray bool
}

// NewGroup creates an empty group with default sort order and flag.
func NewGroup(name string) *Group {
	return &Group{
		Name:      GroupName(name),
		SortOrder: DefaultSortOrder,
		Flag:      DefaultFlag,
	}
}

// GroupName turns a host object name into a group label.
func GroupName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// VertexCount returns the number of vertices.
func (g *Group) VertexCount() int {
	return len(g.Vertices)
}

// TriangleCount returns the number of triangles.
func (g *Group) TriangleCount() int {
	return len(g.Triangles)
}

// Textured reports whether the group references a texture.
func (g *Group) Textured() bool {
	return g.TexturePath != ""
}

// Validate checks that every triangle references an existing vertex.
func (g *Group) Validate() error {
	for i, tri := range g.Triangles {
		for _, idx := range tri.V {
			if idx < 0 || idx >= len(g.Vertices) {
				return fmt.Errorf("group %s: triangle %d references vertex %d of %d",
					g.Name, i, idx, len(g.Vertices))
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the group's vertices.
func (g *Group) Bounds() (min, max math.Vec3) {
	if len(g.Vertices) == 0 {
		return
	}
	min = g.Vertices[0].Position
	max = g.Vertices[0].Position
	for _, v := range g.Vertices[1:] {
		min = min.Min(v.Position)
		max = max.Max(v.Position)
	}
	return min, max
}

// Color is an RGBA colour with components in the 0-1 range.
type Color [4]float64

// Material is an Orbiter material definition.
type Material struct {
	Name          string
	Diffuse       Color
	Ambient       Color
	Specular      Color
	SpecularPower float64
	Emissive      Color
}

// DefaultMaterial returns the material used when a host material carries no
// Orbiter colours.
func DefaultMaterial(name string) Material {
	return Material{
		Name:          name,
		Diffuse:       Color{0.8, 0.8, 0.8, 1},
		Ambient:       Color{1, 1, 1, 1},
		Specular:      Color{1, 1, 1, 1},
		SpecularPower: 10,
		Emissive:      Color{0, 0, 0, 0},
	}
}

// Texture is a texture reference in a mesh file.
type Texture struct {
	// Path is relative to the Orbiter Textures (or Textures2) folder.
	Path    string
	Dynamic bool
}
