package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Magic is the header token of a text mesh file.
const Magic = "MSHX1"

// DefaultMaterialName names the synthetic material at index 0.
const DefaultMaterialName = "default"

// Line is one tokenised data line with its position in the file.
type Line struct {
	Number int
	Fields []string
}

func (l Line) String() string {
	return strings.Join(l.Fields, " ")
}

// Group is a GROUP block as read from a mesh file. Vertex and triangle
// lines are kept as tokens until Vertices or Triangles is called.
type Group struct {
	Label         string
	MaterialIndex int
	TextureIndex  int
	TexWrap       string
	NoNormal      bool
	Flag          int
	// FlagText is the FLAG argument as written.
	FlagText      string
	NumVertices   int
	NumTriangles  int
	VertexLines   []Line
	TriangleLines []Line
}

// Material is a MATERIALS entry with its colour lines kept as tokens.
type Material struct {
	Name string
	// Line is the MATERIAL header line, 0 for the synthetic default.
	Line     int
	Diffuse  Line
	Ambient  Line
	Specular Line
	Emissive Line
}

// File is a parsed mesh file. Materials[0] is the synthetic default
// material and Textures[0] the synthetic empty texture, so the 1-based
// indices in GROUP blocks address the slices directly.
type File struct {
	Groups    []Group
	Materials []Material
	Textures  []mesh.Texture
}

// MaterialCount returns the number of materials declared in the file.
func (f *File) MaterialCount() int {
	return len(f.Materials) - 1
}

// TextureCount returns the number of textures declared in the file.
func (f *File) TextureCount() int {
	return len(f.Textures) - 1
}

// VertexLayout describes which attributes a vertex line carries.
type VertexLayout int

const (
	VertexPosition VertexLayout = iota
	VertexPositionUV
	VertexPositionNormal
	VertexPositionNormalUV
)

// String returns a short layout name.
func (l VertexLayout) String() string {
	switch l {
	case VertexPosition:
		return "P"
	case VertexPositionUV:
		return "PT"
	case VertexPositionNormal:
		return "PN"
	case VertexPositionNormalUV:
		return "PNT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

func layoutFor(fields int) (VertexLayout, bool) {
	switch fields {
	case 3:
		return VertexPosition, true
	case 5:
		return VertexPositionUV, true
	case 6:
		return VertexPositionNormal, true
	case 8:
		return VertexPositionNormalUV, true
	default:
		return 0, false
	}
}

// Vertices parses the group's vertex lines. Attributes missing from a
// line are left unset on the returned vertex.
func (g *Group) Vertices() ([]mesh.Vertex, error) {
	verts := make([]mesh.Vertex, 0, len(g.VertexLines))
	for _, line := range g.VertexLines {
		layout, ok := layoutFor(len(line.Fields))
		if !ok {
			return nil, formatErr(line.Number, line.String(), ErrVertexFields)
		}
		vals, err := parseFloats(line)
		if err != nil {
			return nil, err
		}

		v := mesh.Vertex{Position: math.V3(vals[0], vals[1], vals[2])}
		switch layout {
		case VertexPositionUV:
			v.UV = math.Vec2{X: vals[3], Y: vals[4]}
			v.HasUV = true
		case VertexPositionNormal:
			v.Normal = math.V3(vals[3], vals[4], vals[5])
			v.HasNormal = true
		case VertexPositionNormalUV:
			v.Normal = math.V3(vals[3], vals[4], vals[5])
			v.HasNormal = true
			v.UV = math.Vec2{X: vals[6], Y: vals[7]}
			v.HasUV = true
		}
		verts = append(verts, v)
	}
	return verts, nil
}

// Triangles parses the group's triangle lines. Indices stay in file
// winding; use Triangle.HostOrder for the host orientation.
func (g *Group) Triangles() ([]mesh.Triangle, error) {
	tris := make([]mesh.Triangle, 0, len(g.TriangleLines))
	for _, line := range g.TriangleLines {
		if len(line.Fields) != 3 {
			return nil, formatErr(line.Number, line.String(), ErrTriangleFields)
		}
		var tri mesh.Triangle
		for i, f := range line.Fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, formatErr(line.Number, line.String(), ErrTriangleFields)
			}
			tri.V[i] = n
		}
		tris = append(tris, tri)
	}
	return tris, nil
}

// Layout reports the vertex layout of the group, taken from its first
// vertex line.
func (g *Group) Layout() (VertexLayout, bool) {
	if len(g.VertexLines) == 0 {
		return 0, false
	}
	return layoutFor(len(g.VertexLines[0].Fields))
}

// Decode converts the material's colour tokens. Diffuse, ambient and
// emissive need four components; specular needs four plus an optional power.
func (m *Material) Decode() (mesh.Material, error) {
	out := mesh.Material{Name: m.Name}
	if m.Line == 0 {
		// Synthetic default material: all zero.
		return out, nil
	}

	var err error
	if out.Diffuse, err = decodeColor(m.Diffuse); err != nil {
		return out, err
	}
	if out.Ambient, err = decodeColor(m.Ambient); err != nil {
		return out, err
	}
	if out.Specular, err = decodeColor(m.Specular); err != nil {
		return out, err
	}
	if len(m.Specular.Fields) > 4 {
		p, perr := strconv.ParseFloat(m.Specular.Fields[4], 64)
		if perr != nil {
			return out, formatErr(m.Specular.Number, m.Specular.String(), ErrInvalidStatement)
		}
		out.SpecularPower = p
	}
	if out.Emissive, err = decodeColor(m.Emissive); err != nil {
		return out, err
	}
	return out, nil
}

func decodeColor(line Line) (mesh.Color, error) {
	var c mesh.Color
	if len(line.Fields) < 4 {
		return c, formatErr(line.Number, line.String(), ErrInvalidStatement)
	}
	for i := range c {
		v, err := strconv.ParseFloat(line.Fields[i], 64)
		if err != nil {
			return c, formatErr(line.Number, line.String(), ErrInvalidStatement)
		}
		c[i] = v
	}
	return c, nil
}

func parseFloats(line Line) ([]float64, error) {
	vals := make([]float64, len(line.Fields))
	for i, f := range line.Fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, formatErr(line.Number, line.String(), fmt.Errorf("%w: %v", ErrInvalidStatement, err))
		}
		vals[i] = v
	}
	return vals, nil
}
