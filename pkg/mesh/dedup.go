package mesh

import (
	"fmt"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
)

// AttributeTolerance is the per-component tolerance used when comparing a
// corner's normal or UV with the value already stored on a vertex.
const AttributeTolerance = 0.001

// Corner is one triangle corner as the host stores it: a position index plus
// the normal and UV that belong to this face corner.
type Corner struct {
	Vertex int
	Normal math.Vec3
	UV     math.Vec2
}

// Face is a host triangle in host winding.
type Face [3]Corner

// Deduper builds a vertex table in which every entry has exactly one normal
// and one UV, appending a copy of a vertex whenever a corner needs a value
// that conflicts with the one already assigned.
type Deduper struct {
	Vertices []Vertex
	// Textured enables UV assignment; untextured groups never carry UVs.
	Textured  bool
	Tolerance float64
	// Splits counts vertices appended because of conflicts.
	Splits int
	// OnSplit, when set, is called after a corner has been redirected to a new vertex.
	OnSplit func(corner Corner, original, added int)
}

// NewDeduper seeds the vertex table with one position-only entry per host vertex.
func NewDeduper(positions []math.Vec3, textured bool) *Deduper {
	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		vertices[i] = Vertex{Position: p}
	}
	return &Deduper{
		Vertices:  vertices,
		Textured:  textured,
		Tolerance: AttributeTolerance,
	}
}

// Resolve processes a face's corners in order 0, 1, 2 and returns the
// triangle in Orbiter winding, pointing at the resolved vertex indices.
func (d *Deduper) Resolve(face Face) (Triangle, error) {
	var idx [3]int
	for i, c := range face {
		if c.Vertex < 0 || c.Vertex >= len(d.Vertices) {
			return Triangle{}, fmt.Errorf("corner %d references vertex %d of %d", i, c.Vertex, len(d.Vertices))
		}
		idx[i] = d.resolveCorner(c)
	}
	return NewTriangle(idx[0], idx[1], idx[2]), nil
}

func (d *Deduper) resolveCorner(c Corner) int {
	v := &d.Vertices[c.Vertex]

	normalOK := d.setNormal(v, c.Normal)
	uvOK := true
	if d.Textured {
		uvOK = d.setUV(v, c.UV)
	}
	if normalOK && uvOK {
		return c.Vertex
	}

	added := Vertex{
		Position:  v.Position,
		Normal:    c.Normal,
		HasNormal: true,
	}
	if d.Textured {
		added.UV = c.UV
		added.HasUV = true
	}
	d.Vertices = append(d.Vertices, added)
	d.Splits++

	n := len(d.Vertices) - 1
	if d.OnSplit != nil {
		d.OnSplit(c, c.Vertex, n)
	}
	return n
}

// setNormal assigns n if the vertex has no normal yet and reports whether
// the vertex normal now matches n.
func (d *Deduper) setNormal(v *Vertex, n math.Vec3) bool {
	if !v.HasNormal {
		v.Normal = n
		v.HasNormal = true
		return true
	}
	return v.Normal.ApproxEqual(n, d.Tolerance)
}

func (d *Deduper) setUV(v *Vertex, uv math.Vec2) bool {
	if !v.HasUV {
		v.UV = uv
		v.HasUV = true
		return true
	}
	return v.UV.ApproxEqual(uv, d.Tolerance)
}

// Build resolves every face and returns the finished vertex table and
// triangle list.
func (d *Deduper) Build(faces []Face) ([]Vertex, []Triangle, error) {
	tris := make([]Triangle, 0, len(faces))
	for i, f := range faces {
		tri, err := d.Resolve(f)
		if err != nil {
			return nil, nil, fmt.Errorf("face %d: %w", i, err)
		}
		tris = append(tris, tri)
	}
	return d.Vertices, tris, nil
}
