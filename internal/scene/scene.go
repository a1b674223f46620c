// Package scene is the host side of the mesh tools: a neutral scene model
// that exports read from and imports write to, plus its glTF storage.
//
// Host space is right-handed and Z-up, with UV origin at the bottom left.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Scene is one exportable unit; each scene becomes one mesh file.
type Scene struct {
	Name string
	// Namespace of the scene block in the include file; Name when empty.
	Namespace      string
	Panel2D        bool
	CreateMeshFile bool
	// Active marks the scene a selection export is taken from.
	Active    bool
	Objects   []*Object
	Materials []*Material
}

// New creates an empty scene that produces a mesh file.
func New(name string) *Scene {
	return &Scene{Name: name, CreateMeshFile: true}
}

// Material returns the material with the given name, or nil.
func (s *Scene) Material(name string) *Material {
	for _, m := range s.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// AddMaterial appends m unless a material with the same name exists, and
// returns the stored material.
func (s *Scene) AddMaterial(m *Material) *Material {
	if existing := s.Material(m.Name); existing != nil {
		return existing
	}
	s.Materials = append(s.Materials, m)
	return m
}

// Selection returns the selected objects.
func (s *Scene) Selection() []*Object {
	var sel []*Object
	for _, o := range s.Objects {
		if o.Selected {
			sel = append(sel, o)
		}
	}
	return sel
}

// ScopeName returns the namespace used for the scene's include block.
func (s *Scene) ScopeName() string {
	if s.Namespace != "" {
		return s.Namespace
	}
	return s.Name
}

// ObjectProps are the Orbiter settings attached to a mesh object.
type ObjectProps struct {
	SortOrder          int
	MeshFlag           int
	IncludePosition    bool
	IncludeQuad        bool
	IncludeVertexArray bool
	IncludeSize        bool
	IncludeRect        bool
}

// DefaultObjectProps returns the settings of an object nobody configured.
func DefaultObjectProps() ObjectProps {
	return ObjectProps{SortOrder: mesh.DefaultSortOrder, MeshFlag: mesh.DefaultFlag}
}

// Object is a mesh object. Positions and corner normals are in object
// space; World places the object in the scene.
type Object struct {
	Name      string
	World     mgl64.Mat4
	Positions []math.Vec3
	// Faces hold per-corner normals, and UVs when HasUV is set.
	Faces            []mesh.Face
	HasUV            bool
	Material         string
	Props            ObjectProps
	HiddenFromRender bool
	Selected         bool
}

// NewObject creates an object at the origin with default properties.
func NewObject(name string) *Object {
	return &Object{
		Name:  name,
		World: mgl64.Ident4(),
		Props: DefaultObjectProps(),
	}
}

// Location returns the object's origin in scene space.
func (o *Object) Location() math.Vec3 {
	t := o.World.Col(3)
	return math.V3(t.X(), t.Y(), t.Z())
}

// WorldPoint maps an object-space position to scene space.
func (o *Object) WorldPoint(p math.Vec3) math.Vec3 {
	v := o.World.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return math.V3(v.X(), v.Y(), v.Z())
}

// WorldNormal maps an object-space normal to scene space using the
// inverse transpose of the world matrix.
func (o *Object) WorldNormal(n math.Vec3) math.Vec3 {
	m := o.World.Mat3().Inv().Transpose()
	v := m.Mul3x1(mgl64.Vec3{n.X, n.Y, n.Z})
	if l := v.Len(); l > 0 {
		v = v.Mul(1 / l)
	}
	return math.V3(v.X(), v.Y(), v.Z())
}

// Material is a host material with its Orbiter colour set.
type Material struct {
	Name          string
	Diffuse       mesh.Color
	Ambient       mesh.Color
	Specular      mesh.Color
	SpecularPower float64
	Emissive      mesh.Color
	// TexturePath is the image file on disk, empty for untextured materials.
	TexturePath    string
	DynamicTexture bool
}

// NewMaterial returns a material with the stock Orbiter colours.
func NewMaterial(name string) *Material {
	d := mesh.DefaultMaterial(name)
	return &Material{
		Name:          name,
		Diffuse:       d.Diffuse,
		Ambient:       d.Ambient,
		Specular:      d.Specular,
		SpecularPower: d.SpecularPower,
		Emissive:      d.Emissive,
	}
}

// Orbiter returns the material as written to a mesh file.
func (m *Material) Orbiter() mesh.Material {
	return mesh.Material{
		Name:          m.Name,
		Diffuse:       m.Diffuse,
		Ambient:       m.Ambient,
		Specular:      m.Specular,
		SpecularPower: m.SpecularPower,
		Emissive:      m.Emissive,
	}
}

// FromOrbiter builds a host material from a mesh file material.
func FromOrbiter(m mesh.Material) *Material {
	return &Material{
		Name:          m.Name,
		Diffuse:       m.Diffuse,
		Ambient:       m.Ambient,
		Specular:      m.Specular,
		SpecularPower: m.SpecularPower,
		Emissive:      m.Emissive,
	}
}
