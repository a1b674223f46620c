package scene

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// ErrSceneNotFound is returned when LoadOptions.Scene names no scene.
var ErrSceneNotFound = errors.New("scene not found")

// LoadOptions controls how a glTF file becomes host scenes.
type LoadOptions struct {
	// Scene restricts loading to the scene with this name.
	Scene string
	// KeepSeams disables welding of vertices that share a position.
	KeepSeams bool
}

// yUpToHost maps glTF's Y-up axes to host Z-up: (x, y, z) -> (x, -z, y).
var yUpToHost = mgl64.Mat4FromRows(
	mgl64.Vec4{1, 0, 0, 0},
	mgl64.Vec4{0, 0, -1, 0},
	mgl64.Vec4{0, 1, 0, 0},
	mgl64.Vec4{0, 0, 0, 1},
)

var identity16 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func toHost(v [3]float32) math.Vec3 {
	return math.V3(float64(v[0]), -float64(v[2]), float64(v[1]))
}

func fromHost(v math.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Z), float32(-v.Y)}
}

// LoadGLTF reads a .gltf or .glb file. Every glTF scene becomes a host
// scene; the document's default scene is marked Active.
func LoadGLTF(path string, opts LoadOptions) ([]*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	l := &loader{
		doc:       doc,
		dir:       filepath.Dir(path),
		opts:      opts,
		materials: make(map[int]*Material),
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	active := 0
	if doc.Scene != nil {
		active = *doc.Scene
	}

	var scenes []*Scene
	if len(doc.Scenes) == 0 {
		sc, err := l.scene(&gltf.Scene{Nodes: rootNodes(doc)}, stem)
		if err != nil {
			return nil, err
		}
		sc.Active = true
		scenes = append(scenes, sc)
	}
	for i, gs := range doc.Scenes {
		name := gs.Name
		if name == "" {
			name = stem
			if len(doc.Scenes) > 1 {
				name = fmt.Sprintf("%s_%d", stem, i)
			}
		}
		if opts.Scene != "" && opts.Scene != name {
			continue
		}
		sc, err := l.scene(gs, name)
		if err != nil {
			return nil, errors.Wrapf(err, "scene %q", name)
		}
		sc.Active = i == active
		scenes = append(scenes, sc)
	}

	if opts.Scene != "" && len(scenes) == 0 {
		return nil, errors.Wrapf(ErrSceneNotFound, "%s in %s", opts.Scene, path)
	}
	if opts.Scene != "" && len(scenes) == 1 {
		scenes[0].Active = true
	}
	return scenes, nil
}

func rootNodes(doc *gltf.Document) []int {
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

type loader struct {
	doc       *gltf.Document
	dir       string
	opts      LoadOptions
	materials map[int]*Material
}

func (l *loader) scene(gs *gltf.Scene, name string) (*Scene, error) {
	sc := New(name)

	var ex sceneExtras
	if err := decodeExtras(gs.Extras, &ex); err != nil {
		return nil, errors.Wrap(err, "scene extras")
	}
	sc.Namespace = ex.Namespace
	sc.Panel2D = ex.Panel2D
	if ex.CreateMeshFile != nil {
		sc.CreateMeshFile = *ex.CreateMeshFile
	}

	for _, idx := range gs.Nodes {
		if err := l.node(sc, idx, mgl64.Ident4()); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func localMatrix(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != identity16 && n.Matrix != ([16]float64{}) {
		return mgl64.Mat4(n.Matrix)
	}

	m := mgl64.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	if n.Rotation != ([4]float64{}) {
		q := mgl64.Quat{W: n.Rotation[3], V: mgl64.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if n.Scale != ([3]float64{}) {
		m = m.Mul4(mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2]))
	}
	return m
}

func (l *loader) node(sc *Scene, idx int, parent mgl64.Mat4) error {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return errors.Errorf("node index %d out of range", idx)
	}
	n := l.doc.Nodes[idx]
	world := parent.Mul4(localMatrix(n))

	if n.Mesh != nil {
		if err := l.meshObjects(sc, n, idx, world); err != nil {
			return errors.Wrapf(err, "node %q", n.Name)
		}
	}
	for _, c := range n.Children {
		if err := l.node(sc, c, world); err != nil {
			return err
		}
	}
	return nil
}

// meshObjects adds one object per triangle primitive of the node's mesh.
func (l *loader) meshObjects(sc *Scene, n *gltf.Node, idx int, world mgl64.Mat4) error {
	if *n.Mesh < 0 || *n.Mesh >= len(l.doc.Meshes) {
		return errors.Errorf("mesh index %d out of range", *n.Mesh)
	}
	gm := l.doc.Meshes[*n.Mesh]

	var ex nodeExtras
	if err := decodeExtras(n.Extras, &ex); err != nil {
		return errors.Wrap(err, "node extras")
	}

	name := n.Name
	if name == "" {
		name = gm.Name
	}
	if name == "" {
		name = fmt.Sprintf("Node_%d", idx)
	}

	hostWorld := yUpToHost.Mul4(world).Mul4(yUpToHost.Transpose())
	k := 0
	for _, p := range gm.Primitives {
		if p.Mode != gltf.PrimitiveTriangles && p.Mode != 0 {
			continue
		}
		if _, ok := p.Attributes[gltf.POSITION]; !ok {
			continue
		}

		obj := NewObject(name)
		if k > 0 {
			obj.Name = fmt.Sprintf("%s_%d", name, k)
		}
		k++
		obj.World = hostWorld
		obj.Props = ex.props()
		obj.HiddenFromRender = ex.HideRender
		obj.Selected = ex.Selected

		if err := l.geometry(obj, p); err != nil {
			return err
		}
		if p.Material != nil {
			m, err := l.material(*p.Material)
			if err != nil {
				return err
			}
			obj.Material = sc.AddMaterial(m).Name
		}
		sc.Objects = append(sc.Objects, obj)
	}
	return nil
}

func (l *loader) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(l.doc.Accessors) {
		return nil, errors.Errorf("accessor index %d out of range", idx)
	}
	return l.doc.Accessors[idx], nil
}

// geometry fills the object's positions and faces from a primitive.
func (l *loader) geometry(obj *Object, p *gltf.Primitive) error {
	acr, err := l.accessor(p.Attributes[gltf.POSITION])
	if err != nil {
		return err
	}
	positions, err := modeler.ReadPosition(l.doc, acr, nil)
	if err != nil {
		return errors.Wrap(err, "read positions")
	}

	var normals [][3]float32
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err = l.accessor(idx); err != nil {
			return err
		}
		if normals, err = modeler.ReadNormal(l.doc, acr, nil); err != nil {
			return errors.Wrap(err, "read normals")
		}
	}

	var uvs [][2]float32
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = l.accessor(idx); err != nil {
			return err
		}
		if uvs, err = modeler.ReadTextureCoord(l.doc, acr, nil); err != nil {
			return errors.Wrap(err, "read texture coordinates")
		}
		obj.HasUV = len(uvs) == len(positions)
	}

	var indices []uint32
	if p.Indices != nil {
		if acr, err = l.accessor(*p.Indices); err != nil {
			return err
		}
		if indices, err = modeler.ReadIndices(l.doc, acr, nil); err != nil {
			return errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	// Weld vertices that glTF split at normal or UV seams so that each
	// host position is shared and the attributes live on the corners.
	remap := make([]int, len(positions))
	seen := make(map[[3]float32]int, len(positions))
	for i, pos := range positions {
		if !l.opts.KeepSeams {
			if j, ok := seen[pos]; ok {
				remap[i] = j
				continue
			}
			seen[pos] = len(obj.Positions)
		}
		remap[i] = len(obj.Positions)
		obj.Positions = append(obj.Positions, toHost(pos))
	}

	for i := 0; i+2 < len(indices); i += 3 {
		var face mesh.Face
		for c := 0; c < 3; c++ {
			src := int(indices[i+c])
			if src >= len(positions) {
				return errors.Errorf("index %d out of range", src)
			}
			face[c].Vertex = remap[src]
			if src < len(normals) {
				face[c].Normal = toHost(normals[src])
			}
			if obj.HasUV {
				face[c].UV = math.Vec2{X: float64(uvs[src][0]), Y: 1 - float64(uvs[src][1])}
			}
		}
		if normals == nil {
			fn := faceNormal(obj.Positions, face)
			for c := range face {
				face[c].Normal = fn
			}
		}
		obj.Faces = append(obj.Faces, face)
	}
	return nil
}

func faceNormal(positions []math.Vec3, f mesh.Face) math.Vec3 {
	a, b, c := positions[f[0].Vertex], positions[f[1].Vertex], positions[f[2].Vertex]
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func (l *loader) material(idx int) (*Material, error) {
	if m, ok := l.materials[idx]; ok {
		return m, nil
	}
	if idx < 0 || idx >= len(l.doc.Materials) {
		return nil, errors.Errorf("material index %d out of range", idx)
	}
	gm := l.doc.Materials[idx]

	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("Material_%d", idx)
	}
	m := NewMaterial(name)

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.Diffuse = mesh.Color(*pbr.BaseColorFactor)
		}
		if pbr.BaseColorTexture != nil {
			m.TexturePath = l.imagePath(pbr.BaseColorTexture.Index)
		}
	}

	var ex materialExtras
	if err := decodeExtras(gm.Extras, &ex); err != nil {
		return nil, errors.Wrapf(err, "material %q extras", name)
	}
	if ex.Ambient != nil {
		m.Ambient = *ex.Ambient
	}
	if ex.Specular != nil {
		m.Specular = *ex.Specular
	}
	if ex.SpecularPower != nil {
		m.SpecularPower = *ex.SpecularPower
	}
	if ex.Emissive != nil {
		m.Emissive = *ex.Emissive
	}
	m.DynamicTexture = ex.DynamicTexture

	l.materials[idx] = m
	return m, nil
}

// imagePath returns the file an image texture refers to. Embedded images
// have no file; their name stands in for it.
func (l *loader) imagePath(texIdx int) string {
	if texIdx < 0 || texIdx >= len(l.doc.Textures) {
		return ""
	}
	tex := l.doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source >= len(l.doc.Images) {
		return ""
	}
	img := l.doc.Images[*tex.Source]
	if img.URI != "" && !img.IsEmbeddedResource() {
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		if filepath.IsAbs(uri) {
			return uri
		}
		return filepath.Join(l.dir, filepath.FromSlash(uri))
	}
	if img.Name != "" {
		return img.Name
	}
	return fmt.Sprintf("image_%d", *tex.Source)
}
