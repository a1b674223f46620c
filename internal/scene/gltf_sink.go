package scene

import (
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Generator is recorded in the asset block of written glTF files.
const Generator = "orbiter-mshx"

// SaveGLTF writes the scene to path: binary glTF for a .glb extension,
// JSON with an embedded buffer otherwise. Texture images are referenced
// by path relative to the output file and are not copied.
func SaveGLTF(sc *Scene, path string) error {
	doc, err := buildDocument(sc, filepath.Dir(path))
	if err != nil {
		return errors.Wrapf(err, "scene %q", sc.Name)
	}

	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	}
	return errors.Wrapf(err, "save %s", path)
}

func buildDocument(sc *Scene, outDir string) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	gs := doc.Scenes[0]
	gs.Name = sc.Name
	createMesh := sc.CreateMeshFile
	extras, err := encodeExtras(sceneExtras{
		Namespace:      sc.Namespace,
		Panel2D:        sc.Panel2D,
		CreateMeshFile: &createMesh,
	})
	if err != nil {
		return nil, err
	}
	gs.Extras = extras

	matIndex := make(map[string]int, len(sc.Materials))
	for _, m := range sc.Materials {
		idx, err := writeMaterial(doc, m, outDir)
		if err != nil {
			return nil, err
		}
		matIndex[m.Name] = idx
	}

	for _, o := range sc.Objects {
		node, err := writeObject(doc, o, matIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "object %q", o.Name)
		}
		if node < 0 {
			continue
		}
		gs.Nodes = append(gs.Nodes, node)
	}
	return doc, nil
}

func writeMaterial(doc *gltf.Document, m *Material, outDir string) (int, error) {
	diffuse := [4]float64(m.Diffuse)
	metallic := 0.0
	gm := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &diffuse,
			MetallicFactor:  &metallic,
		},
	}

	ambient, specular, emissive, power := m.Ambient, m.Specular, m.Emissive, m.SpecularPower
	extras, err := encodeExtras(materialExtras{
		Ambient:        &ambient,
		Specular:       &specular,
		SpecularPower:  &power,
		Emissive:       &emissive,
		DynamicTexture: m.DynamicTexture,
	})
	if err != nil {
		return 0, err
	}
	gm.Extras = extras

	if m.TexturePath != "" {
		doc.Images = append(doc.Images, &gltf.Image{
			Name: filepath.Base(m.TexturePath),
			URI:  imageURI(m.TexturePath, outDir),
		})
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(len(doc.Images) - 1)})
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: len(doc.Textures) - 1}
	}

	doc.Materials = append(doc.Materials, gm)
	return len(doc.Materials) - 1, nil
}

// writeObject appends the object's mesh and node and returns the node
// index, or -1 for an object without geometry.
func writeObject(doc *gltf.Document, o *Object, matIndex map[string]int) (int, error) {
	if len(o.Positions) == 0 || len(o.Faces) == 0 {
		return -1, nil
	}

	// glTF stores one normal and UV per vertex, which is exactly what the
	// mesh deduplicator produces from per-corner attributes.
	verts, tris, err := mesh.NewDeduper(o.Positions, o.HasUV).Build(o.Faces)
	if err != nil {
		return -1, err
	}

	positions := make([][3]float32, len(verts))
	normals := make([][3]float32, len(verts))
	var uvs [][2]float32
	if o.HasUV {
		uvs = make([][2]float32, len(verts))
	}
	for i, v := range verts {
		positions[i] = fromHost(v.Position)
		normals[i] = fromHost(v.Normal)
		if uvs != nil {
			uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
		}
	}

	indices := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		for _, idx := range t.HostOrder() {
			indices = append(indices, uint32(idx))
		}
	}

	attrs := map[string]int{
		gltf.POSITION: modeler.WritePosition(doc, positions),
		gltf.NORMAL:   modeler.WriteNormal(doc, normals),
	}
	if uvs != nil {
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uvs)
	}
	prim := &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
	}
	if o.Material != "" {
		if idx, ok := matIndex[o.Material]; ok {
			prim.Material = gltf.Index(idx)
		}
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: o.Name, Primitives: []*gltf.Primitive{prim}})

	extras, err := encodeExtras(nodeExtrasFor(o))
	if err != nil {
		return -1, err
	}
	node := &gltf.Node{
		Name:     o.Name,
		Mesh:     gltf.Index(len(doc.Meshes) - 1),
		Matrix:   identity16,
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
		Extras:   extras,
	}
	if world := yUpToHost.Transpose().Mul4(o.World).Mul4(yUpToHost); !world.ApproxEqual(mgl64.Ident4()) {
		node.Matrix = [16]float64(world)
	}
	doc.Nodes = append(doc.Nodes, node)
	return len(doc.Nodes) - 1, nil
}

// imageURI returns path relative to dir when both resolve, else path.
func imageURI(path, dir string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(absDir, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
