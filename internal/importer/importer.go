// Package importer reads Orbiter mesh files back into host scenes.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/orbiter-mshx/internal/config"
	"github.com/Faultbox/orbiter-mshx/internal/logger"
	"github.com/Faultbox/orbiter-mshx/internal/scene"
	"github.com/Faultbox/orbiter-mshx/pkg/catalog"
	"github.com/Faultbox/orbiter-mshx/pkg/coords"
	"github.com/Faultbox/orbiter-mshx/pkg/encoding"
	"github.com/Faultbox/orbiter-mshx/pkg/formats"
	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Options controls an import.
type Options struct {
	SwapYZ         bool
	LegacyEncoding bool
	// Panel2D requests a panel import, which cannot be inverted.
	Panel2D bool
	// Binary selects .glb output when ImportToFile derives the file name.
	Binary bool
	// Store overrides file system lookups for textures.
	Store catalog.FileStore
}

// OptionsFromConfig returns the options stored in the build settings.
func OptionsFromConfig(cfg config.ImportConfig) Options {
	return Options{
		SwapYZ:         cfg.SwapYZ,
		LegacyEncoding: cfg.LegacyEncoding,
		Binary:         cfg.Binary,
	}
}

// Import reads the mesh file at path and returns it as a scene named after
// the file. Each group becomes one object; each distinct (material,
// texture) pair becomes one host material.
func Import(path string, opts Options) (*scene.Scene, error) {
	if opts.Panel2D {
		return nil, errors.Wrapf(coords.ErrPanelInverse, "import %s", path)
	}

	f, err := formats.ImportFile(path, formats.ReadOptions{LegacyEncoding: opts.LegacyEncoding})
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sc := scene.New(name)

	root, found := catalog.OrbiterRoot(path)
	if !found {
		logger.Warn("mesh is not below an Orbiter Meshes folder, textures are searched next to it",
			zap.String("path", path), zap.String("root", root))
	}
	resolver := catalog.NewTextureResolver(root)
	if opts.Store != nil {
		resolver.Store = opts.Store
	}

	src, err := f.CatalogSource()
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", path)
	}
	fo := catalog.FanOut(src, name, resolver)
	for _, w := range fo.Warnings {
		logger.Warn("material resolution", zap.String("scene", name), zap.Error(w))
	}
	for _, hm := range fo.Materials {
		sc.AddMaterial(hostMaterial(hm))
	}

	tf := coords.Transform{SwapAxis: opts.SwapYZ}
	for i := range f.Groups {
		g := &f.Groups[i]
		hm, _ := fo.Lookup(catalog.Pair{Material: g.MaterialIndex, Texture: g.TextureIndex})
		obj, err := groupObject(g, i, tf, hm)
		if err != nil {
			return nil, errors.Wrapf(err, "import %s", path)
		}
		sc.Objects = append(sc.Objects, obj)
	}

	logger.Info("mesh imported",
		zap.String("path", path),
		zap.Int("groups", len(sc.Objects)),
		zap.Int("materials", len(sc.Materials)),
		zap.Stringer("transform", tf))
	return sc, nil
}

// ImportToFile imports path and saves the scene as glTF to out. An empty
// out writes next to the mesh file. It returns the path written.
func ImportToFile(path, out string, opts Options) (string, error) {
	sc, err := Import(path, opts)
	if err != nil {
		return "", err
	}
	if out == "" {
		ext := ".gltf"
		if opts.Binary {
			ext = ".glb"
		}
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ext
	}
	if err := scene.SaveGLTF(sc, out); err != nil {
		return "", err
	}
	logger.Info("scene written", zap.String("path", out))
	return out, nil
}

// hostMaterial converts a fanned-out material. A texture that could not be
// located keeps its mesh file path so the material stays textured.
func hostMaterial(hm catalog.HostMaterial) *scene.Material {
	m := scene.FromOrbiter(hm.Material)
	if hm.Textured() {
		m.TexturePath = hm.TextureFile
		if m.TexturePath == "" {
			m.TexturePath = filepath.Join(catalog.TexturesDir, filepath.Join(encoding.SplitPath(hm.Texture.Path)...))
		}
		m.DynamicTexture = hm.Texture.Dynamic
	}
	return m
}

// groupObject converts one mesh group to a host object in host winding.
func groupObject(g *formats.Group, idx int, tf coords.Transform, hm *catalog.HostMaterial) (*scene.Object, error) {
	name := g.Label
	if name == "" {
		name = fmt.Sprintf("Group_%d", idx)
	}

	verts, err := g.Vertices()
	if err != nil {
		return nil, err
	}
	tris, err := g.Triangles()
	if err != nil {
		return nil, err
	}

	obj := scene.NewObject(name)
	obj.Props.MeshFlag = g.Flag
	if hm != nil {
		obj.Material = hm.Name
		obj.HasUV = hm.Textured() && allHaveUV(verts)
	}

	obj.Positions = make([]math.Vec3, len(verts))
	for i, v := range verts {
		if obj.Positions[i], err = tf.InversePoint(v.Position); err != nil {
			return nil, err
		}
	}

	obj.Faces = make([]mesh.Face, 0, len(tris))
	for ti, tri := range tris {
		var face mesh.Face
		flat := false
		for c, vi := range tri.HostOrder() {
			if vi < 0 || vi >= len(verts) {
				return nil, errors.Errorf("group %s: triangle %d references vertex %d of %d", name, ti, vi, len(verts))
			}
			v := verts[vi]
			face[c].Vertex = vi
			if v.HasNormal {
				if face[c].Normal, err = tf.InverseNormal(v.Normal); err != nil {
					return nil, err
				}
			} else {
				flat = true
			}
			if obj.HasUV {
				if face[c].UV, err = tf.InverseUV(v.UV); err != nil {
					return nil, err
				}
			}
		}
		if flat {
			p0, p1, p2 := obj.Positions[face[0].Vertex], obj.Positions[face[1].Vertex], obj.Positions[face[2].Vertex]
			n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
			for c := range face {
				face[c].Normal = n
			}
		}
		obj.Faces = append(obj.Faces, face)
	}
	return obj, nil
}

func allHaveUV(verts []mesh.Vertex) bool {
	for _, v := range verts {
		if !v.HasUV {
			return false
		}
	}
	return len(verts) > 0
}
