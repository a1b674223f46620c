package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Faultbox/orbiter-mshx/pkg/catalog"
	"github.com/Faultbox/orbiter-mshx/pkg/encoding"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// WriteOptions controls mesh file output.
type WriteOptions struct {
	// ParseMaterialName cuts host material names at their first underscore.
	ParseMaterialName bool
	// LegacyEncoding writes Windows-1252 instead of UTF-8.
	LegacyEncoding bool
}

// MaterialCatalog maps host material names to their definitions.
type MaterialCatalog map[string]mesh.Material

// GroupLayout records the indices written for one group.
type GroupLayout struct {
	Name     string
	Material int
	Texture  int
}

// Layout describes what WriteMSHX wrote. Materials and Textures are in index
// order, so entry i has file index i+1.
type Layout struct {
	Groups    []GroupLayout
	Materials []mesh.Material
	Textures  []mesh.Texture
	// Unresolved lists material names missing from the catalog. They were
	// written with default colours.
	Unresolved []string
}

// MaterialOutputName returns the name a host material is written under.
func MaterialOutputName(name string, parse bool) string {
	if parse {
		if i := strings.IndexByte(name, '_'); i >= 0 {
			name = name[:i]
		}
	}
	return strings.ReplaceAll(name, " ", "_")
}

// ExportFile writes groups to a new mesh file at path.
func ExportFile(path string, groups []*mesh.Group, materials MaterialCatalog, opts WriteOptions) (*Layout, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &ResourceError{Op: "create", Path: path, Err: err}
	}

	layout, err := WriteMSHX(f, groups, materials, opts)
	if err != nil {
		f.Close()
		return nil, &ResourceError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &ResourceError{Op: "close", Path: path, Err: err}
	}
	return layout, nil
}

// WriteMSHX writes groups in the given order followed by the material and
// texture tables. Materials and textures are numbered by first use.
func WriteMSHX(w io.Writer, groups []*mesh.Group, materials MaterialCatalog, opts WriteOptions) (*Layout, error) {
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}

	layout := buildLayout(groups, materials)

	var closer io.Closer
	if opts.LegacyEncoding {
		lw := encoding.NewLegacyWriter(w)
		w, closer = lw, lw
	}
	mw := &textWriter{w: bufio.NewWriter(w)}

	mw.printf("%s\n", Magic)
	mw.printf("GROUPS %d\n", len(groups))
	for i, g := range groups {
		mw.writeGroup(g, layout.Groups[i])
	}

	mw.printf("MATERIALS %d\n", len(layout.Materials))
	for _, m := range layout.Materials {
		mw.printf("%s\n", MaterialOutputName(m.Name, opts.ParseMaterialName))
	}
	for _, m := range layout.Materials {
		mw.writeMaterial(m, opts.ParseMaterialName)
	}

	mw.printf("TEXTURES %d\n", len(layout.Textures))
	for _, t := range layout.Textures {
		if t.Dynamic {
			mw.printf("%s D\n", t.Path)
		} else {
			mw.printf("%s\n", t.Path)
		}
	}

	if mw.err == nil {
		mw.err = mw.w.Flush()
	}
	if closer != nil {
		if err := closer.Close(); err != nil && mw.err == nil {
			mw.err = err
		}
	}
	if mw.err != nil {
		return nil, mw.err
	}
	return layout, nil
}

func buildLayout(groups []*mesh.Group, materials MaterialCatalog) *Layout {
	mats := catalog.NewOrdered[string, mesh.Material]()
	texs := catalog.NewOrdered[string, mesh.Texture]()
	layout := &Layout{Groups: make([]GroupLayout, len(groups))}

	for i, g := range groups {
		gl := GroupLayout{Name: g.Name}

		if g.MaterialName != "" {
			m, ok := materials[g.MaterialName]
			if !ok {
				m = mesh.DefaultMaterial(g.MaterialName)
			}
			m.Name = g.MaterialName
			idx, added := mats.Add(g.MaterialName, m)
			if added && !ok {
				layout.Unresolved = append(layout.Unresolved, g.MaterialName)
			}
			gl.Material = idx
		}

		if g.Textured() {
			gl.Texture, _ = texs.Add(g.TexturePath, mesh.Texture{Path: g.TexturePath})
			if g.DynamicTexture {
				texs.Update(g.TexturePath, func(t *mesh.Texture) { t.Dynamic = true })
			}
		}
		layout.Groups[i] = gl
	}

	layout.Materials = mats.Values()
	layout.Textures = texs.Values()
	return layout
}

// textWriter remembers the first write error and turns later writes into no-ops.
type textWriter struct {
	w   *bufio.Writer
	err error
}

func (mw *textWriter) printf(format string, args ...any) {
	if mw.err != nil {
		return
	}
	_, mw.err = fmt.Fprintf(mw.w, format, args...)
}

func (mw *textWriter) writeGroup(g *mesh.Group, gl GroupLayout) {
	mw.printf("LABEL %s\n", g.Name)
	mw.printf("MATERIAL %d\n", gl.Material)
	mw.printf("TEXTURE %d\n", gl.Texture)
	mw.printf("FLAG %d\n", g.Flag)
	mw.printf("GEOM %d %d\n", len(g.Vertices), len(g.Triangles))

	for _, v := range g.Vertices {
		mw.printf("%s\n", vertexLine(v))
	}
	for _, t := range g.Triangles {
		mw.printf("%d %d %d\n", t.V[0], t.V[1], t.V[2])
	}
}

func vertexLine(v mesh.Vertex) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%.4f %.4f %.4f", v.Position.X, v.Position.Y, v.Position.Z)
	if v.HasNormal {
		fmt.Fprintf(&sb, " %.4f %.4f %.4f", v.Normal.X, v.Normal.Y, v.Normal.Z)
	}
	if v.HasUV {
		fmt.Fprintf(&sb, " %.4f %.4f", v.UV.X, v.UV.Y)
	}
	return sb.String()
}

func (mw *textWriter) writeMaterial(m mesh.Material, parse bool) {
	mw.printf("MATERIAL %s\n", MaterialOutputName(m.Name, parse))
	mw.printf("%.3f %.3f %.3f %.3f\n", m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], m.Diffuse[3])
	mw.printf("%.3f %.3f %.3f %.3f\n", m.Ambient[0], m.Ambient[1], m.Ambient[2], m.Ambient[3])
	mw.printf("%.3f %.3f %.3f %.3f %.3f\n", m.Specular[0], m.Specular[1], m.Specular[2], m.Specular[3], m.SpecularPower)
	mw.printf("%.3f %.3f %.3f %.3f\n", m.Emissive[0], m.Emissive[1], m.Emissive[2], m.Emissive[3])
}
