package exporter

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/orbiter-mshx/internal/logger"
	"github.com/Faultbox/orbiter-mshx/internal/scene"
	"github.com/Faultbox/orbiter-mshx/pkg/catalog"
	"github.com/Faultbox/orbiter-mshx/pkg/coords"
	"github.com/Faultbox/orbiter-mshx/pkg/formats"
	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// builder converts the objects of one scene into mesh groups.
type builder struct {
	sc *scene.Scene
	tf coords.Transform
}

func newBuilder(sc *scene.Scene, swapYZ bool) *builder {
	return &builder{
		sc: sc,
		tf: coords.Transform{SwapAxis: swapYZ, Panel2D: sc.Panel2D},
	}
}

// filePoint maps an object-space position to mesh file space.
func (b *builder) filePoint(o *scene.Object, p math.Vec3) math.Vec3 {
	return b.tf.Point(o.WorldPoint(p))
}

// group builds the mesh group for o. The group is textured only when the
// object's material has an image and the object carries UVs.
func (b *builder) group(o *scene.Object) (*mesh.Group, error) {
	mat := b.sc.Material(o.Material)
	textured := mat != nil && mat.TexturePath != "" && o.HasUV

	positions := make([]math.Vec3, len(o.Positions))
	for i, p := range o.Positions {
		positions[i] = b.filePoint(o, p)
	}

	faces := make([]mesh.Face, len(o.Faces))
	for i, f := range o.Faces {
		for c, corner := range f {
			faces[i][c] = mesh.Corner{
				Vertex: corner.Vertex,
				Normal: b.tf.Normal(o.WorldNormal(corner.Normal)),
				UV:     b.tf.UV(corner.UV),
			}
		}
	}

	d := mesh.NewDeduper(positions, textured)
	d.OnSplit = func(c mesh.Corner, original, added int) {
		logger.Debug("vertex split",
			zap.String("object", o.Name),
			zap.Int("vertex", original),
			zap.Int("added", added))
	}
	verts, tris, err := d.Build(faces)
	if err != nil {
		return nil, err
	}

	// Vertices no face touches still need the same fields as the rest.
	for i := range verts {
		verts[i].HasNormal = true
		verts[i].HasUV = textured
	}

	g := mesh.NewGroup(o.Name)
	g.Vertices = verts
	g.Triangles = tris
	g.SortOrder = o.Props.SortOrder
	g.Flag = o.Props.MeshFlag
	g.IncludeVertexArray = o.Props.IncludeVertexArray
	if mat != nil {
		g.MaterialName = mat.Name
		if textured {
			g.TexturePath = catalog.RelativeTexturePath(mat.TexturePath)
			g.DynamicTexture = mat.DynamicTexture
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("group built",
		zap.String("group", g.Name),
		zap.Int("vertices", len(verts)),
		zap.Int("splits", d.Splits),
		zap.Bool("textured", textured))
	return g, nil
}

// catalog returns the scene's materials keyed by name.
func (b *builder) catalog() formats.MaterialCatalog {
	mc := make(formats.MaterialCatalog, len(b.sc.Materials))
	for _, m := range b.sc.Materials {
		mc[m.Name] = m.Orbiter()
	}
	return mc
}

// includeObjects collects the per-object include constants in file space.
func (b *builder) includeObjects(objects []*scene.Object) []formats.IncludeObject {
	var out []formats.IncludeObject
	for _, o := range objects {
		p := o.Props
		if !p.IncludePosition && !p.IncludeQuad && !p.IncludeSize && !p.IncludeRect {
			continue
		}

		obj := formats.IncludeObject{Name: o.Name}
		if p.IncludePosition {
			loc := b.tf.Point(o.Location())
			obj.Position = &loc
		}
		if p.IncludeQuad {
			if len(o.Positions) == 4 {
				for _, v := range o.Positions {
					obj.Quad = append(obj.Quad, b.filePoint(o, v))
				}
			} else {
				logger.Warn("quad needs exactly 4 vertices",
					zap.String("object", o.Name), zap.Int("vertices", len(o.Positions)))
			}
		}
		if (p.IncludeSize || p.IncludeRect) && len(o.Positions) > 0 {
			lo, hi := b.bounds(o)
			if p.IncludeSize {
				obj.Size = &math.Vec2{X: hi.X - lo.X, Y: hi.Y - lo.Y}
			}
			if p.IncludeRect {
				obj.Rect = &[4]int{round(lo.X), round(lo.Y), round(hi.X), round(hi.Y)}
			}
		}
		out = append(out, obj)
	}
	return out
}

func (b *builder) bounds(o *scene.Object) (lo, hi math.Vec3) {
	lo = b.filePoint(o, o.Positions[0])
	hi = lo
	for _, p := range o.Positions[1:] {
		fp := b.filePoint(o, p)
		lo = lo.Min(fp)
		hi = hi.Max(fp)
	}
	return lo, hi
}

func round(f float64) int {
	return int(stdmath.Round(f))
}
