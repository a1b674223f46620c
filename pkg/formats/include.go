package formats

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Default identifier patterns; "{}" is replaced by the group or object name.
const (
	DefaultVertsPattern    = "{}Verts"
	DefaultIDPattern       = "{}Id"
	DefaultLocationPattern = "{}Location"
	DefaultOuterNamespace  = "bl"
)

// IncludeOptions holds the identifier patterns of the C++ include listing.
type IncludeOptions struct {
	VertsPattern    string
	IDPattern       string
	LocationPattern string
}

// DefaultIncludeOptions returns the stock identifier patterns.
func DefaultIncludeOptions() IncludeOptions {
	return IncludeOptions{
		VertsPattern:    DefaultVertsPattern,
		IDPattern:       DefaultIDPattern,
		LocationPattern: DefaultLocationPattern,
	}
}

// IncludeHeader opens an include file.
type IncludeHeader struct {
	Generator string
	Date      time.Time
	// Guard names the include guard, __<Guard>_H.
	Guard string
	// Namespace wraps every scene block; DefaultOuterNamespace when empty.
	Namespace string
}

// IncludeScope is one scene's block in an include file.
type IncludeScope struct {
	Scene string
	// Namespace defaults to Scene.
	Namespace string
	Objects   []IncludeObject
}

// IncludeObject carries the optional per-object constants, already in
// mesh file space. Nil fields are not emitted.
type IncludeObject struct {
	Name     string
	Position *math.Vec3
	// Quad is emitted only when it has exactly four corners.
	Quad []math.Vec3
	Size *math.Vec2
	Rect *[4]int
}

// CleanName turns s into a C identifier fragment by replacing every
// character outside [A-Za-z0-9_] with an underscore.
func CleanName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func applyPattern(pattern, name string) string {
	return strings.ReplaceAll(pattern, "{}", name)
}

// WriteIncludeHeader writes the generator comment, the include guard and
// the opening of the outer namespace.
func WriteIncludeHeader(w io.Writer, h IncludeHeader) error {
	ns := h.Namespace
	if ns == "" {
		ns = DefaultOuterNamespace
	}
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}
	guard := CleanName(h.Guard)

	tw := &textWriter{w: bufio.NewWriter(w)}
	tw.printf("// Auto generated code file.  %s\n", h.Generator)
	tw.printf("// Date: %s\n\n\n", date.Format(time.ANSIC))
	tw.printf("#include \"orbitersdk.h\"\n\n")
	tw.printf("#ifndef __%s_H\n", guard)
	tw.printf("#define __%s_H\n", guard)
	tw.printf("\nnamespace %s\n{\n", ns)
	return tw.flush()
}

// WriteIncludeFooter closes the outer namespace and the include guard.
func WriteIncludeFooter(w io.Writer) error {
	_, err := io.WriteString(w, "\n}\n#endif\n")
	return err
}

// EmitInclude writes one scene block. groups must be in written order and
// textures in index order, as returned in a Layout.
func EmitInclude(w io.Writer, scope IncludeScope, groups []*mesh.Group, textures []mesh.Texture, opts IncludeOptions) error {
	ns := scope.Namespace
	if ns == "" {
		ns = scope.Scene
	}

	tw := &textWriter{w: bufio.NewWriter(w)}
	tw.printf("\n// Scene %s\n", scope.Scene)
	tw.printf("\n  namespace %s\n  {\n", CleanName(ns))

	for _, g := range groups {
		if g.IncludeVertexArray {
			tw.writeVertexArray(applyPattern(opts.VertsPattern, CleanName(g.Name)), g.Vertices)
		}
	}

	for i, t := range textures {
		tw.printf("    const DWORD TXIDX_%s = %d;\n", CleanName(t.Path), i+1)
	}
	tw.printf("    constexpr auto %s_MESH_NAME = %q;\n\n", CleanName(scope.Scene), scope.Scene)

	for i, g := range groups {
		tw.printf("    const UINT %s = %d;\n", applyPattern(opts.IDPattern, CleanName(g.Name)), i)
	}

	for _, obj := range scope.Objects {
		name := CleanName(obj.Name)
		if p := obj.Position; p != nil {
			tw.printf("    const VECTOR3 %s = {%.4f, %.4f, %.4f};\n",
				applyPattern(opts.LocationPattern, name), p.X, p.Y, p.Z)
		}
		if len(obj.Quad) == 4 {
			for i, q := range obj.Quad {
				tw.printf("    const VECTOR3 %s_QUAD_%d = {%.4f, %.4f, %.4f};\n", name, i, q.X, q.Y, q.Z)
			}
		}
		if s := obj.Size; s != nil {
			tw.printf("    const double %s_WIDTH = %.4f;\n", name, s.X)
			tw.printf("    const double %s_HEIGHT = %.4f;\n", name, s.Y)
		}
		if r := obj.Rect; r != nil {
			tw.printf("    const RECT %s_RECT = {%d, %d, %d, %d};\n", name, r[0], r[1], r[2], r[3])
		}
	}

	tw.printf("\n  }\n")
	return tw.flush()
}

// EmitIncludeFile writes a complete include file holding a single scene.
func EmitIncludeFile(path string, header IncludeHeader, scope IncludeScope, groups []*mesh.Group, textures []mesh.Texture, opts IncludeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return &ResourceError{Op: "create", Path: path, Err: err}
	}

	err = WriteIncludeHeader(f, header)
	if err == nil {
		err = EmitInclude(f, scope, groups, textures, opts)
	}
	if err == nil {
		err = WriteIncludeFooter(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &ResourceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (tw *textWriter) writeVertexArray(name string, verts []mesh.Vertex) {
	tw.printf("    const NTVERTEX %s[%d] = {\n", name, len(verts))
	for i, v := range verts {
		tw.printf("    {%.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff, %.4ff}",
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
			v.UV.X, v.UV.Y)
		if i < len(verts)-1 {
			tw.printf(",")
		}
		tw.printf("\n")
	}
	tw.printf("    };\n")
}

func (tw *textWriter) flush() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.w.Flush()
}

