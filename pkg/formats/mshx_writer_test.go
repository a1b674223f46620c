package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// createTestQuad returns a unit quad in the XY plane facing +Z.
func createTestQuad(name string) *mesh.Group {
	g := mesh.NewGroup(name)
	up := math.V3(0, 0, 1)
	for _, p := range []math.Vec3{
		math.V3(0, 0, 0), math.V3(1, 0, 0), math.V3(1, 1, 0), math.V3(0, 1, 0),
	} {
		g.Vertices = append(g.Vertices, mesh.Vertex{Position: p, Normal: up, HasNormal: true})
	}
	g.Triangles = []mesh.Triangle{
		mesh.NewTriangle(0, 1, 2),
		mesh.NewTriangle(0, 2, 3),
	}
	return g
}

func TestWriteMSHX_UntexturedQuad(t *testing.T) {
	var buf bytes.Buffer
	layout, err := WriteMSHX(&buf, []*mesh.Group{createTestQuad("Hull")}, nil, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteMSHX failed: %v", err)
	}

	expected := strings.Join([]string{
		"MSHX1",
		"GROUPS 1",
		"LABEL Hull",
		"MATERIAL 0",
		"TEXTURE 0",
		"FLAG 0",
		"GEOM 4 2",
		"0.0000 0.0000 0.0000 0.0000 0.0000 1.0000",
		"1.0000 0.0000 0.0000 0.0000 0.0000 1.0000",
		"1.0000 1.0000 0.0000 0.0000 0.0000 1.0000",
		"0.0000 1.0000 0.0000 0.0000 0.0000 1.0000",
		"0 2 1",
		"0 3 2",
		"MATERIALS 0",
		"TEXTURES 0",
		"",
	}, "\n")
	if got := buf.String(); got != expected {
		t.Errorf("output mismatch\n got:\n%s\nwant:\n%s", got, expected)
	}
	if len(layout.Groups) != 1 || layout.Groups[0].Material != 0 || layout.Groups[0].Texture != 0 {
		t.Errorf("unexpected layout %+v", layout.Groups)
	}
}

func TestWriteMSHX_IndicesByFirstUse(t *testing.T) {
	a := createTestQuad("a")
	a.MaterialName = "glass"
	a.TexturePath = `dg\panel.dds`
	b := createTestQuad("b")
	b.MaterialName = "metal"
	c := createTestQuad("c")
	c.MaterialName = "glass"
	c.TexturePath = "hull.dds"
	d := createTestQuad("d")
	d.TexturePath = `dg\panel.dds`
	d.DynamicTexture = true

	catalog := MaterialCatalog{
		"glass": mesh.DefaultMaterial("glass"),
		"metal": mesh.DefaultMaterial("metal"),
	}

	var buf bytes.Buffer
	layout, err := WriteMSHX(&buf, []*mesh.Group{a, b, c, d}, catalog, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteMSHX failed: %v", err)
	}

	want := []GroupLayout{
		{"a", 1, 1},
		{"b", 2, 0},
		{"c", 1, 2},
		{"d", 0, 1},
	}
	for i, w := range want {
		if layout.Groups[i] != w {
			t.Errorf("group %d = %+v, want %+v", i, layout.Groups[i], w)
		}
	}

	out := buf.String()
	if !strings.Contains(out, "MATERIALS 2\nglass\nmetal\nMATERIAL glass\n") {
		t.Errorf("material table not in first-use order:\n%s", out)
	}
	if !strings.HasSuffix(out, "TEXTURES 2\ndg\\panel.dds D\nhull.dds\n") {
		t.Errorf("texture table wrong:\n%s", out)
	}
	if n := strings.Count(out, " D\n"); n != 1 {
		t.Errorf("dynamic marker written %d times, want 1", n)
	}
}

func TestWriteMSHX_MaterialBlock(t *testing.T) {
	g := createTestQuad("g")
	g.MaterialName = "Hull Paint_v2"

	m := mesh.DefaultMaterial("Hull Paint_v2")
	m.Diffuse = mesh.Color{0.25, 0.5, 0.75, 1}
	m.Emissive = mesh.Color{0.1, 0, 0, 1}

	tests := []struct {
		name  string
		parse bool
		label string
	}{
		{"spaces replaced", false, "Hull_Paint_v2"},
		{"parsed name", true, "Hull_Paint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := WriteMSHX(&buf, []*mesh.Group{g}, MaterialCatalog{g.MaterialName: m}, WriteOptions{ParseMaterialName: tt.parse})
			if err != nil {
				t.Fatalf("WriteMSHX failed: %v", err)
			}
			block := "MATERIALS 1\n" + tt.label + "\nMATERIAL " + tt.label + "\n" +
				"0.250 0.500 0.750 1.000\n" +
				"1.000 1.000 1.000 1.000\n" +
				"1.000 1.000 1.000 1.000 10.000\n" +
				"0.100 0.000 0.000 1.000\n"
			if !strings.Contains(buf.String(), block) {
				t.Errorf("material block missing, got:\n%s", buf.String())
			}
		})
	}
}

func TestWriteMSHX_UnresolvedMaterial(t *testing.T) {
	g := createTestQuad("g")
	g.MaterialName = "ghost"

	var buf bytes.Buffer
	layout, err := WriteMSHX(&buf, []*mesh.Group{g}, MaterialCatalog{}, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteMSHX failed: %v", err)
	}
	if len(layout.Unresolved) != 1 || layout.Unresolved[0] != "ghost" {
		t.Errorf("Unresolved = %v", layout.Unresolved)
	}
	if layout.Groups[0].Material != 1 {
		t.Errorf("material index = %d, want 1", layout.Groups[0].Material)
	}
}

func TestWriteMSHX_InvalidGroup(t *testing.T) {
	g := createTestQuad("broken")
	g.Triangles = append(g.Triangles, mesh.Triangle{V: [3]int{0, 1, 9}})

	var buf bytes.Buffer
	if _, err := WriteMSHX(&buf, []*mesh.Group{g}, nil, WriteOptions{}); err == nil {
		t.Fatal("expected error for out-of-range triangle index")
	}
	if buf.Len() != 0 {
		t.Errorf("invalid group produced output: %q", buf.String())
	}
}

func TestWriteMSHX_LegacyEncoding(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteMSHX(&buf, []*mesh.Group{createTestQuad("Aileron_é")}, nil, WriteOptions{LegacyEncoding: true}); err != nil {
		t.Fatalf("WriteMSHX failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("LABEL Aileron_\xe9\n")) {
		t.Errorf("label not Windows-1252 encoded: %q", buf.Bytes())
	}
}

func TestExportFile_ResourceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "x.msh")
	_, err := ExportFile(path, []*mesh.Group{createTestQuad("q")}, nil, WriteOptions{})

	var rerr *ResourceError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ResourceError, got %v", err)
	}
	if rerr.Op != "create" || rerr.Path != path {
		t.Errorf("unexpected error fields: %+v", rerr)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not wrap os.ErrNotExist: %v", err)
	}
}
