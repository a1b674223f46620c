package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/orbiter-mshx/internal/config"
	"github.com/Faultbox/orbiter-mshx/internal/exporter"
	"github.com/Faultbox/orbiter-mshx/internal/scene"
	"github.com/Faultbox/orbiter-mshx/pkg/coords"
	"github.com/Faultbox/orbiter-mshx/pkg/formats"
	"github.com/Faultbox/orbiter-mshx/pkg/math"
)

const wingMesh = `MSHX1
GROUPS 2
LABEL Left Wing
MATERIAL 1
TEXTURE 1
FLAG 0x3
GEOM 3 1
0 0 0 0 1 0 0 1
1 0 0 0 1 0 1 1
0 0 1 0 1 0 0 0
0 1 2
MATERIAL 2
NONORMAL
GEOM 3 1
0 0 0
0 1 0
0 0 1
2 1 0
MATERIALS 2
skin
glass
MATERIAL skin
0.8 0.8 0.8 1
1 1 1 1
0.5 0.5 0.5 1 20
0 0 0 0
MATERIAL glass
0.1 0.2 0.3 0.4
0 0 0 1
1 1 1 1
0 0 0 0
TEXTURES 1
DG\wing.dds D
`

// createOrbiterTree lays out <tmp>/Orbiter with the wing mesh and its
// texture and returns the mesh path.
func createOrbiterTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Orbiter")
	meshPath := filepath.Join(root, "Meshes", "DG", "wing.msh")
	texPath := filepath.Join(root, "Textures", "DG", "wing.dds")

	for _, p := range []string{meshPath, texPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(meshPath, []byte(wingMesh), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(texPath, []byte("DDS "), 0o644); err != nil {
		t.Fatal(err)
	}
	return meshPath
}

func TestImport_Wing(t *testing.T) {
	meshPath := createOrbiterTree(t)

	sc, err := Import(meshPath, Options{SwapYZ: true})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if sc.Name != "wing" {
		t.Errorf("scene name = %q", sc.Name)
	}
	if len(sc.Objects) != 2 || len(sc.Materials) != 2 {
		t.Fatalf("expected 2 objects and 2 materials, got %d and %d", len(sc.Objects), len(sc.Materials))
	}

	skin := sc.Material("skin_wing_wing")
	if skin == nil {
		t.Fatalf("textured material missing, have %v", sc.Materials)
	}
	wantTex := filepath.Join(filepath.Dir(filepath.Dir(filepath.Dir(meshPath))), "Textures", "DG", "wing.dds")
	if skin.TexturePath != wantTex || !skin.DynamicTexture || skin.SpecularPower != 20 {
		t.Errorf("unexpected material %+v", skin)
	}
	if glass := sc.Material("glass_wing"); glass == nil || glass.TexturePath != "" {
		t.Errorf("unexpected glass material %+v", glass)
	}

	wing := sc.Objects[0]
	if wing.Name != "Left_Wing" || wing.Material != "skin_wing_wing" || !wing.HasUV || wing.Props.MeshFlag != 3 {
		t.Errorf("unexpected object %+v", wing)
	}
	if p := wing.Positions[2]; p != math.V3(0, 1, 0) {
		t.Errorf("position 2 = %v, want file Z as host Y", p)
	}
	f := wing.Faces[0]
	if f[0].Vertex != 0 || f[1].Vertex != 2 || f[2].Vertex != 1 {
		t.Errorf("face corners %d %d %d, want host winding 0 2 1", f[0].Vertex, f[1].Vertex, f[2].Vertex)
	}
	if f[0].Normal != math.V3(0, 0, 1) {
		t.Errorf("normal = %v", f[0].Normal)
	}
	if f[0].UV != (math.Vec2{X: 0, Y: 0}) {
		t.Errorf("uv = %v", f[0].UV)
	}

	plain := sc.Objects[1]
	if plain.Name != "Group_1" || plain.HasUV || plain.Material != "glass_wing" {
		t.Errorf("unexpected object %+v", plain)
	}
	for _, c := range plain.Faces[0] {
		if !c.Normal.ApproxEqual(math.V3(-1, 0, 0), 1e-9) {
			t.Errorf("flat normal = %v", c.Normal)
		}
	}
}

func TestImport_MissingTexture(t *testing.T) {
	dir := t.TempDir()
	meshPath := filepath.Join(dir, "wing.msh")
	if err := os.WriteFile(meshPath, []byte(wingMesh), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Import(meshPath, Options{SwapYZ: true})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	skin := sc.Material("skin_wing_wing")
	if skin == nil || skin.TexturePath != filepath.Join("Textures", "DG", "wing.dds") {
		t.Errorf("unresolved texture should keep its mesh path, got %+v", skin)
	}
}

func TestImport_Errors(t *testing.T) {
	meshPath := createOrbiterTree(t)

	_, err := Import(meshPath, Options{Panel2D: true})
	if !errors.Is(err, coords.ErrPanelInverse) {
		t.Errorf("expected ErrPanelInverse, got %v", err)
	}

	_, err = Import(filepath.Join(t.TempDir(), "none.msh"), Options{})
	var re *formats.ResourceError
	if !errors.As(err, &re) {
		t.Errorf("expected ResourceError, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.msh")
	if err := os.WriteFile(bad, []byte(strings.Replace(wingMesh, "0 1 2\n", "0 1 7\n", 1)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(bad, Options{}); err == nil {
		t.Error("expected error for out of range triangle")
	}
}

func TestImportToFile(t *testing.T) {
	meshPath := createOrbiterTree(t)

	out, err := ImportToFile(meshPath, "", Options{SwapYZ: true, Binary: true})
	if err != nil {
		t.Fatalf("ImportToFile failed: %v", err)
	}
	if want := strings.TrimSuffix(meshPath, ".msh") + ".glb"; out != want {
		t.Errorf("output path = %s, want %s", out, want)
	}

	scenes, err := scene.LoadGLTF(out, scene.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if len(scenes) != 1 || len(scenes[0].Objects) != 2 {
		t.Fatalf("unexpected scenes %+v", scenes)
	}
	if o := scenes[0].Objects[0]; o.Name != "Left_Wing" || o.Props.MeshFlag != 3 || !o.HasUV {
		t.Errorf("unexpected object %+v", o)
	}
}

func TestImport_ExportRoundTrip(t *testing.T) {
	meshPath := createOrbiterTree(t)
	sc, err := Import(meshPath, Options{SwapYZ: true})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	cfg := config.Default()
	cfg.Export.MeshDir = t.TempDir()
	s, err := exporter.NewSession(cfg, meshPath)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()
	res, err := s.ExportScene(sc)
	if err != nil {
		t.Fatalf("ExportScene failed: %v", err)
	}

	orig, err := formats.ImportFile(meshPath, formats.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	back, err := formats.ImportFile(res.Path, formats.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}

	og, bg := orig.Groups[0], back.Groups[0]
	if bg.Label != og.Label || bg.Flag != og.Flag || bg.TextureIndex != 1 {
		t.Errorf("group header changed: %+v", bg)
	}
	if back.Textures[1] != orig.Textures[1] {
		t.Errorf("texture = %+v, want %+v", back.Textures[1], orig.Textures[1])
	}

	ov, _ := og.Vertices()
	bv, _ := bg.Vertices()
	if len(bv) != len(ov) {
		t.Fatalf("vertex count %d, want %d", len(bv), len(ov))
	}
	for i := range ov {
		if !bv[i].Position.ApproxEqual(ov[i].Position, 1e-4) ||
			!bv[i].Normal.ApproxEqual(ov[i].Normal, 1e-4) ||
			!bv[i].UV.ApproxEqual(ov[i].UV, 1e-4) {
			t.Errorf("vertex %d = %+v, want %+v", i, bv[i], ov[i])
		}
	}
	ot, _ := og.Triangles()
	bt, _ := bg.Triangles()
	if len(bt) != 1 || bt[0] != ot[0] {
		t.Errorf("triangles = %v, want %v", bt, ot)
	}
}
