package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const quadMesh = `MSHX1
GROUPS 1
LABEL Hull
MATERIAL 1
TEXTURE 1
FLAG 0x2
GEOM 3 1
0 0 0 0 1 0 0 1
1 0 0 0 1 0 1 1
0 0 1 0 1 0 0 0
0 1 2
MATERIALS 1
skin
MATERIAL skin
0.8 0.8 0.8 1
1 1 1 1
0.5 0.5 0.5 1 20
0 0 0 0
TEXTURES 1
hull.dds
`

// run executes the root command with args, isolated from any user config.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeMesh(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hull.msh")
	if err := os.WriteFile(path, []byte(quadMesh), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInfo(t *testing.T) {
	path := writeMesh(t)
	out, err := run(t, "info", path)
	if err != nil {
		t.Fatalf("info failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Groups:     1", "Hull", "flag 0x2", "material 1: skin", "texture 1: hull.dds"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInfo_Dump(t *testing.T) {
	path := writeMesh(t)
	out, err := run(t, "info", "--dump", path)
	if err != nil {
		t.Fatalf("info --dump failed: %v", err)
	}
	if !strings.Contains(out, "formats.File") || !strings.Contains(out, `"Hull"`) {
		t.Errorf("unexpected dump:\n%s", out)
	}
}

func TestImportThenExport(t *testing.T) {
	path := writeMesh(t)
	gltfPath := filepath.Join(filepath.Dir(path), "hull.gltf")

	out, err := run(t, "import", path, "-o", gltfPath)
	if err != nil {
		t.Fatalf("import failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(gltfPath); err != nil {
		t.Fatalf("glTF not written: %v", err)
	}

	meshDir := t.TempDir()
	out, err = run(t, "export", gltfPath, "--mesh-dir", meshDir, "--include")
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "hull: 1 groups") {
		t.Errorf("unexpected output:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(meshDir, "hull.msh"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "MSHX1\nGROUPS 1\nLABEL Hull\n") {
		t.Errorf("unexpected mesh file:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(meshDir, "hull.h")); err != nil {
		t.Errorf("include file not written: %v", err)
	}
}

func TestImport_Panel(t *testing.T) {
	path := writeMesh(t)
	if _, err := run(t, "import", "--panel", path); err == nil {
		t.Error("expected panel import to fail")
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "mshx.yaml")
	out, err := run(t, "config", "init", "--path", target, "--sort", "GROUPNAMEASC")
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sort_mode: GROUPNAMEASC") {
		t.Errorf("unexpected config:\n%s", data)
	}
}
