package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOrbiterRoot(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantRoot string
		found    bool
	}{
		{"meshes folder", "/opt/Orbiter/Meshes/dg/wing.msh", "/opt/Orbiter", true},
		{"lower case", "/opt/orbiter/meshes/wing.msh", "/opt/orbiter", true},
		{"outermost wins", "/opt/Orbiter/Meshes/x/meshes/wing.msh", "/opt/Orbiter", true},
		{"no meshes folder", "/tmp/work/wing.msh", "/tmp/work", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, found := OrbiterRoot(filepath.FromSlash(tt.path))
			if root != filepath.FromSlash(tt.wantRoot) || found != tt.found {
				t.Errorf("OrbiterRoot = %q, %v; want %q, %v", root, found, tt.wantRoot, tt.found)
			}
		})
	}
}

func TestRelativeTexturePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/opt/Orbiter/Textures/dg/wing.dds", `dg\wing.dds`},
		{"/opt/Orbiter/Textures2/wing.dds", "wing.dds"},
		{`C:\Orbiter\textures\dg\sub\wing.dds`, `dg\sub\wing.dds`},
		{"/home/me/art/wing.dds", "wing.dds"},
		{"wing.dds", "wing.dds"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RelativeTexturePath(tt.input); got != tt.expected {
			t.Errorf("RelativeTexturePath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTextureStem(t *testing.T) {
	tests := map[string]string{
		"wing.dds":      "wing",
		`dg\panel.dds`:  "panel",
		"hull.norm.dds": "hull",
		"noext":         "noext",
	}
	for in, want := range tests {
		if got := TextureStem(in); got != want {
			t.Errorf("TextureStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextureResolverPrefersTextures2(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"Textures", "Textures2"} {
		if err := os.MkdirAll(filepath.Join(root, dir, "dg"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	write := func(rel string) {
		if err := os.WriteFile(filepath.Join(root, rel), []byte("DDS "), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join("Textures", "dg", "wing.dds"))
	write(filepath.Join("Textures2", "dg", "wing.dds"))
	write(filepath.Join("Textures", "hull.dds"))

	r := NewTextureResolver(root)

	got, err := r.Resolve(`dg\wing.dds`)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := filepath.Join(root, "Textures2", "dg", "wing.dds"); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}

	got, err = r.Resolve("hull.dds")
	if err != nil || got != filepath.Join(root, "Textures", "hull.dds") {
		t.Errorf("Resolve(hull.dds) = %q, %v", got, err)
	}

	got, err = r.Resolve("missing.dds")
	if err == nil || got != "" {
		t.Errorf("Resolve(missing.dds) = %q, %v; want empty path and error", got, err)
	}
}
