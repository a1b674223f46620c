package scene

import (
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

func TestAddMaterial_KeepsFirst(t *testing.T) {
	sc := New("Ship")
	first := sc.AddMaterial(NewMaterial("Hull"))
	second := sc.AddMaterial(NewMaterial("Hull"))

	if first != second {
		t.Error("AddMaterial should return the stored material for a duplicate name")
	}
	if len(sc.Materials) != 1 {
		t.Errorf("expected 1 material, got %d", len(sc.Materials))
	}
	if sc.Material("Missing") != nil {
		t.Error("expected nil for unknown material")
	}
}

func TestScopeName(t *testing.T) {
	sc := New("Ship")
	if got := sc.ScopeName(); got != "Ship" {
		t.Errorf("ScopeName() = %q, want Ship", got)
	}
	sc.Namespace = "vc"
	if got := sc.ScopeName(); got != "vc" {
		t.Errorf("ScopeName() = %q, want vc", got)
	}
}

func TestSelection(t *testing.T) {
	sc := New("Ship")
	a, b := NewObject("A"), NewObject("B")
	b.Selected = true
	sc.Objects = []*Object{a, b}

	sel := sc.Selection()
	if len(sel) != 1 || sel[0] != b {
		t.Errorf("unexpected selection %v", sel)
	}
}

func TestObject_WorldTransform(t *testing.T) {
	o := NewObject("Box")
	o.World = mgl64.Translate3D(1, 2, 3).Mul4(mgl64.Scale3D(2, 1, 1))

	if loc := o.Location(); loc != math.V3(1, 2, 3) {
		t.Errorf("Location() = %v", loc)
	}
	if p := o.WorldPoint(math.V3(1, 1, 1)); !p.ApproxEqual(math.V3(3, 3, 4), 1e-9) {
		t.Errorf("WorldPoint() = %v", p)
	}

	n := o.WorldNormal(math.V3(1, 1, 0))
	want := math.V3(0.5, 1, 0).Normalize()
	if !n.ApproxEqual(want, 1e-9) {
		t.Errorf("WorldNormal() = %v, want %v", n, want)
	}
	if l := n.Length(); stdmath.Abs(l-1) > 1e-9 {
		t.Errorf("normal length %f", l)
	}
}

func TestMaterial_Orbiter(t *testing.T) {
	m := NewMaterial("Hull")
	m.SpecularPower = 40
	m.TexturePath = "hull.dds"

	om := m.Orbiter()
	if om.SpecularPower != 40 || om.Diffuse != mesh.DefaultMaterial("Hull").Diffuse {
		t.Errorf("unexpected material %+v", om)
	}
	back := FromOrbiter(om)
	if back.SpecularPower != 40 || back.Diffuse != m.Diffuse || back.TexturePath != "" {
		t.Errorf("unexpected host material %+v", back)
	}
}

func TestNodeExtras_Props(t *testing.T) {
	var ex nodeExtras
	err := decodeExtras(map[string]any{
		"orbiter_sort_order":       float64(5),
		"orbiter_mesh_flag":        float64(3),
		"orbiter_include_rect":     true,
		"hide_render":              true,
		"unrelated_application_id": "x",
	}, &ex)
	if err != nil {
		t.Fatalf("decodeExtras failed: %v", err)
	}

	p := ex.props()
	if p.SortOrder != 5 || p.MeshFlag != 3 || !p.IncludeRect || p.IncludeQuad {
		t.Errorf("unexpected props %+v", p)
	}
	if !ex.HideRender {
		t.Error("expected hide_render")
	}

	var empty nodeExtras
	if err := decodeExtras(nil, &empty); err != nil {
		t.Fatalf("decodeExtras(nil) failed: %v", err)
	}
	if got := empty.props(); got != DefaultObjectProps() {
		t.Errorf("expected default props, got %+v", got)
	}
}

func TestEncodeExtras_Empty(t *testing.T) {
	v, err := encodeExtras(sceneExtras{})
	if err != nil {
		t.Fatalf("encodeExtras failed: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil extras, got %v", v)
	}
}
