package scene

import (
	"encoding/json"

	"github.com/Faultbox/orbiter-mshx/pkg/mesh"
)

// Orbiter settings are stored in glTF "extras" under these keys.
type sceneExtras struct {
	Namespace      string `json:"orbiter_scene_namespace,omitempty"`
	Panel2D        bool   `json:"orbiter_is_2d_panel,omitempty"`
	CreateMeshFile *bool  `json:"orbiter_create_mesh_file,omitempty"`
}

type nodeExtras struct {
	SortOrder          *int `json:"orbiter_sort_order,omitempty"`
	MeshFlag           int  `json:"orbiter_mesh_flag,omitempty"`
	IncludePosition    bool `json:"orbiter_include_position,omitempty"`
	IncludeQuad        bool `json:"orbiter_include_quad,omitempty"`
	IncludeVertexArray bool `json:"orbiter_include_vertex_array,omitempty"`
	IncludeSize        bool `json:"orbiter_include_size,omitempty"`
	IncludeRect        bool `json:"orbiter_include_rect,omitempty"`
	HideRender         bool `json:"hide_render,omitempty"`
	Selected           bool `json:"selected,omitempty"`
}

type materialExtras struct {
	Ambient        *mesh.Color `json:"orbiter_ambient_color,omitempty"`
	Specular       *mesh.Color `json:"orbiter_specular_color,omitempty"`
	SpecularPower  *float64    `json:"orbiter_specular_power,omitempty"`
	Emissive       *mesh.Color `json:"orbiter_emit_color,omitempty"`
	DynamicTexture bool        `json:"orbiter_is_dynamic,omitempty"`
}

// decodeExtras copies a decoded extras value into v. The glTF decoder
// leaves extras as generic JSON values, so they are re-encoded first.
func decodeExtras(extras any, v any) error {
	if extras == nil {
		return nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// encodeExtras turns v into a generic JSON object, or nil when empty.
func encodeExtras(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

func (e nodeExtras) props() ObjectProps {
	p := DefaultObjectProps()
	if e.SortOrder != nil {
		p.SortOrder = *e.SortOrder
	}
	p.MeshFlag = e.MeshFlag
	p.IncludePosition = e.IncludePosition
	p.IncludeQuad = e.IncludeQuad
	p.IncludeVertexArray = e.IncludeVertexArray
	p.IncludeSize = e.IncludeSize
	p.IncludeRect = e.IncludeRect
	return p
}

func nodeExtrasFor(o *Object) nodeExtras {
	order := o.Props.SortOrder
	return nodeExtras{
		SortOrder:          &order,
		MeshFlag:           o.Props.MeshFlag,
		IncludePosition:    o.Props.IncludePosition,
		IncludeQuad:        o.Props.IncludeQuad,
		IncludeVertexArray: o.Props.IncludeVertexArray,
		IncludeSize:        o.Props.IncludeSize,
		IncludeRect:        o.Props.IncludeRect,
		HideRender:         o.HiddenFromRender,
		Selected:           o.Selected,
	}
}
