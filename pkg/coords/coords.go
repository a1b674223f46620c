// Package coords maps host-space vectors into Orbiter mesh file space and back.
package coords

import (
	"errors"

	"github.com/Faultbox/orbiter-mshx/pkg/math"
)

// ErrPanelInverse is returned when an inverse mapping is requested for a 2D
// panel transform. Panel meshes are written only, never read back.
var ErrPanelInverse = errors.New("coords: 2D panel transform has no inverse")

// Transform selects the axis convention used between host and file space.
type Transform struct {
	// SwapAxis converts a Z-up host into Orbiter's Y-up frame by swapping Y and Z.
	// Without it the X axis is mirrored instead.
	SwapAxis bool
	// Panel2D projects geometry onto the panel plane (Z forced to 0) and keeps V unflipped.
	Panel2D bool
}

// Point maps a host-space position into file space.
func (t Transform) Point(v math.Vec3) math.Vec3 {
	switch {
	case t.SwapAxis && !t.Panel2D:
		return math.Vec3{X: v.X, Y: v.Z, Z: v.Y}
	case t.SwapAxis && t.Panel2D:
		return math.Vec3{X: v.X, Y: -v.Z, Z: 0}
	case !t.SwapAxis && !t.Panel2D:
		return math.Vec3{X: -v.X, Y: v.Y, Z: v.Z}
	default:
		return math.Vec3{X: v.X, Y: v.Y, Z: 0}
	}
}

// Normal maps a host-space normal into file space. Normals follow the same
// table as positions.
func (t Transform) Normal(n math.Vec3) math.Vec3 {
	return t.Point(n)
}

// UV maps a host texture coordinate into file space. Standard meshes flip V;
// panels do not.
func (t Transform) UV(uv math.Vec2) math.Vec2 {
	if t.Panel2D {
		return uv
	}
	return math.Vec2{X: uv.X, Y: 1 - uv.Y}
}

// InversePoint maps a file-space position back into host space.
func (t Transform) InversePoint(v math.Vec3) (math.Vec3, error) {
	if t.Panel2D {
		return math.Vec3{}, ErrPanelInverse
	}
	// Both non-panel rows are their own inverse.
	return t.Point(v), nil
}

// InverseNormal maps a file-space normal back into host space.
func (t Transform) InverseNormal(n math.Vec3) (math.Vec3, error) {
	return t.InversePoint(n)
}

// InverseUV maps a file-space texture coordinate back into host space.
func (t Transform) InverseUV(uv math.Vec2) (math.Vec2, error) {
	if t.Panel2D {
		return math.Vec2{}, ErrPanelInverse
	}
	return math.Vec2{X: uv.X, Y: 1 - uv.Y}, nil
}

// String names the transform for logs.
func (t Transform) String() string {
	switch {
	case t.SwapAxis && t.Panel2D:
		return "swap-yz/panel"
	case t.SwapAxis:
		return "swap-yz"
	case t.Panel2D:
		return "mirror-x/panel"
	default:
		return "mirror-x"
	}
}
