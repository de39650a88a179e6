// Package water describes the trigger volumes floating bodies react to.
//
// A Volume wraps a static trigger body and reports the world-space height of
// its flat top surface. The height is either set by hand or read from the
// body's current bounds on every query, so volumes can be moved or resized
// while the simulation runs.
package water

import (
	"github.com/akmonengine/buoyancy/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Volume is a region of water with a single flat surface
type Volume struct {
	Body *actor.RigidBody

	// ManualHeight pins the surface to SurfaceY instead of the body bounds
	ManualHeight bool
	// SurfaceY is the last surface height, or the pinned one when ManualHeight is set
	SurfaceY float64
}

// NewVolume creates a water trigger of the given shape, tagged as water
func NewVolume(name string, transform actor.Transform, shape actor.ShapeInterface) *Volume {
	body := actor.NewTrigger(transform, shape, actor.CategoryWater)
	body.Name = name

	return &Volume{Body: body}
}

// NewPool creates a box shaped volume whose surface sits at surfaceY.
// halfExtents.Y is the half depth of the pool.
func NewPool(name string, center mgl64.Vec2, surfaceY float64, halfExtents mgl64.Vec3) *Volume {
	position := mgl64.Vec3{center.X(), surfaceY - halfExtents.Y(), center.Y()}

	return NewVolume(name, actor.NewTransformAt(position), &actor.Box{HalfExtents: halfExtents})
}

// NewSea creates an unbounded volume with its surface at surfaceY and the given depth
func NewSea(name string, surfaceY, depth float64) *Volume {
	plane := &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Depth: depth}

	return NewVolume(name, actor.NewTransformAt(mgl64.Vec3{0, surfaceY, 0}), plane)
}

// SetManualHeight pins the surface height
func (v *Volume) SetManualHeight(height float64) {
	v.ManualHeight = true
	v.SurfaceY = height
}

// ClearManualHeight goes back to reading the surface from the bounds
func (v *Volume) ClearManualHeight() {
	v.ManualHeight = false
}

// SurfaceHeight returns the world-space Y of the water top
func (v *Volume) SurfaceHeight() float64 {
	if !v.ManualHeight {
		v.SurfaceY = v.Body.Shape.GetAABB().Max.Y()
	}

	return v.SurfaceY
}

// Bounds returns the current AABB of the volume
func (v *Volume) Bounds() actor.AABB {
	return v.Body.Shape.GetAABB()
}

// MoveTo moves the volume, the next SurfaceHeight query sees the new bounds
func (v *Volume) MoveTo(position mgl64.Vec3) {
	v.Body.SetPosition(position)
}

// Lookup resolves the water volume attached to a trigger body
type Lookup interface {
	VolumeOf(body *actor.RigidBody) *Volume
}

// Registry is a Lookup backed by a map
type Registry map[*actor.RigidBody]*Volume

func (r Registry) VolumeOf(body *actor.RigidBody) *Volume {
	return r[body]
}

// Add registers a volume under its body
func (r Registry) Add(v *Volume) {
	r[v.Body] = v
}

// Remove unregisters the volume owning body
func (r Registry) Remove(body *actor.RigidBody) {
	delete(r, body)
}
