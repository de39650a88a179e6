package floater

import (
	"github.com/akmonengine/buoyancy/actor"
	"github.com/akmonengine/buoyancy/water"
	"go.uber.org/zap"
)

// State of a CollaboratingSurface with respect to water
type State uint8

const (
	// NoWater: no water trigger overlaps the body
	NoWater State = iota
	// WaterEnteredUnresolved: overlapping water, no volume bound yet
	WaterEnteredUnresolved
	// WaterResolved: a volume is bound and drives the buoyancy
	WaterResolved
)

func (s State) String() string {
	switch s {
	case NoWater:
		return "no-water"
	case WaterEnteredUnresolved:
		return "water-entered"
	case WaterResolved:
		return "water-resolved"
	}
	return "unknown"
}

// CollaboratingSurface floats a body using the surface height reported by a water.Volume.
// The body follows at most one volume at a time: the first one matched during a stay
// event is bound, and a stay event from another volume unbinds it.
type CollaboratingSurface struct {
	base

	lookup       water.Lookup
	overlapCount int
	active       *water.Volume
}

var _ Floater = (*CollaboratingSurface)(nil)

// NewCollaboratingSurface attaches the strategy to body.
// lookup resolves the water.Volume behind an overlapping trigger.
func NewCollaboratingSurface(body *actor.RigidBody, lookup water.Lookup, config Config) (*CollaboratingSurface, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}
	if lookup == nil {
		return nil, ErrNilLookup
	}

	return &CollaboratingSurface{
		base:   newBase(body, config),
		lookup: lookup,
	}, nil
}

func (f *CollaboratingSurface) Kind() Kind {
	return KindCollaboratingSurface
}

func (f *CollaboratingSurface) OnTriggerEnter(other *actor.RigidBody) {
	if f.isWater(other) {
		f.overlapCount++
	}
}

func (f *CollaboratingSurface) OnTriggerExit(other *actor.RigidBody) {
	if f.isWater(other) && f.overlapCount > 0 {
		f.overlapCount--
	}
}

func (f *CollaboratingSurface) OnTriggerStay(other *actor.RigidBody) {
	if !f.isWater(other) {
		return
	}
	if !other.Shape.GetAABB().ContainsXZ(f.body.Transform.Position) {
		return
	}

	if f.active != nil && f.active.Body != other {
		f.unbind()
	}

	if f.active == nil {
		if volume := f.lookup.VolumeOf(other); volume != nil {
			f.active = volume
			f.logger.Debug("water volume bound", zap.String("volume", volume.Body.Name))
		}
		return
	}

	referenceY := f.body.Shape.GetAABB().Center().Y() + f.config.OffsetY
	surfaceY := f.active.SurfaceHeight()
	force, ok := CollaboratingSurfaceForce(f.config.BuoyantForce, f.config.DepthPower, f.body.Material.GetMass(), referenceY, surfaceY)
	if ok {
		f.push(force)
	}
}

// Settle clears the bound volume once no water trigger overlaps anymore.
// It runs after the whole step so a transient zero between exit and enter is never seen.
func (f *CollaboratingSurface) Settle() {
	if f.overlapCount == 0 && f.active != nil {
		f.unbind()
	}
	f.settleForce()
}

func (f *CollaboratingSurface) unbind() {
	f.logger.Debug("water volume unbound", zap.String("volume", f.active.Body.Name))
	f.active = nil
}

// State derives the water state from the overlap count and the bound volume
func (f *CollaboratingSurface) State() State {
	switch {
	case f.overlapCount == 0:
		return NoWater
	case f.active == nil:
		return WaterEnteredUnresolved
	default:
		return WaterResolved
	}
}

// OverlapCount is the number of water triggers currently overlapping the body
func (f *CollaboratingSurface) OverlapCount() int {
	return f.overlapCount
}

// ActiveVolume is the volume driving the buoyancy, nil when unbound
func (f *CollaboratingSurface) ActiveVolume() *water.Volume {
	return f.active
}

func (f *CollaboratingSurface) InWater() bool {
	return f.active != nil
}

// IsUnderWater reports a bound volume whose surface is above the top of the body
func (f *CollaboratingSurface) IsUnderWater() bool {
	return f.active != nil && f.active.SurfaceHeight() > f.body.Shape.GetAABB().Max.Y()
}

// IsFloating reports a bound volume with the top of the body at or above the surface
func (f *CollaboratingSurface) IsFloating() bool {
	return f.active != nil && !(f.active.SurfaceHeight() > f.body.Shape.GetAABB().Max.Y())
}
