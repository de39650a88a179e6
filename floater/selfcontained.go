package floater

import (
	"github.com/akmonengine/buoyancy/actor"
)

// UnderWaterDepthFactor is the depth factor from which a SelfContainedSurface
// reports itself under water
const UnderWaterDepthFactor = 0.5

// SelfContainedSurface floats a body using the bounds of whatever water trigger it overlaps.
// Nothing is cached between steps: when several triggers overlap, the last stay event
// of the step decides InWater.
type SelfContainedSurface struct {
	base

	inWater     bool
	depthFactor float64
}

var _ Floater = (*SelfContainedSurface)(nil)

func NewSelfContainedSurface(body *actor.RigidBody, config Config) (*SelfContainedSurface, error) {
	if err := validateBody(body); err != nil {
		return nil, err
	}

	return &SelfContainedSurface{base: newBase(body, config)}, nil
}

func (f *SelfContainedSurface) Kind() Kind {
	return KindSelfContainedSurface
}

func (f *SelfContainedSurface) OnTriggerEnter(other *actor.RigidBody) {}

func (f *SelfContainedSurface) OnTriggerStay(other *actor.RigidBody) {
	if !f.isWater(other) {
		return
	}

	bounds := other.Shape.GetAABB()
	position := f.body.Transform.Position
	referenceY := position.Y() + f.config.OffsetY

	if !bounds.ContainsXZ(position) {
		f.inWater = false
		return
	}

	force, depthFactor, ok := SelfContainedSurfaceForce(f.config.BuoyantForce, f.config.DepthPower, f.body.Material.GetMass(), referenceY, bounds.Max.Y())
	if !ok {
		f.inWater = false
		return
	}

	f.push(force)
	f.inWater = true
	f.depthFactor = depthFactor
}

func (f *SelfContainedSurface) OnTriggerExit(other *actor.RigidBody) {
	if f.isWater(other) {
		f.inWater = false
		f.depthFactor = 0
	}
}

func (f *SelfContainedSurface) Settle() {
	f.settleForce()
}

func (f *SelfContainedSurface) InWater() bool {
	return f.inWater
}

// DepthFactor is the clamped depth term of the last stay event in water
func (f *SelfContainedSurface) DepthFactor() float64 {
	return f.depthFactor
}

// IsUnderWater is a coarse estimate: in water with a depth factor of at least 0.5.
// It is not a geometric submersion test.
func (f *SelfContainedSurface) IsUnderWater() bool {
	return f.inWater && f.depthFactor >= UnderWaterDepthFactor
}

// IsFloating is the complement of IsUnderWater while in water
func (f *SelfContainedSurface) IsFloating() bool {
	return f.inWater && f.depthFactor < UnderWaterDepthFactor
}
