// Package floater makes rigid bodies float in water volumes.
//
// Two strategies are provided, with different force formulas:
//
//   - CollaboratingSurface asks a water.Volume for its surface height and
//     pushes with mass * force * (1 + depth).
//   - SelfContainedSurface reads the overlapping trigger bounds directly and
//     pushes with force + force * mass * depth.
//
// Both are driven by the world trigger events: OnTriggerEnter,
// OnTriggerStay and OnTriggerExit for every overlapping pair, then Settle
// once per step after all events of the step are delivered.
package floater

import (
	"github.com/akmonengine/buoyancy/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBuoyantForce = 8.0
	DefaultDepthPower   = 1.0
	DefaultOffsetY      = 0.0
)

var (
	ErrNilBody   = errors.New("floater: nil rigid body")
	ErrNoShape   = errors.New("floater: rigid body has no collision shape")
	ErrNilLookup = errors.New("floater: nil water volume lookup")
)

// Kind names a buoyancy strategy
type Kind string

const (
	KindCollaboratingSurface Kind = "collaborating-surface"
	KindSelfContainedSurface Kind = "self-contained-surface"
)

// Config holds the tunables shared by both strategies
type Config struct {
	// BuoyantForce is the base upward push, default 8
	BuoyantForce float64
	// DepthPower scales how fast depth amplifies the push, in [0,1]
	DepthPower float64
	// OffsetY shifts the reference point used to compare against the surface
	OffsetY float64
	// WaterCategory selects which triggers count as water
	WaterCategory actor.Category
}

func DefaultConfig() Config {
	return Config{
		BuoyantForce:  DefaultBuoyantForce,
		DepthPower:    DefaultDepthPower,
		OffsetY:       DefaultOffsetY,
		WaterCategory: actor.CategoryWater,
	}
}

// ValidDepthPower reports whether v is accepted by SetDepthPower
func ValidDepthPower(v float64) bool {
	return v >= 0 && v <= 1
}

// Floater is a buoyancy strategy bound to one rigid body
type Floater interface {
	Kind() Kind
	Body() *actor.RigidBody

	OnTriggerEnter(other *actor.RigidBody)
	OnTriggerStay(other *actor.RigidBody)
	OnTriggerExit(other *actor.RigidBody)
	// Settle runs once per step after every trigger event of the step
	Settle()

	InWater() bool
	IsUnderWater() bool
	IsFloating() bool
	// LastForce is the upward force applied during the last step, 0 if none
	LastForce() float64

	SetDepthPower(v float64)
	DepthPower() float64
	SetLogger(logger *zap.Logger)
}

// Clamp01 clamps x to [0,1]
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// CollaboratingSurfaceForce computes the upward force of the collaborating strategy.
// ok is false when the reference point is at or above the surface.
func CollaboratingSurfaceForce(buoyantForce, depthPower, mass, referenceY, surfaceY float64) (force float64, ok bool) {
	if referenceY >= surfaceY {
		return 0, false
	}

	base := buoyantForce * mass
	depth := Clamp01((surfaceY - referenceY) * depthPower)

	return base + base*depth, true
}

// SelfContainedSurfaceForce computes the upward force of the self-contained strategy.
// Mass only scales the depth term. ok is false when the reference point is at or above maxY.
func SelfContainedSurfaceForce(buoyantForce, depthPower, mass, referenceY, maxY float64) (force, depthFactor float64, ok bool) {
	if referenceY >= maxY {
		return 0, 0, false
	}

	depthFactor = Clamp01((maxY - referenceY) * depthPower)

	return buoyantForce + buoyantForce*mass*depthFactor, depthFactor, true
}

func validateBody(body *actor.RigidBody) error {
	if body == nil {
		return ErrNilBody
	}
	if body.Shape == nil {
		return errors.Wrapf(ErrNoShape, "body %q", body.Name)
	}

	return nil
}

// base carries the configuration handling common to both strategies
type base struct {
	body         *actor.RigidBody
	config       Config
	pendingForce float64
	lastForce    float64
	logger       *zap.Logger
}

// newBase copies config, an out of range DepthPower or an empty category keeps the default
func newBase(body *actor.RigidBody, config Config) base {
	b := base{
		body:   body,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	b.config.BuoyantForce = config.BuoyantForce
	b.config.OffsetY = config.OffsetY
	if config.WaterCategory != actor.CategoryNone {
		b.config.WaterCategory = config.WaterCategory
	}
	b.SetDepthPower(config.DepthPower)

	return b
}

func (b *base) Body() *actor.RigidBody {
	return b.body
}

// Config returns a copy of the current configuration
func (b *base) Config() Config {
	return b.config
}

// SetDepthPower ignores values outside [0,1] and keeps the previous one
func (b *base) SetDepthPower(v float64) {
	if ValidDepthPower(v) {
		b.config.DepthPower = v
	}
}

func (b *base) DepthPower() float64 {
	return b.config.DepthPower
}

func (b *base) LastForce() float64 {
	return b.lastForce
}

func (b *base) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.logger = logger
}

func (b *base) isWater(other *actor.RigidBody) bool {
	return other != nil && other != b.body && other.Category.Matches(b.config.WaterCategory)
}

func (b *base) push(force float64) {
	b.body.AddForce(mgl64.Vec3{0, force, 0})
	b.pendingForce += force
}

func (b *base) settleForce() {
	b.lastForce = b.pendingForce
	b.pendingForce = 0
}
