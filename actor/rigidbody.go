package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces and gravity
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., water volumes, walls)
	BodyTypeStatic
)

type Material struct {
	Density       float64
	mass          float64
	LinearDamping float64 // 0.0 - 1.0, typical: 0.01
}

func (material Material) GetMass() float64 {
	return material.mass
}

// SetMass overrides the mass computed from the shape and density
// Non-positive values are ignored.
func (material *Material) SetMass(mass float64) {
	if mass > 0 {
		material.mass = mass
	}
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Name string

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)

	accumulatedForce mgl64.Vec3

	IsSleeping bool
	SleepTimer float64

	// IsTrigger bodies only report overlaps, they never take part in contact response
	IsTrigger bool
	Category  Category

	// Physical properties
	Material Material
	BodyType BodyType // Dynamic or Static

	// Collision shape
	Shape ShapeInterface // The collision shape
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation.Len() == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Category:          CategoryDefault,
		Velocity:          mgl64.Vec3{0, 0, 0},
	}

	if bodyType == BodyTypeStatic {
		// Static bodies have infinite mass
		rb.Material = Material{
			Density: 0,
			mass:    math.Inf(1),
		}
	} else {
		// Dynamic bodies compute mass from shape and density
		rb.Material = Material{
			Density: density,
			mass:    shape.ComputeMass(density),
		}
	}

	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// NewTrigger creates a static, overlap-only body of the given category
func NewTrigger(transform Transform, shape ShapeInterface, category Category) *RigidBody {
	rb := NewRigidBody(transform, shape, BodyTypeStatic, 0)
	rb.IsTrigger = true
	rb.Category = category

	return rb
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.accumulatedForce.Len() == 0 {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// Integrate advances the body by dt with semi-implicit Euler.
// Accumulated forces are kept, the world clears them once per step.
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform = rb.Transform

	acceleration := gravity
	if mass := rb.Material.GetMass(); mass > 0 && !math.IsInf(mass, 1) {
		acceleration = acceleration.Add(rb.accumulatedForce.Mul(1.0 / mass))
	}
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))

	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	rb.Shape.ComputeAABB(rb.Transform)
}

// SetPosition teleports the body and refreshes its AABB. Works on static bodies too.
func (rb *RigidBody) SetPosition(position mgl64.Vec3) {
	rb.PreviousTransform = rb.Transform
	rb.Transform.Position = position
	rb.Shape.ComputeAABB(rb.Transform)
	if rb.BodyType != BodyTypeStatic {
		rb.Awake()
	}
}

// AddForce in N, applied over the next step
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.Awake()

		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AccumulatedForce returns the force pending for the next step
func (rb *RigidBody) AccumulatedForce() mgl64.Vec3 {
	return rb.accumulatedForce
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
}
