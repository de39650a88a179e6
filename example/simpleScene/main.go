package main

import (
	"fmt"

	"github.com/akmonengine/buoyancy"
	"github.com/akmonengine/buoyancy/actor"
	"github.com/akmonengine/buoyancy/floater"
	"github.com/akmonengine/buoyancy/water"
	"github.com/go-gl/mathgl/mgl64"
)

// StepDebugger is notified around each world step
type StepDebugger interface {
	DebugFloater(step int, f floater.Floater)
	DebugEvent(event buoyancy.Event)
}

// SimpleDebugger prints everything to stdout
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugFloater(step int, f floater.Floater) {
	body := f.Body()
	fmt.Printf("  %-7s y=%7.3f vy=%7.3f force=%6.2f in_water=%-5v under=%-5v floating=%v\n",
		body.Name,
		body.Transform.Position.Y(),
		body.Velocity.Y(),
		f.LastForce(),
		f.InWater(),
		f.IsUnderWater(),
		f.IsFloating(),
	)

	if c, ok := f.(*floater.CollaboratingSurface); ok && step%30 == 0 {
		fmt.Printf("          state=%s overlaps=%d\n", c.State(), c.OverlapCount())
	}
}

func (d *SimpleDebugger) DebugEvent(event buoyancy.Event) {
	switch e := event.(type) {
	case buoyancy.TriggerEnterEvent:
		fmt.Printf("  > %s enters %s\n", e.BodyB.Name, e.BodyA.Name)
	case buoyancy.TriggerExitEvent:
		fmt.Printf("  < %s leaves %s\n", e.BodyB.Name, e.BodyA.Name)
	}
}

func createCrate(position mgl64.Vec3) *actor.RigidBody {
	crate := actor.NewRigidBody(
		actor.NewTransformAt(position),
		&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		actor.BodyTypeDynamic,
		0.6,
	)
	crate.Name = "crate"
	crate.Material.LinearDamping = 1.0
	return crate
}

func createBarrel(position mgl64.Vec3) *actor.RigidBody {
	barrel := actor.NewRigidBody(
		actor.NewTransformAt(position),
		&actor.Sphere{Radius: 0.4},
		actor.BodyTypeDynamic,
		1.0,
	)
	barrel.Name = "barrel"
	barrel.Material.SetMass(2.0)
	barrel.Material.LinearDamping = 1.0
	return barrel
}

// SetupScene creates a pool with a crate dropped in it and a barrel floating next to it
func SetupScene(debugger StepDebugger) (*buoyancy.World, error) {
	world := buoyancy.NewWorld(mgl64.Vec3{0, -9.81, 0}, 4)
	world.Events.Subscribe(buoyancy.TRIGGER_ENTER, debugger.DebugEvent)
	world.Events.Subscribe(buoyancy.TRIGGER_EXIT, debugger.DebugEvent)

	// surface at y=0, 4 meters deep
	pool := water.NewPool("pool", mgl64.Vec2{0, 0}, 0, mgl64.Vec3{5, 2, 5})
	world.AddVolume(pool)

	crate, err := floater.NewCollaboratingSurface(createCrate(mgl64.Vec3{-1, 3, 0}), world, floater.DefaultConfig())
	if err != nil {
		return nil, err
	}
	world.AddFloater(crate)

	barrel, err := floater.NewSelfContainedSurface(createBarrel(mgl64.Vec3{1.5, 0, 0}), floater.DefaultConfig())
	if err != nil {
		return nil, err
	}
	world.AddFloater(barrel)

	return world, nil
}

func main() {
	debugger := &SimpleDebugger{}
	world, err := SetupScene(debugger)
	if err != nil {
		fmt.Println("setup failed:", err)
		return
	}

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 300

	for step := 0; step < maxSteps; step++ {
		world.Step(dt)

		if step%30 == 0 {
			fmt.Printf("--- step %d, t=%.2fs ---\n", world.StepCount, world.Time)
			for _, f := range world.Floaters() {
				debugger.DebugFloater(step, f)
			}
		}
	}
}
