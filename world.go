// Package buoyancy is a small step-driven physics world where rigid bodies
// float in water volumes.
//
// Bodies are integrated with gravity and accumulated forces, trigger
// overlaps are found with a hashed spatial grid and diffed once per step
// into enter, stay and exit events. Floaters registered with AddFloater
// receive those events, then Settle, and push their body up for the next
// step.
package buoyancy

import (
	"github.com/akmonengine/buoyancy/actor"
	"github.com/akmonengine/buoyancy/floater"
	"github.com/akmonengine/buoyancy/water"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	DEFAULT_WORKERS   = 1
	DEFAULT_SUBSTEPS  = 4
	DEFAULT_CELL_SIZE = 2.0
	DEFAULT_NUM_CELLS = 1024

	SLEEP_TIME_THRESHOLD     = 0.1
	SLEEP_VELOCITY_THRESHOLD = 0.05
)

// Driver moves things before each step, e.g. a tide lifting a water volume
type Driver interface {
	Drive(time, dt float64)
}

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity     mgl64.Vec3
	Substeps    int
	SpatialGrid *SpatialGrid
	Workers     int

	Events  Events
	Logger  *zap.Logger
	Drivers []Driver

	// Time elapsed in simulated seconds, and number of steps done
	Time      float64
	StepCount int

	volumes  water.Registry
	floaters []floater.Floater
	byBody   map[*actor.RigidBody]floater.Floater
	ready    bool
}

// NewWorld creates a world with the default grid, one worker and a no-op logger
func NewWorld(gravity mgl64.Vec3, substeps int) *World {
	w := &World{
		Gravity:  gravity,
		Substeps: substeps,
	}
	w.init()

	return w
}

// init fills the zero fields, so a World literal is usable as well
func (w *World) init() {
	if w.ready {
		return
	}
	w.ready = true

	if w.Substeps <= 0 {
		w.Substeps = DEFAULT_SUBSTEPS
	}
	if w.SpatialGrid == nil {
		w.SpatialGrid = NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_NUM_CELLS)
	}
	if w.Logger == nil {
		w.Logger = zap.NewNop()
	}
	if w.Events.listeners == nil {
		w.Events = NewEvents()
	}
	w.volumes = make(water.Registry)
	w.byBody = make(map[*actor.RigidBody]floater.Floater)

	w.Events.Subscribe(TRIGGER_ENTER, w.dispatch)
	w.Events.Subscribe(TRIGGER_STAY, w.dispatch)
	w.Events.Subscribe(TRIGGER_EXIT, w.dispatch)
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) {
	w.init()
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world, with its volume or floater
func (w *World) RemoveBody(body *actor.RigidBody) {
	w.init()

	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	w.volumes.Remove(body)
	if f, ok := w.byBody[body]; ok {
		delete(w.byBody, body)
		w.floaters = removeFloater(w.floaters, f)
	}
	w.Events.forget(body)
}

func removeFloater(floaters []floater.Floater, f floater.Floater) []floater.Floater {
	for i, other := range floaters {
		if other == f {
			return append(floaters[:i], floaters[i+1:]...)
		}
	}
	return floaters
}

// AddVolume registers a water volume and adds its trigger body
func (w *World) AddVolume(volume *water.Volume) {
	w.init()
	w.volumes.Add(volume)
	w.AddBody(volume.Body)

	w.Logger.Debug("water volume added",
		zap.String("name", volume.Body.Name),
		zap.Float64("surface", volume.SurfaceHeight()),
		zap.Bool("manual", volume.ManualHeight),
	)
}

// VolumeOf returns the water volume owning the trigger body, nil if none
func (w *World) VolumeOf(body *actor.RigidBody) *water.Volume {
	w.init()
	return w.volumes.VolumeOf(body)
}

// Volumes returns the registered water volumes in body order
func (w *World) Volumes() []*water.Volume {
	w.init()
	volumes := make([]*water.Volume, 0, len(w.volumes))
	for _, body := range w.Bodies {
		if v := w.volumes.VolumeOf(body); v != nil {
			volumes = append(volumes, v)
		}
	}
	return volumes
}

// AddFloater registers a floater and adds its body if not present yet.
// A body holds one floater at most, a second one replaces the first.
func (w *World) AddFloater(f floater.Floater) {
	w.init()
	body := f.Body()

	if previous, ok := w.byBody[body]; ok {
		w.floaters = removeFloater(w.floaters, previous)
	} else if !w.hasBody(body) {
		w.AddBody(body)
	}
	w.byBody[body] = f
	w.floaters = append(w.floaters, f)

	f.SetLogger(w.Logger.With(zap.String("body", body.Name), zap.String("kind", string(f.Kind()))))
	w.Logger.Debug("floater added",
		zap.String("body", body.Name),
		zap.String("kind", string(f.Kind())),
		zap.Float64("mass", body.Material.GetMass()),
	)
}

// FloaterOf returns the floater bound to body, nil if none
func (w *World) FloaterOf(body *actor.RigidBody) floater.Floater {
	w.init()
	return w.byBody[body]
}

// Floaters returns the floaters in registration order
func (w *World) Floaters() []floater.Floater {
	return w.floaters
}

func (w *World) hasBody(body *actor.RigidBody) bool {
	for _, b := range w.Bodies {
		if b == body {
			return true
		}
	}
	return false
}

func (w *World) Step(dt float64) {
	w.init()
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	h := dt / float64(w.Substeps)

	for _, driver := range w.Drivers {
		driver.Drive(w.Time, dt)
	}

	for range w.Substeps {
		w.integrate(h)

		// Trigger pairs only, there is no contact response between solids
		pairs := BroadPhase(w.SpatialGrid, w.Bodies, w.Workers)
		w.Events.recordOverlaps(pairs)

		w.trySleep(h)
	}

	// Forces of the previous step are consumed, floaters push again during flush
	w.clearForces()

	w.Events.processSleepEvents(w.Bodies)
	w.Events.flush()
	w.settle()

	w.Time += dt
	w.StepCount++
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		body.TrySleep(h, SLEEP_TIME_THRESHOLD, SLEEP_VELOCITY_THRESHOLD)
	}
}

func (w *World) clearForces() {
	for _, body := range w.Bodies {
		body.ClearForces()
	}
}

// dispatch forwards trigger events to the floaters of both bodies
func (w *World) dispatch(event Event) {
	switch e := event.(type) {
	case TriggerEnterEvent:
		w.notify(e.BodyA, e.BodyB, floater.Floater.OnTriggerEnter)
	case TriggerStayEvent:
		w.notify(e.BodyA, e.BodyB, floater.Floater.OnTriggerStay)
	case TriggerExitEvent:
		w.notify(e.BodyA, e.BodyB, floater.Floater.OnTriggerExit)
	}
}

func (w *World) notify(bodyA, bodyB *actor.RigidBody, callback func(floater.Floater, *actor.RigidBody)) {
	if f, ok := w.byBody[bodyA]; ok {
		callback(f, bodyB)
	}
	if f, ok := w.byBody[bodyB]; ok {
		callback(f, bodyA)
	}
}

func (w *World) settle() {
	for _, f := range w.floaters {
		f.Settle()
	}
}
