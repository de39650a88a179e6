// Package telemetry streams world snapshots to websocket clients.
package telemetry

import (
	"github.com/akmonengine/buoyancy"
)

// Snapshot is the state of a world after a step, encoded as JSON
type Snapshot struct {
	Step    int           `json:"step"`
	Time    float64       `json:"time"`
	Bodies  []BodyState   `json:"bodies"`
	Volumes []VolumeState `json:"volumes"`
}

type BodyState struct {
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Position   [3]float64 `json:"position"`
	Velocity   [3]float64 `json:"velocity"`
	Sleeping   bool       `json:"sleeping"`
	InWater    bool       `json:"in_water"`
	UnderWater bool       `json:"under_water"`
	Floating   bool       `json:"floating"`
	Force      float64    `json:"force"`
}

type VolumeState struct {
	Name    string     `json:"name"`
	Surface float64    `json:"surface"`
	Min     [3]float64 `json:"min"`
	Max     [3]float64 `json:"max"`
}

// Capture copies the floaters and volumes of world, it must run on the stepping goroutine
func Capture(world *buoyancy.World) Snapshot {
	snapshot := Snapshot{
		Step:    world.StepCount,
		Time:    world.Time,
		Bodies:  make([]BodyState, 0, len(world.Floaters())),
		Volumes: make([]VolumeState, 0),
	}

	for _, f := range world.Floaters() {
		body := f.Body()
		snapshot.Bodies = append(snapshot.Bodies, BodyState{
			Name:       body.Name,
			Kind:       string(f.Kind()),
			Position:   body.Transform.Position,
			Velocity:   body.Velocity,
			Sleeping:   body.IsSleeping,
			InWater:    f.InWater(),
			UnderWater: f.IsUnderWater(),
			Floating:   f.IsFloating(),
			Force:      f.LastForce(),
		})
	}

	for _, v := range world.Volumes() {
		bounds := v.Bounds()
		snapshot.Volumes = append(snapshot.Volumes, VolumeState{
			Name:    v.Body.Name,
			Surface: v.SurfaceHeight(),
			Min:     bounds.Min,
			Max:     bounds.Max,
		})
	}

	return snapshot
}
