package water

import (
	"math"
	"testing"

	"github.com/akmonengine/buoyancy/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewPool_SurfaceFromBounds(t *testing.T) {
	pool := NewPool("pool", mgl64.Vec2{4, -3}, 1.5, mgl64.Vec3{5, 2, 5})

	if got := pool.SurfaceHeight(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("SurfaceHeight() = %v, want 1.5", got)
	}
	if pool.Body.Name != "pool" {
		t.Errorf("Name = %q", pool.Body.Name)
	}
	if !pool.Body.IsTrigger || pool.Body.Category != actor.CategoryWater {
		t.Error("pool body should be a water trigger")
	}

	bounds := pool.Bounds()
	if bounds.Min.X() != -1 || bounds.Max.Z() != 2 || bounds.Min.Y() != -2.5 {
		t.Errorf("Bounds() = {%v %v}", bounds.Min, bounds.Max)
	}
}

func TestSurfaceHeight_Manual(t *testing.T) {
	pool := NewPool("pool", mgl64.Vec2{}, 0, mgl64.Vec3{5, 2, 5})
	pool.SetManualHeight(-0.75)

	if got := pool.SurfaceHeight(); got != -0.75 {
		t.Errorf("SurfaceHeight() = %v, want -0.75", got)
	}

	// moving the body does not affect a pinned surface
	pool.MoveTo(mgl64.Vec3{0, 10, 0})
	if got := pool.SurfaceHeight(); got != -0.75 {
		t.Errorf("SurfaceHeight() after move = %v, want -0.75", got)
	}

	pool.ClearManualHeight()
	if got := pool.SurfaceHeight(); got != 12 {
		t.Errorf("SurfaceHeight() after unpin = %v, want 12", got)
	}
}

func TestSurfaceHeight_RecomputedEveryQuery(t *testing.T) {
	pool := NewPool("pool", mgl64.Vec2{}, 0, mgl64.Vec3{5, 1, 5})

	heights := []float64{0.5, -1, 3}
	for _, h := range heights {
		pool.MoveTo(mgl64.Vec3{0, h - 1, 0})
		if got := pool.SurfaceHeight(); math.Abs(got-h) > 1e-12 {
			t.Errorf("SurfaceHeight() = %v, want %v", got, h)
		}
		if pool.SurfaceY != pool.SurfaceHeight() {
			t.Error("SurfaceY should cache the last queried height")
		}
	}
}

func TestSurfaceHeight_Resized(t *testing.T) {
	box := &actor.Box{HalfExtents: mgl64.Vec3{5, 1, 5}}
	pool := NewVolume("pool", actor.NewTransform(), box)

	box.HalfExtents = mgl64.Vec3{5, 3, 5}
	box.ComputeAABB(pool.Body.Transform)

	if got := pool.SurfaceHeight(); got != 3 {
		t.Errorf("SurfaceHeight() = %v, want 3", got)
	}
}

func TestNewSea(t *testing.T) {
	sea := NewSea("sea", 2, 30)

	if got := sea.SurfaceHeight(); got != 2 {
		t.Errorf("SurfaceHeight() = %v, want 2", got)
	}
	if !sea.Bounds().ContainsXZ(mgl64.Vec3{1e6, 0, -1e6}) {
		t.Error("sea should cover any horizontal position")
	}
	if got := sea.Bounds().Min.Y(); got != -28 {
		t.Errorf("sea floor = %v, want -28", got)
	}
}

func TestRegistry(t *testing.T) {
	registry := Registry{}
	pool := NewPool("pool", mgl64.Vec2{}, 0, mgl64.Vec3{1, 1, 1})
	other := actor.NewTrigger(actor.NewTransform(), &actor.Sphere{Radius: 1}, actor.CategoryWater)

	registry.Add(pool)

	var lookup Lookup = registry
	if lookup.VolumeOf(pool.Body) != pool {
		t.Error("VolumeOf should resolve a registered body")
	}
	if lookup.VolumeOf(other) != nil {
		t.Error("VolumeOf should return nil for a body without a volume")
	}

	registry.Remove(pool.Body)
	if lookup.VolumeOf(pool.Body) != nil {
		t.Error("VolumeOf should return nil after Remove")
	}
}
