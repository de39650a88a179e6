package floater

import (
	"math/rand"
	"testing"

	"github.com/akmonengine/buoyancy/actor"
	"github.com/akmonengine/buoyancy/water"
	"github.com/go-gl/mathgl/mgl64"
)

func createCollaborating(t *testing.T, body *actor.RigidBody, volumes ...*water.Volume) *CollaboratingSurface {
	t.Helper()

	registry := water.Registry{}
	for _, v := range volumes {
		registry.Add(v)
	}

	f, err := NewCollaboratingSurface(body, registry, DefaultConfig())
	if err != nil {
		t.Fatalf("NewCollaboratingSurface() error = %v", err)
	}
	return f
}

// step delivers one stay event and settles, returning the force pushed during the step
func step(f Floater, others ...*actor.RigidBody) float64 {
	before := f.Body().AccumulatedForce().Y()
	for _, other := range others {
		f.OnTriggerStay(other)
	}
	f.Settle()
	return f.Body().AccumulatedForce().Y() - before
}

// =============================================================================
// State machine
// =============================================================================

func TestCollaborating_Lifecycle(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	crate := createCrate(mgl64.Vec3{0, -2, 0}, 2)
	f := createCollaborating(t, crate, pool)

	if f.State() != NoWater {
		t.Fatalf("initial State() = %v, want no-water", f.State())
	}

	f.OnTriggerEnter(pool.Body)
	if f.State() != WaterEnteredUnresolved || f.OverlapCount() != 1 {
		t.Fatalf("after enter State() = %v count = %d", f.State(), f.OverlapCount())
	}

	// first stay only binds, no force yet
	if force := step(f, pool.Body); force != 0 {
		t.Errorf("binding step pushed %v, want 0", force)
	}
	if f.State() != WaterResolved || f.ActiveVolume() != pool {
		t.Fatalf("after first stay State() = %v", f.State())
	}

	// second stay applies 8 * 2 * (1 + clamp01(2)) = 32
	if force := step(f, pool.Body); !almostEqual(force, 32) {
		t.Errorf("force = %v, want 32", force)
	}
	if !almostEqual(f.LastForce(), 32) {
		t.Errorf("LastForce() = %v, want 32", f.LastForce())
	}

	f.OnTriggerExit(pool.Body)
	if f.ActiveVolume() == nil {
		t.Error("the volume must stay bound until Settle")
	}
	f.Settle()
	if f.State() != NoWater || f.ActiveVolume() != nil {
		t.Errorf("after exit and settle State() = %v active = %v", f.State(), f.ActiveVolume())
	}
	if f.LastForce() != 0 {
		t.Errorf("LastForce() = %v after a step without force", f.LastForce())
	}
}

func TestCollaborating_AboveSurfaceNoForce(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	crate := createCrate(mgl64.Vec3{0, 5, 0}, 2)
	f := createCollaborating(t, crate, pool)

	f.OnTriggerEnter(pool.Body)
	step(f, pool.Body)
	if force := step(f, pool.Body); force != 0 {
		t.Errorf("force above the surface = %v, want 0", force)
	}
	if f.State() != WaterResolved {
		t.Errorf("State() = %v, the volume stays bound above the surface", f.State())
	}
}

func TestCollaborating_OffsetY(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	crate := createCrate(mgl64.Vec3{0, 0.2, 0}, 1)
	registry := water.Registry{}
	registry.Add(pool)

	config := DefaultConfig()
	config.OffsetY = -0.7
	f, err := NewCollaboratingSurface(crate, registry, config)
	if err != nil {
		t.Fatal(err)
	}

	f.OnTriggerEnter(pool.Body)
	step(f, pool.Body)
	// reference = 0.2 - 0.7 = -0.5, force = 8 * 1 * 1.5
	if force := step(f, pool.Body); !almostEqual(force, 12) {
		t.Errorf("force = %v, want 12", force)
	}
}

func TestCollaborating_OutsideFootprint(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	tests := []struct {
		name     string
		position mgl64.Vec3
	}{
		{"beyond max X", mgl64.Vec3{6, -1, 0}},
		{"on the min Z edge", mgl64.Vec3{0, -1, -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createCollaborating(t, createCrate(tt.position, 1), pool)
			f.OnTriggerEnter(pool.Body)
			step(f, pool.Body)
			step(f, pool.Body)

			if f.State() != WaterEnteredUnresolved {
				t.Errorf("State() = %v, want water-entered", f.State())
			}
			if f.Body().AccumulatedForce() != (mgl64.Vec3{}) {
				t.Errorf("force applied outside the footprint: %v", f.Body().AccumulatedForce())
			}
		})
	}
}

func TestCollaborating_IgnoresOtherCategories(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	lava := actor.NewTrigger(actor.NewTransform(), &actor.Box{HalfExtents: mgl64.Vec3{5, 5, 5}}, actor.CategoryDebris)
	f := createCollaborating(t, createCrate(mgl64.Vec3{0, -1, 0}, 1), pool)

	f.OnTriggerEnter(lava)
	step(f, lava)
	if f.OverlapCount() != 0 || f.State() != NoWater {
		t.Errorf("non water trigger changed the state: count = %d state = %v", f.OverlapCount(), f.State())
	}

	f.OnTriggerExit(lava)
	if f.OverlapCount() != 0 {
		t.Errorf("OverlapCount() = %d", f.OverlapCount())
	}
}

func TestCollaborating_WaterWithoutVolume(t *testing.T) {
	bare := actor.NewTrigger(actor.NewTransformAt(mgl64.Vec3{0, -2, 0}), &actor.Box{HalfExtents: mgl64.Vec3{5, 2, 5}}, actor.CategoryWater)
	f := createCollaborating(t, createCrate(mgl64.Vec3{0, -1, 0}, 1))

	f.OnTriggerEnter(bare)
	step(f, bare)
	step(f, bare)

	if f.State() != WaterEnteredUnresolved {
		t.Errorf("State() = %v, a trigger without a volume cannot be bound", f.State())
	}
	if f.Body().AccumulatedForce() != (mgl64.Vec3{}) {
		t.Errorf("force = %v, want none", f.Body().AccumulatedForce())
	}
}

// =============================================================================
// Volume switching
// =============================================================================

func TestCollaborating_SwitchVolumes(t *testing.T) {
	// two adjacent pools with different surfaces, crate crosses from A to B
	poolA := createPool("A", 0, 0, 0)
	poolB := createPool("B", 10, 0, 1)
	crate := createCrate(mgl64.Vec3{4, -0.5, 0}, 1)
	f := createCollaborating(t, crate, poolA, poolB)

	f.OnTriggerEnter(poolA.Body)
	step(f, poolA.Body)
	if force := step(f, poolA.Body); !almostEqual(force, 12) {
		t.Fatalf("force in A = %v, want 12", force)
	}

	// crate moves into B, still touching A's trigger but outside its footprint
	crate.SetPosition(mgl64.Vec3{6, -0.5, 0})
	f.OnTriggerEnter(poolB.Body)

	force := step(f, poolA.Body, poolB.Body)
	if force != 0 {
		t.Errorf("switching step pushed %v, stale volume A data must not be used", force)
	}
	if f.ActiveVolume() != poolB {
		t.Fatalf("ActiveVolume() = %v, want B", f.ActiveVolume())
	}

	// reference -0.5, surface 1: 8 * (1 + 1) = 16
	if force := step(f, poolA.Body, poolB.Body); !almostEqual(force, 16) {
		t.Errorf("force in B = %v, want 16", force)
	}

	f.OnTriggerExit(poolA.Body)
	step(f, poolB.Body)
	if f.ActiveVolume() != poolB || f.OverlapCount() != 1 {
		t.Errorf("leaving A must keep B bound, active = %v count = %d", f.ActiveVolume(), f.OverlapCount())
	}
}

func TestCollaborating_SwitchCountsOneRebind(t *testing.T) {
	poolA := createPool("A", 0, 0, 0)
	poolB := createPool("B", 0, 0, 0)
	f := createCollaborating(t, createCrate(mgl64.Vec3{0, -1, 0}, 1), poolA, poolB)

	f.OnTriggerEnter(poolA.Body)
	step(f, poolA.Body)

	rebinds := 0
	previous := f.ActiveVolume()
	f.OnTriggerEnter(poolB.Body)
	for range 3 {
		step(f, poolB.Body)
		if f.ActiveVolume() != previous {
			rebinds++
			previous = f.ActiveVolume()
		}
	}

	if rebinds != 1 {
		t.Errorf("rebinds = %d, want exactly 1", rebinds)
	}
}

// =============================================================================
// Invariants
// =============================================================================

func TestCollaborating_OverlapCountInvariant(t *testing.T) {
	pools := []*water.Volume{createPool("A", 0, 0, 0), createPool("B", 0, 0, 0), createPool("C", 0, 0, 0)}
	f := createCollaborating(t, createCrate(mgl64.Vec3{0, -1, 0}, 1), pools...)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		pool := pools[rng.Intn(len(pools))]
		switch rng.Intn(3) {
		case 0:
			f.OnTriggerEnter(pool.Body)
		case 1:
			f.OnTriggerExit(pool.Body)
		case 2:
			f.OnTriggerStay(pool.Body)
		}
		if f.OverlapCount() < 0 {
			t.Fatalf("OverlapCount() = %d at event %d", f.OverlapCount(), i)
		}

		if rng.Intn(4) == 0 {
			f.Settle()
			if f.OverlapCount() == 0 && f.ActiveVolume() != nil {
				t.Fatalf("volume bound with no overlap after Settle at event %d", i)
			}
		}
	}
}

func TestCollaborating_ExitWithoutEnter(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	f := createCollaborating(t, createCrate(mgl64.Vec3{}, 1), pool)

	f.OnTriggerExit(pool.Body)
	f.OnTriggerExit(pool.Body)
	if f.OverlapCount() != 0 {
		t.Errorf("OverlapCount() = %d, want 0", f.OverlapCount())
	}

	f.OnTriggerEnter(pool.Body)
	if f.OverlapCount() != 1 {
		t.Errorf("OverlapCount() = %d, want 1", f.OverlapCount())
	}
}

func TestCollaborating_UnderWaterAndFloatingExclusive(t *testing.T) {
	tests := []struct {
		name         string
		y            float64
		wantUnder    bool
		wantFloating bool
	}{
		{"fully submerged", -1, true, false},
		{"top exactly at the surface", -0.5, false, true},
		{"half submerged", 0, false, true},
		{"hovering above", 3, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := createPool("pool", 0, 0, 0)
			f := createCollaborating(t, createCrate(mgl64.Vec3{0, tt.y, 0}, 1), pool)

			if f.IsUnderWater() || f.IsFloating() {
				t.Fatal("both predicates must be false while unbound")
			}

			f.OnTriggerEnter(pool.Body)
			step(f, pool.Body)

			if f.IsUnderWater() != tt.wantUnder || f.IsFloating() != tt.wantFloating {
				t.Errorf("IsUnderWater() = %v IsFloating() = %v", f.IsUnderWater(), f.IsFloating())
			}
			if f.IsUnderWater() == f.IsFloating() {
				t.Error("predicates must be mutually exclusive while bound")
			}
		})
	}
}

func TestCollaborating_MovingSurface(t *testing.T) {
	pool := createPool("pool", 0, 0, 0)
	f := createCollaborating(t, createCrate(mgl64.Vec3{0, 0.5, 0}, 1), pool)

	f.OnTriggerEnter(pool.Body)
	step(f, pool.Body)
	if force := step(f, pool.Body); force != 0 {
		t.Fatalf("force = %v above the surface", force)
	}

	// tide raises the pool by one unit
	pool.MoveTo(pool.Body.Transform.Position.Add(mgl64.Vec3{0, 1, 0}))
	// reference 0.5, surface 1: 8 * 1.5
	if force := step(f, pool.Body); !almostEqual(force, 12) {
		t.Errorf("force = %v after the surface moved, want 12", force)
	}
}

func TestState_String(t *testing.T) {
	states := map[State]string{
		NoWater:                "no-water",
		WaterEnteredUnresolved: "water-entered",
		WaterResolved:          "water-resolved",
		State(9):               "unknown",
	}
	for state, want := range states {
		if state.String() != want {
			t.Errorf("String() = %q, want %q", state.String(), want)
		}
	}
}
