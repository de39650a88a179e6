package scene

import (
	"math"

	"github.com/akmonengine/buoyancy/water"
	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
)

// Tide slowly lifts and lowers a whole volume, the surface stays flat
type Tide struct {
	// Amplitude of the sine term in meters
	Amplitude float64 `yaml:"amplitude"`
	// Period of the sine term in seconds, no sine when zero
	Period float64 `yaml:"period"`
	// Noise is the amplitude of the perlin term in meters
	Noise float64 `yaml:"noise"`
	Seed  int64   `yaml:"seed"`
}

// TideDriver moves a volume around its rest position every step
type TideDriver struct {
	Tide   Tide
	volume *water.Volume
	rest   mgl64.Vec3
	noise  *perlin.Perlin
}

func NewTideDriver(volume *water.Volume, tide Tide) *TideDriver {
	return &TideDriver{
		Tide:   tide,
		volume: volume,
		rest:   volume.Body.Transform.Position,
		noise:  perlin.NewPerlin(2, 2, 3, tide.Seed),
	}
}

// Offset is the vertical displacement of the volume at time t
func (d *TideDriver) Offset(t float64) float64 {
	var offset float64
	if d.Tide.Period > 0 {
		offset += d.Tide.Amplitude * math.Sin(2*math.Pi*t/d.Tide.Period)
	}
	if d.Tide.Noise != 0 {
		scale := d.Tide.Period
		if scale <= 0 {
			scale = 1
		}
		offset += d.Tide.Noise * d.noise.Noise1D(t/scale)
	}

	return offset
}

// Drive places the volume where the tide is at the end of the coming step
func (d *TideDriver) Drive(time, dt float64) {
	d.volume.MoveTo(d.rest.Add(mgl64.Vec3{0, d.Offset(time + dt), 0}))
}
