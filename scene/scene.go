// Package scene loads buoyancy scenes from YAML files and builds worlds out of them.
//
// A scene lists water volumes (pools and seas, optionally driven by a tide)
// and floating bodies with their buoyancy strategy:
//
//	world:
//	  gravity: [0, -9.81, 0]
//	  substeps: 4
//	volumes:
//	  - name: pool
//	    shape: box
//	    center: [0, 0]
//	    surface: 0
//	    half_extents: [5, 2, 5]
//	floaters:
//	  - name: crate
//	    variant: collaborating-surface
//	    shape: box
//	    position: [0, 1, 0]
//	    half_extents: [0.5, 0.5, 0.5]
//	    mass: 1
package scene

import (
	"os"
	"strings"

	"github.com/akmonengine/buoyancy/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ShapeBox    = "box"
	ShapeSphere = "sphere"
	ShapeSea    = "sea"
)

var (
	ErrUnknownShape    = errors.New("scene: unknown shape")
	ErrUnknownVariant  = errors.New("scene: unknown floater variant")
	ErrUnknownCategory = errors.New("scene: unknown category")
	ErrInvalidVector   = errors.New("scene: invalid vector")
	ErrInvalidValue    = errors.New("scene: invalid value")
)

type Scene struct {
	World    WorldConfig     `yaml:"world"`
	Volumes  []VolumeConfig  `yaml:"volumes"`
	Floaters []FloaterConfig `yaml:"floaters"`
}

type WorldConfig struct {
	Gravity  Vec3       `yaml:"gravity"`
	Substeps int        `yaml:"substeps"`
	Workers  int        `yaml:"workers"`
	Grid     GridConfig `yaml:"grid"`
}

type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
	Cells    int     `yaml:"cells"`
}

// VolumeConfig describes a water volume. A box is placed by the XZ center
// of its top face and its surface height, a sea only needs surface and depth.
type VolumeConfig struct {
	Name        string  `yaml:"name"`
	Shape       string  `yaml:"shape"`
	Center      Vec2    `yaml:"center"`
	Surface     float64 `yaml:"surface"`
	HalfExtents Vec3    `yaml:"half_extents"`
	Depth       float64 `yaml:"depth"`
	// ManualHeight pins the reported surface height when set
	ManualHeight *float64 `yaml:"manual_height"`
	Category     string   `yaml:"category"`
	Tide         *Tide    `yaml:"tide"`
}

// FloaterConfig describes a dynamic body and its buoyancy strategy.
// Unset buoyancy fields keep the floater defaults.
type FloaterConfig struct {
	Name        string  `yaml:"name"`
	Variant     string  `yaml:"variant"`
	Shape       string  `yaml:"shape"`
	Position    Vec3    `yaml:"position"`
	Velocity    Vec3    `yaml:"velocity"`
	HalfExtents Vec3    `yaml:"half_extents"`
	Radius      float64 `yaml:"radius"`
	Mass        float64 `yaml:"mass"`
	Density     float64 `yaml:"density"`
	Damping     float64 `yaml:"damping"`
	Category    string  `yaml:"category"`

	BuoyantForce  *float64 `yaml:"buoyant_force"`
	DepthPower    *float64 `yaml:"depth_power"`
	OffsetY       *float64 `yaml:"offset_y"`
	WaterCategory string   `yaml:"water_category"`
}

// Default returns an empty scene with earth gravity
func Default() *Scene {
	return &Scene{
		World: DefaultWorld(),
	}
}

func DefaultWorld() WorldConfig {
	return WorldConfig{
		Gravity:  Vec3{0, -9.81, 0},
		Substeps: 4,
		Workers:  1,
		Grid:     GridConfig{CellSize: 2.0, Cells: 1024},
	}
}

// Load reads and parses a scene file
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "scene: read file")
	}

	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: %s", path)
	}

	return s, nil
}

// Parse decodes a YAML scene over the defaults
func Parse(data []byte) (*Scene, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "scene: decode")
	}

	return s, nil
}

// Vec3 decodes from a sequence of exactly three numbers
type Vec3 [3]float64

func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	return decodeFloats(node, v[:])
}

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// Vec2 decodes from a sequence of exactly two numbers
type Vec2 [2]float64

func (v *Vec2) UnmarshalYAML(node *yaml.Node) error {
	return decodeFloats(node, v[:])
}

func (v Vec2) Vec() mgl64.Vec2 {
	return mgl64.Vec2(v)
}

func decodeFloats(node *yaml.Node, out []float64) error {
	var values []float64
	if err := node.Decode(&values); err != nil {
		return errors.Wrapf(ErrInvalidVector, "line %d: %v", node.Line, err)
	}
	if len(values) != len(out) {
		return errors.Wrapf(ErrInvalidVector, "line %d: expected %d numbers, got %d", node.Line, len(out), len(values))
	}
	copy(out, values)

	return nil
}

// parseCategory accepts one name or several joined with "|", empty gives fallback
func parseCategory(value string, fallback actor.Category) (actor.Category, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}

	var category actor.Category
	for _, name := range strings.Split(value, "|") {
		c, ok := actor.ParseCategory(name)
		if !ok {
			return actor.CategoryNone, errors.Wrapf(ErrUnknownCategory, "%q", name)
		}
		category |= c
	}

	return category, nil
}
