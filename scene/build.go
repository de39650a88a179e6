package scene

import (
	"strings"

	"github.com/akmonengine/buoyancy"
	"github.com/akmonengine/buoyancy/actor"
	"github.com/akmonengine/buoyancy/floater"
	"github.com/akmonengine/buoyancy/water"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Build assembles a world from a scene. Invalid buoyancy tunables fall back to
// their default with a warning, unknown names and bad shapes are errors.
func Build(s *Scene, logger *zap.Logger) (*buoyancy.World, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if s.World.Grid.CellSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "grid cell size %v", s.World.Grid.CellSize)
	}

	world := &buoyancy.World{
		Gravity:     s.World.Gravity.Vec(),
		Substeps:    s.World.Substeps,
		Workers:     s.World.Workers,
		SpatialGrid: buoyancy.NewSpatialGrid(s.World.Grid.CellSize, s.World.Grid.Cells),
		Logger:      logger,
	}

	for i, vc := range s.Volumes {
		volume, err := buildVolume(vc)
		if err != nil {
			return nil, errors.Wrapf(err, "volume %d (%s)", i, vc.Name)
		}
		world.AddVolume(volume)

		if vc.Tide != nil {
			world.Drivers = append(world.Drivers, NewTideDriver(volume, *vc.Tide))
		}
	}

	for i, fc := range s.Floaters {
		f, err := buildFloater(fc, world, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "floater %d (%s)", i, fc.Name)
		}
		world.AddFloater(f)
	}

	logger.Info("scene built",
		zap.Int("volumes", len(s.Volumes)),
		zap.Int("floaters", len(s.Floaters)),
		zap.Int("substeps", world.Substeps),
		zap.Int("workers", world.Workers),
	)

	return world, nil
}

func buildVolume(vc VolumeConfig) (*water.Volume, error) {
	var volume *water.Volume

	switch strings.ToLower(vc.Shape) {
	case ShapeBox, "":
		if !positive(vc.HalfExtents) {
			return nil, errors.Wrapf(ErrInvalidValue, "half extents %v", vc.HalfExtents)
		}
		volume = water.NewPool(vc.Name, vc.Center.Vec(), vc.Surface, vc.HalfExtents.Vec())
	case ShapeSea:
		volume = water.NewSea(vc.Name, vc.Surface, vc.Depth)
	default:
		return nil, errors.Wrapf(ErrUnknownShape, "%q", vc.Shape)
	}

	category, err := parseCategory(vc.Category, actor.CategoryWater)
	if err != nil {
		return nil, err
	}
	volume.Body.Category = category

	if vc.ManualHeight != nil {
		volume.SetManualHeight(*vc.ManualHeight)
	}

	return volume, nil
}

func buildBody(fc FloaterConfig) (*actor.RigidBody, error) {
	var shape actor.ShapeInterface

	switch strings.ToLower(fc.Shape) {
	case ShapeBox, "":
		if !positive(fc.HalfExtents) {
			return nil, errors.Wrapf(ErrInvalidValue, "half extents %v", fc.HalfExtents)
		}
		shape = &actor.Box{HalfExtents: fc.HalfExtents.Vec()}
	case ShapeSphere:
		if fc.Radius <= 0 {
			return nil, errors.Wrapf(ErrInvalidValue, "radius %v", fc.Radius)
		}
		shape = &actor.Sphere{Radius: fc.Radius}
	default:
		return nil, errors.Wrapf(ErrUnknownShape, "%q", fc.Shape)
	}

	density := fc.Density
	if density <= 0 {
		density = 1.0
	}

	body := actor.NewRigidBody(actor.NewTransformAt(fc.Position.Vec()), shape, actor.BodyTypeDynamic, density)
	body.Name = fc.Name
	body.Velocity = fc.Velocity.Vec()
	body.Material.LinearDamping = fc.Damping
	body.Material.SetMass(fc.Mass)

	category, err := parseCategory(fc.Category, actor.CategoryFloater)
	if err != nil {
		return nil, err
	}
	body.Category = category

	return body, nil
}

func floaterConfig(fc FloaterConfig, logger *zap.Logger) (floater.Config, error) {
	config := floater.DefaultConfig()

	if fc.BuoyantForce != nil {
		config.BuoyantForce = *fc.BuoyantForce
	}
	if fc.OffsetY != nil {
		config.OffsetY = *fc.OffsetY
	}
	if fc.DepthPower != nil {
		if floater.ValidDepthPower(*fc.DepthPower) {
			config.DepthPower = *fc.DepthPower
		} else {
			logger.Warn("depth power out of [0,1], default kept",
				zap.String("floater", fc.Name),
				zap.Float64("depth_power", *fc.DepthPower),
				zap.Float64("default", floater.DefaultDepthPower),
			)
		}
	}

	category, err := parseCategory(fc.WaterCategory, actor.CategoryWater)
	if err != nil {
		return config, err
	}
	config.WaterCategory = category

	return config, nil
}

func buildFloater(fc FloaterConfig, lookup water.Lookup, logger *zap.Logger) (floater.Floater, error) {
	body, err := buildBody(fc)
	if err != nil {
		return nil, err
	}
	config, err := floaterConfig(fc, logger)
	if err != nil {
		return nil, err
	}

	switch floater.Kind(strings.ToLower(fc.Variant)) {
	case floater.KindCollaboratingSurface, "":
		f, err := floater.NewCollaboratingSurface(body, lookup, config)
		if err != nil {
			return nil, err
		}
		return f, nil
	case floater.KindSelfContainedSurface:
		f, err := floater.NewSelfContainedSurface(body, config)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	return nil, errors.Wrapf(ErrUnknownVariant, "%q", fc.Variant)
}

func positive(v Vec3) bool {
	return v[0] > 0 && v[1] > 0 && v[2] > 0
}
