// Command buoysim runs a buoyancy scene headless, in a terminal view, or
// streaming snapshots over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/akmonengine/buoyancy"
	"github.com/akmonengine/buoyancy/internal/logger"
	"github.com/akmonengine/buoyancy/internal/telemetry"
	"github.com/akmonengine/buoyancy/internal/view"
	"github.com/akmonengine/buoyancy/scene"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

type options struct {
	scene  string
	steps  int
	dt     float64
	serve  string
	tui    bool
	debug  bool
	report int
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.scene, "scene", "scenes/harbor.yaml", "scene file")
	flag.IntVar(&o.steps, "steps", 600, "number of steps, 0 runs until interrupted")
	flag.Float64Var(&o.dt, "dt", 1.0/60.0, "step duration in seconds")
	flag.StringVar(&o.serve, "serve", "", "stream snapshots on ws://ADDR/ws, paced in real time")
	flag.BoolVar(&o.tui, "tui", false, "draw the scene in the terminal")
	flag.BoolVar(&o.debug, "debug", false, "debug logs")
	flag.IntVar(&o.report, "report", 60, "log the floaters every N steps, 0 disables")
	flag.Parse()

	return o
}

func main() {
	o := parseFlags()

	if err := logger.Init(o.debug); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(o); err != nil {
		logger.Log.Error("buoysim failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(o options) error {
	if o.tui {
		// zap writes to stderr, keep it quiet while the screen is ours
		previous := logger.Log
		logger.Log = zap.NewNop()
		defer func() { logger.Log = previous }()
	}

	s, err := scene.Load(o.scene)
	if err != nil {
		return err
	}
	world, err := scene.Build(s, logger.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var hub *telemetry.Hub
	if o.serve != "" {
		hub = telemetry.NewHub(logger.Log)
		server := serve(o.serve, hub)
		defer func() {
			hub.Close()
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdown)
		}()
	}

	step := func() telemetry.Snapshot {
		world.Step(o.dt)
		snapshot := telemetry.Capture(world)
		if hub != nil {
			if err := hub.Broadcast(snapshot); err != nil {
				logger.Log.Debug("broadcast", zap.Error(err))
			}
		}
		if o.report > 0 && world.StepCount%o.report == 0 {
			report(world)
		}
		return snapshot
	}

	if o.tui {
		return runTerminal(ctx, o, step)
	}

	pace := o.serve != ""
	ticker := time.NewTicker(time.Duration(o.dt * float64(time.Second)))
	defer ticker.Stop()

	for o.steps == 0 || world.StepCount < o.steps {
		if pace {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		step()
	}

	report(world)
	return nil
}

func serve(addr string, hub *telemetry.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Log.Info("telemetry listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("telemetry server stopped", zap.Error(err))
		}
	}()

	return server
}

func runTerminal(ctx context.Context, o options, step func() telemetry.Snapshot) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	renderer := view.NewRenderer(screen)
	if o.steps > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()

		inner := step
		done := 0
		step = func() telemetry.Snapshot {
			done++
			if done >= o.steps {
				cancel()
			}
			return inner()
		}
	}

	renderer.Run(ctx, time.Duration(o.dt*float64(time.Second)), step)
	return nil
}

func report(world *buoyancy.World) {
	for _, f := range world.Floaters() {
		body := f.Body()
		logger.Log.Info("floater",
			zap.Int("step", world.StepCount),
			zap.String("name", body.Name),
			zap.String("kind", string(f.Kind())),
			zap.Float64("y", body.Transform.Position.Y()),
			zap.Float64("vy", body.Velocity.Y()),
			zap.Float64("force", f.LastForce()),
			zap.Bool("in_water", f.InWater()),
			zap.Bool("under_water", f.IsUnderWater()),
		)
	}
}
