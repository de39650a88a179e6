package view

import (
	"context"
	"time"

	"github.com/akmonengine/buoyancy/internal/telemetry"
	"github.com/gdamore/tcell/v2"
)

// Run steps and draws every interval until ctx is done or the user quits
// with Escape, q or Ctrl-C. Arrow keys pan, + and - zoom.
func (r *Renderer) Run(ctx context.Context, interval time.Duration, step func() telemetry.Snapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := r.Screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if !r.HandleEvent(ev) {
				return
			}
		case <-ticker.C:
			r.Draw(step())
		}
	}
}

// HandleEvent applies a key or resize event, false means quit
func (r *Renderer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			r.CenterX -= 2 / r.Zoom
		case tcell.KeyRight:
			r.CenterX += 2 / r.Zoom
		case tcell.KeyUp:
			r.CenterY += 2 / r.Zoom
		case tcell.KeyDown:
			r.CenterY -= 2 / r.Zoom
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case '+':
				r.Zoom *= 2
			case '-':
				r.Zoom = max(r.Zoom/2, 0.125)
			}
		}
	case *tcell.EventResize:
		r.Screen.Sync()
	}
	return true
}
