// Package view draws a side view of a buoyancy world on a terminal.
//
// X runs left to right, Y bottom to top. Water is painted from its surface
// down to its bottom, floaters are drawn as one cell colored by state.
package view

import (
	"fmt"
	"math"

	"github.com/akmonengine/buoyancy/floater"
	"github.com/akmonengine/buoyancy/internal/telemetry"
	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault    = tcell.StyleDefault
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleSurface    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Background(tcell.ColorNavy)
	styleWater      = tcell.StyleDefault.Background(tcell.ColorNavy)
	styleDry        = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleFloating   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorNavy)
	styleUnderWater = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy)
)

const (
	glyphSurface       = '~'
	glyphCollaborating = '■'
	glyphSelfContained = '●'
	glyphOther         = '?'
)

// Renderer maps world coordinates to screen cells
type Renderer struct {
	Screen tcell.Screen
	// CenterX, CenterY is the world point drawn in the middle of the screen
	CenterX, CenterY float64
	// Zoom is the number of columns per meter, rows use half of it
	Zoom float64
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{Screen: screen, Zoom: 2}
}

// ToScreen converts a world X,Y to a column and a row
func (r *Renderer) ToScreen(x, y float64) (int, int) {
	width, height := r.Screen.Size()
	column := int(math.Floor((x-r.CenterX)*r.Zoom)) + width/2
	row := height/2 - int(math.Floor((y-r.CenterY)*r.Zoom/2))
	return column, row
}

// Draw paints the snapshot and shows the screen
func (r *Renderer) Draw(snapshot telemetry.Snapshot) {
	r.Screen.Clear()
	width, height := r.Screen.Size()

	for _, volume := range snapshot.Volumes {
		r.drawVolume(volume, width, height)
	}
	for _, body := range snapshot.Bodies {
		r.drawBody(body, width, height)
	}

	status := fmt.Sprintf("step %d  t=%.2fs  bodies %d", snapshot.Step, snapshot.Time, len(snapshot.Bodies))
	r.drawText(0, 0, status, styleStatus)
	for i, body := range snapshot.Bodies {
		if i+1 >= height {
			break
		}
		line := fmt.Sprintf("%-10s y=%7.3f  F=%6.2f  %s", body.Name, body.Position[1], body.Force, state(body))
		r.drawText(0, i+1, line, styleDefault)
	}

	r.Screen.Show()
}

func (r *Renderer) drawVolume(volume telemetry.VolumeState, width, height int) {
	left, surface := r.ToScreen(volume.Min[0], volume.Surface)
	right, bottom := r.ToScreen(volume.Max[0], volume.Min[1])

	left = max(left, 0)
	right = min(right, width-1)
	bottom = min(bottom, height-1)

	for column := left; column <= right; column++ {
		if surface >= 0 && surface < height {
			r.Screen.SetContent(column, surface, glyphSurface, nil, styleSurface)
		}
		for row := max(surface+1, 0); row <= bottom; row++ {
			r.Screen.SetContent(column, row, ' ', nil, styleWater)
		}
	}
}

func (r *Renderer) drawBody(body telemetry.BodyState, width, height int) {
	column, row := r.ToScreen(body.Position[0], body.Position[1])
	if column < 0 || column >= width || row < 0 || row >= height {
		return
	}

	r.Screen.SetContent(column, row, glyph(body.Kind), nil, bodyStyle(body))
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	width, _ := r.Screen.Size()
	for _, c := range text {
		if x >= width {
			return
		}
		r.Screen.SetContent(x, y, c, nil, style)
		x++
	}
}

func glyph(kind string) rune {
	switch floater.Kind(kind) {
	case floater.KindCollaboratingSurface:
		return glyphCollaborating
	case floater.KindSelfContainedSurface:
		return glyphSelfContained
	}
	return glyphOther
}

func bodyStyle(body telemetry.BodyState) tcell.Style {
	switch {
	case body.UnderWater:
		return styleUnderWater
	case body.Floating:
		return styleFloating
	}
	return styleDry
}

func state(body telemetry.BodyState) string {
	switch {
	case body.UnderWater:
		return "under water"
	case body.Floating:
		return "floating"
	case body.InWater:
		return "in water"
	}
	return "dry"
}
