package canvas

import "math"

// Zoom bounds and interaction constants shared by every adapter.
const (
	MinZoom    = 0.1
	MaxZoom    = 10.0
	ZoomStep   = 1.2
	FitPadding = 0.9
)

// Viewport is the pan/zoom view state over a diagram's world coordinates.
// It is pure view state: nothing here touches graph data, and changing it
// never triggers a re-layout.
//
// The transform is screen = world*Zoom + Offset, with both sizes and
// offsets in the same screen units the hosting surface uses (pixels for
// SVG/HTML, character-cell pixels for the terminal).
type Viewport struct {
	Width  float64
	Height float64

	OffsetX float64
	OffsetY float64
	Zoom    float64
}

// NewViewport returns a viewport of the given size at zoom 1.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height, Zoom: 1}
}

// SetSize records a new viewport size. The caller decides whether to
// re-fit; entering or leaving fullscreen does, a plain resize does too.
func (v *Viewport) SetSize(width, height float64) {
	v.Width = width
	v.Height = height
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt multiplies the zoom by factor, clamped to [MinZoom, MaxZoom],
// keeping the world point under the screen anchor (sx, sy) fixed.
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	wx, wy := v.ToWorld(sx, sy)
	v.Zoom = clampZoom(v.Zoom * factor)
	v.OffsetX = sx - wx*v.Zoom
	v.OffsetY = sy - wy*v.Zoom
}

// ZoomIn zooms in one step anchored at the viewport center.
func (v *Viewport) ZoomIn() {
	v.ZoomAt(ZoomStep, v.Width/2, v.Height/2)
}

// ZoomOut zooms out one step anchored at the viewport center.
func (v *Viewport) ZoomOut() {
	v.ZoomAt(1/ZoomStep, v.Width/2, v.Height/2)
}

// Fit recomputes zoom and offsets so a world box of the given size is
// fully visible and centered, scaled down by FitPadding to leave a
// margin. Invoked on load, on reload, and on viewport-size changes.
func (v *Viewport) Fit(worldW, worldH float64) {
	if worldW <= 0 || worldH <= 0 {
		v.Zoom = 1
		v.OffsetX = v.Width / 2
		v.OffsetY = v.Height / 2
		return
	}
	v.Zoom = clampZoom(FitPadding * math.Min(v.Width/worldW, v.Height/worldH))
	v.OffsetX = (v.Width - worldW*v.Zoom) / 2
	v.OffsetY = (v.Height - worldH*v.Zoom) / 2
}

// Reset restores the initial view, which is the fitted one.
func (v *Viewport) Reset(worldW, worldH float64) {
	v.Fit(worldW, worldH)
}

// ToScreen maps a world point into screen coordinates.
func (v *Viewport) ToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Zoom + v.OffsetX, wy*v.Zoom + v.OffsetY
}

// ToWorld maps a screen point back into world coordinates.
func (v *Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.OffsetX) / v.Zoom, (sy - v.OffsetY) / v.Zoom
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
