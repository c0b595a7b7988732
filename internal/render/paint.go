package render

import (
	"math"
	"strings"
)

// cellAspect compensates terminal cells being roughly twice as tall as
// wide when rasterizing the dial.
const cellAspect = 0.55

// LinearPainter rasterizes linear frames into ANSI rows. Bar heights run
// through a spring field so appends and seeks settle smoothly.
type LinearPainter struct {
	springs springField
}

// NewLinearPainter creates a painter with the default spring tuning.
func NewLinearPainter() *LinearPainter {
	return &LinearPainter{springs: newSpringField(20, 14.0, 0.8)}
}

// Paint renders the frame as rows of block cells. Columns left of the
// active clip edge take the active color; the split lands mid-bar when the
// clip edge does.
func (p *LinearPainter) Paint(f Frame, active, inactive RGB) string {
	width := int(f.Width)
	height := int(f.Height)
	if width < 1 || height < 1 || len(f.Bars) == 0 {
		return ""
	}

	p.springs.resize(len(f.Bars))

	grid := make([][]bool, height)
	for r := range grid {
		grid[r] = make([]bool, width)
	}

	for i, bar := range f.Bars {
		h := p.springs.step(i, bar.Height)
		if h < 1 {
			h = 1
		}
		if h > f.Height {
			h = f.Height
		}
		top := int(math.Round((f.Height - h) / 2))
		bottom := int(math.Round((f.Height + h) / 2))
		for c := int(bar.X); c < int(bar.X+bar.Width) && c < width; c++ {
			if c < 0 {
				continue
			}
			for r := top; r < bottom && r < height; r++ {
				if r >= 0 {
					grid[r][c] = true
				}
			}
		}
	}

	clip := int(math.Round(f.ActiveClipX))
	var out strings.Builder
	color := newANSIState()
	for r := 0; r < height; r++ {
		if r > 0 {
			out.WriteByte('\n')
		}
		for c := 0; c < width; c++ {
			if !grid[r][c] {
				out.WriteByte(' ')
				continue
			}
			if c < clip {
				color.set(&out, active)
			} else {
				color.set(&out, inactive)
			}
			out.WriteRune('█')
		}
		color.reset(&out)
	}
	return out.String()
}

// CircularPainter rasterizes dials into ANSI rows.
type CircularPainter struct {
	animation CircularAnimation
}

// NewCircularPainter creates a painter for the given animation policy.
func NewCircularPainter(animation CircularAnimation) *CircularPainter {
	return &CircularPainter{animation: animation}
}

// SetAnimation switches the split policy for subsequent paints.
func (p *CircularPainter) SetAnimation(a CircularAnimation) { p.animation = a }

type cell struct {
	set    bool
	active bool
}

// radialSplit reports whether a cell at radialOffset from the inner radius
// falls in the bar's active segment. An untouched bar has no active segment,
// its innermost cell included.
func radialSplit(radialOffset, activeLength float64) bool {
	return activeLength > 0 && radialOffset <= activeLength
}

// Paint renders the dial. Each bar is rasterized as rays across its angular
// span; the active/inactive split follows the frame's radial or angular
// geometry.
func (p *CircularPainter) Paint(d Dial, viewWidth, viewHeight int, active, inactive RGB) string {
	if viewWidth < 3 || viewHeight < 3 {
		return ""
	}

	grid := make([][]cell, viewHeight)
	for r := range grid {
		grid[r] = make([]cell, viewWidth)
	}

	for _, bar := range d.Bars {
		span := bar.EndDeg - bar.StartDeg
		raySteps := int(span) + 1
		for s := 0; s < raySteps; s++ {
			offset := span * float64(s) / float64(raySteps)
			// Sweep degrees → screen radians; 0° is the top of the dial.
			angle := (bar.StartDeg+offset-90) * math.Pi / 180

			angularlyActive := offset < bar.ActiveSweepDeg
			for radius := d.InnerRadius; radius <= d.InnerRadius+bar.Length; radius += 0.5 {
				x := int(math.Round(d.CenterX + math.Cos(angle)*radius))
				y := int(math.Round(d.CenterY + math.Sin(angle)*radius*cellAspect))
				if x < 0 || x >= viewWidth || y < 0 || y >= viewHeight {
					continue
				}
				isActive := false
				switch p.animation {
				case AnimationRadial:
					isActive = radialSplit(radius-d.InnerRadius, bar.ActiveLength)
				case AnimationFlow:
					isActive = angularlyActive
				}
				grid[y][x] = cell{set: true, active: isActive}
			}
		}
	}

	var out strings.Builder
	color := newANSIState()
	for r := 0; r < viewHeight; r++ {
		if r > 0 {
			out.WriteByte('\n')
		}
		for c := 0; c < viewWidth; c++ {
			cl := grid[r][c]
			if !cl.set {
				out.WriteByte(' ')
				continue
			}
			if cl.active {
				color.set(&out, active)
			} else {
				color.set(&out, inactive)
			}
			out.WriteRune('█')
		}
		color.reset(&out)
	}
	return out.String()
}
