package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"

	"github.com/fogleman/gg"
)

// Default PNG chart size in pixels.
const (
	ChartWidth  = 1000
	ChartHeight = 600
)

var (
	colorBackground  = color.White
	colorAxis        = color.NRGBA{0x44, 0x44, 0x44, 0xff}
	colorGrid        = color.NRGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorObserved    = color.NRGBA{0x1f, 0x77, 0xb4, 0xff}
	colorProjection  = color.NRGBA{0x2c, 0xa0, 0x2c, 0xff}
	colorGoal        = color.NRGBA{0xd6, 0x27, 0x28, 0xff}
	colorPlaceholder = color.NRGBA{0x88, 0x88, 0x88, 0xff}
)

type plotArea struct {
	left, top, right, bottom float64
	first                    time.Time
	days                     float64
	lo, hi                   float64
}

func (p plotArea) x(d time.Time) float64 {
	frac := float64(model.DaysBetween(p.first, d)) / p.days
	return p.left + frac*(p.right-p.left)
}

func (p plotArea) y(w float64) float64 {
	frac := (w - p.lo) / (p.hi - p.lo)
	return p.bottom - frac*(p.bottom-p.top)
}

// RenderChartPNG draws the observed weights (blue, with markers), the
// projection (dashed green) and the goal weight (dotted red) and encodes the
// result as PNG.
func RenderChartPNG(w io.Writer, s pipeline.Series, width, height int) error {
	if width <= 0 {
		width = ChartWidth
	}
	if height <= 0 {
		height = ChartHeight
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackground)
	dc.Clear()

	W, H := float64(width), float64(height)
	dc.SetColor(colorAxis)
	dc.DrawStringAnchored("Weight progress", W/2, 20, 0.5, 0.5)

	first, last, ok := s.DateRange()
	if !ok {
		dc.SetColor(colorPlaceholder)
		dc.DrawStringAnchored("No weight logged yet", W/2, H/2, 0.5, 0.5)
		return encode(dc, w)
	}

	lo, hi := s.Bounds()
	pad := max((hi-lo)*0.08, 0.5)
	p := plotArea{
		left: 70, top: 45, right: W - 30, bottom: H - 60,
		first: first,
		days:  math.Max(float64(model.DaysBetween(first, last)), 1),
		lo:    lo - pad,
		hi:    hi + pad,
	}

	drawGrid(dc, p, last)

	// goal line
	dc.Push()
	dc.SetColor(colorGoal)
	dc.SetLineWidth(1.5)
	dc.SetDash(2, 4)
	dc.DrawLine(p.left, p.y(s.GoalWeight), p.right, p.y(s.GoalWeight))
	dc.Stroke()
	dc.Pop()

	if len(s.Projection) > 0 {
		dc.Push()
		dc.SetColor(colorProjection)
		dc.SetLineWidth(2)
		dc.SetDash(8, 5)
		for i, pt := range s.Projection {
			if i == 0 {
				dc.MoveTo(p.x(pt.Date), p.y(pt.Weight))
				continue
			}
			dc.LineTo(p.x(pt.Date), p.y(pt.Weight))
		}
		dc.Stroke()
		dc.Pop()
	}

	if len(s.Observed) > 0 {
		dc.Push()
		dc.SetColor(colorObserved)
		dc.SetLineWidth(2)
		for i, o := range s.Observed {
			if i == 0 {
				dc.MoveTo(p.x(o.Date), p.y(o.Weight))
				continue
			}
			dc.LineTo(p.x(o.Date), p.y(o.Weight))
		}
		dc.Stroke()
		for _, o := range s.Observed {
			dc.DrawCircle(p.x(o.Date), p.y(o.Weight), 3.5)
			dc.Fill()
		}
		dc.Pop()
	}

	drawLegend(dc, p)
	return encode(dc, w)
}

func drawGrid(dc *gg.Context, p plotArea, last time.Time) {
	dc.Push()
	defer dc.Pop()

	dc.SetLineWidth(1)
	step := niceStep(p.hi-p.lo, 6)
	for v := math.Ceil(p.lo/step) * step; v <= p.hi; v += step {
		y := p.y(v)
		dc.SetColor(colorGrid)
		dc.DrawLine(p.left, y, p.right, y)
		dc.Stroke()
		dc.SetColor(colorAxis)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", v), p.left-8, y, 1, 0.5)
	}

	ticks := min(int(p.days), 6)
	for i := 0; i <= ticks; i++ {
		offset := int(math.Round(float64(i) * p.days / float64(max(ticks, 1))))
		d := p.first.AddDate(0, 0, offset)
		if d.After(last) {
			d = last
		}
		dc.SetColor(colorAxis)
		dc.DrawStringAnchored(d.Format("02-01"), p.x(d), p.bottom+16, 0.5, 0.5)
	}

	dc.SetColor(colorAxis)
	dc.DrawLine(p.left, p.top, p.left, p.bottom)
	dc.DrawLine(p.left, p.bottom, p.right, p.bottom)
	dc.Stroke()

	dc.DrawStringAnchored("Date", (p.left+p.right)/2, p.bottom+40, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, 18, (p.top+p.bottom)/2)
	dc.DrawStringAnchored("Weight (kg)", 18, (p.top+p.bottom)/2, 0.5, 0.5)
	dc.Pop()
}

func drawLegend(dc *gg.Context, p plotArea) {
	entries := []struct {
		label string
		c     color.Color
		dash  []float64
	}{
		{"Weight", colorObserved, nil},
		{"Projection", colorProjection, []float64{8, 5}},
		{"Goal", colorGoal, []float64{2, 4}},
	}

	x, y := p.right-130, p.top+12
	for _, e := range entries {
		dc.Push()
		dc.SetColor(e.c)
		dc.SetLineWidth(2)
		dc.SetDash(e.dash...)
		dc.DrawLine(x, y, x+28, y)
		dc.Stroke()
		dc.Pop()

		dc.SetColor(colorAxis)
		dc.DrawStringAnchored(e.label, x+36, y, 0, 0.5)
		y += 18
	}
}

// niceStep picks a 1/2/5 x 10^n step giving roughly n intervals over span.
func niceStep(span float64, n int) float64 {
	if span <= 0 || n <= 0 {
		return 1
	}
	raw := span / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch r := raw / mag; {
	case r <= 1:
		return mag
	case r <= 2:
		return 2 * mag
	case r <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func encode(dc *gg.Context, w io.Writer) error {
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
