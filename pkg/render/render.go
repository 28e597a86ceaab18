// Package render draws the flower clock dial as SVG.
//
// The dial puts 0:00 at the top and runs clockwise. Radius 1 is the ring
// observations sit on; mean vectors have length R, so a perfectly
// synchronized group reaches the ring.
package render

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/chrissnell/flowerclock/pkg/circular"
	"github.com/chrissnell/flowerclock/pkg/solar"
)

const (
	outerRadius  = 1.05 // shaded band and dial edge
	labelRadius  = 1.17 // hour labels
	meanLabelPos = 0.75 // label position as a fraction of R
	titleHeight  = 40
	margin       = 50
	pointRadius  = 5
	arrowWidth   = 3
	headLength   = 12
	headWidth    = 7
)

// Series is one observation group and its summary
type Series struct {
	Name         string
	Color        string
	Observations []float64 // fractional days
	Summary      circular.Summary
}

// Chart is everything needed to draw a dial
type Chart struct {
	Title     string
	Size      int // canvas width; height adds room for the title
	Night     solar.Band
	TickHours int
	Series    []Series
}

// Render writes chart to w as a standalone SVG document
func Render(w io.Writer, chart Chart) error {
	if chart.Size <= 0 {
		return fmt.Errorf("render: invalid size %d", chart.Size)
	}
	if chart.TickHours <= 0 || 24%chart.TickHours != 0 {
		return fmt.Errorf("render: tick hours %d must divide 24", chart.TickHours)
	}
	if err := chart.Validate(); err != nil {
		return err
	}

	ew := &errWriter{w: w}
	d := newDial(chart.Size)
	canvas := svg.New(ew)

	canvas.Start(chart.Size, chart.Size+titleHeight)
	canvas.Title(chart.Title)
	canvas.Rect(0, 0, chart.Size, chart.Size+titleHeight, `fill="white"`)
	canvas.Text(chart.Size/2, titleHeight/2+6, chart.Title,
		`text-anchor="middle"`, `font-family="sans-serif"`, `font-size="14"`)

	d.drawNight(canvas, chart.Night)
	d.drawGrid(canvas, chart.TickHours)
	for _, s := range chart.Series {
		d.drawSeries(canvas, s)
	}
	d.drawLegend(canvas, chart.Series)

	canvas.End()
	return ew.err
}

// errWriter remembers the first write error so svgo's unchecked writes surface
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	} else if n < len(p) {
		e.err = io.ErrShortWrite
	}
	return n, e.err
}

// dial maps polar dial coordinates onto the canvas
type dial struct {
	size   int
	cx, cy float64
	unit   float64 // pixels per unit radius
}

func newDial(size int) dial {
	return dial{
		size: size,
		cx:   float64(size) / 2,
		cy:   float64(size)/2 + titleHeight,
		unit: math.Max(float64(size)/2-margin, 1) / outerRadius,
	}
}

// Polar converts a dial angle (radians clockwise from 0:00) and radius to
// canvas coordinates for a chart of the given size.
func Polar(size int, theta, r float64) (x, y float64) {
	return newDial(size).polar(theta, r)
}

func (d dial) polar(theta, r float64) (x, y float64) {
	return d.cx + r*d.unit*math.Sin(theta), d.cy - r*d.unit*math.Cos(theta)
}

func (d dial) point(theta, r float64) (int, int) {
	x, y := d.polar(theta, r)
	return int(math.Round(x)), int(math.Round(y))
}

func hourAngle(h float64) float64 {
	return h / 24 * circular.TwoPi
}

func (d dial) drawNight(canvas *svg.SVG, band solar.Band) {
	for _, seg := range band.Segments() {
		start, end := hourAngle(seg.StartHour), hourAngle(seg.EndHour)
		x1, y1 := d.polar(start, outerRadius)
		x2, y2 := d.polar(end, outerRadius)

		largeArc := 0
		if end-start > math.Pi {
			largeArc = 1
		}

		path := fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
			d.cx, d.cy, x1, y1, d.unit*outerRadius, d.unit*outerRadius, largeArc, x2, y2)
		canvas.Path(path, `class="night"`, `fill="lightgray"`, `fill-opacity="0.3"`)
	}
}

func (d dial) drawGrid(canvas *svg.SVG, tickHours int) {
	cx, cy := int(math.Round(d.cx)), int(math.Round(d.cy))
	canvas.Circle(cx, cy, int(math.Round(d.unit*outerRadius)), `fill="none"`, `stroke="black"`, `stroke-width="1"`)
	canvas.Circle(cx, cy, int(math.Round(d.unit)), `fill="none"`, `stroke="gray"`, `stroke-dasharray="2,3"`)

	for h := 0; h < 24; h += tickHours {
		theta := hourAngle(float64(h))
		x1, y1 := d.point(theta, 0)
		x2, y2 := d.point(theta, outerRadius)
		canvas.Line(x1, y1, x2, y2, `stroke="gray"`, `stroke-opacity="0.4"`)

		lx, ly := d.point(theta, labelRadius)
		canvas.Text(lx, ly+4, fmt.Sprintf("%d:00", h), `class="tick"`,
			`text-anchor="middle"`, `font-family="sans-serif"`, `font-size="11"`)
	}
}

// colorAttr builds a paint attribute. svgo writes attribute strings verbatim,
// so the user-supplied color is escaped here.
func colorAttr(name, color string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(color))
}

func (d dial) drawSeries(canvas *svg.SVG, s Series) {
	fill := colorAttr("fill", s.Color)
	for _, v := range s.Observations {
		x, y := d.point(circular.FractionToAngle(v), 1)
		canvas.Circle(x, y, pointRadius, `class="observation"`, fill, `fill-opacity="0.7"`)
	}

	d.drawArrow(canvas, s)

	lx, ly := d.point(s.Summary.MeanAngle, s.Summary.ResultantLength*meanLabelPos)
	canvas.Text(lx, ly, s.Summary.ClockLabel(), `class="mean-label"`, fill,
		`text-anchor="middle"`, `font-family="sans-serif"`, `font-size="11"`)
}

// drawArrow draws the mean resultant vector with its head inside length R
func (d dial) drawArrow(canvas *svg.SVG, s Series) {
	theta := s.Summary.MeanAngle
	length := s.Summary.ResultantLength * d.unit
	if length <= 0 {
		return
	}

	head := math.Min(headLength, length)
	tipX, tipY := d.polar(theta, s.Summary.ResultantLength)
	baseR := (length - head) / d.unit
	baseX, baseY := d.polar(theta, baseR)

	// perpendicular to the shaft, in canvas space
	px, py := math.Cos(theta), math.Sin(theta)
	hw := headWidth * head / headLength

	stroke := colorAttr("stroke", s.Color)
	canvas.Line(int(math.Round(d.cx)), int(math.Round(d.cy)), int(math.Round(baseX)), int(math.Round(baseY)),
		`class="mean-vector"`, stroke, fmt.Sprintf(`stroke-width="%d"`, arrowWidth), `stroke-opacity="0.8"`)
	canvas.Polygon(
		[]int{int(math.Round(tipX)), int(math.Round(baseX + hw*px)), int(math.Round(baseX - hw*px))},
		[]int{int(math.Round(tipY)), int(math.Round(baseY + hw*py)), int(math.Round(baseY - hw*py))},
		`class="arrowhead"`, colorAttr("fill", s.Color), `fill-opacity="0.8"`)
}

func (d dial) drawLegend(canvas *svg.SVG, series []Series) {
	x := d.size - 110
	for i, s := range series {
		y := titleHeight + 16 + i*18
		canvas.Circle(x, y-4, pointRadius, colorAttr("fill", s.Color), `fill-opacity="0.7"`)
		canvas.Text(x+12, y, s.Name, `class="legend"`, `font-family="sans-serif"`, `font-size="12"`)
	}
}

// ErrNoSeries is returned by Validate when a chart has nothing to draw
var ErrNoSeries = errors.New("render: chart has no series")

// Validate checks that a chart is drawable
func (c Chart) Validate() error {
	if len(c.Series) == 0 {
		return ErrNoSeries
	}
	for _, s := range c.Series {
		if s.Summary.N == 0 {
			return fmt.Errorf("render: series %q has no summary", s.Name)
		}
	}
	return nil
}
