package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

// DefaultCellSize is the PNG cell edge in pixels.
const DefaultCellSize = 20

var (
	colorBackground = color.RGBA{10, 20, 40, 255}
	colorGridLine   = color.RGBA{255, 165, 0, 10}
	colorFoodOuter  = color.RGBA{234, 88, 12, 255}
	colorFoodInner  = color.RGBA{251, 191, 36, 255}
	colorBodyDark   = color.RGBA{0, 0, 0, 255}
	colorBodyBelly  = color.RGBA{255, 255, 255, 230}
	colorBeak       = color.RGBA{249, 115, 22, 255}
	colorBurst      = color.RGBA{254, 243, 199, 200}
)

type headKey struct {
	dir    snake.Direction
	parity uint8
	size   int
}

// heads caches the rendered penguin heads across PNG renderers.
var heads = NewCache(buildHead)

// PNG renders frames to images with gg.
type PNG struct {
	CellSize int
}

// NewPNG returns a renderer with the default cell size.
func NewPNG() *PNG {
	return &PNG{CellSize: DefaultCellSize}
}

// Image draws f and returns the picture.
// A grid with no cells yields an error instead of an empty image.
func (p *PNG) Image(f Frame) (image.Image, error) {
	st := f.State
	if st.Grid.Cols <= 0 || st.Grid.Rows <= 0 {
		return nil, fmt.Errorf("render: empty grid %dx%d", st.Grid.Cols, st.Grid.Rows)
	}
	cs := p.CellSize
	if cs <= 0 {
		cs = DefaultCellSize
	}

	dc := gg.NewContext(st.Grid.Cols*cs, st.Grid.Rows*cs)
	dc.SetColor(colorBackground)
	dc.Clear()

	drawGridLines(dc, st.Grid, cs)
	for _, b := range f.Bursts {
		drawBurst(dc, b, cs)
	}
	drawFoodPNG(dc, st.Food, cs)

	for i := len(st.Snake) - 1; i > 0; i-- {
		drawBodyPNG(dc, st.Snake[i], Orientation(st.Snake, i, st.Direction), i, cs)
	}
	if len(st.Snake) > 0 {
		head := heads.Get(headKey{dir: st.Direction, parity: uint8(st.Movement % 2), size: cs})
		c := center(st.Snake[0], cs)
		dc.DrawImageAnchored(head, int(c.X), int(c.Y), 0.5, 0.5)
	}

	return dc.Image(), nil
}

// Encode writes f as a PNG.
func (p *PNG) Encode(w io.Writer, f Frame) error {
	img, err := p.Image(f)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

func center(p snake.Position, cs int) gg.Point {
	return gg.Point{
		X: float64(p.X*cs) + float64(cs)/2,
		Y: float64(p.Y*cs) + float64(cs)/2,
	}
}

func rotation(d snake.Direction) float64 {
	switch d {
	case snake.DirDown:
		return math.Pi / 2
	case snake.DirLeft:
		return math.Pi
	case snake.DirUp:
		return math.Pi * 3 / 2
	default:
		return 0
	}
}

func drawGridLines(dc *gg.Context, g snake.Grid, cs int) {
	w, h := float64(g.Cols*cs), float64(g.Rows*cs)
	dc.SetColor(colorGridLine)
	dc.SetLineWidth(1)
	for i := 0; i <= g.Cols; i++ {
		x := float64(i * cs)
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
	}
	for i := 0; i <= g.Rows; i++ {
		y := float64(i * cs)
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}

func drawFoodPNG(dc *gg.Context, food snake.Position, cs int) {
	c := center(food, cs)
	r := float64(cs)/2 - 2
	dc.SetColor(colorFoodOuter)
	dc.DrawCircle(c.X, c.Y, r)
	dc.Fill()
	dc.SetColor(colorFoodInner)
	dc.DrawCircle(c.X, c.Y, r*0.5)
	dc.Fill()
}

func drawBurst(dc *gg.Context, p snake.Position, cs int) {
	c := center(p, cs)
	dc.SetColor(colorBurst)
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		dc.DrawCircle(c.X+math.Cos(a)*float64(cs)*0.4, c.Y+math.Sin(a)*float64(cs)*0.4, 1.5)
		dc.Fill()
	}
}

// drawBodyPNG draws a penguin body that fades toward the tail.
func drawBodyPNG(dc *gg.Context, p snake.Position, dir snake.Direction, index, cs int) {
	alpha := math.Max(0.3, 1-float64(index)*0.08)
	scale := float64(cs) / DefaultCellSize
	c := center(p, cs)

	dc.Push()
	dc.Translate(c.X, c.Y)
	dc.Rotate(rotation(dir))
	dc.SetRGBA255(int(colorBodyDark.R), int(colorBodyDark.G), int(colorBodyDark.B), int(alpha*255))
	dc.DrawEllipse(0, 0, 8*scale, 6*scale)
	dc.Fill()
	dc.SetRGBA255(int(colorBodyBelly.R), int(colorBodyBelly.G), int(colorBodyBelly.B), int(alpha*0.9*255))
	dc.DrawEllipse(-2*scale, 0, 6*scale, 4*scale)
	dc.Fill()
	dc.Pop()
}

// buildHead draws a penguin head facing k.dir. The odd pose tilts the
// flippers so consecutive steps appear to waddle.
func buildHead(k headKey) image.Image {
	size := k.size * 2
	s := float64(k.size) / DefaultCellSize
	dc := gg.NewContext(size, size)
	dc.Translate(float64(size)/2, float64(size)/2)
	dc.Rotate(rotation(k.dir))

	flip := 0.35
	if k.parity == 1 {
		flip = -0.35
	}
	dc.SetColor(colorBodyDark)
	for _, side := range []float64{-1, 1} {
		dc.Push()
		dc.Rotate(side * flip)
		dc.DrawEllipse(-2*s, side*9*s, 6*s, 2.5*s)
		dc.Fill()
		dc.Pop()
	}

	dc.DrawEllipse(0, 0, 11*s, 9*s)
	dc.Fill()
	dc.SetColor(colorBodyBelly)
	dc.DrawEllipse(1*s, 0, 7*s, 6*s)
	dc.Fill()

	dc.SetColor(colorBodyDark)
	dc.DrawCircle(5*s, -3*s, 1.5*s)
	dc.DrawCircle(5*s, 3*s, 1.5*s)
	dc.Fill()

	dc.SetColor(colorBeak)
	dc.MoveTo(9*s, -2*s)
	dc.LineTo(14*s, 0)
	dc.LineTo(9*s, 2*s)
	dc.ClosePath()
	dc.Fill()

	return dc.Image()
}
