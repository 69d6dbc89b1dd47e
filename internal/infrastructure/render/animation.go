package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/icza/mjpeg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

const metresPerDegreeLat = 111320.0

var (
	backgroundColor = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	textColor       = color.RGBA{R: 235, G: 235, B: 235, A: 255}

	statusColors = map[model.Status]color.RGBA{
		model.Susceptible: {R: 80, G: 160, B: 255, A: 255},
		model.Infected:    {R: 230, G: 40, B: 40, A: 255},
		model.Recovered:   {R: 60, G: 200, B: 90, A: 255},
		model.Vaccinated:  {R: 190, G: 120, B: 255, A: 255},
	}
)

// Frame renders one day of the simulation: cases coloured by status,
// marker rings around alert clusters and a caption.
type Frame struct {
	Width, Height int
	Bounds        model.Bounds
}

func (f Frame) Draw(snap model.DaySnapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	for _, c := range snap.Cases {
		x, y := f.project(c.Lat, c.Lon)
		fillSquare(img, x, y, 2, statusColors[c.Status])
	}

	for _, cl := range snap.Clusters {
		x, y := f.project(cl.Lat, cl.Lon)
		for _, ring := range cl.Rings() {
			strokeCircle(img, x, y, f.metresToPixels(ring.Radius), ring.Color)
		}
	}

	counts := snap.StatusCounts()
	caption := fmt.Sprintf("Day %d  S:%d I:%d R:%d V:%d  clusters:%d  cumulative:%d",
		snap.Day,
		counts[model.Susceptible], counts[model.Infected],
		counts[model.Recovered], counts[model.Vaccinated],
		len(snap.Clusters), snap.CumulativeInfected)
	if !snap.Date.IsZero() {
		caption = snap.Date.Format("2006-01-02") + "  " + caption
	}
	drawText(img, 8, 18, caption)

	return img
}

func (f Frame) project(lat, lon float64) (int, int) {
	latSpan := nonZero(f.Bounds.MaxLat - f.Bounds.MinLat)
	lonSpan := nonZero(f.Bounds.MaxLon - f.Bounds.MinLon)
	x := (lon - f.Bounds.MinLon) / lonSpan * float64(f.Width)
	y := (f.Bounds.MaxLat - lat) / latSpan * float64(f.Height)
	return int(x), int(y)
}

func (f Frame) metresToPixels(m float64) int {
	latSpan := nonZero(f.Bounds.MaxLat - f.Bounds.MinLat)
	return int(m / metresPerDegreeLat / latSpan * float64(f.Height))
}

// Animation writes one JPEG frame per simulated day into an MJPEG AVI.
type Animation struct {
	writer mjpeg.AviWriter
	frame  Frame
	buf    bytes.Buffer
	frames int
}

func NewAnimation(path string, frame Frame, fps int) (*Animation, error) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", frame.Width, frame.Height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}
	writer, err := mjpeg.New(path, int32(frame.Width), int32(frame.Height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("failed to create MJPEG writer: %w", err)
	}
	return &Animation{writer: writer, frame: frame}, nil
}

func (a *Animation) AddSnapshot(snap model.DaySnapshot) error {
	img := a.frame.Draw(snap)
	defer a.buf.Reset()
	if err := jpeg.Encode(&a.buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to encode frame for day %d: %w", snap.Day, err)
	}
	if err := a.writer.AddFrame(a.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to add frame for day %d: %w", snap.Day, err)
	}
	a.frames++
	return nil
}

func (a *Animation) Frames() int { return a.frames }

func (a *Animation) Close() error {
	return a.writer.Close()
}

func fillSquare(img *image.RGBA, cx, cy, half int, c color.RGBA) {
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if (image.Point{X: x, Y: y}).In(img.Rect) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func strokeCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	if r <= 0 {
		return
	}
	steps := int(2*math.Pi*float64(r)) + 8
	for k := 0; k < steps; k++ {
		theta := 2 * math.Pi * float64(k) / float64(steps)
		x := cx + int(math.Round(float64(r)*math.Cos(theta)))
		y := cy + int(math.Round(float64(r)*math.Sin(theta)))
		if (image.Point{X: x, Y: y}).In(img.Rect) {
			img.Set(x, y, blend(img.RGBAAt(x, y), c))
		}
	}
}

// blend mixes c over dst by c's alpha.
func blend(dst, c color.RGBA) color.RGBA {
	a := float64(c.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(float64(s)*a + float64(d)*(1-a)) }
	return color.RGBA{R: mix(dst.R, c.R), G: mix(dst.G, c.G), B: mix(dst.B, c.B), A: 255}
}

func drawText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
