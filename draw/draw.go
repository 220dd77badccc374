// Package draw renders a quadtree traversal into an image: node boundaries, the points in each
// bucket, and an optional highlighted selection region.
package draw

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"go.viam.com/spatialindex/quadtree"
)

// Traversable is the read-only view of an index that rendering needs.
type Traversable interface {
	Traverse(fn func(quadtree.NodeView) bool)
	Bounds() quadtree.Region
}

// Options control how a tree is drawn.
type Options struct {
	// Scale is pixels per world unit. Zero means 1.
	Scale     float64
	PointSize float64
	LineWidth float64
	// Highlight, if set, marks the points it contains and outlines the region itself.
	Highlight *quadtree.Region
}

var (
	background     = color.Black
	pointColor     = color.RGBA{255, 255, 0, 255}
	highlightColor = color.RGBA{0, 255, 255, 255}
	selectionColor = color.RGBA{255, 0, 255, 255}
)

// Render draws every live node of t.
func Render(t Traversable, opts Options) (image.Image, error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	if opts.Scale < 0 || math.IsNaN(opts.Scale) || math.IsInf(opts.Scale, 0) {
		return nil, errors.Errorf("invalid render scale (%.2f)", opts.Scale)
	}
	if opts.PointSize == 0 {
		opts.PointSize = 3
	}
	if opts.LineWidth == 0 {
		opts.LineWidth = 1
	}

	bounds := t.Bounds().Rect()
	lo, size := bounds.Lo(), bounds.Size()
	width, height := int(math.Ceil(size.X*opts.Scale)), int(math.Ceil(size.Y*opts.Scale))
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("render size %dx%d is empty", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	toPixels := func(x, y float64) (float64, float64) {
		return (x - lo.X) * opts.Scale, (y - lo.Y) * opts.Scale
	}

	t.Traverse(func(v quadtree.NodeView) bool {
		r := v.Region.Rect()
		x, y := toPixels(r.Lo().X, r.Lo().Y)
		dc.SetColor(depthColor(v.Depth))
		dc.SetLineWidth(opts.LineWidth)
		dc.DrawRectangle(x, y, r.Size().X*opts.Scale, r.Size().Y*opts.Scale)
		dc.Stroke()

		for _, p := range v.Points {
			if opts.Highlight != nil && opts.Highlight.Contains(p.Position) {
				dc.SetColor(highlightColor)
			} else {
				dc.SetColor(pointColor)
			}
			px, py := toPixels(p.Position.X, p.Position.Y)
			dc.DrawRectangle(px-opts.PointSize/2, py-opts.PointSize/2, opts.PointSize, opts.PointSize)
			dc.Fill()
		}
		return true
	})

	if opts.Highlight != nil {
		r := opts.Highlight.Rect()
		x, y := toPixels(r.Lo().X, r.Lo().Y)
		dc.SetColor(selectionColor)
		dc.SetLineWidth(opts.LineWidth)
		dc.DrawRectangle(x, y, r.Size().X*opts.Scale, r.Size().Y*opts.Scale)
		dc.Stroke()
	}

	return dc.Image(), nil
}

// depthColor fades node outlines from red at the root toward yellow as they get deeper.
func depthColor(depth int) color.Color {
	hue := math.Min(float64(depth)*6, 50)
	return colorful.Hsv(hue, 1, 1-math.Min(float64(depth)*0.05, 0.5))
}

// SavePNG renders t and writes it to path.
func SavePNG(path string, t Traversable, opts Options) error {
	img, err := Render(t, opts)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return errors.Wrapf(err, "failed to write %q", path)
	}
	return nil
}
