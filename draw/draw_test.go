package draw

import (
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/spatialindex/quadtree"
)

func newTestIndex(t *testing.T, positions ...r2.Point) *quadtree.Index {
	t.Helper()
	idx, err := quadtree.New(
		quadtree.Region{Center: r2.Point{X: 400, Y: 300}, Half: r2.Point{X: 400, Y: 300}},
		quadtree.Config{},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)
	for _, p := range positions {
		test.That(t, idx.Insert(quadtree.NewPoint(p, r2.Point{})), test.ShouldBeTrue)
	}
	return idx
}

func rgb(t *testing.T, c interface{ RGBA() (r, g, b, a uint32) }) [3]uint32 {
	t.Helper()
	r, g, b, _ := c.RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestRender(t *testing.T) {
	idx := newTestIndex(t, r2.Point{X: 100.5, Y: 100.5}, r2.Point{X: 300.5, Y: 300.5})
	selection := quadtree.Region{Center: r2.Point{X: 300, Y: 300}, Half: r2.Point{X: 20, Y: 20}}

	img, err := Render(idx, Options{Highlight: &selection})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 800)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 600)

	test.That(t, rgb(t, img.At(100, 100)), test.ShouldResemble, [3]uint32{255, 255, 0})
	test.That(t, rgb(t, img.At(300, 300)), test.ShouldResemble, [3]uint32{0, 255, 255})
	test.That(t, rgb(t, img.At(50, 400)), test.ShouldResemble, [3]uint32{0, 0, 0})

	t.Run("scaled", func(t *testing.T) {
		img, err := Render(idx, Options{Scale: 0.5})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, img.Bounds().Dx(), test.ShouldEqual, 400)
		test.That(t, img.Bounds().Dy(), test.ShouldEqual, 300)
	})

	t.Run("invalid scale", func(t *testing.T) {
		_, err := Render(idx, Options{Scale: -1})
		test.That(t, err, test.ShouldBeError)
	})
}

func TestDepthColor(t *testing.T) {
	test.That(t, rgb(t, depthColor(0)), test.ShouldResemble, [3]uint32{255, 0, 0})
	test.That(t, depthColor(3), test.ShouldNotResemble, depthColor(0))
}

func TestSavePNG(t *testing.T) {
	idx := newTestIndex(t, r2.Point{X: 10, Y: 10}, r2.Point{X: 20, Y: 20}, r2.Point{X: 30, Y: 30},
		r2.Point{X: 40, Y: 40}, r2.Point{X: 50, Y: 50})
	path := filepath.Join(t.TempDir(), "tree.png")

	test.That(t, SavePNG(path, idx, Options{Scale: 0.25}), test.ShouldBeNil)
	img, err := gg.LoadPNG(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 200)

	err = SavePNG(filepath.Join(t.TempDir(), "missing", "tree.png"), idx, Options{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to write")
}
