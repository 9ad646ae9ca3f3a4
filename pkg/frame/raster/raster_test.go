package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/erikote04/framekit/pkg/frame"
	"github.com/erikote04/framekit/pkg/meta"
)

func mustFonts(t *testing.T) *Fonts {
	t.Helper()
	f, err := DefaultFonts()
	if err != nil {
		t.Fatalf("DefaultFonts() error = %v", err)
	}
	return f
}

func line(text string, w meta.Weight, size float64) frame.Line {
	return frame.Line{Spans: []frame.Span{{Text: text, Weight: w, Size: size}}}
}

func TestMeasure(t *testing.T) {
	m := NewMetrics(mustFonts(t))

	regular := m.Measure(line("Shot on iPhone", meta.Regular, 32))
	bold := m.Measure(line("Shot on iPhone", meta.Bold, 32))
	if regular.W <= 0 || regular.H <= 0 {
		t.Fatalf("Measure() = %+v, want positive size", regular)
	}
	if bold.W <= regular.W {
		t.Errorf("bold width %v <= regular width %v", bold.W, regular.W)
	}

	double := m.Measure(line("Shot on iPhone", meta.Regular, 64))
	if ratio := double.W / regular.W; math.Abs(ratio-2) > 0.05 {
		t.Errorf("width ratio at 2x size = %v, want ~2", ratio)
	}

	if got := m.Measure(frame.Line{}); got != (frame.Size{}) {
		t.Errorf("Measure(empty) = %+v, want zero", got)
	}
}

func TestMeasureMultipleSpans(t *testing.T) {
	m := NewMetrics(mustFonts(t))
	prefix := m.Measure(line("Shot on ", meta.Regular, 40))
	model := m.Measure(line("Pixel 8", meta.Bold, 40))
	both := m.Measure(frame.NewLine(meta.FormatTitle("Pixel 8"), 40, nil))

	if math.Abs(both.W-(prefix.W+model.W)) > 1e-6 {
		t.Errorf("combined width %v, want %v", both.W, prefix.W+model.W)
	}
	if both.H < math.Max(prefix.H, model.H) {
		t.Errorf("combined height %v, want at least %v", both.H, math.Max(prefix.H, model.H))
	}
}

func TestMeasureConcurrent(t *testing.T) {
	m := NewMetrics(mustFonts(t))
	want := m.Measure(line("24mm ƒ/1.8 1/120s ISO 100", meta.Regular, 24))

	var wg sync.WaitGroup
	errs := make(chan frame.Size, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(size float64) {
			defer wg.Done()
			m.Measure(line("warm", meta.Bold, size))
			if got := m.Measure(line("24mm ƒ/1.8 1/120s ISO 100", meta.Regular, 24)); got != want {
				errs <- got
			}
		}(float64(10 + i))
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent Measure() = %+v, want %+v", got, want)
	}
}

func TestSurfaceScale(t *testing.T) {
	s, err := NewSurface(mustFonts(t), 100.5, 50, 2)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if got := s.Image().Bounds(); got != image.Rect(0, 0, 201, 100) {
		t.Errorf("bounds = %v, want 201x100", got)
	}
}

func TestSurfaceTooLarge(t *testing.T) {
	old := MaxPixels
	MaxPixels = 100
	defer func() { MaxPixels = old }()

	if _, err := NewSurface(mustFonts(t), 20, 20, 1); err == nil {
		t.Errorf("NewSurface(20x20) succeeded with MaxPixels=100")
	}
	if _, err := NewSurface(mustFonts(t), math.Inf(1), 20, 1); err == nil {
		t.Errorf("NewSurface(+Inf) succeeded")
	}
}

func TestSurfaceDrawing(t *testing.T) {
	s, err := NewSurface(mustFonts(t), 200, 200, 1)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	s.Fill(frame.Rect{W: 200, H: 200}, color.White)

	red := image.NewUniform(color.RGBA{R: 255, A: 255})
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, red.C)
		}
	}
	s.DrawImage(src, frame.Rect{X: 20, Y: 20, W: 40, H: 40})

	if got := s.RGBA().RGBAAt(40, 40); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("photo pixel = %v, want red", got)
	}
	if got := s.RGBA().RGBAAt(5, 5); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("border pixel = %v, want white", got)
	}

	l := line("Hello", meta.Bold, 40)
	size := NewMetrics(mustFonts(t)).Measure(l)
	r := frame.Rect{X: 10, Y: 100, W: size.W, H: size.H}
	s.DrawText(l, r)

	if !hasDarkPixel(s.RGBA(), image.Rect(10, 100, 10+int(size.W), 100+int(size.H))) {
		t.Errorf("no text pixels inside %+v", r)
	}
	if hasDarkPixel(s.RGBA(), image.Rect(0, 0, 200, 95)) {
		t.Errorf("text drawn above its rect")
	}
}

func TestComposeRaster(t *testing.T) {
	fonts := mustFonts(t)
	c := frame.New(NewMetrics(fonts), Allocator(fonts))

	src := image.NewRGBA(image.Rect(0, 0, 400, 300))
	blue := color.RGBA{B: 255, A: 255}
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			src.SetRGBA(x, y, blue)
		}
	}

	spec := frame.DefaultSpec()
	spec.HorizontalMargin = 20
	spec.TopMargin = 20
	spec.BottomMargin = 120
	spec.BaseCanvasWidth = 1000
	spec.TitleFont = frame.FontScale{Base: 30, Min: 10, Max: 40}
	spec.SpecsFont = frame.FontScale{Base: 20, Min: 8, Max: 30}

	md := meta.CaptureMetadata{}.WithDefaults()
	f, err := c.Compose(frame.NewSourceImage(src, 2), md, spec)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	rgba, ok := f.Image.(*image.RGBA)
	if !ok {
		t.Fatalf("Image is %T, want *image.RGBA", f.Image)
	}
	// 200x150 logical photo, 240x290 logical canvas, rasterized at 2x.
	if got := rgba.Bounds(); got != image.Rect(0, 0, 480, 580) {
		t.Errorf("bounds = %v, want 480x580", got)
	}
	if got := rgba.RGBAAt(2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("frame pixel = %v, want white", got)
	}
	if got := rgba.RGBAAt(240, 200); got != blue {
		t.Errorf("photo pixel = %v, want blue", got)
	}
	band := image.Rect(0, 2*(20+150), 480, 580)
	if !hasDarkPixel(rgba, band) {
		t.Errorf("no metadata text drawn in bottom band")
	}
}

func TestComposeRasterTooLarge(t *testing.T) {
	old := MaxPixels
	MaxPixels = 1000
	defer func() { MaxPixels = old }()

	fonts := mustFonts(t)
	c := frame.New(NewMetrics(fonts), Allocator(fonts))
	_, err := c.Compose(frame.SourceImage{Width: 1000, Height: 1000, Scale: 1}, meta.Defaults, frame.DefaultSpec())
	if !errors.Is(err, frame.ErrEncodingFailed) {
		t.Errorf("Compose() error = %v, want ErrEncodingFailed", err)
	}
}

func hasDarkPixel(img *image.RGBA, r image.Rectangle) bool {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R < 128 && c.G < 128 && c.B < 128 {
				return true
			}
		}
	}
	return false
}

func TestMetricsFaceCacheBounded(t *testing.T) {
	m := NewMetrics(mustFonts(t))

	m.Measure(line("ISO 100", meta.Regular, 24))
	m.Measure(line("ISO 100", meta.Regular, 24+1e-4))
	if n := len(m.cache.faces); n != 1 {
		t.Errorf("sizes within 1/64px created %d faces, want 1", n)
	}

	for i := 0; i < 4*maxFaces; i++ {
		size := 18 + float64(i)*0.37
		m.Measure(line("Shot on ", meta.Regular, size))
		m.Measure(line("iPhone", meta.Bold, size))
		if n := len(m.cache.faces); n > maxFaces {
			t.Fatalf("after %d sizes the cache holds %d faces, want <= %d", i+1, n, maxFaces)
		}
	}

	want := m.Measure(line("24mm ƒ/1.8 1/120s ISO 100", meta.Regular, 72))
	for i := 0; i < maxFaces; i++ {
		m.Measure(line("x", meta.Bold, 10+float64(i)))
	}
	if got := m.Measure(line("24mm ƒ/1.8 1/120s ISO 100", meta.Regular, 72)); got != want {
		t.Errorf("Measure() after eviction = %+v, want %+v", got, want)
	}
}
