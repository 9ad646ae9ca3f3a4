// Package frame composes a photo onto a bordered canvas with its capture metadata.
package frame

import (
	"errors"
	"fmt"
	"image"

	"github.com/erikote04/framekit/pkg/meta"
	"k8s.io/klog/v2"
)

// ErrEncodingFailed is returned when a canvas of the computed size cannot be allocated or rasterized.
var ErrEncodingFailed = errors.New("frame encoding failed")

// SourceImage is a decoded photo. Width and Height are logical units;
// the pixel buffer holds Width*Scale by Height*Scale pixels.
type SourceImage struct {
	Pixels image.Image
	Width  float64
	Height float64
	Scale  float64
}

// NewSourceImage describes img as having scale physical pixels per logical pixel.
func NewSourceImage(img image.Image, scale float64) SourceImage {
	if scale <= 0 {
		scale = 1
	}
	b := img.Bounds()
	return SourceImage{
		Pixels: img,
		Width:  float64(b.Dx()) / scale,
		Height: float64(b.Dy()) / scale,
		Scale:  scale,
	}
}

func (s SourceImage) scale() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

// Plan is the geometry of a framed photo.
type Plan struct {
	Canvas Size
	Photo  Rect

	TitleSize float64
	SpecsSize float64

	Title     Line
	Specs     Line
	TitleRect Rect
	SpecsRect Rect

	// Overflow is set when the text block is taller than the bottom margin.
	Overflow bool
}

// Framed is a composed frame.
type Framed struct {
	Width  float64
	Height float64
	Scale  float64
	Image  image.Image
	Plan   Plan
}

// Compositor draws frames. It is safe for concurrent use when its
// TextMetrics is.
type Compositor struct {
	metrics  TextMetrics
	allocate Allocator
}

// New returns a compositor that measures text with m and draws on surfaces from a.
func New(m TextMetrics, a Allocator) *Compositor {
	return &Compositor{metrics: m, allocate: a}
}

// Plan computes where the photo and both text lines go, without drawing.
func (c *Compositor) Plan(img SourceImage, md meta.CaptureMetadata, spec Spec) (Plan, error) {
	if err := spec.Validate(); err != nil {
		return Plan{}, err
	}

	sf := spec.scaleFactor()
	scaledW := img.Width * sf
	scaledH := img.Height * sf

	p := Plan{
		Canvas: Size{
			W: scaledW + 2*spec.HorizontalMargin,
			H: scaledH + spec.TopMargin + spec.BottomMargin,
		},
		Photo: Rect{X: spec.HorizontalMargin, Y: spec.TopMargin, W: scaledW, H: scaledH},
	}

	p.TitleSize = spec.TitleFont.Size(p.Canvas.W, spec.BaseCanvasWidth)
	p.SpecsSize = spec.SpecsFont.Size(p.Canvas.W, spec.BaseCanvasWidth)

	p.Title = NewLine(md.Title(), p.TitleSize, spec.textColor())
	p.Specs = NewLine(meta.RichText{{Text: md.Specs(), Weight: meta.Regular}}, p.SpecsSize, spec.textColor())

	ts := c.metrics.Measure(p.Title)
	ss := c.metrics.Measure(p.Specs)

	total := ts.H + spec.LineSpacing + ss.H
	p.Overflow = total > spec.BottomMargin

	startY := p.Photo.MaxY() + (spec.BottomMargin-total)/2
	p.TitleRect = Rect{X: (p.Canvas.W - ts.W) / 2, Y: startY, W: ts.W, H: ts.H}
	p.SpecsRect = Rect{X: (p.Canvas.W - ss.W) / 2, Y: p.TitleRect.MaxY() + spec.LineSpacing, W: ss.W, H: ss.H}

	return p, nil
}

// Compose draws img inside a frame described by spec, with md centered in the bottom margin.
func (c *Compositor) Compose(img SourceImage, md meta.CaptureMetadata, spec Spec) (*Framed, error) {
	p, err := c.Plan(img, md, spec)
	if err != nil {
		return nil, err
	}

	if p.Overflow {
		klog.Warningf("metadata text (%q) overflows the %.0fpx bottom margin", p.Specs.String(), spec.BottomMargin)
	}

	scale := img.scale()
	s, err := c.allocate(p.Canvas.W, p.Canvas.H, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %.0fx%.0f@%vx: %v", ErrEncodingFailed, p.Canvas.W, p.Canvas.H, scale, err)
	}

	s.Fill(Rect{W: p.Canvas.W, H: p.Canvas.H}, spec.background())
	if img.Pixels != nil {
		s.DrawImage(img.Pixels, p.Photo)
	}
	s.DrawText(p.Title, p.TitleRect)
	s.DrawText(p.Specs, p.SpecsRect)

	klog.V(1).Infof("composed %.0fx%.0f frame (title %.1fpt, specs %.1fpt)", p.Canvas.W, p.Canvas.H, p.TitleSize, p.SpecsSize)

	return &Framed{
		Width:  p.Canvas.W,
		Height: p.Canvas.H,
		Scale:  scale,
		Image:  s.Image(),
		Plan:   p,
	}, nil
}

// MinBottomMargin returns the bottom margin needed to fit both lines of md at
// their minimum font sizes, plus TextBottomPadding above and below.
func (c *Compositor) MinBottomMargin(md meta.CaptureMetadata, spec Spec) float64 {
	title := c.metrics.Measure(NewLine(md.Title(), spec.TitleFont.Min, spec.textColor()))
	specs := c.metrics.Measure(NewLine(meta.RichText{{Text: md.Specs()}}, spec.SpecsFont.Min, spec.textColor()))
	return title.H + spec.LineSpacing + specs.H + 2*spec.TextBottomPadding
}
