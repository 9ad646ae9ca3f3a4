package frame

import (
	"image"
	"image/color"
	"strings"

	"github.com/erikote04/framekit/pkg/meta"
)

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// Size is a width and height in logical pixels.
type Size struct {
	W, H float64
}

// Span is a run of text at a single weight and size.
type Span struct {
	Text   string
	Weight meta.Weight
	Size   float64
}

// Line is a styled, single-line text value.
type Line struct {
	Spans []Span
	Color color.Color
}

// NewLine applies a font size and color to every run of t.
func NewLine(t meta.RichText, size float64, c color.Color) Line {
	l := Line{Color: c}
	for _, r := range t {
		l.Spans = append(l.Spans, Span{Text: r.Text, Weight: r.Weight, Size: size})
	}
	return l
}

func (l Line) String() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// TextMetrics measures the rendered size of a line of text.
// Implementations must be safe for concurrent use.
type TextMetrics interface {
	Measure(l Line) Size
}

// Canvas is a drawing target addressed in logical pixels.
type Canvas interface {
	Fill(r Rect, c color.Color)
	DrawImage(img image.Image, r Rect)
	DrawText(l Line, r Rect)
}

// Surface is a canvas whose result can be read back.
type Surface interface {
	Canvas
	// Image returns the rasterized result, or nil if the surface does not rasterize.
	Image() image.Image
}

// Allocator creates a surface of the given logical size, rasterized at scale.
type Allocator func(width, height, scale float64) (Surface, error)

// OpKind identifies a recorded draw call.
type OpKind string

const (
	OpFill  OpKind = "fill"
	OpImage OpKind = "image"
	OpText  OpKind = "text"
)

// Op is a single recorded draw call.
type Op struct {
	Kind  OpKind
	Rect  Rect
	Color color.Color
	Image image.Image
	Line  Line
}

// Recorder is a Surface that records draw calls instead of rasterizing them.
type Recorder struct {
	Width  float64
	Height float64
	Scale  float64
	Ops    []Op
}

// NewRecorder is an Allocator for a Recorder.
func NewRecorder(width, height, scale float64) (Surface, error) {
	return &Recorder{Width: width, Height: height, Scale: scale}, nil
}

func (r *Recorder) Fill(rect Rect, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: rect, Color: c})
}

func (r *Recorder) DrawImage(img image.Image, rect Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpImage, Rect: rect, Image: img})
}

func (r *Recorder) DrawText(l Line, rect Rect) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Rect: rect, Line: l})
}

// Image always returns nil.
func (r *Recorder) Image() image.Image { return nil }
