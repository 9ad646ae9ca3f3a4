package frame

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// ErrInvalidSpec is returned when a frame spec has a negative or non-finite value.
var ErrInvalidSpec = errors.New("invalid frame spec")

// FontScale sizes a line of text relative to the canvas width.
type FontScale struct {
	Base float64 `yaml:"base"` // size at BaseCanvasWidth
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"` // 0 means no ceiling
}

// Size returns Base*sqrt(canvasWidth/baseCanvasWidth), clamped to [Min, Max].
//
// Growing with the square root keeps text legible on small photos without
// overpowering very large ones.
func (f FontScale) Size(canvasWidth, baseCanvasWidth float64) float64 {
	s := f.Base
	if baseCanvasWidth > 0 && canvasWidth > 0 {
		s = f.Base * math.Sqrt(canvasWidth/baseCanvasWidth)
	}
	if f.Max > 0 && s > f.Max {
		s = f.Max
	}
	if s < f.Min {
		s = f.Min
	}
	return s
}

// Spec configures the margins and typography of a frame. Units are logical pixels.
type Spec struct {
	HorizontalMargin  float64 `yaml:"horizontal_margin"`
	TopMargin         float64 `yaml:"top_margin"`
	BottomMargin      float64 `yaml:"bottom_margin"`
	TextBottomPadding float64 `yaml:"text_bottom_padding"`
	LineSpacing       float64 `yaml:"line_spacing"`
	// ImageScaleFactor shrinks the photo within the frame. Zero means 1.
	ImageScaleFactor float64 `yaml:"image_scale_factor"`
	BaseCanvasWidth  float64 `yaml:"base_canvas_width"`

	TitleFont FontScale `yaml:"title_font"`
	SpecsFont FontScale `yaml:"specs_font"`

	Background color.Color `yaml:"-"` // white when nil
	TextColor  color.Color `yaml:"-"` // black when nil
}

// DefaultSpec returns margins sized for full resolution phone photos.
func DefaultSpec() Spec {
	return Spec{
		HorizontalMargin:  120,
		TopMargin:         120,
		BottomMargin:      360,
		TextBottomPadding: 40,
		LineSpacing:       16,
		ImageScaleFactor:  1,
		BaseCanvasWidth:   4000,
		TitleFont:         FontScale{Base: 96, Min: 24, Max: 160},
		SpecsFont:         FontScale{Base: 72, Min: 18, Max: 120},
	}
}

// Validate reports whether every value of the spec is usable.
func (s Spec) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"horizontal_margin", s.HorizontalMargin},
		{"top_margin", s.TopMargin},
		{"bottom_margin", s.BottomMargin},
		{"text_bottom_padding", s.TextBottomPadding},
		{"line_spacing", s.LineSpacing},
		{"image_scale_factor", s.ImageScaleFactor},
		{"base_canvas_width", s.BaseCanvasWidth},
		{"title_font.base", s.TitleFont.Base},
		{"title_font.min", s.TitleFont.Min},
		{"title_font.max", s.TitleFont.Max},
		{"specs_font.base", s.SpecsFont.Base},
		{"specs_font.min", s.SpecsFont.Min},
		{"specs_font.max", s.SpecsFont.Max},
	}
	for _, f := range fields {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidSpec, f.name, f.v)
		}
	}

	if s.BaseCanvasWidth == 0 {
		return fmt.Errorf("%w: base_canvas_width must be positive", ErrInvalidSpec)
	}

	for name, fs := range map[string]FontScale{"title_font": s.TitleFont, "specs_font": s.SpecsFont} {
		if fs.Max > 0 && fs.Min > fs.Max {
			return fmt.Errorf("%w: %s min %v exceeds max %v", ErrInvalidSpec, name, fs.Min, fs.Max)
		}
	}

	return nil
}

func (s Spec) scaleFactor() float64 {
	if s.ImageScaleFactor == 0 {
		return 1
	}
	return s.ImageScaleFactor
}

func (s Spec) background() color.Color {
	if s.Background == nil {
		return color.White
	}
	return s.Background
}

func (s Spec) textColor() color.Color {
	if s.TextColor == nil {
		return color.Black
	}
	return s.TextColor
}
