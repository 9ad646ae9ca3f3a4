package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/erikote04/framekit/pkg/frame"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"k8s.io/klog/v2"
)

// MaxPixels is the largest canvas, in physical pixels, an allocator will create.
var MaxPixels = 1 << 28

// Surface is a frame.Surface backed by an RGBA image. Logical coordinates are
// multiplied by the surface scale.
type Surface struct {
	img   *image.RGBA
	scale float64
	faces *faceCache
}

// Allocator returns a frame.Allocator that rasterizes with f.
func Allocator(f *Fonts) frame.Allocator {
	return func(width, height, scale float64) (frame.Surface, error) {
		return NewSurface(f, width, height, scale)
	}
}

// NewSurface allocates a surface of width x height logical pixels at scale.
func NewSurface(f *Fonts, width, height, scale float64) (*Surface, error) {
	if scale <= 0 {
		scale = 1
	}
	pw := math.Ceil(width * scale)
	ph := math.Ceil(height * scale)
	if math.IsNaN(pw) || math.IsNaN(ph) || math.IsInf(pw, 0) || math.IsInf(ph, 0) || pw < 0 || ph < 0 {
		return nil, fmt.Errorf("unusable canvas size %vx%v", width, height)
	}
	if pw*ph > float64(MaxPixels) {
		return nil, fmt.Errorf("%.0fx%.0f canvas exceeds %d pixels", pw, ph, MaxPixels)
	}

	klog.V(2).Infof("allocating %.0fx%.0f surface (scale %v)", pw, ph, scale)
	return &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, int(pw), int(ph))),
		scale: scale,
		faces: newFaceCache(f),
	}, nil
}

func (s *Surface) px(r frame.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X*s.scale)),
		int(math.Round(r.Y*s.scale)),
		int(math.Round(r.MaxX()*s.scale)),
		int(math.Round(r.MaxY()*s.scale)),
	)
}

// Fill paints r with c.
func (s *Surface) Fill(r frame.Rect, c color.Color) {
	draw.Draw(s.img, s.px(r), image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawImage scales img into r.
func (s *Surface) DrawImage(img image.Image, r frame.Rect) {
	if img == nil {
		return
	}
	dst := s.px(r)
	if dst.Empty() {
		return
	}
	if dst.Size() == img.Bounds().Size() {
		draw.Draw(s.img, dst, img, img.Bounds().Min, draw.Over)
		return
	}
	draw.CatmullRom.Scale(s.img, dst, img, img.Bounds(), draw.Over, nil)
}

// DrawText draws l with its top-left corner at r's origin.
func (s *Surface) DrawText(l frame.Line, r frame.Rect) {
	var c color.Color = color.Black
	if l.Color != nil {
		c = l.Color
	}

	_, ascent, _ := s.faces.lineExtent(l, s.scale)
	d := &font.Drawer{
		Dst: s.img,
		Src: image.NewUniform(c),
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(r.X * s.scale * 64)),
			Y: fixed.Int26_6(math.Round(r.Y*s.scale*64)) + ascent,
		},
	}

	for _, sp := range l.Spans {
		if sp.Size <= 0 {
			continue
		}
		face, err := s.faces.get(sp.Weight, sp.Size*s.scale)
		if err != nil {
			klog.Errorf("face %s %.1f: %v", sp.Weight, sp.Size*s.scale, err)
			continue
		}
		d.Face = face
		d.DrawString(sp.Text)
	}
}

// Image returns the rasterized canvas.
func (s *Surface) Image() image.Image {
	return s.img
}

// RGBA returns the underlying pixel buffer.
func (s *Surface) RGBA() *image.RGBA {
	return s.img
}
