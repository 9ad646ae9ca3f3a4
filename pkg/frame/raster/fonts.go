// Package raster draws frames onto in-memory RGBA images using OpenType fonts.
package raster

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/erikote04/framekit/pkg/frame"
	"github.com/erikote04/framekit/pkg/meta"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"k8s.io/klog/v2"
)

// Fonts holds the parsed regular and bold typefaces. It is read-only once loaded.
type Fonts struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// LoadFonts loads TTF/OTF files for each weight. An empty or unreadable path
// falls back to the embedded Go font of that weight.
func LoadFonts(regularPath, boldPath string) (*Fonts, error) {
	regular, err := parseFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("regular: %w", err)
	}
	bold, err := parseFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("bold: %w", err)
	}
	return &Fonts{regular: regular, bold: bold}, nil
}

// DefaultFonts returns the embedded Go Regular and Go Bold fonts.
func DefaultFonts() (*Fonts, error) {
	return LoadFonts("", "")
}

func parseFont(path string, fallback []byte) (*opentype.Font, error) {
	data := fallback
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			klog.Warningf("could not load font %q, using default: %v", path, err)
		} else {
			data = bs
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// maxFaces bounds a faceCache. The cache is emptied when it fills up.
var maxFaces = 64

type faceKey struct {
	weight meta.Weight
	size   fixed.Int26_6
}

// newFace returns a face at size pixels.
func (f *Fonts) newFace(w meta.Weight, size float64) (font.Face, error) {
	tf := f.regular
	if w == meta.Bold {
		tf = f.bold
	}
	return opentype.NewFace(tf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// faceCache creates faces lazily. It is not safe for concurrent use.
type faceCache struct {
	fonts *Fonts
	faces map[faceKey]font.Face
}

func newFaceCache(f *Fonts) *faceCache {
	return &faceCache{fonts: f, faces: map[faceKey]font.Face{}}
}

// get returns a face for size rounded to 1/64 pixel.
func (c *faceCache) get(w meta.Weight, size float64) (font.Face, error) {
	k := faceKey{weight: w, size: fixed.Int26_6(math.Round(size * 64))}
	if face, ok := c.faces[k]; ok {
		return face, nil
	}
	face, err := c.fonts.newFace(w, toFloat(k.size))
	if err != nil {
		return nil, err
	}
	if len(c.faces) >= maxFaces {
		klog.V(2).Infof("dropping %d cached faces", len(c.faces))
		for old, f := range c.faces {
			f.Close()
			delete(c.faces, old)
		}
	}
	c.faces[k] = face
	return face, nil
}

// lineExtent measures a line of spans scaled by scale. Widths are summed;
// ascent and descent are the largest of any span.
func (c *faceCache) lineExtent(l frame.Line, scale float64) (width, ascent, descent fixed.Int26_6) {
	for _, s := range l.Spans {
		if s.Size <= 0 {
			continue
		}
		face, err := c.get(s.Weight, s.Size*scale)
		if err != nil {
			klog.Errorf("face %s %.1f: %v", s.Weight, s.Size*scale, err)
			continue
		}
		width += font.MeasureString(face, s.Text)
		m := face.Metrics()
		ascent = max(ascent, m.Ascent)
		descent = max(descent, m.Descent)
	}
	return width, ascent, descent
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Metrics measures text with real font metrics. It is safe for concurrent use.
type Metrics struct {
	mu    sync.Mutex
	cache *faceCache
}

// NewMetrics returns text metrics for f.
func NewMetrics(f *Fonts) *Metrics {
	return &Metrics{cache: newFaceCache(f)}
}

// Measure returns the advance width and line height of l.
func (m *Metrics) Measure(l frame.Line) frame.Size {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, a, d := m.cache.lineExtent(l, 1)
	return frame.Size{W: toFloat(w), H: toFloat(a + d)}
}
