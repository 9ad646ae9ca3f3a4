package framekit

import (
	"time"

	"github.com/erikote04/framekit/pkg/meta"
)

// ThumbMeta describes a generated image.
type ThumbMeta struct {
	X       int
	Y       int
	RelPath string
	Path    string
}

// Photo represents a source photo with its metadata and generated images.
type Photo struct {
	InPath   string
	OutPath  string
	BasePath string
	ModTime  time.Time
	RelPath  string
	Hier     []string

	Framed ThumbMeta
	Resize map[string]ThumbMeta
	Taken  time.Time

	Keywords    []string
	Title       string
	Description string

	Make      string
	Model     string
	LensModel string

	FocalLength  float64 // millimeters
	Aperture     float64 // f-number
	ExposureTime float64 // seconds
	ISO          int64
	Orientation  int // clockwise rotation in degrees needed to display upright

	Width  int64
	Height int64
}

// Metadata returns the display metadata for p, with fallbacks for anything
// the camera did not record.
func (p *Photo) Metadata() meta.CaptureMetadata {
	model := p.Model
	if model == "" {
		model = p.Make
	}
	return meta.CaptureMetadata{
		DeviceModel:  model,
		FocalLength:  meta.FocalLength(p.FocalLength),
		Aperture:     meta.Aperture(p.Aperture),
		ShutterSpeed: meta.ShutterSpeed(p.ExposureTime),
		ISO:          meta.ISO(p.ISO),
	}.WithDefaults()
}

// AspectRatio returns the width/height of the framed image, or of the source
// when it has not been framed yet. It returns 0 when neither is known.
func (p *Photo) AspectRatio() float64 {
	if p.Framed.X > 0 && p.Framed.Y > 0 {
		return float64(p.Framed.X) / float64(p.Framed.Y)
	}
	w, h := p.Width, p.Height
	if p.Orientation == 90 || p.Orientation == 270 {
		w, h = h, w
	}
	if w > 0 && h > 0 {
		return float64(w) / float64(h)
	}
	return 0
}

// sortTime returns the time p is ordered by.
func (p *Photo) sortTime(o SortOrder) time.Time {
	if o == SortCaptured && !p.Taken.IsZero() {
		return p.Taken
	}
	return p.ModTime
}

// Album represents a collection of photos.
type Album struct {
	InPath  string
	OutPath string
	Hier    []string

	Title       string
	Description string

	Photos []*Photo
}
