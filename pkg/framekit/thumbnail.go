package framekit

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// ThumbOpts are thumbnail options. One of X or Y may be zero to keep the aspect ratio.
type ThumbOpts struct {
	X       int
	Y       int
	Quality int
}

// GridThumb is the thumbnail shown in album rows.
var GridThumb = "Grid"

var defaultThumbOpts = map[string]ThumbOpts{
	GridThumb: {Y: 560, Quality: 85},
	"View":    {X: 2048, Quality: 85},
}

// thumbnails creates thumbnails of the framed version of p. framed may be nil,
// in which case it is only loaded if a thumbnail needs to be regenerated.
func thumbnails(c *Config, p *Photo, framed image.Image) (map[string]ThumbMeta, error) {
	klog.V(1).Infof("creating thumbnails for %s in %s", p.Framed.Path, c.OutDir)

	img := framed
	thumbs := map[string]ThumbMeta{}

	for name, t := range c.thumbOpts() {
		relPath := thumbRelPath(p, t)
		fullPath := filepath.Join(c.OutDir, relPath)

		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}

		st, err := os.Stat(fullPath)
		if err == nil && st.Size() > int64(128) && framed == nil {
			klog.V(1).Infof("%s exists (%d bytes)", fullPath, st.Size())
			rt, err := readThumb(fullPath)
			if err == nil {
				rt.RelPath = relPath
				thumbs[name] = *rt
				continue
			}
			klog.Warningf("unable to read thumb: %v", err)
		}

		if img == nil {
			img, err = imgio.Open(p.Framed.Path)
			if err != nil {
				return nil, fmt.Errorf("imgio.Open: %w", err)
			}
		}

		ct, err := createThumb(img, fullPath, t)
		if err != nil {
			klog.Errorf("create failed: %v", err)
			return nil, fmt.Errorf("create thumb: %w", err)
		}

		ct.RelPath = relPath
		thumbs[name] = *ct
		klog.V(1).Infof("created thumb: %+v", ct)
	}

	return thumbs, nil
}

// thumbSize returns the size of a thumbnail of a w x h image. A zero X or Y
// follows the aspect ratio; images are never enlarged.
func thumbSize(w, h int, t ThumbOpts) (int, int) {
	x, y := t.X, t.Y

	if t.X == 0 {
		scale := float64(h) / float64(t.Y)
		x = int(float64(w) / scale)
	}

	if t.Y == 0 {
		scale := float64(w) / float64(t.X)
		y = int(float64(h) / scale)
	}

	if x > w || y > h {
		return w, h
	}
	return x, y
}

func createThumb(i image.Image, path string, t ThumbOpts) (*ThumbMeta, error) {
	klog.V(1).Infof("creating %dx%d thumb: %s - %+v", t.X, t.Y, path, i.Bounds())

	if i.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("no Y for %+v", i.Bounds())
	}

	if i.Bounds().Dx() == 0 {
		return nil, fmt.Errorf("no X for %+v", i.Bounds())
	}

	x, y := thumbSize(i.Bounds().Dx(), i.Bounds().Dy(), t)
	rimg := transform.Resize(i, x, y, transform.Lanczos)
	if err := imgio.Save(path, rimg, imgio.JPEGEncoder(t.Quality)); err != nil {
		klog.Errorf("save failed: %s", err)
		return nil, fmt.Errorf("save: %w", err)
	}

	return &ThumbMeta{X: rimg.Bounds().Dx(), Y: rimg.Bounds().Dy(), Path: path}, nil
}

func readThumb(path string) (*ThumbMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode: %w", err)
	}

	return &ThumbMeta{X: ic.Width, Y: ic.Height, Path: path}, nil
}

// thumbRelPath returns a relative path to a thumbnail, optimizing for both cache busting and SEO.
func thumbRelPath(p *Photo, t ThumbOpts) string {
	base := filepath.Base(p.RelPath)
	ext := filepath.Ext(base)
	noExt := strings.TrimSuffix(base, ext)

	thumbDir := filepath.Join(filepath.Dir(p.RelPath), "_")
	dimensions := ""
	if t.X != 0 {
		dimensions = fmt.Sprintf("x%d", t.X)
	}
	if t.Y != 0 {
		dimensions = fmt.Sprintf("y%d", t.Y)
	}

	newBase := fmt.Sprintf("%s@%s_%s.jpg", noExt, dimensions, p.ModTime.Format(ModTimeFormat))
	return urlSafePath(filepath.Join(thumbDir, newBase))
}
