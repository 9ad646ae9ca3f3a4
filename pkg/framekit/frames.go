package framekit

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/erikote04/framekit/pkg/frame"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// ModTimeFormat is embedded in generated file names to catch minor adjustments.
var ModTimeFormat = "150405"

// framedRelPath returns the relative path of the framed version of p.
func framedRelPath(p *Photo) string {
	base := filepath.Base(p.RelPath)
	noExt := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Join(filepath.Dir(p.RelPath), "_")
	return urlSafePath(filepath.Join(dir, fmt.Sprintf("%s@framed_%s.jpg", noExt, p.ModTime.Format(ModTimeFormat))))
}

// stale reports whether dest is missing or older than src.
func stale(src, dest string) (bool, error) {
	sst, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}

	dst, err := os.Stat(dest)
	if errors.Is(err, os.ErrNotExist) {
		klog.V(1).Infof("updating %s: does not exist", dest)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}

	if sst.ModTime().After(dst.ModTime()) {
		klog.Infof("updating %s: source newer", dest)
		return true, nil
	}
	return false, nil
}

// copyOriginal copies the source photo into the output tree unless an
// up to date copy is already there.
func copyOriginal(p *Photo, outDir string) error {
	dest := filepath.Join(outDir, urlSafePath(p.RelPath))
	p.OutPath = dest

	sst, err := os.Stat(p.InPath)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	dst, err := os.Stat(dest)
	if err == nil && sst.Size() == dst.Size() && !sst.ModTime().After(dst.ModTime()) {
		return nil
	}

	klog.V(1).Infof("copying %s -> %s", p.InPath, dest)
	if err := copy.Copy(p.InPath, dest); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// upright rotates img so that it displays the way the camera was held.
func upright(img image.Image, degrees int) image.Image {
	if degrees == 0 {
		return img
	}
	return transform.Rotate(img, float64(degrees), &transform.RotationOptions{ResizeBounds: true})
}

// framePhoto writes the framed version of p below outDir, returning the
// framed image if it had to be generated.
func framePhoto(c *Config, p *Photo) (image.Image, error) {
	relPath := framedRelPath(p)
	fullPath := filepath.Join(c.OutDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	update, err := stale(p.InPath, fullPath)
	if err != nil {
		return nil, err
	}

	if !update {
		if rt, err := readThumb(fullPath); err == nil {
			rt.RelPath = relPath
			p.Framed = *rt
			klog.V(1).Infof("found framed: %+v", *rt)
			return nil, nil
		}
		klog.Warningf("unable to read framed image %s, regenerating", fullPath)
	}

	f, err := FrameFile(c, p, fullPath, 1)
	if err != nil {
		return nil, err
	}

	b := f.Image.Bounds()
	p.Framed = ThumbMeta{X: b.Dx(), Y: b.Dy(), RelPath: relPath, Path: fullPath}
	return f.Image, nil
}

// FrameFile frames the photo at p.InPath and saves it to dest as a JPEG.
// scale is the pixel density of the source: 2 renders the frame and text at
// twice the pixel size of a 1x source with the same logical layout.
func FrameFile(c *Config, p *Photo, dest string, scale float64) (*frame.Framed, error) {
	src, err := imgio.Open(p.InPath)
	if err != nil {
		return nil, fmt.Errorf("imgio.Open: %w", err)
	}
	src = upright(src, p.Orientation)

	md := p.Metadata()
	f, err := c.Compositor.Compose(frame.NewSourceImage(src, scale), md, c.Frame)
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", p.InPath, err)
	}

	if err := imgio.Save(dest, f.Image, imgio.JPEGEncoder(c.quality())); err != nil {
		klog.Errorf("save failed: %s", err)
		return nil, fmt.Errorf("%w: save %s: %v", frame.ErrEncodingFailed, dest, err)
	}

	b := f.Image.Bounds()
	klog.Infof("framed %s (%s): %dx%d", p.InPath, md.Specs(), b.Dx(), b.Dy())
	return f, nil
}
