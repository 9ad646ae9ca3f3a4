package framekit

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// fieldReader is the subset of exiftool.FileMetadata used to populate a Photo.
type fieldReader interface {
	GetString(k string) (string, error)
	GetInt(k string) (int64, error)
	GetFloat(k string) (float64, error)
	GetStrings(k string) ([]string, error)
}

func read(path string, et *exiftool.Exiftool) (Photo, error) {
	fis := et.ExtractMetadata(path)
	fi := fis[0]

	if fi.Err != nil {
		return Photo{}, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v\n", k, v)
	}

	return fromFields(path, &fi)
}

// fromFields maps EXIF fields onto a Photo. Only the image dimensions are required.
func fromFields(path string, fi fieldReader) (Photo, error) {
	p := Photo{}
	var err error

	p.Make, err = fi.GetString("Make")
	if err != nil {
		klog.V(1).Infof("unable to get make for %s: %v", path, err)
	}

	p.Model, err = fi.GetString("Model")
	if err != nil {
		klog.V(1).Infof("unable to get model for %s: %v", path, err)
	}

	p.LensModel, _ = fi.GetString("LensModel")

	p.Height, err = fi.GetInt("ImageHeight")
	if err != nil {
		return p, fmt.Errorf("get ImageHeight: %w", err)
	}

	p.Width, err = fi.GetInt("ImageWidth")
	if err != nil {
		return p, fmt.Errorf("get ImageWidth: %w", err)
	}

	p.ISO, err = fi.GetInt("ISO")
	if err != nil {
		klog.V(1).Infof("unable to get ISO for %s: %v", path, err)
	}

	p.Aperture, err = fi.GetFloat("FNumber")
	if err != nil {
		p.Aperture, err = fi.GetFloat("ApertureValue")
		if err != nil {
			klog.V(1).Infof("unable to get aperture for %s: %v", path, err)
		}
	}

	if s, err := fi.GetString("ExposureTime"); err == nil {
		p.ExposureTime = parseExposure(s)
	} else {
		klog.V(1).Infof("unable to get exposure time for %s: %v", path, err)
	}

	if s, err := fi.GetString("FocalLength"); err == nil {
		p.FocalLength = parseLeadingFloat(s)
	} else {
		klog.V(1).Infof("unable to get focal length for %s: %v", path, err)
	}

	if s, err := fi.GetString("Orientation"); err == nil {
		p.Orientation = parseOrientation(s)
	}

	p.Keywords, _ = fi.GetStrings("Keywords")
	p.Description, _ = fi.GetString("ImageDescription")

	p.Title, err = fi.GetString("Headline")
	if err != nil {
		klog.V(2).Infof("unable to get headline: %v", err)
	}

	ds, err := fi.GetString("DateTimeOriginal")
	if err != nil {
		klog.V(1).Infof("unable to get date time for %s: %v", path, err)
		return p, nil
	}

	p.Taken, err = time.Parse(exifDate, ds)
	if err != nil {
		klog.Warningf("parse time %q for %s: %v", ds, path, err)
	}

	return p, nil
}

// parseExposure parses "1/120", "0.5" or "2" seconds.
func parseExposure(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0
		}
		return n / d
	}
	return parseLeadingFloat(s)
}

// parseLeadingFloat parses the number at the start of values such as "4.2 mm".
func parseLeadingFloat(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "mm"), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseOrientation maps exiftool's orientation description (or its numeric value) to a clockwise rotation.
func parseOrientation(s string) int {
	switch strings.TrimSpace(s) {
	case "Rotate 90 CW", "6":
		return 90
	case "Rotate 180", "3":
		return 180
	case "Rotate 270 CW", "8":
		return 270
	}
	return 0
}

func isPhoto(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// urlSafePath replaces characters that need escaping in a URL path.
func urlSafePath(p string) string {
	parts := strings.Split(p, string(filepath.Separator))
	for i, part := range parts {
		part = strings.ReplaceAll(part, " ", "_")
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, string(filepath.Separator))
}

// rootNames returns the prefix used for photos below each root: its base
// name, suffixed with -2, -3, ... when an earlier root already took it.
func rootNames(roots []string) []string {
	names := make([]string, len(roots))
	used := map[string]bool{}
	for i, r := range roots {
		base := filepath.Base(filepath.Clean(r))
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// uniqueRoots drops roots that name the same directory as an earlier one.
func uniqueRoots(roots []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range roots {
		k := filepath.Clean(r)
		if abs, err := filepath.Abs(k); err == nil {
			k = abs
		}
		if seen[k] {
			klog.Warningf("ignoring duplicate input directory %s", r)
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// Find returns every photo under roots. With more than one root, each
// photo's RelPath starts with a name unique to its root.
func Find(roots ...string) ([]*Photo, error) {
	found := []*Photo{}

	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	defer et.Close()

	roots = uniqueRoots(roots)
	names := rootNames(roots)
	for i, root := range roots {
		err = godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if path != root && filepath.Base(path)[0] == '.' {
					return godirwalk.SkipThis
				}

				if de.IsDir() || !isPhoto(path) {
					return nil
				}

				klog.V(1).Infof("found %s", path)
				p, err := read(path, et)
				if err != nil {
					klog.Errorf("read failure: %v", err)
					return err
				}

				if err := place(&p, root, path, names[i], len(roots) > 1); err != nil {
					return err
				}

				fi, err := os.Stat(path)
				if err != nil {
					klog.Errorf("stat failure: %v", err)
					return err
				}
				p.ModTime = fi.ModTime()

				found = append(found, &p)
				return nil
			},
		})
		if err != nil {
			return found, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	klog.Infof("found %d photos in %d directories", len(found), len(roots))
	return found, nil
}

// place sets the input and relative paths of p, found at path below root.
func place(p *Photo, root, path, name string, prefixed bool) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	if prefixed {
		rel = filepath.Join(name, rel)
	}
	p.InPath = path
	p.RelPath = rel
	p.BasePath = urlSafePath(filepath.Base(path))
	p.Hier = strings.Split(rel, string(filepath.Separator))
	return nil
}

// Read returns the photos at paths, in order. RelPath is the base name of each file.
func Read(paths ...string) ([]*Photo, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	defer et.Close()

	ps := make([]*Photo, 0, len(paths))
	for _, path := range paths {
		p, err := read(path, et)
		if err != nil {
			return ps, err
		}
		fi, err := os.Stat(path)
		if err != nil {
			return ps, fmt.Errorf("stat: %w", err)
		}
		p.InPath = path
		p.RelPath = filepath.Base(path)
		p.BasePath = urlSafePath(p.RelPath)
		p.Hier = []string{p.RelPath}
		p.ModTime = fi.ModTime()
		ps = append(ps, &p)
	}
	return ps, nil
}
