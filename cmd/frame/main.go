// frame adds a caption frame to individual photos.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/erikote04/framekit/pkg/config"
	"github.com/erikote04/framekit/pkg/framekit"
)

var (
	configPath = flag.String("config", "", "YAML file overriding the built-in frame settings")
	outDir     = flag.String("out", "", "output directory (defaults to the directory of each photo)")
	scale      = flag.Float64("scale", 1, "pixel density of the source photos")
	quality    = flag.Int("quality", 0, "JPEG quality (defaults to the configured gallery quality)")
	quiet      = flag.Bool("q", false, "hide the progress bar")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if flag.NArg() == 0 {
		klog.Exitf("usage: frame [flags] photo.jpg ...")
	}

	c, err := newConfig()
	if err != nil {
		klog.Exitf("config: %v", err)
	}

	dests, err := destinations(flag.Args(), *outDir)
	if err != nil {
		klog.Exitf("%v", err)
	}

	ps, err := framekit.Read(flag.Args()...)
	if err != nil {
		klog.Exitf("read: %v", err)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			klog.Exitf("mkdir: %v", err)
		}
	}

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.NewOptions(len(ps),
			progressbar.OptionSetDescription("Framing"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i, p := range ps {
		i, p := i, p // per-iteration copy for go < 1.22 loop semantics
		g.Go(func() error {
			dest := dests[i]
			if _, err := framekit.FrameFile(c, p, dest, *scale); err != nil {
				return fmt.Errorf("%s: %w", p.InPath, err)
			}
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		klog.Exitf("frame failed: %v", err)
	}
}

func newConfig() (*framekit.Config, error) {
	fc, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	spec, err := fc.FrameSpec()
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}

	comp, err := fc.Compositor()
	if err != nil {
		return nil, err
	}

	q := fc.Gallery.JPEGQuality
	if *quality > 0 {
		q = *quality
	}

	return &framekit.Config{
		Compositor:  comp,
		Frame:       spec,
		JPEGQuality: q,
		Workers:     fc.Gallery.Workers,
	}, nil
}

// destinations returns the output path of each input, failing when two
// inputs would be written to the same file.
func destinations(paths []string, dir string) ([]string, error) {
	dests := make([]string, len(paths))
	seen := map[string]string{}
	for i, path := range paths {
		dest := outPath(path, dir)
		if prev, ok := seen[dest]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, path, dest)
		}
		seen[dest] = path
		dests[i] = dest
	}
	return dests, nil
}

// outPath returns where the framed version of path is written.
func outPath(path, dir string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_framed.jpg"
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, name)
}
