package main

import (
	"flag"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"k8s.io/klog/v2"

	"github.com/erikote04/framekit/pkg/config"
	"github.com/erikote04/framekit/pkg/framekit"
	"github.com/erikote04/framekit/pkg/manage"
	"github.com/fsnotify/fsnotify"
)

// dirList is a repeatable string flag.
type dirList []string

func (d *dirList) String() string { return strings.Join(*d, ",") }

func (d *dirList) Set(v string) error {
	*d = append(*d, v)
	return nil
}

var (
	inDirs      dirList
	outDir      = flag.String("out", "", "Location of output directory")
	configPath  = flag.String("config", "", "YAML file overriding the built-in frame and gallery settings")
	title       = flag.String("title", "framekit", "Title of photo collection")
	description = flag.String("description", "", "description of photo collection")
	listen      = flag.Bool("listen", false, "serve content via HTTP")
	addr        = flag.String("addr", "localhost:12800", "host:port to bind to in listen mode")
	watchFlag   = flag.Bool("watch", false, "watch for changes to input directories and rebuild")
)

func main() {
	flag.Var(&inDirs, "in", "Location of an input directory (repeatable)")
	klog.InitFlags(nil)
	flag.Parse()

	if len(inDirs) == 0 {
		klog.Exitf("--in is a required flag")
	}

	if *outDir == "" {
		klog.Exitf("--out is a required flag")
	}

	c, err := newConfig()
	if err != nil {
		klog.Exitf("config: %v", err)
	}

	a, err := build(c)
	if err != nil {
		klog.Exitf("%v", err)
	}

	s := manage.New(c, a)

	var wg sync.WaitGroup
	if *watchFlag {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch(c, a, s); err != nil {
				klog.Errorf("watch: %v", err)
			}
		}()
	}

	if *listen {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(*outDir, *addr, s)
		}()
	}

	wg.Wait()
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

	o, err := fc.GridOptions()
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}

	sortBy, err := framekit.ParseSortOrder(fc.Gallery.SortBy)
	if err != nil {
		return nil, fmt.Errorf("gallery: %w", err)
	}

	comp, err := fc.Compositor()
	if err != nil {
		return nil, err
	}

	return &framekit.Config{
		InDirs:      inDirs,
		OutDir:      *outDir,
		Collection:  *title,
		Description: *description,
		Compositor:  comp,
		Frame:       spec,
		Grid:        o,
		SortBy:      sortBy,
		Recent:      fc.Gallery.Recent,
		JPEGQuality: fc.Gallery.JPEGQuality,
		Workers:     fc.Gallery.Workers,
	}, nil
}

func build(c *framekit.Config) (*framekit.Assembly, error) {
	a, err := framekit.Collect(c)
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}

	if err := framekit.Render(c, a); err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return a, nil
}

// serve serves the gallery and its layout API via HTTP
func serve(path string, addr string, s *manage.Server) {
	http.Handle("/", http.FileServer(http.Dir(path)))
	http.HandleFunc("/api/layout", s.LayoutHandler())
	http.HandleFunc("/api/frame", s.FrameHandler())

	klog.Infof("Listening on %s...", addr)
	err := http.ListenAndServe(addr, nil)
	if err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}

// watchDirs returns the input directories and every album directory below them.
func watchDirs(c *framekit.Config, a *framekit.Assembly) []string {
	dirs := slices.Clone(c.InDirs)
	for _, p := range a.Photos {
		dirs = append(dirs, filepath.Dir(p.InPath))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// watch watches the input directories for changes and rebuilds
func watch(c *framekit.Config, a *framekit.Assembly, s *manage.Server) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	dirs := watchDirs(c, a)
	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %v", event)
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			na, err := build(c)
			if err != nil {
				klog.Errorf("rebuild: %v", err)
				continue
			}
			s.SetAssembly(na)

			for _, d := range watchDirs(c, na) {
				if !slices.Contains(w.WatchList(), d) {
					if err := w.Add(d); err != nil {
						klog.Warningf("watch %s: %v", d, err)
					}
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}
