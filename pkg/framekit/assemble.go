package framekit

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var favKeyword = "fav"

// an Assembly is an assembled collection of framed photos.
type Assembly struct {
	Photos    []*Photo
	Albums    []*Album
	Favorites []*Album
	Recent    *Album
}

// Album returns the album whose input path is inPath, or nil.
func (a *Assembly) Album(inPath string) *Album {
	if a.Recent != nil && (inPath == "recent" || inPath == a.Recent.InPath) {
		return a.Recent
	}
	for _, as := range [][]*Album{a.Albums, a.Favorites} {
		for _, al := range as {
			if al.InPath == inPath {
				return al
			}
		}
	}
	return nil
}

// Collect finds, frames and thumbnails every photo, then groups them into albums.
func Collect(c *Config) (*Assembly, error) {
	if c.Compositor == nil {
		return nil, fmt.Errorf("no compositor configured")
	}
	klog.Infof("build: %s -> %s", c.InDirs, c.OutDir)

	ps, err := Find(c.InDirs...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	if err := process(c, ps); err != nil {
		return nil, err
	}

	return assemble(c, ps), nil
}

// process frames and thumbnails photos in parallel. Each photo is only
// touched by one goroutine.
func process(c *Config, ps []*Photo) error {
	var g errgroup.Group
	g.SetLimit(c.workers())

	for _, p := range ps {
		p := p // per-iteration copy for go < 1.22 loop semantics
		g.Go(func() error {
			if err := copyOriginal(p, c.OutDir); err != nil {
				return fmt.Errorf("copy %s: %w", p.InPath, err)
			}

			framed, err := framePhoto(c, p)
			if err != nil {
				return fmt.Errorf("frame %s: %w", p.InPath, err)
			}

			p.Resize, err = thumbnails(c, p, framed)
			if err != nil {
				return fmt.Errorf("thumbnails %s: %w", p.InPath, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// assemble groups processed photos by directory and favorite keyword.
func assemble(c *Config, ps []*Photo) *Assembly {
	albums := map[string]*Album{}
	favs := map[string]*Album{}
	for _, p := range ps {
		rd := filepath.Dir(p.RelPath)

		if albums[rd] == nil {
			albums[rd] = &Album{
				InPath:  rd,
				OutPath: filepath.Join(c.OutDir, rd),
				Photos:  []*Photo{},
				Title:   filepath.Base(rd),
				Hier:    strings.Split(rd, string(filepath.Separator)),
			}
		}
		albums[rd].Photos = append(albums[rd].Photos, p)

		if !slices.Contains(p.Keywords, favKeyword) {
			continue
		}

		for _, k := range p.Keywords {
			if k == favKeyword {
				k = "all"
			}

			if favs[k] == nil {
				favs[k] = &Album{
					InPath:  filepath.Join("tags", k),
					OutPath: filepath.Join(c.OutDir, "tags", k),
					Photos:  []*Photo{},
					Title:   k,
					Hier:    []string{"tags", k},
				}
			}
			favs[k].Photos = append(favs[k].Photos, p)
		}
	}

	as := []*Album{}
	for _, a := range albums {
		sortPhotos(a.Photos, c.SortBy)
		as = append(as, a)
	}
	sort.Slice(as, func(i, j int) bool {
		return as[i].InPath < as[j].InPath
	})

	fs := []*Album{}
	for _, f := range favs {
		if len(f.Photos) > 1 {
			sortPhotos(f.Photos, c.SortBy)
			fs = append(fs, f)
		}
	}
	sort.Slice(fs, func(i, j int) bool {
		return fs[i].Title < fs[j].Title
	})

	all := slices.Clone(ps)
	sortPhotos(all, c.SortBy)
	recent := &Album{
		Title:   "Recent",
		InPath:  "recent",
		OutPath: filepath.Join(c.OutDir, "recent"),
		Hier:    []string{"recent"},
		Photos:  all,
	}
	if c.Recent > 0 && len(recent.Photos) > c.Recent {
		recent.Photos = recent.Photos[0:c.Recent]
	}

	return &Assembly{
		Photos:    ps,
		Albums:    as,
		Favorites: fs,
		Recent:    recent,
	}
}

// sortPhotos orders ps newest first along o, breaking ties by path.
func sortPhotos(ps []*Photo, o SortOrder) {
	sort.SliceStable(ps, func(i, j int) bool {
		ti, tj := ps[i].sortTime(o), ps[j].sortTime(o)
		if ti.Equal(tj) {
			return ps[i].RelPath < ps[j].RelPath
		}
		return ti.After(tj)
	})
}
