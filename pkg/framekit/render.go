package framekit

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

//go:embed assets/index.tmpl
var idxTmpl string

//go:embed assets/album.tmpl
var albumTmpl string

//go:embed assets/style.css
var styleText string

// Render writes an HTML page for every album in a, plus a top-level index.
func Render(c *Config, a *Assembly) error {
	if err := writeAlbums(c, a.Albums); err != nil {
		return fmt.Errorf("write albums: %w", err)
	}

	if err := writeAlbums(c, a.Favorites); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}

	if a.Recent != nil {
		if err := writeAlbums(c, []*Album{a.Recent}); err != nil {
			return fmt.Errorf("write recent: %w", err)
		}
	}

	if err := writeIndex(c, a); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	return nil
}

func writeIndex(c *Config, a *Assembly) error {
	klog.V(1).Infof("writing album index with %d albums ...", len(a.Albums))
	bs, err := renderAlbumIndex(c, a)
	if err != nil {
		return fmt.Errorf("render albums: %w", err)
	}

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	p := filepath.Join(c.OutDir, "index.html")
	klog.V(1).Infof("Writing album index to %s", p)
	return os.WriteFile(p, bs, 0o644)
}

func writeAlbums(c *Config, as []*Album) error {
	klog.Infof("Writing out %d albums ...", len(as))
	for _, a := range as {
		klog.V(1).Infof("rendering album %s [%s] with %d photos ...", a.Title, a.OutPath, len(a.Photos))
		bs, err := renderAlbum(c, a)
		if err != nil {
			return fmt.Errorf("render album %s: %w", a.InPath, err)
		}

		if err := os.MkdirAll(a.OutPath, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}

		p := filepath.Join(a.OutPath, "index.html")
		klog.V(1).Infof("Writing album index to %s", p)

		if err := os.WriteFile(p, bs, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
	}

	return nil
}

func renderAlbum(c *Config, a *Album) ([]byte, error) {
	tmpl, err := template.New("album").Funcs(tmplFunctions()).Parse(albumTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	rows, height, err := Layout(a, c.Grid)
	if err != nil {
		return nil, err
	}

	data := struct {
		Title      string
		Collection string
		Album      *Album
		Rows       []TileRow
		Width      float64
		Height     float64
		Style      template.CSS
	}{
		Collection: c.Collection,
		Title:      a.Title,
		Album:      a,
		Rows:       rows,
		Width:      c.Grid.ContainerWidth,
		Height:     height,
		Style:      template.CSS(styleText),
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}

func renderAlbumIndex(c *Config, a *Assembly) ([]byte, error) {
	tmpl, err := template.New("album index").Funcs(tmplFunctions()).Parse(idxTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	data := struct {
		Collection  string
		Description string
		OutDir      string
		Albums      []*Album
		Favorites   []*Album
		Recent      *Album
		Style       template.CSS
	}{
		Collection:  c.Collection,
		Description: c.Description,
		OutDir:      c.OutDir,
		Albums:      a.Albums,
		Favorites:   a.Favorites,
		Recent:      a.Recent,
		Style:       template.CSS(styleText),
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}

// tmplFunctions are functions available to our templates.
func tmplFunctions() template.FuncMap {
	return template.FuncMap{
		"RelPath": func(b string, s string) string {
			r, err := filepath.Rel(b, s)
			if err != nil {
				return fmt.Sprintf("ERROR[%v]", err)
			}
			return filepath.ToSlash(r)
		},
		"ToRoot": func(hier []string) string {
			relPath := []string{}
			for range hier {
				relPath = append(relPath, "..")
			}
			return strings.Join(relPath, "/")
		},
		"First": func(a *Album) *Photo {
			if len(a.Photos) == 0 {
				return &Photo{}
			}
			return a.Photos[0]
		},
		"Thumb": func(p *Photo) ThumbMeta {
			if t, ok := p.Resize[GridThumb]; ok {
				return t
			}
			return p.Framed
		},
		"Px": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"BasePath": filepath.Base,
	}
}
