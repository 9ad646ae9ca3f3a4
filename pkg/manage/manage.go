// Package manage provides HTTP handlers for browsing framed photo albums.
package manage

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/erikote04/framekit/pkg/framekit"
	"github.com/erikote04/framekit/pkg/grid"
	"k8s.io/klog/v2"
)

// Server serves layouts and framed photos for the most recent assembly.
type Server struct {
	c *framekit.Config

	mu sync.RWMutex
	a  *framekit.Assembly
}

// New creates a new server.
func New(c *framekit.Config, a *framekit.Assembly) *Server {
	return &Server{c: c, a: a}
}

// SetAssembly replaces the assembly served, typically after a rebuild.
func (s *Server) SetAssembly(a *framekit.Assembly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a = a
}

func (s *Server) album(inPath string) *framekit.Album {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.a == nil {
		return nil
	}
	return s.a.Album(inPath)
}

// TileJSON is a placed photo in a layout response.
type TileJSON struct {
	Path        string  `json:"path"`
	Thumb       string  `json:"thumb,omitempty"`
	Framed      string  `json:"framed,omitempty"`
	AspectRatio float64 `json:"aspect_ratio"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"w"`
	H           float64 `json:"h"`
}

// RowJSON is a row in a layout response.
type RowJSON struct {
	Y         float64    `json:"y"`
	Height    float64    `json:"height"`
	Justified bool       `json:"justified"`
	Tiles     []TileJSON `json:"tiles"`
}

// LayoutJSON is the response of LayoutHandler.
type LayoutJSON struct {
	Album  string    `json:"album"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Rows   []RowJSON `json:"rows"`
}

// parseFloat returns def when s is empty.
func parseFloat(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// LayoutHandler returns the justified layout of an album for a container width.
//
//	GET ?album=2024/paris&width=1200[&row_height=240][&spacing=8][&justify_last=1]
func (s *Server) LayoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		o := s.c.Grid

		var err error
		o.ContainerWidth, err = parseFloat(q.Get("width"), o.ContainerWidth)
		if err != nil {
			http.Error(w, "bad width: "+err.Error(), http.StatusBadRequest)
			return
		}
		o.RowHeight, err = parseFloat(q.Get("row_height"), o.RowHeight)
		if err != nil {
			http.Error(w, "bad row_height: "+err.Error(), http.StatusBadRequest)
			return
		}
		o.Spacing, err = parseFloat(q.Get("spacing"), o.Spacing)
		if err != nil {
			http.Error(w, "bad spacing: "+err.Error(), http.StatusBadRequest)
			return
		}
		if v := q.Get("justify_last"); v != "" {
			jl, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "bad justify_last: "+err.Error(), http.StatusBadRequest)
				return
			}
			o.Terminal = grid.Ragged
			if jl {
				o.Terminal = grid.JustifyLast
			}
		}

		name := q.Get("album")
		a := s.album(name)
		if a == nil {
			http.Error(w, "album not found", http.StatusNotFound)
			return
		}

		rows, height, err := framekit.Layout(a, o)
		if err != nil {
			klog.Warningf("layout %q: %v", name, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := LayoutJSON{Album: a.InPath, Width: o.ContainerWidth, Height: height, Rows: []RowJSON{}}
		for _, row := range rows {
			rj := RowJSON{Y: row.Y, Height: row.Height, Justified: row.Justified}
			for _, t := range row.Tiles {
				rj.Tiles = append(rj.Tiles, TileJSON{
					Path:        t.Photo.RelPath,
					Thumb:       t.Photo.Resize[framekit.GridThumb].RelPath,
					Framed:      t.Photo.Framed.RelPath,
					AspectRatio: t.Photo.AspectRatio(),
					X:           t.X,
					Y:           t.Y,
					W:           t.W,
					H:           t.H,
				})
			}
			resp.Rows = append(resp.Rows, rj)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			klog.Errorf("encode layout: %v", err)
		}
	}
}

// FrameHandler serves the framed JPEG of a photo.
//
//	GET ?album=2024/paris&path=2024/paris/IMG_0001.jpg
func (s *Server) FrameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		a := s.album(q.Get("album"))
		if a == nil {
			http.Error(w, "album not found", http.StatusNotFound)
			return
		}

		path := q.Get("path")
		for _, p := range a.Photos {
			if p.RelPath != path {
				continue
			}
			if p.Framed.Path == "" {
				http.Error(w, "photo has not been framed", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "image/jpeg")
			http.ServeFile(w, r, p.Framed.Path)
			return
		}
		http.Error(w, "photo not found", http.StatusNotFound)
	}
}
