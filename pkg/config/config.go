// Package config loads frame and gallery settings from YAML.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/erikote04/framekit/pkg/frame"
	"github.com/erikote04/framekit/pkg/frame/raster"
	"github.com/erikote04/framekit/pkg/grid"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Frame   FrameConfig   `yaml:"frame"`
	Fonts   FontsConfig   `yaml:"fonts"`
	Grid    GridConfig    `yaml:"grid"`
	Gallery GalleryConfig `yaml:"gallery"`
}

type FrameConfig struct {
	frame.Spec `yaml:",inline"`
	Background string `yaml:"background"` // #rrggbb
	TextColor  string `yaml:"text_color"` // #rrggbb
}

type FontsConfig struct {
	Regular string `yaml:"regular"` // path to a TTF/OTF file, empty for Go Regular
	Bold    string `yaml:"bold"`    // path to a TTF/OTF file, empty for Go Bold
}

type GridConfig struct {
	ContainerWidth float64 `yaml:"container_width"`
	RowHeight      float64 `yaml:"row_height"`
	Spacing        float64 `yaml:"spacing"`
	Terminal       string  `yaml:"terminal"` // ragged or justify
}

type GalleryConfig struct {
	SortBy      string `yaml:"sort_by"` // captured or modified
	Recent      int    `yaml:"recent"`  // images in the recent album
	JPEGQuality int    `yaml:"jpeg_quality"`
	Workers     int    `yaml:"workers"` // 0 means one per CPU
}

// Load returns the embedded defaults, overridden by the YAML file at path if path is set.
func Load(path string) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(defaultYAML, c); err != nil {
		// The embedded file is part of the binary; failing here is a build defect.
		panic("failed to unmarshal embedded default.yaml: " + err.Error())
	}

	if path == "" {
		return c, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// FrameSpec returns the validated frame spec with its colors applied.
func (c *Config) FrameSpec() (frame.Spec, error) {
	s := c.Frame.Spec

	bg, err := ParseHexColor(c.Frame.Background)
	if err != nil {
		return s, fmt.Errorf("background: %w", err)
	}
	fg, err := ParseHexColor(c.Frame.TextColor)
	if err != nil {
		return s, fmt.Errorf("text_color: %w", err)
	}
	s.Background = bg
	s.TextColor = fg

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// GridOptions returns the layout options for album pages.
func (c *Config) GridOptions() (grid.Options, error) {
	o := grid.Options{
		ContainerWidth: c.Grid.ContainerWidth,
		RowHeight:      c.Grid.RowHeight,
		Spacing:        c.Grid.Spacing,
	}

	switch strings.ToLower(c.Grid.Terminal) {
	case "", "ragged":
		o.Terminal = grid.Ragged
	case "justify":
		o.Terminal = grid.JustifyLast
	default:
		return o, fmt.Errorf("unknown terminal row policy %q", c.Grid.Terminal)
	}

	if c.Grid.ContainerWidth <= 0 || c.Grid.RowHeight <= 0 || c.Grid.Spacing < 0 {
		return o, fmt.Errorf("%w: width=%v row_height=%v spacing=%v", grid.ErrInvalidContainer, c.Grid.ContainerWidth, c.Grid.RowHeight, c.Grid.Spacing)
	}
	return o, nil
}

// Compositor returns a compositor rendering with the configured fonts.
func (c *Config) Compositor() (*frame.Compositor, error) {
	f, err := raster.LoadFonts(c.Fonts.Regular, c.Fonts.Bold)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	return frame.New(raster.NewMetrics(f), raster.Allocator(f)), nil
}

// ParseHexColor parses an opaque #rrggbb color. An empty string yields nil.
func ParseHexColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
