// Package framekit builds framed photo galleries laid out in justified rows.
package framekit

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/erikote04/framekit/pkg/frame"
	"github.com/erikote04/framekit/pkg/grid"
)

// SortOrder selects the time axis images are sorted by, newest first.
type SortOrder string

const (
	// SortCaptured sorts by EXIF capture time, falling back to file modification time when absent.
	SortCaptured SortOrder = "captured"
	// SortModified sorts by file modification time only.
	SortModified SortOrder = "modified"
)

// ParseSortOrder parses "captured" or "modified".
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case "", SortCaptured:
		return SortCaptured, nil
	case SortModified:
		return SortModified, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Config holds configuration for a gallery build.
type Config struct {
	InDirs      []string
	OutDir      string
	Collection  string
	Description string

	Compositor  *frame.Compositor
	Frame       frame.Spec
	Grid        grid.Options
	Thumbnails  map[string]ThumbOpts
	SortBy      SortOrder
	Recent      int
	JPEGQuality int
	Workers     int
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c *Config) quality() int {
	if c.JPEGQuality > 0 {
		return c.JPEGQuality
	}
	return 90
}

func (c *Config) thumbOpts() map[string]ThumbOpts {
	if len(c.Thumbnails) > 0 {
		return c.Thumbnails
	}
	return defaultThumbOpts
}
