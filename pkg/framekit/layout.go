package framekit

import (
	"fmt"
	"strconv"

	"github.com/erikote04/framekit/pkg/grid"
	"k8s.io/klog/v2"
)

// Tile is a photo placed in an album row.
type Tile struct {
	Photo *Photo
	grid.Rect
}

// TileRow is a row of tiles.
type TileRow struct {
	Y         float64
	Height    float64
	Justified bool
	Tiles     []Tile
}

// Layout places the photos of a in justified rows. Photos with unknown
// dimensions are skipped rather than failing the whole album.
func Layout(a *Album, o grid.Options) ([]TileRow, float64, error) {
	items := make([]grid.Item, 0, len(a.Photos))
	byID := make(map[string]*Photo, len(a.Photos))
	for i, p := range a.Photos {
		ar := p.AspectRatio()
		if ar <= 0 {
			klog.Warningf("skipping %s in %q: unknown dimensions", p.RelPath, a.Title)
			continue
		}
		// Keyed by position: RelPath need not be unique within an album.
		id := strconv.Itoa(i)
		items = append(items, grid.Item{ID: id, AspectRatio: ar})
		byID[id] = p
	}

	rows, err := o.Layout(items)
	if err != nil {
		return nil, 0, fmt.Errorf("layout %q: %w", a.Title, err)
	}

	out := make([]TileRow, 0, len(rows))
	for _, r := range rows {
		tr := TileRow{Height: r.Height, Justified: r.Justified}
		for _, cell := range r.Cells {
			tr.Y = cell.Rect.Y
			tr.Tiles = append(tr.Tiles, Tile{Photo: byID[cell.Item.ID], Rect: cell.Rect})
		}
		out = append(out, tr)
	}

	return out, grid.TotalHeight(rows, o.Spacing), nil
}
