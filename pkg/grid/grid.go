// Package grid packs variable-width items into justified rows of a fixed-width container.
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAspectRatio is returned for an item whose aspect ratio is not a positive finite number.
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
	// ErrInvalidContainer is returned for a non-positive width or row height, or negative spacing.
	ErrInvalidContainer = errors.New("invalid container geometry")
)

// Item is something to lay out. AspectRatio is width divided by height.
type Item struct {
	ID          string
	AspectRatio float64
}

// Rect is a target rectangle within the container.
type Rect struct {
	X, Y, W, H float64
}

// Cell is an item placed in a row.
type Cell struct {
	Item Item
	Rect Rect
}

// Row is a laid out row of cells.
type Row struct {
	Cells  []Cell
	Height float64
	// Justified is false for a terminal row left at natural widths.
	Justified bool
}

// Width returns the span from the first cell's left edge to the last cell's right edge.
func (r Row) Width() float64 {
	if len(r.Cells) == 0 {
		return 0
	}
	first, last := r.Cells[0].Rect, r.Cells[len(r.Cells)-1].Rect
	return last.X + last.W - first.X
}

// TerminalPolicy decides how the final row is sized.
type TerminalPolicy int

const (
	// Ragged leaves the final row at each item's natural width.
	Ragged TerminalPolicy = iota
	// JustifyLast stretches the final row to the container width like every other row.
	JustifyLast
)

func (p TerminalPolicy) String() string {
	switch p {
	case Ragged:
		return "ragged"
	case JustifyLast:
		return "justify"
	default:
		return fmt.Sprintf("TerminalPolicy(%d)", int(p))
	}
}

// Options configures a layout.
type Options struct {
	ContainerWidth float64
	RowHeight      float64
	Spacing        float64
	Terminal       TerminalPolicy
}

func validGeometry(containerWidth, rowHeight, spacing float64) error {
	if !(containerWidth > 0) || math.IsInf(containerWidth, 0) {
		return fmt.Errorf("%w: container width %v", ErrInvalidContainer, containerWidth)
	}
	if !(rowHeight > 0) || math.IsInf(rowHeight, 0) {
		return fmt.Errorf("%w: row height %v", ErrInvalidContainer, rowHeight)
	}
	if !(spacing >= 0) || math.IsInf(spacing, 0) {
		return fmt.Errorf("%w: spacing %v", ErrInvalidContainer, spacing)
	}
	return nil
}

func validItems(items []Item) error {
	for i, it := range items {
		if !(it.AspectRatio > 0) || math.IsInf(it.AspectRatio, 0) {
			return fmt.Errorf("item %d (%q): %w: %v", i, it.ID, ErrInvalidAspectRatio, it.AspectRatio)
		}
	}
	return nil
}

// Pack partitions items into rows in a single greedy pass, in input order.
// Each item is estimated at rowHeight*AspectRatio wide. An item joins the
// current row while the row, the spacing before it and the item fit in
// containerWidth; otherwise it starts a new row. An item wider than the
// container occupies a row by itself.
func Pack(items []Item, containerWidth, rowHeight, spacing float64) ([][]Item, error) {
	if err := validGeometry(containerWidth, rowHeight, spacing); err != nil {
		return nil, err
	}
	if err := validItems(items); err != nil {
		return nil, err
	}

	var rows [][]Item
	var cur []Item
	running := 0.0

	for _, it := range items {
		est := rowHeight * it.AspectRatio
		if len(cur) > 0 && running+spacing+est > containerWidth {
			rows = append(rows, cur)
			cur, running = nil, 0
		}
		if len(cur) > 0 {
			running += spacing
		}
		cur = append(cur, it)
		running += est
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}
	return rows, nil
}

// Justify returns widths for row that fill containerWidth exactly once
// spacing is added between items, keeping the items' relative aspect ratios.
func Justify(row []Item, containerWidth, spacing float64) ([]float64, error) {
	if len(row) == 0 {
		return nil, nil
	}
	if err := validItems(row); err != nil {
		return nil, err
	}

	available := containerWidth - spacing*float64(len(row)-1)
	if !(available > 0) || math.IsInf(available, 0) || spacing < 0 {
		return nil, fmt.Errorf("%w: %d items with spacing %v leave %v of %v", ErrInvalidContainer, len(row), spacing, available, containerWidth)
	}

	total := 0.0
	for _, it := range row {
		total += it.AspectRatio
	}

	widths := make([]float64, len(row))
	for i, it := range row {
		widths[i] = available * it.AspectRatio / total
	}
	return widths, nil
}

// Layout packs items into rows of fixed height and justifies every row but
// the last, which keeps its natural widths.
func Layout(items []Item, containerWidth, rowHeight, spacing float64) ([]Row, error) {
	return Options{
		ContainerWidth: containerWidth,
		RowHeight:      rowHeight,
		Spacing:        spacing,
	}.Layout(items)
}

// Layout packs and justifies items according to o.
func (o Options) Layout(items []Item) ([]Row, error) {
	packed, err := Pack(items, o.ContainerWidth, o.RowHeight, o.Spacing)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(packed))
	y := 0.0
	for i, p := range packed {
		terminal := i == len(packed)-1
		justify := !terminal || o.Terminal == JustifyLast

		var widths []float64
		if justify {
			widths, err = Justify(p, o.ContainerWidth, o.Spacing)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		} else {
			widths = make([]float64, len(p))
			for j, it := range p {
				widths[j] = math.Min(o.RowHeight*it.AspectRatio, o.ContainerWidth)
			}
		}

		row := Row{Height: o.RowHeight, Justified: justify, Cells: make([]Cell, len(p))}
		x := 0.0
		for j, it := range p {
			row.Cells[j] = Cell{Item: it, Rect: Rect{X: x, Y: y, W: widths[j], H: o.RowHeight}}
			x += widths[j] + o.Spacing
		}
		rows = append(rows, row)
		y += o.RowHeight + o.Spacing
	}
	return rows, nil
}

// TotalHeight returns the height of rows stacked with spacing between them.
func TotalHeight(rows []Row, spacing float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	h := spacing * float64(len(rows)-1)
	for _, r := range rows {
		h += r.Height
	}
	return h
}
