package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidExtent is wrapped by InvalidExtentError.
var ErrInvalidExtent = errors.New("invalid block extent")

// InvalidExtentError reports a block whose measured extent is negative or
// inverted.
type InvalidExtentError struct {
	ID     int
	Extent Extent
}

func (e *InvalidExtentError) Error() string {
	return fmt.Sprintf("block %d: top %v, bottom %v: %v", e.ID, e.Extent.Top, e.Extent.Bottom, ErrInvalidExtent)
}

func (e *InvalidExtentError) Unwrap() error { return ErrInvalidExtent }

// Extent is a block's vertical span measured from the top of the document.
type Extent struct {
	Top    float64
	Bottom float64
}

// Height returns Bottom-Top.
func (e Extent) Height() float64 { return e.Bottom - e.Top }

func (e Extent) valid() bool {
	return e.Top >= 0 && e.Bottom >= e.Top &&
		!math.IsNaN(e.Top) && !math.IsNaN(e.Bottom) &&
		!math.IsInf(e.Top, 0) && !math.IsInf(e.Bottom, 0)
}

// Measurer is the rendering side of a layout pass. Measure must reflect
// every margin applied so far: shifting one block moves all blocks below it.
type Measurer interface {
	Measure(id int) (Extent, error)

	// ApplyTopMargin sets the extra top margin of block id to px.
	ApplyTopMargin(id int, px float64) error
}

// Shift is a top margin applied to one block.
type Shift struct {
	ID     int
	Margin float64
}

// Paginate walks ids top to bottom, re-measuring each block after the
// shifts applied above it, and pushes every block that straddles a page
// boundary to the start of the next page plus PagePadding.
//
// A block taller than a page is shifted once and still straddles; blocks
// are never split.
func Paginate(m Measurer, ids []int, cfg Config) ([]Shift, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var shifts []Shift
	for _, id := range ids {
		ext, err := m.Measure(id)
		if err != nil {
			return shifts, fmt.Errorf("measure block %d: %w", id, err)
		}
		if !ext.valid() {
			return shifts, &InvalidExtentError{ID: id, Extent: ext}
		}
		shift, ok := ShiftFor(ext, cfg)
		if !ok {
			continue
		}
		if err := m.ApplyTopMargin(id, shift); err != nil {
			return shifts, fmt.Errorf("shift block %d: %w", id, err)
		}
		shifts = append(shifts, Shift{ID: id, Margin: shift})
	}
	return shifts, nil
}

// ShiftFor returns the top margin needed to move a straddling block onto
// the next page. It reports false when the block fits on one page.
func ShiftFor(ext Extent, cfg Config) (float64, bool) {
	start := PageOf(ext.Top, cfg)
	end := PageOf(ext.Bottom, cfg)
	if start == end {
		return 0, false
	}
	nextPageStart := float64(start+1) * cfg.PageHeight
	return nextPageStart - ext.Top + cfg.PagePadding, true
}

// Block is an input to ComputeShifts: an id with its pre-layout extent.
type Block struct {
	ID     int
	Top    float64
	Bottom float64
}

// ComputeShifts lays blocks out in the given order, keeping the offset of
// each block from the bottom of the one before it (negative when they
// overlap), and paginates the result. Positions of later blocks follow the
// shifts applied to earlier ones. Only negative or inverted extents are
// rejected.
func ComputeShifts(blocks []Block, cfg Config) ([]Shift, error) {
	f := NewFlow(0)
	prevBottom := 0.0
	ids := make([]int, 0, len(blocks))
	for _, b := range blocks {
		ext := Extent{Top: b.Top, Bottom: b.Bottom}
		if !ext.valid() {
			return nil, &InvalidExtentError{ID: b.ID, Extent: ext}
		}
		if _, dup := f.index[b.ID]; dup {
			return nil, fmt.Errorf("block %d listed twice", b.ID)
		}
		f.add(b.ID, b.Top-prevBottom, b.Bottom-b.Top)
		prevBottom = b.Bottom
		ids = append(ids, b.ID)
	}
	return Paginate(f, ids, cfg)
}

// PageOf returns the 0-based page containing offset y.
func PageOf(y float64, cfg Config) int {
	return int(math.Floor(y / cfg.PageHeight))
}

// PageCount returns how many pages a flow of totalHeight occupies.
func PageCount(totalHeight float64, cfg Config) int {
	if totalHeight <= 0 {
		return 1
	}
	return int(math.Ceil(totalHeight / cfg.PageHeight))
}

// FlowHeight sizes the flow so the closing element, plus ClosingPadding,
// fits on whole pages. It returns the page count and the total height.
func FlowHeight(closingBottom float64, cfg Config) (pages int, height float64) {
	pages = int(math.Ceil((closingBottom + cfg.ClosingPadding) / cfg.PageHeight))
	if pages < 1 {
		pages = 1
	}
	return pages, float64(pages) * cfg.PageHeight
}

// Boundaries returns the offsets of the page breaks inside a flow of
// totalHeight, excluding 0 and the end.
func Boundaries(totalHeight float64, cfg Config) []float64 {
	var out []float64
	for y := cfg.PageHeight; y < totalHeight; y += cfg.PageHeight {
		out = append(out, y)
	}
	return out
}
