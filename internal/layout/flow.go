package layout

import "fmt"

type flowBlock struct {
	id     int
	gap    float64
	height float64
	margin float64
}

// Flow is an in-memory vertical stack of blocks. Each block sits below the
// previous one after its own gap and applied margin, so changing one
// block's margin moves every block below it. Flow implements Measurer.
type Flow struct {
	origin float64
	blocks []flowBlock
	index  map[int]int
}

// NewFlow returns an empty flow whose first block starts at origin.
func NewFlow(origin float64) *Flow {
	return &Flow{origin: origin, index: map[int]int{}}
}

// Add appends a block with a fixed gap above it.
func (f *Flow) Add(id int, gap, height float64) error {
	if _, dup := f.index[id]; dup {
		return fmt.Errorf("block %d already in flow", id)
	}
	if gap < 0 || height < 0 {
		return &InvalidExtentError{ID: id, Extent: Extent{Top: gap, Bottom: gap + height}}
	}
	f.add(id, gap, height)
	return nil
}

// add appends without checking the gap. A negative gap overlaps the
// previous block.
func (f *Flow) add(id int, gap, height float64) {
	f.index[id] = len(f.blocks)
	f.blocks = append(f.blocks, flowBlock{id: id, gap: gap, height: height})
}

// Measure returns the live extent of block id.
func (f *Flow) Measure(id int) (Extent, error) {
	i, ok := f.index[id]
	if !ok {
		return Extent{}, fmt.Errorf("block %d not in flow", id)
	}
	y := f.origin
	for j := 0; j < i; j++ {
		b := f.blocks[j]
		y += b.gap + b.margin + b.height
	}
	b := f.blocks[i]
	top := y + b.gap + b.margin
	return Extent{Top: top, Bottom: top + b.height}, nil
}

// ApplyTopMargin sets the extra margin above block id. Setting the same
// value twice has no further effect.
func (f *Flow) ApplyTopMargin(id int, px float64) error {
	i, ok := f.index[id]
	if !ok {
		return fmt.Errorf("block %d not in flow", id)
	}
	f.blocks[i].margin = px
	return nil
}

// Margin returns the extra margin currently applied to block id.
func (f *Flow) Margin(id int) float64 {
	if i, ok := f.index[id]; ok {
		return f.blocks[i].margin
	}
	return 0
}

// ResetMargins clears every applied margin.
func (f *Flow) ResetMargins() {
	for i := range f.blocks {
		f.blocks[i].margin = 0
	}
}

// IDs returns the block ids in flow order.
func (f *Flow) IDs() []int {
	ids := make([]int, len(f.blocks))
	for i, b := range f.blocks {
		ids[i] = b.id
	}
	return ids
}

// Bottom returns the bottom edge of the last block, or the origin when the
// flow is empty.
func (f *Flow) Bottom() float64 {
	y := f.origin
	for _, b := range f.blocks {
		y += b.gap + b.margin + b.height
	}
	return y
}

// Paginate resets previous margins and paginates every block in order.
func (f *Flow) Paginate(cfg Config) ([]Shift, error) {
	f.ResetMargins()
	return Paginate(f, f.IDs(), cfg)
}
