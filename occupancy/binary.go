package occupancy

// BinaryGrid marks each cell of a grid as occupied or free.
type BinaryGrid struct {
	width  int
	height int
	cells  []bool
}

// NewBinaryGrid returns an all-free grid.
func NewBinaryGrid(width, height int) *BinaryGrid {
	return &BinaryGrid{width: width, height: height, cells: make([]bool, width*height)}
}

// Size returns the width and height in cells.
func (b *BinaryGrid) Size() (int, int) {
	return b.width, b.height
}

// InBounds reports whether the cell lies on the grid.
func (b *BinaryGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Occupied reports whether a cell is blocked. Cells off the grid are blocked.
func (b *BinaryGrid) Occupied(x, y int) bool {
	if !b.InBounds(x, y) {
		return true
	}
	return b.cells[y*b.width+x]
}

// Set marks a cell. Cells off the grid are ignored.
func (b *BinaryGrid) Set(x, y int, occupied bool) {
	if b.InBounds(x, y) {
		b.cells[y*b.width+x] = occupied
	}
}

// Iterate visits every cell in row-major order until visit returns false.
func (b *BinaryGrid) Iterate(visit func(x, y int, occupied bool) bool) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if !visit(x, y, b.cells[y*b.width+x]) {
				return
			}
		}
	}
}

// CountOccupied returns the number of blocked cells.
func (b *BinaryGrid) CountOccupied() int {
	n := 0
	for _, c := range b.cells {
		if c {
			n++
		}
	}
	return n
}
