package motionplan

// DefaultMaxBufferNodes bounds the 3-D buffer when no limit is configured.
const DefaultMaxBufferNodes = 50_000_000

// NodeBuffers are the zeroed search buffers for one plan cycle: width*height*headings 3-D nodes
// and width*height 2-D nodes, both row-major with the heading slot innermost.
type NodeBuffers struct {
	Width    int
	Height   int
	Headings int

	Nodes3D []Node3D
	Nodes2D []Node2D
}

// NewNodeBuffers allocates buffers for a grid, refusing sizes above maxNodes 3-D nodes.
// A maxNodes of zero or less uses DefaultMaxBufferNodes.
func NewNodeBuffers(width, height, headings, maxNodes int) (*NodeBuffers, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxBufferNodes
	}
	if width <= 0 || height <= 0 || headings <= 0 {
		return nil, NewBufferTooLargeError(width, height, headings, maxNodes)
	}
	cells := int64(width) * int64(height)
	if cells > int64(maxNodes) || cells*int64(headings) > int64(maxNodes) {
		return nil, NewBufferTooLargeError(width, height, headings, maxNodes)
	}
	return &NodeBuffers{
		Width:    width,
		Height:   height,
		Headings: headings,
		Nodes3D:  make([]Node3D, int(cells)*headings),
		Nodes2D:  make([]Node2D, int(cells)),
	}, nil
}

// WithNodeBuffers allocates buffers, runs fn with them and releases them however fn returns,
// including by panic.
func WithNodeBuffers(width, height, headings, maxNodes int, fn func(*NodeBuffers) error) error {
	bufs, err := NewNodeBuffers(width, height, headings, maxNodes)
	if err != nil {
		return err
	}
	defer bufs.Release()
	return fn(bufs)
}

// Node3DAt returns the slot for a cell and heading, or nil off the grid.
func (b *NodeBuffers) Node3DAt(x, y, bin int) *Node3D {
	if b.Released() || x < 0 || y < 0 || x >= b.Width || y >= b.Height || bin < 0 || bin >= b.Headings {
		return nil
	}
	return &b.Nodes3D[(y*b.Width+x)*b.Headings+bin]
}

// Node2DAt returns the slot for a cell, or nil off the grid.
func (b *NodeBuffers) Node2DAt(x, y int) *Node2D {
	if b.Released() || x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return nil
	}
	return &b.Nodes2D[y*b.Width+x]
}

// Release drops the buffers. Nodes handed out earlier must not be used afterwards.
func (b *NodeBuffers) Release() {
	b.Nodes3D = nil
	b.Nodes2D = nil
}

// Released reports whether Release has been called.
func (b *NodeBuffers) Released() bool {
	return b.Nodes3D == nil && b.Nodes2D == nil
}
