package grid

// Viewport is the drawable area in pixels
type Viewport struct {
	Width, Height int
}

// FontMetrics are the cell dimensions of a monospaced face, in pixels
type FontMetrics struct {
	CellWidth  int
	CellHeight int
	Ascent     int // baseline offset from the cell top
}

// Grid is the derived cell layout
type Grid struct {
	Cols, Rows            int
	CellWidth, CellHeight int
}

// Empty reports whether the grid has no cells
func (g Grid) Empty() bool {
	return g.Cols <= 0 || g.Rows <= 0
}

// ComputeGrid floor-divides the viewport by the cell size.
// Guarantees Cols*CellWidth <= Width and Rows*CellHeight <= Height.
func ComputeGrid(v Viewport, m FontMetrics) Grid {
	g := Grid{CellWidth: m.CellWidth, CellHeight: m.CellHeight}
	if m.CellWidth <= 0 || m.CellHeight <= 0 || v.Width <= 0 || v.Height <= 0 {
		return g
	}
	g.Cols = v.Width / m.CellWidth
	g.Rows = v.Height / m.CellHeight
	return g
}
