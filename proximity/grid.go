package proximity

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a Database that buckets tokens into a uniform grid of cubic cells
// covering a box. Tokens outside the box share one overflow bin that every
// query reaching past the box also scans. Results come back in cell order
// (x, then y, then z), then the overflow bin; within a bin, in the order
// tokens entered it.
type Grid[T any] struct {
	origin   r3.Vec
	cellSize float64
	nx       int
	ny       int
	nz       int
	cells    [][]*gridToken[T] // flat grid of bins, overflow bin last
	count    int

	// MaxResults caps the results of a single query; 0 means no cap. A cap
	// trades the proximity contract for bounded work in dense crowds.
	MaxResults int
}

// MaxGridCells bounds the number of cells a Grid allocates.
const MaxGridCells = 1 << 21

// GridCells returns how many cells a grid over size would have with the
// given cell edge. It is computed in floating point so oversized boxes do
// not overflow; a non-positive cellSize uses the largest extent.
func GridCells(size r3.Vec, cellSize float64) float64 {
	cellSize = effectiveCellSize(size, cellSize)
	return float64(divisions(size.X, cellSize)) *
		float64(divisions(size.Y, cellSize)) *
		float64(divisions(size.Z, cellSize))
}

func effectiveCellSize(size r3.Vec, cellSize float64) float64 {
	if cellSize > 0 {
		return cellSize
	}
	cellSize = math.Max(size.X, math.Max(size.Y, size.Z))
	if cellSize <= 0 {
		return 1
	}
	return cellSize
}

// divisions returns the cell count along one axis, saturating at
// MaxGridCells.
func divisions(extent, cellSize float64) int {
	n := math.Ceil(extent / cellSize)
	switch {
	case !(n >= 1):
		return 1
	case n > MaxGridCells:
		return MaxGridCells
	}
	return int(n)
}

// NewGrid creates a grid covering the box [origin, origin+size] with cells of
// the given edge length. Degenerate sizes collapse to a single cell. Cells
// are doubled in size until there are at most MaxGridCells of them.
func NewGrid[T any](origin, size r3.Vec, cellSize float64) *Grid[T] {
	cellSize = effectiveCellSize(size, cellSize)
	for GridCells(size, cellSize) > MaxGridCells {
		cellSize *= 2
	}

	g := &Grid[T]{
		origin:   origin,
		cellSize: cellSize,
		nx:       divisions(size.X, cellSize),
		ny:       divisions(size.Y, cellSize),
		nz:       divisions(size.Z, cellSize),
	}
	g.cells = make([][]*gridToken[T], g.nx*g.ny*g.nz+1)
	for i := range g.cells {
		g.cells[i] = make([]*gridToken[T], 0, 4) // pre-allocate small capacity
	}
	return g
}

// Dimensions returns the number of cells along each axis.
func (g *Grid[T]) Dimensions() (nx, ny, nz int) {
	return g.nx, g.ny, g.nz
}

// AllocateToken adds content to the grid. The token joins a bin on its first
// position update.
func (g *Grid[T]) AllocateToken(content T) Token[T] {
	g.count++
	return &gridToken[T]{grid: g, content: content, bin: -1}
}

// Count returns the number of open tokens.
func (g *Grid[T]) Count() int {
	return g.count
}

func (g *Grid[T]) overflow() int {
	return len(g.cells) - 1
}

// axisCell returns the cell coordinate of x along an axis of n cells. Values
// off the grid saturate to -1 or n.
func (g *Grid[T]) axisCell(x, origin float64, n int) int {
	c := math.Floor((x - origin) / g.cellSize)
	switch {
	case math.IsNaN(c) || c >= float64(n):
		return n
	case c < 0:
		return -1
	}
	return int(c)
}

// binIndex returns the flat bin for a position, or the overflow bin.
func (g *Grid[T]) binIndex(p r3.Vec) int {
	ix := g.axisCell(p.X, g.origin.X, g.nx)
	iy := g.axisCell(p.Y, g.origin.Y, g.ny)
	iz := g.axisCell(p.Z, g.origin.Z, g.nz)
	if ix < 0 || ix >= g.nx || iy < 0 || iy >= g.ny || iz < 0 || iz >= g.nz {
		return g.overflow()
	}
	return (iz*g.ny+iy)*g.nx + ix
}

// axisRange clamps the cell span [lo, hi] covered by [from, to] to the grid
// and reports whether the span reaches outside it.
func (g *Grid[T]) axisRange(from, to, origin float64, n int) (lo, hi int, outside bool) {
	lo = g.axisCell(from, origin, n)
	hi = g.axisCell(to, origin, n)
	outside = lo < 0 || hi >= n
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	return lo, hi, outside
}

// query appends matches for the sphere to dst.
func (g *Grid[T]) query(dst []T, center r3.Vec, radius float64) []T {
	r2 := radius * radius
	found := 0
	scan := func(bin int) bool {
		for _, tok := range g.cells[bin] {
			if within(tok.position, center, r2) {
				dst = append(dst, tok.content)
				found++
				// Early exit if we hit the cap
				if g.MaxResults > 0 && found >= g.MaxResults {
					return false
				}
			}
		}
		return true
	}

	x0, x1, outX := g.axisRange(center.X-radius, center.X+radius, g.origin.X, g.nx)
	y0, y1, outY := g.axisRange(center.Y-radius, center.Y+radius, g.origin.Y, g.ny)
	z0, z1, outZ := g.axisRange(center.Z-radius, center.Z+radius, g.origin.Z, g.nz)

	for iz := z0; iz <= z1; iz++ {
		for iy := y0; iy <= y1; iy++ {
			for ix := x0; ix <= x1; ix++ {
				if !scan((iz*g.ny+iy)*g.nx + ix) {
					return dst
				}
			}
		}
	}
	if outX || outY || outZ {
		scan(g.overflow())
	}
	return dst
}

type gridToken[T any] struct {
	grid     *Grid[T]
	content  T
	position r3.Vec
	bin      int // -1 until the first update
	closed   bool
}

func (t *gridToken[T]) UpdateForNewPosition(p r3.Vec) {
	if t.closed {
		return
	}
	t.position = p
	bin := t.grid.binIndex(p)
	if bin == t.bin {
		return
	}
	t.leave()
	t.grid.cells[bin] = append(t.grid.cells[bin], t)
	t.bin = bin
}

func (t *gridToken[T]) FindNeighbors(center r3.Vec, radius float64, dst []T) []T {
	if t.closed {
		return dst
	}
	return t.grid.query(dst, center, radius)
}

func (t *gridToken[T]) Close() {
	if t.closed {
		return
	}
	t.leave()
	t.closed = true
	t.grid.count--
}

// leave removes the token from its current bin, keeping the bin's order.
func (t *gridToken[T]) leave() {
	if t.bin < 0 {
		return
	}
	bin := t.grid.cells[t.bin]
	if i := slices.Index(bin, t); i >= 0 {
		t.grid.cells[t.bin] = slices.Delete(bin, i, i+1)
	}
	t.bin = -1
}
