package tetris

// Grid holds the settled cells of the playfield.
//
// 	  0 1 2 3 4 5 6 7 8 9   X
// 	0 . . . . . . . . . .
// 	1 . . . . . . . . . .
// 	. . . . . . . . . . .
// 	19. . . . . . . . . .
// 	Y
//
// Anything outside of the grid counts as settled, so a piece can never
// leave the playfield.
type Grid struct {
	width, height int
	cells         []bool
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Settled reports whether the cell holds a locked block or is out of bounds.
func (g *Grid) Settled(x, y int) bool {
	if !g.inBounds(x, y) {
		return true
	}
	return g.cells[g.index(x, y)]
}

// Occupied reports whether any of the cells is out of bounds or settled.
func (g *Grid) Occupied(cells ...Point) bool {
	for _, c := range cells {
		if g.Settled(c.X, c.Y) {
			return true
		}
	}
	return false
}

func (g *Grid) rowFull(y int) bool {
	for x := range g.width {
		if !g.cells[g.index(x, y)] {
			return false
		}
	}
	return true
}

func (g *Grid) set(x, y int, v bool) {
	if g.inBounds(x, y) {
		g.cells[g.index(x, y)] = v
	}
}

func (g *Grid) reset() {
	clear(g.cells)
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) index(x, y int) int { return y*g.width + x }
