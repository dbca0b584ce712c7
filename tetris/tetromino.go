package tetris

import (
	"fmt"
	"math/rand/v2"
)

// Kind is one of the 7 tetromino archetypes.
type Kind string

const (
	Square Kind = "square"
	Line   Kind = "line"
	T      Kind = "t"
	LeftL  Kind = "left_l"
	RightL Kind = "right_l"
	LeftZ  Kind = "left_z"
	RightZ Kind = "right_z"
)

// Colour is the tag a renderer paints a cell with.
type Colour string

const (
	Yellow Colour = "yellow"
	Cyan   Colour = "cyan"
	Purple Colour = "purple"
	Blue   Colour = "blue"
	Orange Colour = "orange"
	Red    Colour = "red"
	Green  Colour = "green"
)

// Kinds lists every archetype in a fixed order.
var Kinds = []Kind{Square, Line, T, LeftL, RightL, LeftZ, RightZ}

// Point is a cell coordinate. X grows to the right, Y grows downwards.
type Point struct {
	X, Y int
}

type archetype struct {
	size   int
	shape  [4]Point
	colour Colour
}

/*
Shapes in local coordinates, size x size box:

.	square		line		t		left_l		right_l		left_z		right_z
.	O O		. . . .		. . .		. . .		. . .		. . .		. . .
.	O O		. . . .		. O .		O . .		. . O		O O .		. O O
.			. . . .		O O O		O O O		O O O		. O O		O O .
.			O O O O
*/
var archetypes = map[Kind]archetype{
	Square: {2, [4]Point{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, Yellow},
	Line:   {4, [4]Point{{0, 3}, {1, 3}, {2, 3}, {3, 3}}, Cyan},
	T:      {3, [4]Point{{0, 2}, {1, 2}, {2, 2}, {1, 1}}, Purple},
	LeftL:  {3, [4]Point{{0, 2}, {1, 2}, {2, 2}, {0, 1}}, Blue},
	RightL: {3, [4]Point{{0, 2}, {1, 2}, {2, 2}, {2, 1}}, Orange},
	LeftZ:  {3, [4]Point{{0, 1}, {1, 1}, {1, 2}, {2, 2}}, Red},
	RightZ: {3, [4]Point{{0, 2}, {1, 2}, {1, 1}, {2, 1}}, Green},
}

// Direction is a horizontal move.
type Direction int

const (
	Left Direction = iota - 1
	_
	Right
)

var spawnPoint = Point{X: 4, Y: 0}

// Piece is the active tetromino.
type Piece struct {
	Kind   Kind
	Colour Colour
	// Locked is set once the piece can't fall any further, or when it
	// spawned on top of settled cells. It is never unset.
	Locked bool

	size  int
	shape [4]Point
	pos   Point
	grid  *Grid
}

// Spawn creates a piece of the given kind at the spawn point.
func Spawn(k Kind, g *Grid) (*Piece, error) {
	a, ok := archetypes[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	p := &Piece{
		Kind:   k,
		Colour: a.colour,
		size:   a.size,
		shape:  a.shape,
		pos:    spawnPoint,
		grid:   g,
	}
	cells := p.Cells()
	p.Locked = g.Occupied(cells[:]...)
	return p, nil
}

// SpawnRandom picks one of the 7 archetypes uniformly.
func SpawnRandom(g *Grid, r *rand.Rand) *Piece {
	p, _ := Spawn(Kinds[r.IntN(len(Kinds))], g)
	return p
}

// Cells returns the absolute position of the 4 blocks.
func (p *Piece) Cells() [4]Point {
	return p.translate(p.shape, 0, 0)
}

// Position returns the anchor of the piece.
func (p *Piece) Position() Point { return p.pos }

// Rotate turns the piece 90 degrees around its centre.
// A rotation that would collide is rejected, there are no wall kicks.
func (p *Piece) Rotate() {
	if p.Locked {
		return
	}

	// the centre sits between cells for even sizes, so the math is done
	// in floats and truncated back to ints.
	c := float64(p.size-1) / 2
	var rotated [4]Point
	for i, s := range p.shape {
		rx, ry := float64(s.X)-c, float64(s.Y)-c
		rotated[i] = Point{
			X: int(-ry + c),
			Y: int(rx + c),
		}
	}

	cells := p.translate(rotated, 0, 0)
	if !p.grid.Occupied(cells[:]...) {
		p.shape = rotated
	}
}

// Fall moves the piece one row down, or locks it when it's blocked.
func (p *Piece) Fall() {
	if p.Locked {
		return
	}
	cells := p.translate(p.shape, 0, 1)
	if p.grid.Occupied(cells[:]...) {
		p.Locked = true
		return
	}
	p.pos.Y++
}

// Move shifts the piece one column left or right. A blocked move does nothing.
func (p *Piece) Move(d Direction) error {
	if d != Left && d != Right {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, d)
	}
	cells := p.translate(p.shape, int(d), 0)
	if !p.grid.Occupied(cells[:]...) {
		p.pos.X += int(d)
	}
	return nil
}

func (p *Piece) translate(shape [4]Point, dx, dy int) [4]Point {
	var out [4]Point
	for i, s := range shape {
		out[i] = Point{X: s.X + p.pos.X + dx, Y: s.Y + p.pos.Y + dy}
	}
	return out
}

func (p *Piece) copy() *PieceView {
	if p == nil {
		return nil
	}
	cells := p.Cells()
	return &PieceView{
		Kind:   p.Kind,
		Colour: p.Colour,
		Cells:  cells[:],
		Locked: p.Locked,
	}
}
