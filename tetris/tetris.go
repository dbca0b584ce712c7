// Package tetris contains the logic of the game.
package tetris

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

type Action string

const (
	Rotate    Action = "rotate"     // Rotates the piece clockwise.
	MoveLeft  Action = "move_left"  // Moves the piece one step to the left.
	MoveRight Action = "move_right" // Moves the piece one step to the right.
	SoftDrop  Action = "soft_drop"  // Moves the piece one step down.
	HardDrop  Action = "hard_drop"  // Drops the piece down the stack.
)

// scoreTable is indexed by the number of lines cleared by a single piece.
var scoreTable = [5]int{0, 100, 400, 900, 2000}

const allClearMultiplier = 10

// block is a settled cell and the handle it was drawn with.
type block struct {
	handle Handle
	colour Colour
}

// Board owns the playfield, the active piece and the score.
// It's not safe for concurrent use: Game serialises every call into it.
type Board struct {
	grid   *Grid
	blocks []block
	piece  *Piece
	drawn  []Handle

	score     int
	softDrops int
	occupied  int
	lines     int
	gameOver  bool

	renderer Renderer
	spawn    func(*Grid) *Piece
	logger   *slog.Logger
}

type BoardOption func(*Board)

// WithSpawner replaces the random piece generator.
func WithSpawner(f func(*Grid) *Piece) BoardOption {
	return func(b *Board) { b.spawn = f }
}

func WithLogger(l *slog.Logger) BoardOption {
	return func(b *Board) { b.logger = l }
}

func NewBoard(c Config, r Renderer, opts ...BoardOption) *Board {
	if r == nil {
		r = NopRenderer{}
	}
	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	b := &Board{
		grid:     NewGrid(c.Width, c.Height),
		blocks:   make([]block, c.Width*c.Height),
		renderer: r,
		spawn:    func(g *Grid) *Piece { return SpawnRandom(g, rng) },
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Start resets the board and spawns the first piece. Calling it again restarts the game.
func (b *Board) Start() {
	for i := range b.blocks {
		if b.grid.cells[i] {
			b.renderer.EraseCell(b.blocks[i].handle)
		}
	}
	b.erasePiece()
	b.grid.reset()
	clear(b.blocks)
	b.score, b.softDrops, b.occupied, b.lines = 0, 0, 0, 0
	b.gameOver = false
	b.next()
	b.renderer.SetScore(b.scoreText())
}

// Tick makes the piece fall one row, locking it when it's blocked.
func (b *Board) Tick() {
	if b.gameOver || b.piece == nil {
		return
	}
	b.piece.Fall()
	if b.piece.Locked {
		b.lock()
		return
	}
	b.draw()
}

// Input applies a player action to the active piece.
func (b *Board) Input(a Action) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, a)
	}
	if b.gameOver || b.piece == nil {
		return nil
	}
	switch a {
	case Rotate:
		b.piece.Rotate()
	case MoveLeft:
		_ = b.piece.Move(Left)
	case MoveRight:
		_ = b.piece.Move(Right)
	case SoftDrop:
		b.piece.Fall()
		b.softDrops++
	case HardDrop:
		for !b.piece.Locked {
			b.piece.Fall()
			b.softDrops++
		}
	}
	if b.piece.Locked {
		b.lock()
		return nil
	}
	b.draw()
	return nil
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case Rotate, MoveLeft, MoveRight, SoftDrop, HardDrop:
		return true
	}
	return false
}

func (b *Board) Score() int     { return b.score }
func (b *Board) Lines() int     { return b.lines }
func (b *Board) Occupied() int  { return b.occupied }
func (b *Board) SoftDrops() int { return b.softDrops }
func (b *Board) GameOver() bool { return b.gameOver }
func (b *Board) Piece() *Piece  { return b.piece }
func (b *Board) Grid() *Grid    { return b.grid }

func (b *Board) scoreText() string { return fmt.Sprintf("Score: %d", b.score) }

// lock commits the piece to the grid, clears full rows, scores and spawns the next piece.
func (b *Board) lock() {
	b.draw()
	for i, c := range b.piece.Cells() {
		idx := b.grid.index(c.X, c.Y)
		b.grid.set(c.X, c.Y, true)
		b.blocks[idx] = block{handle: b.drawn[i], colour: b.piece.Colour}
		b.occupied++
	}
	// the drawn cells now belong to the stack.
	b.drawn = nil

	lines := b.clearLines()
	delta := b.softDrops + scoreTable[min(lines, len(scoreTable)-1)]
	if b.occupied == 0 {
		delta *= allClearMultiplier
	}
	b.score += delta
	b.lines += lines
	b.softDrops = 0
	if lines > 0 {
		b.logger.Debug("lines cleared",
			slog.Int("lines", lines),
			slog.Int("delta", delta),
			slog.Bool("all_clear", b.occupied == 0))
	}
	b.renderer.SetScore(b.scoreText())
	b.next()
}

// next spawns a new piece. A piece that spawns locked ends the game.
func (b *Board) next() {
	b.piece = b.spawn(b.grid)
	b.draw()
	if b.piece.Locked {
		b.gameOver = true
		b.logger.Debug("game over", slog.Int("score", b.score), slog.Int("lines", b.lines))
	}
}

// clearLines removes one full row at a time and scans again from the top,
// since every clear moves the rows above it.
func (b *Board) clearLines() int {
	var lines int
	for {
		y := b.fullRow()
		if y < 0 {
			return lines
		}
		b.clearRow(y)
		lines++
	}
}

func (b *Board) fullRow() int {
	for y := range b.grid.height {
		if b.grid.rowFull(y) {
			return y
		}
	}
	return -1
}

func (b *Board) clearRow(row int) {
	for x := range b.grid.width {
		idx := b.grid.index(x, row)
		b.grid.set(x, row, false)
		b.renderer.EraseCell(b.blocks[idx].handle)
		b.blocks[idx] = block{}
		b.occupied--
	}

	// shift everything above the cleared row one row down, starting from
	// the row right above it so nothing gets overwritten.
	for y := row - 1; y >= 0; y-- {
		for x := range b.grid.width {
			if !b.grid.Settled(x, y) {
				continue
			}
			from, to := b.grid.index(x, y), b.grid.index(x, y+1)
			b.grid.set(x, y, false)
			b.grid.set(x, y+1, true)
			b.blocks[to] = b.blocks[from]
			b.blocks[from] = block{}
			b.renderer.MoveCell(b.blocks[to].handle, 1)
		}
	}
}

// draw replaces the visuals of the active piece.
func (b *Board) draw() {
	b.erasePiece()
	for _, c := range b.piece.Cells() {
		b.drawn = append(b.drawn, b.renderer.DrawCell(c.X, c.Y, b.piece.Colour))
	}
}

func (b *Board) erasePiece() {
	for _, h := range b.drawn {
		b.renderer.EraseCell(h)
	}
	b.drawn = b.drawn[:0]
}

// Snapshot is a copy of the board state that's safe to read concurrently.
type Snapshot struct {
	Width, Height int
	// Stack holds the colour of each settled cell by row, "" when empty.
	Stack    [][]Colour
	Piece    *PieceView
	Score    int
	Lines    int
	GameOver bool
}

// PieceView is the read only state of the active piece.
type PieceView struct {
	Kind   Kind
	Colour Colour
	Cells  []Point
	Locked bool
}

func (b *Board) Snapshot() *Snapshot {
	s := &Snapshot{
		Width:    b.grid.width,
		Height:   b.grid.height,
		Stack:    make([][]Colour, b.grid.height),
		Piece:    b.piece.copy(),
		Score:    b.score,
		Lines:    b.lines,
		GameOver: b.gameOver,
	}
	for y := range s.Stack {
		s.Stack[y] = make([]Colour, b.grid.width)
		for x := range s.Stack[y] {
			if b.grid.cells[b.grid.index(x, y)] {
				s.Stack[y][x] = b.blocks[b.grid.index(x, y)].colour
			}
		}
	}
	return s
}
