package tetris

// Handle identifies a cell drawn by a Renderer.
type Handle int

// Renderer draws the playfield. The board asks it to draw the active
// piece, to erase cleared cells and to move cells down while shifting rows.
// All calls happen from the goroutine that drives the board.
type Renderer interface {
	DrawCell(x, y int, c Colour) Handle
	EraseCell(h Handle)
	// MoveCell moves a drawn cell dy rows down.
	MoveCell(h Handle, dy int)
	SetScore(text string)
}

// NopRenderer is used when the board runs headless.
type NopRenderer struct{}

func (NopRenderer) DrawCell(int, int, Colour) Handle { return 0 }
func (NopRenderer) EraseCell(Handle)                 {}
func (NopRenderer) MoveCell(Handle, int)             {}
func (NopRenderer) SetScore(string)                  {}
