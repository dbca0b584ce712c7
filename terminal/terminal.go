// Package terminal is a full screen frontend that paints the board through
// the cell handle interface of the engine onto a tcell screen.
package terminal

import (
	"log/slog"
	"sync"

	"blockfall/tetris"

	"github.com/gdamore/tcell/v2"
)

const (
	cellWidth = 2 // terminal columns per board cell
	originX   = 1
	originY   = 1
)

var colorMap = map[tetris.Colour]tcell.Color{
	tetris.Cyan:   tcell.ColorDarkCyan,
	tetris.Blue:   tcell.ColorBlue,
	tetris.Orange: tcell.ColorOrange,
	tetris.Yellow: tcell.ColorYellow,
	tetris.Green:  tcell.ColorGreen,
	tetris.Red:    tcell.ColorRed,
	tetris.Purple: tcell.ColorPurple,
}

type cell struct {
	x, y   int
	colour tetris.Colour
}

// Renderer paints board cells on a tcell.Screen. Every drawn cell gets a
// handle so the board can erase or move it later.
type Renderer struct {
	screen        tcell.Screen
	width, height int
	cells         map[tetris.Handle]cell
	next          tetris.Handle
	mu            sync.Mutex
}

func NewRenderer(s tcell.Screen, width, height int) *Renderer {
	return &Renderer{
		screen: s,
		width:  width,
		height: height,
		cells:  make(map[tetris.Handle]cell),
	}
}

func (r *Renderer) DrawCell(x, y int, c tetris.Colour) tetris.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.cells[r.next] = cell{x: x, y: y, colour: c}
	r.paint(x, y, c)
	return r.next
}

func (r *Renderer) EraseCell(h tetris.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cells[h]
	if !ok {
		return
	}
	delete(r.cells, h)
	r.paint(c.x, c.y, "")
}

func (r *Renderer) MoveCell(h tetris.Handle, dy int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cells[h]
	if !ok {
		return
	}
	r.paint(c.x, c.y, "")
	c.y += dy
	r.cells[h] = c
	r.paint(c.x, c.y, c.colour)
}

func (r *Renderer) SetScore(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	y := originY + r.height + 1
	r.text(originX, y, text+"          ", tcell.StyleDefault)
}

// Frame draws the well borders and the help line.
func (r *Renderer) Frame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	right := originX + r.width*cellWidth
	bottom := originY + r.height
	for y := originY; y < bottom; y++ {
		r.screen.SetContent(originX-1, y, '│', nil, style)
		r.screen.SetContent(right, y, '│', nil, style)
	}
	for x := originX; x < right; x++ {
		r.screen.SetContent(x, originY-1, '─', nil, style)
		r.screen.SetContent(x, bottom, '─', nil, style)
	}
	r.screen.SetContent(originX-1, originY-1, '┌', nil, style)
	r.screen.SetContent(right, originY-1, '┐', nil, style)
	r.screen.SetContent(originX-1, bottom, '└', nil, style)
	r.screen.SetContent(right, bottom, '┘', nil, style)
	r.text(originX, bottom+3, "←/→ move  ↑ rotate  ↓ drop  space hard drop  esc quit", style)
}

// Message writes a line of text below the score.
func (r *Renderer) Message(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text(originX, originY+r.height+2, text, tcell.StyleDefault.Bold(true))
}

// Cells returns how many cells are on screen.
func (r *Renderer) Cells() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cells)
}

func (r *Renderer) paint(x, y int, c tetris.Colour) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	sx, sy := originX+x*cellWidth, originY+y
	color, ok := colorMap[c]
	if !ok {
		r.screen.SetContent(sx, sy, ' ', nil, tcell.StyleDefault)
		r.screen.SetContent(sx+1, sy, ' ', nil, tcell.StyleDefault)
		return
	}
	style := tcell.StyleDefault.Foreground(color).Reverse(true)
	r.screen.SetContent(sx, sy, '[', nil, style)
	r.screen.SetContent(sx+1, sy, ']', nil, style)
}

func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// App runs a local game on a tcell screen.
type App struct {
	screen   tcell.Screen
	renderer *Renderer
	game     *tetris.Game
	logger   *slog.Logger
}

// New creates an app with a board drawing on s.
func New(s tcell.Screen, c tetris.Config, l *slog.Logger) *App {
	r := NewRenderer(s, c.Width, c.Height)
	return NewApp(s, r, tetris.NewGame(c, r, l), l)
}

// NewApp wires an existing game, which must draw through r.
func NewApp(s tcell.Screen, r *Renderer, g *tetris.Game, l *slog.Logger) *App {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &App{screen: s, renderer: r, game: g, logger: l}
}

// Run starts the game and blocks until it is over or the player quits.
// It returns the last snapshot published by the game.
func (a *App) Run() *tetris.Snapshot {
	a.screen.Clear()
	a.renderer.Frame()

	quit := make(chan struct{})
	defer close(quit)
	events := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	var last *tetris.Snapshot
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for s := range a.game.Updates() {
			last = s
			a.screen.Show()
		}
	}()

	a.game.Start()
	for {
		select {
		case <-finished:
			if last != nil && last.GameOver {
				a.logger.Debug("game over", slog.Int("score", last.Score), slog.Int("lines", last.Lines))
				a.renderer.Message("Game Over :)")
				a.screen.Show()
			}
			return last
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					a.game.Stop()
					<-finished
					return last
				}
				if act, ok := KeyAction(ev); ok {
					a.game.Action(act)
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
		}
	}
}

func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Rune() == 'q')
}

// KeyAction maps a tcell key to a game action.
func KeyAction(ev *tcell.EventKey) (tetris.Action, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return tetris.Rotate, true
	case tcell.KeyLeft:
		return tetris.MoveLeft, true
	case tcell.KeyRight:
		return tetris.MoveRight, true
	case tcell.KeyDown:
		return tetris.SoftDrop, true
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return tetris.HardDrop, true
		}
	}
	return "", false
}
