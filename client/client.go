package client

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"blockfall/tetris"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	playing
)

type state struct {
	current clientState
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

// tetrisGame is implemented by a local *tetris.Game and by a game played on a server.
type tetrisGame interface {
	Start()
	Updates() <-chan *tetris.Snapshot
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	game(*tetris.Snapshot)
	lobby(message)
	reset()
}

type Client struct {
	newLocal  func() tetrisGame
	newRemote func() tetrisGame
	game      tetrisGame
	render    renderer
	logger    *slog.Logger
	kbCh      <-chan keyboard.KeyEvent
	state     *state
	wg        sync.WaitGroup
}

type Options struct {
	// Address of a blockfall server. Online play is disabled when empty.
	Address string
	Name    string
	Config  tetris.Config
	// NoColor draws the blocks without ANSI colours.
	NoColor bool
	Writer  io.Writer
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	w := o.Writer
	if w == nil {
		w = os.Stdout
	}
	r, err := newRender(w, l, o.Name, o.NoColor)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	c := &Client{
		newLocal: func() tetrisGame { return tetris.NewGame(o.Config, nil, l) },
		render:   r,
		logger:   l,
		kbCh:     kb,
		state:    &state{current: lobby},
	}
	if o.Address != "" {
		c.newRemote = func() tetrisGame { return newRemoteGame(o.Address, o.Name, l) }
	}
	return c, nil
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.lobby(defaultLobby(c.newRemote != nil))
	c.listenKB()
	if c.game != nil {
		c.game.Stop()
	}
	c.wg.Wait()
}

// Close releases the keyboard.
func (c *Client) Close() error {
	return keyboard.Close()
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		switch c.state.get() {
		case lobby:
			switch event.Rune {
			case 'p':
				c.play(c.newLocal())
			case 'o':
				if c.newRemote == nil {
					continue
				}
				c.render.lobby(connecting())
				c.play(c.newRemote())
			case 'q':
				return
			}
		case playing:
			if event.Key == keyboard.KeyEsc {
				c.game.Stop()
				continue
			}
			if a, ok := keyAction(event); ok {
				c.game.Action(a)
			}
		}
	}
}

func (c *Client) play(g tetrisGame) {
	c.wg.Wait()
	c.game = g
	c.state.set(playing)
	c.render.reset()
	c.wg.Add(1)
	go c.listenGame(g)
	g.Start()
}

func (c *Client) listenGame(g tetrisGame) {
	defer c.wg.Done()
	var last *tetris.Snapshot
	for u := range g.Updates() {
		c.render.game(u)
		last = u
	}
	c.state.set(lobby)
	switch {
	case last == nil:
		c.render.lobby(errorMessage())
	case last.GameOver:
		c.logger.Debug("game over", slog.Int("score", last.Score), slog.Int("lines", last.Lines))
		c.render.lobby(gameOver(last.Score))
	default:
		c.render.lobby(defaultLobby(c.newRemote != nil))
	}
}

// keyAction maps a key to a game action.
func keyAction(e keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case e.Key == keyboard.KeyArrowUp || e.Rune == 'w':
		return tetris.Rotate, true
	case e.Key == keyboard.KeyArrowLeft || e.Rune == 'a':
		return tetris.MoveLeft, true
	case e.Key == keyboard.KeyArrowRight || e.Rune == 'd':
		return tetris.MoveRight, true
	case e.Key == keyboard.KeyArrowDown || e.Rune == 's':
		return tetris.SoftDrop, true
	case e.Key == keyboard.KeySpace:
		return tetris.HardDrop, true
	}
	return "", false
}
