package client

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"blockfall/tetris"

	"github.com/eiannone/keyboard"
)

type mockGame struct {
	updateCh chan *tetris.Snapshot
	actionCh chan tetris.Action
	started  atomic.Bool
	stopOnce sync.Once
}

func newMockGame() *mockGame {
	return &mockGame{
		updateCh: make(chan *tetris.Snapshot),
		actionCh: make(chan tetris.Action, 16),
	}
}

func (m *mockGame) Start()                           { m.started.Store(true) }
func (m *mockGame) Updates() <-chan *tetris.Snapshot { return m.updateCh }
func (m *mockGame) Action(a tetris.Action)           { m.actionCh <- a }
func (m *mockGame) Stop()                            { m.stopOnce.Do(func() { close(m.updateCh) }) }

type mockRender struct {
	mu      sync.Mutex
	games   int
	resets  int
	lobbies []message
}

func (m *mockRender) game(*tetris.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games++
}

func (m *mockRender) lobby(msg message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobbies = append(m.lobbies, msg)
}

func (m *mockRender) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

func (m *mockRender) gameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games
}

func (m *mockRender) lastLobby() message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lobbies) == 0 {
		return message{}
	}
	return m.lobbies[len(m.lobbies)-1]
}

func (m *mockRender) lobbyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lobbies)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestClient(g *mockGame, r *mockRender) (*Client, chan keyboard.KeyEvent) {
	kbCh := make(chan keyboard.KeyEvent)
	return &Client{
		newLocal: func() tetrisGame { return g },
		render:   r,
		logger:   slog.New(slog.DiscardHandler),
		kbCh:     kbCh,
		state:    &state{current: lobby},
	}, kbCh
}

func startClient(t *testing.T, c *Client) <-chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.Start()
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for the client to quit")
	}
}

func TestClient(t *testing.T) {
	g := newMockGame()
	r := &mockRender{}
	c, kbCh := newTestClient(g, r)
	done := startClient(t, c)

	waitFor(t, "the lobby", func() bool { return r.lastLobby() == defaultLobby(false) })

	// 'o' does nothing without a server address.
	kbCh <- keyboard.KeyEvent{Rune: 'o'}
	if g.started.Load() {
		t.Fatal("wanted no game to start without a server address")
	}

	kbCh <- keyboard.KeyEvent{Rune: 'p'}
	waitFor(t, "the game to start", g.started.Load)
	if c.state.get() != playing {
		t.Errorf("wanted state playing after 'p' key press")
	}

	g.updateCh <- &tetris.Snapshot{}
	waitFor(t, "a game render", func() bool { return r.gameCount() == 1 })

	// while in game, keys should direct to game actions.
	actions := []struct {
		key    keyboard.KeyEvent
		action tetris.Action
	}{
		{key: keyboard.KeyEvent{Rune: 's'}, action: tetris.SoftDrop},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowDown}, action: tetris.SoftDrop},
		{key: keyboard.KeyEvent{Rune: 'a'}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, action: tetris.MoveLeft},
		{key: keyboard.KeyEvent{Rune: 'd'}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowRight}, action: tetris.MoveRight},
		{key: keyboard.KeyEvent{Rune: 'w'}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeyArrowUp}, action: tetris.Rotate},
		{key: keyboard.KeyEvent{Key: keyboard.KeySpace}, action: tetris.HardDrop},
	}
	for _, a := range actions {
		t.Run(fmt.Sprintf("key %v", a.key), func(t *testing.T) {
			kbCh <- a.key
			select {
			case got := <-g.actionCh:
				if got != a.action {
					t.Errorf("wanted action %v, got %v", a.action, got)
				}
			case <-time.After(time.Second):
				t.Fatalf("timeout waiting for action %v", a.action)
			}
		})
	}

	// game over brings back the lobby with the final score.
	g.updateCh <- &tetris.Snapshot{GameOver: true, Score: 42}
	g.Stop()
	waitFor(t, "the game over lobby", func() bool { return r.lastLobby() == gameOver(42) })
	if c.state.get() != lobby {
		t.Errorf("wanted state lobby after game over")
	}

	kbCh <- keyboard.KeyEvent{Rune: 'q'}
	waitDone(t, done)
}

func TestEscLeavesTheGame(t *testing.T) {
	g := newMockGame()
	r := &mockRender{}
	c, kbCh := newTestClient(g, r)
	done := startClient(t, c)

	kbCh <- keyboard.KeyEvent{Rune: 'p'}
	g.updateCh <- &tetris.Snapshot{Score: 7}
	kbCh <- keyboard.KeyEvent{Key: keyboard.KeyEsc}

	waitFor(t, "the lobby", func() bool { return c.state.get() == lobby })
	waitFor(t, "the default lobby", func() bool { return r.lobbyCount() == 2 && r.lastLobby() == defaultLobby(false) })

	kbCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	waitDone(t, done)
}

func TestGameWithoutUpdates(t *testing.T) {
	g := newMockGame()
	r := &mockRender{}
	c, kbCh := newTestClient(g, r)
	done := startClient(t, c)

	kbCh <- keyboard.KeyEvent{Rune: 'p'}
	waitFor(t, "the game to start", g.started.Load)
	g.Stop()
	waitFor(t, "the error message", func() bool { return r.lastLobby() == errorMessage() })

	kbCh <- keyboard.KeyEvent{Rune: 'q'}
	waitDone(t, done)
}

func TestCtrlCQuitsWhilePlaying(t *testing.T) {
	g := newMockGame()
	r := &mockRender{}
	c, kbCh := newTestClient(g, r)
	done := startClient(t, c)

	kbCh <- keyboard.KeyEvent{Rune: 'p'}
	waitFor(t, "the game to start", g.started.Load)
	kbCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	waitDone(t, done)
}

func TestKeyAction(t *testing.T) {
	for _, e := range []keyboard.KeyEvent{
		{Rune: 'x'},
		{Key: keyboard.KeyEnter},
		{Rune: 'p'},
	} {
		if a, ok := keyAction(e); ok {
			t.Errorf("wanted no action for %v, got %v", e, a)
		}
	}
}
