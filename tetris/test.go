package tetris

import (
	"sync"
	"time"
)

// MockTimer is a Timer that only fires when Tick is called.
type MockTimer struct {
	ch          chan time.Time
	stop, reset int
	mu          sync.Mutex
}

func NewMockTimer() *MockTimer { return &MockTimer{ch: make(chan time.Time)} }

func (m *MockTimer) C() <-chan time.Time { return m.ch }
func (m *MockTimer) Tick()               { m.ch <- time.Now() }

func (m *MockTimer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop++
}

func (m *MockTimer) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset++
}

// Resets returns how many times the timer was armed.
func (m *MockTimer) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *MockTimer) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// FixedSpawner always spawns the same kind of piece.
func FixedSpawner(k Kind) func(*Grid) *Piece {
	return func(g *Grid) *Piece {
		p, _ := Spawn(k, g)
		return p
	}
}

// NewTestBoard creates a 10x20 board that only spawns the given kind.
func NewTestBoard(k Kind, r Renderer) *Board {
	return NewBoard(DefaultConfig(), r, WithSpawner(FixedSpawner(k)))
}

// NewTestGame creates a game on a test board and returns it with its manual timer.
func NewTestGame(k Kind) (*Game, *MockTimer) {
	timer := NewMockTimer()
	return NewConfigurableGame(timer, NewTestBoard(k, nil), time.Second, nil), timer
}
