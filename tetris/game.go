package tetris

import (
	"log/slog"
	"sync"
	"time"
)

// Timer fires once after Reset. Game rearms it after every tick.
type Timer interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTimer struct {
	timer *time.Timer
}

func newWrappedTimer() *wrappedTimer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &wrappedTimer{timer: t}
}

func (t *wrappedTimer) C() <-chan time.Time   { return t.timer.C }
func (t *wrappedTimer) Stop()                 { t.timer.Stop() }
func (t *wrappedTimer) Reset(d time.Duration) { t.timer.Reset(d) }

// Game drives a Board: it makes the piece fall on every timer fire and
// applies the player actions, one at a time, from a single goroutine.
type Game struct {
	updateCh chan *Snapshot
	actionCh chan Action
	doneCh   chan struct{}
	exitCh   chan struct{}
	stopOnce sync.Once

	board  *Board
	timer  Timer
	speed  time.Duration
	logger *slog.Logger
}

func NewGame(c Config, r Renderer, l *slog.Logger) *Game {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return NewConfigurableGame(newWrappedTimer(), NewBoard(c, r, WithLogger(l)), c.Speed, l)
}

func NewConfigurableGame(timer Timer, board *Board, speed time.Duration, l *slog.Logger) *Game {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan Action),
		doneCh:   make(chan struct{}),
		exitCh:   make(chan struct{}),
		board:    board,
		timer:    timer,
		speed:    speed,
		logger:   l,
	}
}

// Start resets the board and starts the game loop.
// The first update is the freshly spawned piece.
func (g *Game) Start() {
	g.board.Start()
	go g.listen()
}

// Stop ends the game loop. It's safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		g.timer.Stop()
		close(g.doneCh)
	})
}

// Action queues a player action. It's dropped once the game has ended.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.exitCh:
	}
}

// Updates streams a snapshot after every change. It's closed when the game ends.
func (g *Game) Updates() <-chan *Snapshot {
	return g.updateCh
}

func (g *Game) listen() {
	defer func() {
		g.timer.Stop()
		close(g.exitCh)
		close(g.updateCh)
	}()

	if !g.publish() {
		return
	}
	if g.board.GameOver() {
		return
	}
	g.timer.Reset(g.speed)
	for {
		select {
		case <-g.timer.C():
			g.board.Tick()
			if g.board.GameOver() {
				g.publish()
				return
			}
			g.timer.Reset(g.speed)
		case a := <-g.actionCh:
			if err := g.board.Input(a); err != nil {
				g.logger.Warn("ignoring action", slog.String("error", err.Error()))
				continue
			}
			if g.board.GameOver() {
				g.publish()
				return
			}
		case <-g.doneCh:
			return
		}
		if !g.publish() {
			return
		}
	}
}

// publish sends the current state. It returns false when the game was stopped.
func (g *Game) publish() bool {
	select {
	case g.updateCh <- g.board.Snapshot():
		return true
	case <-g.doneCh:
		return false
	}
}
