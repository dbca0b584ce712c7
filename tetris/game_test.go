package tetris_test

import (
	"testing"
	"time"

	"blockfall/tetris"
)

func nextUpdate(t *testing.T, g *tetris.Game) *tetris.Snapshot {
	t.Helper()
	select {
	case u, ok := <-g.Updates():
		if !ok {
			t.Fatal("updates channel closed")
		}
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	return nil
}

func waitClosed(t *testing.T, g *tetris.Game) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-g.Updates():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for updates channel to close")
		}
	}
}

func TestUpdates(t *testing.T) {
	game, timer := tetris.NewTestGame(tetris.Square)
	game.Start()
	defer game.Stop()

	u := nextUpdate(t, game)
	if u.Piece == nil || u.Piece.Cells[0] != (tetris.Point{X: 4, Y: 0}) {
		t.Fatalf("wanted a square at the spawn point, got %+v", u.Piece)
	}

	timer.Tick()
	u = nextUpdate(t, game)
	if u.Piece.Cells[0] != (tetris.Point{X: 4, Y: 1}) {
		t.Errorf("wanted the square to fall one row, got %v", u.Piece.Cells)
	}
	if timer.Resets() != 2 {
		t.Errorf("wanted the timer to be rearmed after the tick, got %d resets", timer.Resets())
	}

	game.Action(tetris.MoveLeft)
	u = nextUpdate(t, game)
	if u.Piece.Cells[0] != (tetris.Point{X: 3, Y: 1}) {
		t.Errorf("wanted the square to move left, got %v", u.Piece.Cells)
	}

	game.Action(tetris.HardDrop)
	u = nextUpdate(t, game)
	// 17 rows down and the call that locks it.
	if u.Score != 18 {
		t.Errorf("wanted score 18, got %d", u.Score)
	}
	if u.Stack[19][3] != tetris.Yellow || u.Stack[18][4] != tetris.Yellow {
		t.Errorf("wanted the square on the stack, got %v %v", u.Stack[18], u.Stack[19])
	}
	if u.Piece.Cells[0] != (tetris.Point{X: 4, Y: 0}) {
		t.Errorf("wanted a new square at the spawn point, got %v", u.Piece.Cells)
	}
}

func TestInvalidActionIsIgnored(t *testing.T) {
	game, timer := tetris.NewTestGame(tetris.T)
	game.Start()
	defer game.Stop()
	nextUpdate(t, game)

	game.Action("jump")
	timer.Tick()
	u := nextUpdate(t, game)
	if u.Piece.Cells[3] != (tetris.Point{X: 5, Y: 2}) {
		t.Errorf("wanted the update to come from the tick, got %v", u.Piece.Cells)
	}
}

func TestGameOverEndsTheLoop(t *testing.T) {
	game, timer := tetris.NewTestGame(tetris.Square)
	game.Start()
	defer game.Stop()
	nextUpdate(t, game)

	var u *tetris.Snapshot
	for range 10 {
		game.Action(tetris.HardDrop)
		u = nextUpdate(t, game)
	}
	if !u.GameOver {
		t.Fatal("wanted the last update to be game over")
	}
	if u.Score != 100 {
		t.Errorf("wanted score 100, got %d", u.Score)
	}
	waitClosed(t, game)

	done := make(chan struct{})
	go func() {
		game.Action(tetris.HardDrop)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("wanted Action not to block after game over")
	}
	if timer.Stops() == 0 {
		t.Error("wanted the timer to be stopped")
	}
}

func TestStop(t *testing.T) {
	game, timer := tetris.NewTestGame(tetris.Square)
	game.Start()
	nextUpdate(t, game)

	game.Stop()
	game.Stop()
	waitClosed(t, game)
	if timer.Stops() == 0 {
		t.Error("wanted the timer to be stopped")
	}
}
