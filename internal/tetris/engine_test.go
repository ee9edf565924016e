package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(seed int64, events Events) *Engine {
	e := NewEngine(DefaultConfig(), events)
	e.Reset(seed)
	return e
}

// fillRow fills row y completely, or leaves gapCol empty when gapCol >= 0
func fillRow(e *Engine, y, gapCol int) {
	for x := 0; x < BoardCols; x++ {
		if x == gapCol {
			e.board[y][x] = 0
		} else {
			e.board[y][x] = 1
		}
	}
}

func TestResetClearsState(t *testing.T) {
	e := newTestEngine(1, Events{})
	e.score = 50
	e.board[19][0] = 3
	e.Reset(2)

	assert.Equal(t, 0, e.Score())
	assert.False(t, e.IsGameOver())
	for _, row := range e.Board() {
		for _, v := range row {
			assert.Equal(t, 0, v)
		}
	}
	require.NotNil(t, e.active)
	require.NotNil(t, e.next)
	assert.Equal(t, 0, e.active.Row)
	assert.Equal(t, (BoardCols-e.active.Width())/2, e.active.Col)
}

func TestSameSeedProducesIdenticalPieceSequence(t *testing.T) {
	a := newTestEngine(42, Events{})
	b := newTestEngine(42, Events{})

	assert.Equal(t, a.active.Matrix, b.active.Matrix)
	assert.Equal(t, a.next.Matrix, b.next.Matrix)
	for i := 0; i < 200; i++ {
		require.Equal(t, a.randomPiece().Matrix, b.randomPiece().Matrix, "piece %d", i)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := newTestEngine(1, Events{})
	b := newTestEngine(2, Events{})

	same := true
	for i := 0; i < 50; i++ {
		if !assert.ObjectsAreEqual(a.randomPiece().Matrix, b.randomPiece().Matrix) {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestMoveRevertsOnCollision(t *testing.T) {
	e := newTestEngine(3, Events{})

	// Walk into the left wall; the piece must stay in bounds throughout
	for i := 0; i < BoardCols+2; i++ {
		e.Move(-1)
		assert.False(t, e.collides(e.active))
	}
	col := e.active.Col
	e.Move(-1)
	assert.Equal(t, col, e.active.Col)
}

func TestTickDropsAfterInterval(t *testing.T) {
	e := newTestEngine(4, Events{})
	row := e.active.Row

	e.Tick(500 * time.Millisecond)
	assert.Equal(t, row, e.active.Row)

	e.Tick(600 * time.Millisecond)
	assert.Equal(t, row+1, e.active.Row)
	// Accumulator was reset by the drop
	e.Tick(600 * time.Millisecond)
	assert.Equal(t, row+1, e.active.Row)
}

func TestHardDropAwardsTwoPointsPerRow(t *testing.T) {
	e := newTestEngine(5, Events{})
	p := e.active

	e.HardDrop()

	// Spawn row is 0, so the locked row equals the rows travelled
	assert.Equal(t, p.Row*2, e.Score())
	assert.NotSame(t, p, e.active)
}

func TestSweepAwardsTenPerRowInOneUpdate(t *testing.T) {
	var updates [][2]int
	e := newTestEngine(6, Events{
		ScoreChanged: func(old, new int) { updates = append(updates, [2]int{old, new}) },
	})

	fillRow(e, 19, -1)
	fillRow(e, 18, -1)
	fillRow(e, 17, -1)
	e.sweep()

	require.Len(t, updates, 1)
	assert.Equal(t, [2]int{0, 30}, updates[0])
	assert.Equal(t, 3, e.Lines())
	// Cleared rows are replaced by empty rows unshifted at the top
	for y := 0; y < 3; y++ {
		for x := 0; x < BoardCols; x++ {
			assert.Equal(t, 0, e.board[y][x])
		}
	}
}

func TestSweepReexaminesShiftedRows(t *testing.T) {
	e := newTestEngine(7, Events{})

	// Full rows separated by a partial row must all clear in one sweep
	fillRow(e, 19, -1)
	fillRow(e, 18, 4)
	fillRow(e, 17, -1)
	fillRow(e, 16, -1)
	e.sweep()

	assert.Equal(t, 30, e.Score())
	assert.Equal(t, 3, e.Lines())
	// The partial row settles on the bottom
	assert.Equal(t, 0, e.board[19][4])
	assert.Equal(t, 1, e.board[19][0])
}

func TestSweepEmitsOneSignalUnitPerHundredCrossed(t *testing.T) {
	var signals []int
	var updates [][2]int
	e := newTestEngine(8, Events{
		ScoreChanged:   func(old, new int) { updates = append(updates, [2]int{old, new}) },
		LinesForAttack: func(units int) { signals = append(signals, units) },
	})

	// 180 -> 220 in a single sweep: one 100-threshold unit, one score update
	e.score = 180
	fillRow(e, 19, -1)
	fillRow(e, 18, -1)
	fillRow(e, 17, -1)
	fillRow(e, 16, -1)
	e.sweep()

	require.Equal(t, 220, e.Score())
	require.Len(t, updates, 1)
	require.Equal(t, []int{1}, signals)
	// The match layer's independent 200-point threshold also crosses once
	assert.Equal(t, 1, AttackUnits(180, 220, AttackScoreStep))
}

func TestAttackUnits(t *testing.T) {
	tests := []struct {
		old, new, threshold, want int
	}{
		{0, 99, 100, 0},
		{0, 100, 100, 1},
		{90, 210, 100, 2},
		{180, 220, 200, 1},
		{200, 390, 200, 0},
		{190, 400, 200, 2},
		{50, 50, 100, 0},
		{100, 50, 100, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AttackUnits(tt.old, tt.new, tt.threshold),
			"%d -> %d / %d", tt.old, tt.new, tt.threshold)
	}
}

func TestAddGarbageAppendsRowsWithSingleGap(t *testing.T) {
	e := newTestEngine(9, Events{})
	e.board[19][3] = 2 // existing locked cell

	e.AddGarbage(3)

	for y := BoardRows - 3; y < BoardRows; y++ {
		gaps := 0
		for x := 0; x < BoardCols; x++ {
			switch e.board[y][x] {
			case 0:
				gaps++
			case GarbageCell:
			default:
				t.Fatalf("unexpected cell %d at %d,%d", e.board[y][x], y, x)
			}
		}
		assert.Equal(t, 1, gaps, "row %d", y)
	}
	// The previously locked cell was pushed up three rows
	assert.Equal(t, 2, e.board[16][3])
}

func TestAddGarbageIsDeterministicForSeed(t *testing.T) {
	a := newTestEngine(11, Events{})
	b := newTestEngine(11, Events{})
	a.AddGarbage(5)
	b.AddGarbage(5)
	assert.Equal(t, a.Board(), b.Board())
}

func TestWallKickSucceedsOrRevertsExactly(t *testing.T) {
	// Blocked on every offset: the rotation must be a byte-for-byte no-op
	e := newTestEngine(12, Events{})
	for y := range e.board {
		for x := range e.board[y] {
			e.board[y][x] = 1
		}
	}
	for y, row := range e.active.Matrix {
		for x, v := range row {
			if v != 0 {
				e.board[e.active.Row+y][e.active.Col+x] = 0
			}
		}
	}
	before := e.active.Clone()

	e.Rotate(1)

	assert.Equal(t, before.Matrix, e.active.Matrix)
	assert.Equal(t, before.Row, e.active.Row)
	assert.Equal(t, before.Col, e.active.Col)
}

func TestWallKickAgainstWall(t *testing.T) {
	// Against the left wall on an empty board a rotation must always find
	// an offset within the piece's width
	e := newTestEngine(13, Events{})
	for i := 0; i < BoardCols; i++ {
		e.Move(-1)
	}
	e.Rotate(1)
	assert.False(t, e.collides(e.active))
}

func TestSpawnCollisionSetsGameOver(t *testing.T) {
	gameOver := false
	e := newTestEngine(14, Events{
		GameOver: func() { gameOver = true },
	})

	// Leave column 0 open so no rows sweep, then force a lock at the top
	for y := 1; y < BoardRows; y++ {
		fillRow(e, y, 0)
	}
	e.SoftDrop()

	assert.True(t, e.IsGameOver())
	assert.True(t, gameOver)

	// Further operations are no-ops
	board := e.Board()
	score := e.Score()
	e.SoftDrop()
	e.HardDrop()
	e.Move(1)
	e.Rotate(1)
	assert.Equal(t, board, e.Board())
	assert.Equal(t, score, e.Score())
}

func TestLockEmitsNextPieceThenBoard(t *testing.T) {
	var order []string
	e := NewEngine(DefaultConfig(), Events{
		NextPieceChanged: func([][]int) { order = append(order, "next") },
		BoardChanged:     func([][]int) { order = append(order, "board") },
	})
	e.Reset(15)
	order = nil

	e.HardDrop()

	require.GreaterOrEqual(t, len(order), 2)
	assert.Equal(t, []string{"next", "board"}, order[:2])
}

func TestSetBoardStateReplacesBoard(t *testing.T) {
	e := newTestEngine(16, Events{})
	snapshot := NewBoard()
	snapshot[10][4] = 7

	e.SetBoardState(snapshot)
	snapshot[10][4] = 3 // caller's copy must not alias the engine's board

	assert.Equal(t, 7, e.board[10][4])
}

func TestSpeedRampLowersDropInterval(t *testing.T) {
	cfg := Config{
		DropInterval:    time.Second,
		SpeedStep:       100 * time.Millisecond,
		SpeedEveryLines: 2,
		MinDropInterval: 200 * time.Millisecond,
	}
	e := NewEngine(cfg, Events{})
	e.Reset(17)

	fillRow(e, 19, -1)
	fillRow(e, 18, -1)
	e.sweep()
	assert.Equal(t, 900*time.Millisecond, e.DropInterval())

	// Ramp is floored at MinDropInterval
	e.linesCleared = 1000
	e.applySpeedRamp()
	assert.Equal(t, 200*time.Millisecond, e.DropInterval())
}
