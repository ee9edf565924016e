package tetris

import (
	"math/rand"
	"time"
)

// Score thresholds. Every 100 points crossed within a line-clear sweep emits
// one internal lines-for-attack signal; the match layer independently sends
// one garbage line per 200 points crossed. Both are derived from the same
// score via AttackUnits.
const (
	SignalScoreStep = 100
	AttackScoreStep = 200
)

// Config controls drop timing. The interval shrinks by SpeedStep every
// SpeedEveryLines cleared lines, never below MinDropInterval. A zero
// SpeedStep keeps the interval flat.
type Config struct {
	DropInterval    time.Duration
	SpeedStep       time.Duration
	SpeedEveryLines int
	MinDropInterval time.Duration
}

// DefaultConfig returns the stock timing policy: a fixed one-second drop
func DefaultConfig() Config {
	return Config{
		DropInterval:    time.Second,
		SpeedStep:       0,
		SpeedEveryLines: 10,
		MinDropInterval: 100 * time.Millisecond,
	}
}

// Events are optional callbacks fired by the engine. Nil fields are skipped.
type Events struct {
	// BoardChanged fires whenever locked board contents change
	BoardChanged func(board [][]int)
	// NextPieceChanged fires when a new next piece is queued
	NextPieceChanged func(matrix [][]int)
	// ScoreChanged fires on every score update with the old and new values
	ScoreChanged func(oldScore, newScore int)
	// LinesForAttack fires once per 100-point threshold crossed in a sweep
	LinesForAttack func(units int)
	// GameOver fires when a freshly spawned piece immediately collides
	GameOver func()
}

// Engine is a deterministic single-board falling-block state machine.
// One instance per simulated board; not safe for concurrent use. Mirror
// boards that only display an opponent's state should skip Reset/Tick and
// feed SetBoardState instead.
type Engine struct {
	cfg    Config
	events Events

	rng   *rand.Rand
	board [][]int

	active *Piece
	next   *Piece

	score        int
	linesCleared int
	gameOver     bool

	dropInterval time.Duration
	elapsed      time.Duration
}

// NewEngine creates an engine with an empty board. Call Reset with the match
// seed before driving it.
func NewEngine(cfg Config, events Events) *Engine {
	if cfg.DropInterval <= 0 {
		cfg.DropInterval = DefaultConfig().DropInterval
	}
	return &Engine{
		cfg:          cfg,
		events:       events,
		board:        NewBoard(),
		dropInterval: cfg.DropInterval,
	}
}

// Reset clears the board, zeroes the score and seeds the piece generator.
// Two engines reset with the same seed produce identical piece sequences.
func (e *Engine) Reset(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
	e.board = NewBoard()
	e.score = 0
	e.linesCleared = 0
	e.gameOver = false
	e.dropInterval = e.cfg.DropInterval
	e.elapsed = 0

	e.active = e.randomPiece()
	e.next = e.randomPiece()
	e.spawn(e.active)

	e.emitNextPiece()
	e.emitBoard()
}

// Tick accumulates frame time and performs one SoftDrop each time the
// accumulated time exceeds the current drop interval.
func (e *Engine) Tick(elapsed time.Duration) {
	if e.gameOver || e.rng == nil {
		return
	}
	e.elapsed += elapsed
	if e.elapsed > e.dropInterval {
		e.SoftDrop()
	}
}

// Move translates the active piece one column; dir is -1 (left) or +1
// (right). The move is reverted if it collides.
func (e *Engine) Move(dir int) {
	if e.gameOver || e.active == nil {
		return
	}
	e.active.Col += dir
	if e.collides(e.active) {
		e.active.Col -= dir
	}
}

// Rotate turns the active piece 90 degrees, wall-kicking with alternating
// offsets (+1, -2, +3, ...) up to the piece's width. If no offset fits the
// rotation is fully reverted and the call is a no-op.
func (e *Engine) Rotate(dir int) {
	if e.gameOver || e.active == nil {
		return
	}
	p := e.active
	startCol := p.Col
	RotateMatrix(p.Matrix, dir)
	offset := 1
	for e.collides(p) {
		p.Col += offset
		if offset > 0 {
			offset = -(offset + 1)
		} else {
			offset = -(offset - 1)
		}
		if abs(offset) > p.Width() {
			RotateMatrix(p.Matrix, -dir)
			p.Col = startCol
			return
		}
	}
}

// SoftDrop advances the active piece one row. On collision the piece locks:
// it merges into the board, full rows are swept, the queued piece is
// promoted, and a spawn collision flags game over.
func (e *Engine) SoftDrop() {
	if e.gameOver || e.active == nil {
		return
	}
	e.active.Row++
	if e.collides(e.active) {
		e.active.Row--
		e.merge()
		e.sweep()
		e.promote()
	}
	e.elapsed = 0
}

// HardDrop slides the active piece to the floor at 2 points per row, then
// locks it with a single SoftDrop.
func (e *Engine) HardDrop() {
	if e.gameOver || e.active == nil {
		return
	}
	rows := 0
	for {
		e.active.Row++
		if e.collides(e.active) {
			e.active.Row--
			break
		}
		rows++
	}
	if rows > 0 {
		e.addScore(rows * 2)
	}
	e.SoftDrop()
}

// AddGarbage pushes lines garbage rows in from the bottom, shifting the
// top rows off the board. Each injected row is solid garbage except for one
// random gap column. No collision checks: garbage lands even mid-fall, and
// content pushed off the top is simply lost.
func (e *Engine) AddGarbage(lines int) {
	for i := 0; i < lines; i++ {
		for y := 0; y < BoardRows-1; y++ {
			e.board[y] = e.board[y+1]
		}
		row := make([]int, BoardCols)
		gap := e.gapColumn()
		for x := range row {
			if x != gap {
				row[x] = GarbageCell
			}
		}
		e.board[BoardRows-1] = row
	}
	if lines > 0 {
		e.emitBoard()
	}
}

// SetBoardState unconditionally replaces the board with an external
// snapshot. Used by mirror/spectator instances that never simulate.
func (e *Engine) SetBoardState(board [][]int) {
	e.board = CloneBoard(board)
	e.emitBoard()
}

// Board returns a copy of the locked board contents
func (e *Engine) Board() [][]int {
	return CloneBoard(e.board)
}

// Active returns the active piece's matrix and position for rendering
func (e *Engine) Active() (matrix [][]int, row, col int) {
	if e.active == nil {
		return nil, 0, 0
	}
	return e.active.Matrix, e.active.Row, e.active.Col
}

// NextPiece returns the queued piece's matrix
func (e *Engine) NextPiece() [][]int {
	if e.next == nil {
		return nil
	}
	return e.next.Matrix
}

// Score returns the current score
func (e *Engine) Score() int {
	return e.score
}

// Lines returns the total rows cleared since the last Reset
func (e *Engine) Lines() int {
	return e.linesCleared
}

// IsGameOver reports whether the session has topped out
func (e *Engine) IsGameOver() bool {
	return e.gameOver
}

// DropInterval returns the current gravity interval after any speed ramp
func (e *Engine) DropInterval() time.Duration {
	return e.dropInterval
}

// AttackUnits returns how many multiples of threshold the score crossed
// going from oldScore to newScore.
func AttackUnits(oldScore, newScore, threshold int) int {
	if threshold <= 0 || newScore <= oldScore {
		return 0
	}
	return newScore/threshold - oldScore/threshold
}

// collides reports whether the piece overlaps an occupied cell or leaves the
// board. Any out-of-range index counts as occupied, including negative
// columns.
func (e *Engine) collides(p *Piece) bool {
	for y, row := range p.Matrix {
		for x, v := range row {
			if v == 0 {
				continue
			}
			br := p.Row + y
			bc := p.Col + x
			if br < 0 || br >= BoardRows || bc < 0 || bc >= BoardCols {
				return true
			}
			if e.board[br][bc] != 0 {
				return true
			}
		}
	}
	return false
}

// merge writes the active piece's nonzero cells into the board
func (e *Engine) merge() {
	for y, row := range e.active.Matrix {
		for x, v := range row {
			if v == 0 {
				continue
			}
			br := e.active.Row + y
			bc := e.active.Col + x
			if br >= 0 && br < BoardRows && bc >= 0 && bc < BoardCols {
				e.board[br][bc] = v
			}
		}
	}
}

// sweep removes full rows bottom-up, re-examining the same index after each
// removal, and awards 10 points per row in a single score update.
func (e *Engine) sweep() {
	cleared := 0
	for y := BoardRows - 1; y >= 0; y-- {
		full := true
		for x := 0; x < BoardCols; x++ {
			if e.board[y][x] == 0 {
				full = false
				break
			}
		}
		if !full {
			continue
		}
		for i := y; i > 0; i-- {
			e.board[i] = e.board[i-1]
		}
		e.board[0] = make([]int, BoardCols)
		cleared++
		y++ // rows above shifted down into this index
	}
	if cleared == 0 {
		return
	}
	e.linesCleared += cleared
	old := e.score
	e.addScore(cleared * 10)
	if units := AttackUnits(old, e.score, SignalScoreStep); units > 0 && e.events.LinesForAttack != nil {
		e.events.LinesForAttack(units)
	}
	e.applySpeedRamp()
}

// promote swaps in the queued piece, generates a new next piece and spawns
// at the top. A spawn collision ends the session.
func (e *Engine) promote() {
	e.active = e.next
	e.next = e.randomPiece()
	e.spawn(e.active)

	e.emitNextPiece()
	e.emitBoard()

	if e.collides(e.active) {
		e.gameOver = true
		if e.events.GameOver != nil {
			e.events.GameOver()
		}
	}
}

func (e *Engine) spawn(p *Piece) {
	p.Row = 0
	p.Col = (BoardCols - p.Width()) / 2
}

func (e *Engine) randomPiece() *Piece {
	return NewPiece(e.rng.Intn(NumShapes))
}

// gapColumn picks the empty column for a garbage row from the engine's own
// seeded generator, keeping the whole simulation reproducible.
func (e *Engine) gapColumn() int {
	if e.rng == nil {
		return 0
	}
	return e.rng.Intn(BoardCols)
}

func (e *Engine) addScore(points int) {
	old := e.score
	e.score += points
	if e.events.ScoreChanged != nil {
		e.events.ScoreChanged(old, e.score)
	}
}

func (e *Engine) applySpeedRamp() {
	if e.cfg.SpeedStep <= 0 || e.cfg.SpeedEveryLines <= 0 {
		return
	}
	steps := e.linesCleared / e.cfg.SpeedEveryLines
	interval := e.cfg.DropInterval - time.Duration(steps)*e.cfg.SpeedStep
	if interval < e.cfg.MinDropInterval {
		interval = e.cfg.MinDropInterval
	}
	e.dropInterval = interval
}

func (e *Engine) emitBoard() {
	if e.events.BoardChanged != nil {
		e.events.BoardChanged(e.Board())
	}
}

func (e *Engine) emitNextPiece() {
	if e.events.NextPieceChanged != nil && e.next != nil {
		e.events.NextPieceChanged(e.next.Matrix)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
