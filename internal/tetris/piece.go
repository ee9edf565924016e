package tetris

// Board dimensions and cell values. Cells hold 0 for empty, 1-7 for the
// seven piece colors, and GarbageCell for injected garbage rows.
const (
	BoardRows = 20
	BoardCols = 10

	GarbageCell = 8
)

// NumShapes is the number of canonical piece shapes
const NumShapes = 7

// Canonical shape matrices. The nonzero value doubles as the piece's color
// code, so shape index i always renders as color i+1.
var pieceShapes = [NumShapes][][]int{
	{ // T
		{0, 0, 0},
		{1, 1, 1},
		{0, 1, 0},
	},
	{ // O
		{2, 2},
		{2, 2},
	},
	{ // S
		{0, 3, 3},
		{3, 3, 0},
		{0, 0, 0},
	},
	{ // Z
		{4, 4, 0},
		{0, 4, 4},
		{0, 0, 0},
	},
	{ // I
		{0, 5, 0, 0},
		{0, 5, 0, 0},
		{0, 5, 0, 0},
		{0, 5, 0, 0},
	},
	{ // J
		{0, 6, 0},
		{0, 6, 0},
		{6, 6, 0},
	},
	{ // L
		{0, 7, 0},
		{0, 7, 0},
		{0, 7, 7},
	},
}

// Piece is an active tetromino: a mutable shape matrix plus its top-left
// offset into the board. Rotation mutates the matrix in place so failed
// wall-kicks can rotate it straight back.
type Piece struct {
	Matrix [][]int
	Row    int
	Col    int
}

// NewPiece returns a fresh piece of the given shape index in [0, NumShapes)
func NewPiece(shape int) *Piece {
	src := pieceShapes[shape]
	m := make([][]int, len(src))
	for i, row := range src {
		m[i] = make([]int, len(row))
		copy(m[i], row)
	}
	return &Piece{Matrix: m}
}

// Width returns the piece matrix's column count
func (p *Piece) Width() int {
	if len(p.Matrix) == 0 {
		return 0
	}
	return len(p.Matrix[0])
}

// Clone returns a deep copy of the piece
func (p *Piece) Clone() *Piece {
	m := make([][]int, len(p.Matrix))
	for i, row := range p.Matrix {
		m[i] = make([]int, len(row))
		copy(m[i], row)
	}
	return &Piece{Matrix: m, Row: p.Row, Col: p.Col}
}

// RotateMatrix rotates a square matrix 90 degrees in place and returns it.
// dir > 0 rotates clockwise (transpose then reverse each row), dir < 0
// counter-clockwise (transpose then reverse the row order).
func RotateMatrix(m [][]int, dir int) [][]int {
	for y := 0; y < len(m); y++ {
		for x := 0; x < y; x++ {
			m[y][x], m[x][y] = m[x][y], m[y][x]
		}
	}
	if dir > 0 {
		for _, row := range m {
			for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
	} else {
		for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
			m[i], m[j] = m[j], m[i]
		}
	}
	return m
}

// NewBoard returns an empty BoardRows x BoardCols grid
func NewBoard() [][]int {
	b := make([][]int, BoardRows)
	for i := range b {
		b[i] = make([]int, BoardCols)
	}
	return b
}

// CloneBoard returns a deep copy of a grid
func CloneBoard(b [][]int) [][]int {
	out := make([][]int, len(b))
	for i, row := range b {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}
