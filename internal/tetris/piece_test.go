package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateMatrixFourTimesIsIdentity(t *testing.T) {
	for shape := 0; shape < NumShapes; shape++ {
		for _, dir := range []int{1, -1} {
			p := NewPiece(shape)
			want := p.Clone()
			for i := 0; i < 4; i++ {
				RotateMatrix(p.Matrix, dir)
			}
			assert.Equal(t, want.Matrix, p.Matrix, "shape %d dir %d", shape, dir)
		}
	}
}

func TestRotateMatrixClockwiseThenBackIsIdentity(t *testing.T) {
	for shape := 0; shape < NumShapes; shape++ {
		p := NewPiece(shape)
		want := p.Clone()
		RotateMatrix(p.Matrix, 1)
		RotateMatrix(p.Matrix, -1)
		assert.Equal(t, want.Matrix, p.Matrix, "shape %d", shape)
	}
}

func TestRotateMatrixClockwise(t *testing.T) {
	m := [][]int{
		{1, 2},
		{3, 4},
	}
	RotateMatrix(m, 1)
	assert.Equal(t, [][]int{
		{3, 1},
		{4, 2},
	}, m)
}

func TestNewPieceCopiesShape(t *testing.T) {
	a := NewPiece(0)
	b := NewPiece(0)
	a.Matrix[1][0] = 9
	assert.NotEqual(t, a.Matrix, b.Matrix)
	assert.Equal(t, 1, b.Matrix[1][0])
}

func TestPieceColorsMatchShapeIndex(t *testing.T) {
	for shape := 0; shape < NumShapes; shape++ {
		p := NewPiece(shape)
		for _, row := range p.Matrix {
			for _, v := range row {
				if v != 0 {
					require.Equal(t, shape+1, v)
				}
			}
		}
	}
}
