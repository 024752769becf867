package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSparseCOO(t *testing.T) {
	// Unsorted input with a duplicate at (1, 0).
	m, err := NewSparseCOO(3, 3,
		[]int{2, 1, 0, 1},
		[]int{2, 0, 1, 0},
		[]float64{5, 1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 3, m.NNZ())
	assert.Equal(t, 2.0, m.At(0, 1))
	assert.Equal(t, 4.0, m.At(1, 0))
	assert.Equal(t, 5.0, m.At(2, 2))
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.Equal(t, []float64{
		0, 2, 0,
		4, 0, 0,
		0, 0, 5,
	}, m.Dense())
}

func TestNewSparseCOOErrors(t *testing.T) {
	_, err := NewSparseCOO(0, 3, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewSparseCOO(2, 2, []int{0}, []int{0, 1}, []float64{1})
	assert.Error(t, err)

	_, err = NewSparseCOO(2, 2, []int{2}, []int{0}, []float64{1})
	assert.Error(t, err)

	_, err = NewSparseCOO(2, 2, []int{0}, []int{-1}, []float64{1})
	assert.Error(t, err)
}

func TestSparseTranspose(t *testing.T) {
	dense := []float64{
		1, 0, 2,
		0, 3, 0,
	}
	m, err := NewSparseFromDense(2, 3, dense)
	require.NoError(t, err)

	tr := m.T()
	rows, cols := tr.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []float64{
		1, 0,
		0, 3,
		2, 0,
	}, tr.Dense())
	assert.Equal(t, m.Dense(), tr.T().Dense())
}

func TestSparseIdentityAndBlockDiag(t *testing.T) {
	a, err := NewSparseFromDense(2, 2, []float64{0, 1, 1, 0})
	require.NoError(t, err)

	bd, err := BlockDiag(a, Identity(1), a)
	require.NoError(t, err)
	assert.Equal(t, 5, bd.Rows())
	assert.Equal(t, 5, bd.Cols())
	assert.Equal(t, 5, bd.NNZ())
	assert.Equal(t, []float64{
		0, 1, 0, 0, 0,
		1, 0, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 0, 1,
		0, 0, 0, 1, 0,
	}, bd.Dense())

	_, err = BlockDiag()
	assert.Error(t, err)
}

func TestSparseDoNonZeroOrder(t *testing.T) {
	m, err := NewSparseCOO(2, 2, []int{1, 0, 0}, []int{1, 1, 0}, []float64{3, 2, 1})
	require.NoError(t, err)

	var got [][3]float64
	m.DoNonZero(func(i, j int, v float64) {
		got = append(got, [3]float64{float64(i), float64(j), v})
	})
	assert.Equal(t, [][3]float64{{0, 0, 1}, {0, 1, 2}, {1, 1, 3}}, got)
}
