package tensor

import (
	"sort"

	"github.com/pkg/errors"
)

// SparseMatrix is an immutable 2D matrix in Compressed Sparse Row format.
//
// Values are stored as float64 and converted to the dense operand's dtype by the
// kernels. Column indices within a row are sorted and unique.
//
// It is the adjacency operator of the graph layers: for a batch of B graphs with
// N nodes each, the operator is the (B·N × B·N) block-diagonal stacking of the
// per-graph (N × N) matrices.
type SparseMatrix struct {
	rows, cols int
	rowPtr     []int     // len rows+1
	colIdx     []int     // len nnz
	values     []float64 // len nnz
}

// NewSparseCOO builds a CSR matrix from coordinate triplets.
// Duplicate (row, col) entries are summed.
func NewSparseCOO(rows, cols int, rowIdx, colIdx []int, values []float64) (*SparseMatrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("sparse: invalid dimensions %dx%d", rows, cols)
	}
	if len(rowIdx) != len(colIdx) || len(rowIdx) != len(values) {
		return nil, errors.Errorf("sparse: length mismatch: rowIdx=%d, colIdx=%d, values=%d",
			len(rowIdx), len(colIdx), len(values))
	}
	for i := range rowIdx {
		if rowIdx[i] < 0 || rowIdx[i] >= rows {
			return nil, errors.Errorf("sparse: row index %d out of bounds [0, %d)", rowIdx[i], rows)
		}
		if colIdx[i] < 0 || colIdx[i] >= cols {
			return nil, errors.Errorf("sparse: column index %d out of bounds [0, %d)", colIdx[i], cols)
		}
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if rowIdx[ia] != rowIdx[ib] {
			return rowIdx[ia] < rowIdx[ib]
		}
		return colIdx[ia] < colIdx[ib]
	})

	m := &SparseMatrix{rows: rows, cols: cols, rowPtr: make([]int, rows+1)}
	lastRow, lastCol := -1, -1
	for _, i := range order {
		r, c := rowIdx[i], colIdx[i]
		if r == lastRow && c == lastCol {
			m.values[len(m.values)-1] += values[i]
			continue
		}
		m.colIdx = append(m.colIdx, c)
		m.values = append(m.values, values[i])
		m.rowPtr[r+1]++
		lastRow, lastCol = r, c
	}
	for r := 0; r < rows; r++ {
		m.rowPtr[r+1] += m.rowPtr[r]
	}
	return m, nil
}

// NewSparseFromDense builds a CSR matrix from a row-major dense slice, keeping the
// non-zero entries.
func NewSparseFromDense(rows, cols int, dense []float64) (*SparseMatrix, error) {
	if len(dense) != rows*cols {
		return nil, errors.Errorf("sparse: dense data has %d elements, want %d", len(dense), rows*cols)
	}
	var ri, ci []int
	var vals []float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v := dense[r*cols+c]; v != 0 {
				ri = append(ri, r)
				ci = append(ci, c)
				vals = append(vals, v)
			}
		}
	}
	return NewSparseCOO(rows, cols, ri, ci, vals)
}

// Identity returns the (n × n) sparse identity matrix.
func Identity(n int) *SparseMatrix {
	m := &SparseMatrix{
		rows:   n,
		cols:   n,
		rowPtr: make([]int, n+1),
		colIdx: make([]int, n),
		values: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		m.rowPtr[i+1] = i + 1
		m.colIdx[i] = i
		m.values[i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m *SparseMatrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *SparseMatrix) Cols() int { return m.cols }

// Dims returns (rows, cols).
func (m *SparseMatrix) Dims() (int, int) { return m.rows, m.cols }

// NNZ returns the number of stored entries.
func (m *SparseMatrix) NNZ() int { return len(m.values) }

// Row returns the column indices and values of row i. The slices must not be
// modified.
func (m *SparseMatrix) Row(i int) ([]int, []float64) {
	start, end := m.rowPtr[i], m.rowPtr[i+1]
	return m.colIdx[start:end], m.values[start:end]
}

// At returns the value at (i, j), zero when the entry is not stored.
func (m *SparseMatrix) At(i, j int) float64 {
	cols, vals := m.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	return 0
}

// DoNonZero calls fn for every stored entry in row-major order.
func (m *SparseMatrix) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			fn(i, m.colIdx[k], m.values[k])
		}
	}
}

// T returns the transpose as a new CSR matrix.
func (m *SparseMatrix) T() *SparseMatrix {
	t := &SparseMatrix{
		rows:   m.cols,
		cols:   m.rows,
		rowPtr: make([]int, m.cols+1),
		colIdx: make([]int, len(m.colIdx)),
		values: make([]float64, len(m.values)),
	}
	for _, c := range m.colIdx {
		t.rowPtr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		t.rowPtr[c+1] += t.rowPtr[c]
	}
	next := append([]int(nil), t.rowPtr[:m.cols]...)
	// Rows of m are visited in increasing order, so each row of t stays sorted.
	m.DoNonZero(func(i, j int, v float64) {
		t.colIdx[next[j]] = i
		t.values[next[j]] = v
		next[j]++
	})
	return t
}

// Dense returns the matrix as a row-major float64 slice.
func (m *SparseMatrix) Dense() []float64 {
	out := make([]float64, m.rows*m.cols)
	m.DoNonZero(func(i, j int, v float64) {
		out[i*m.cols+j] = v
	})
	return out
}

// BlockDiag stacks square or rectangular matrices along the diagonal.
//
//	BlockDiag(A (2×2), B (3×3)) → (5×5) with A in the top-left and B in the
//	bottom-right corner.
func BlockDiag(blocks ...*SparseMatrix) (*SparseMatrix, error) {
	if len(blocks) == 0 {
		return nil, errors.New("sparse: BlockDiag needs at least one block")
	}
	out := &SparseMatrix{}
	for _, b := range blocks {
		out.rows += b.rows
		out.cols += b.cols
	}
	out.rowPtr = make([]int, 1, out.rows+1)
	colOff := 0
	for _, b := range blocks {
		for i := 0; i < b.rows; i++ {
			cols, vals := b.Row(i)
			for k, c := range cols {
				out.colIdx = append(out.colIdx, c+colOff)
				out.values = append(out.values, vals[k])
			}
			out.rowPtr = append(out.rowPtr, len(out.colIdx))
		}
		colOff += b.cols
	}
	return out, nil
}
