package domsift

import "sort"

// Matrix is a read-only, row-major matrix of feature values.
type Matrix interface {
	// Rows returns the number of rows.
	Rows() int

	// Cols returns the number of columns.
	Cols() int

	// At returns the value at row i, column j.
	At(i, j int) float64

	// Row returns row i as a dense slice. The returned slice must not
	// be modified; implementations may return internal storage or a
	// freshly materialized copy.
	Row(i int) []float64
}

// RowAppender accumulates matrix rows during dataset assembly.
type RowAppender interface {
	Matrix

	// AppendRow adds a row to the bottom of the matrix. The row length
	// must match the matrix column count.
	AppendRow(values []float64)
}

// Dense is a dense row-major matrix backed by a single slice.
type Dense struct {
	rows int
	cols int
	data []float64
}

// NewDense returns a dense matrix with the given shape. If data is nil a
// zeroed backing slice is allocated; otherwise data is used directly and
// must have length rows*cols. NewDense panics on a length mismatch.
func NewDense(rows, cols int, data []float64) *Dense {
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		panic("domsift: dense data length does not match dimensions")
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

func (m *Dense) Rows() int { return m.rows }

func (m *Dense) Cols() int { return m.cols }

func (m *Dense) At(i, j int) float64 {
	if j < 0 || j >= m.cols {
		panic("domsift: column index out of range")
	}
	return m.data[i*m.cols+j]
}

// Row returns a view into the matrix's backing slice.
func (m *Dense) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// Set assigns the value at row i, column j.
func (m *Dense) Set(i, j int, v float64) {
	if j < 0 || j >= m.cols {
		panic("domsift: column index out of range")
	}
	m.data[i*m.cols+j] = v
}

// AppendRow adds a row to the bottom of the matrix.
func (m *Dense) AppendRow(values []float64) {
	if len(values) != m.cols {
		panic("domsift: appended row length does not match column count")
	}
	m.data = append(m.data, values...)
	m.rows++
}

// CSR is a sparse matrix in compressed sparse row format. Zero values
// are not stored, which keeps wide mostly-zero block feature datasets
// compact in memory.
type CSR struct {
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

// NewCSR returns an empty sparse matrix with the given column count.
// Rows are added with AppendRow.
func NewCSR(cols int) *CSR {
	return &CSR{cols: cols, indptr: []int{0}}
}

func (m *CSR) Rows() int { return len(m.indptr) - 1 }

func (m *CSR) Cols() int { return m.cols }

func (m *CSR) At(i, j int) float64 {
	if j < 0 || j >= m.cols {
		panic("domsift: column index out of range")
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	seg := m.indices[lo:hi]
	k := sort.SearchInts(seg, j)
	if k < len(seg) && seg[k] == j {
		return m.data[lo+k]
	}
	return 0
}

// Row materializes row i as a fresh dense slice.
func (m *CSR) Row(i int) []float64 {
	row := make([]float64, m.cols)
	for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
		row[m.indices[k]] = m.data[k]
	}
	return row
}

// AppendRow adds a row to the bottom of the matrix, storing only its
// non-zero values.
func (m *CSR) AppendRow(values []float64) {
	if len(values) != m.cols {
		panic("domsift: appended row length does not match column count")
	}
	for j, v := range values {
		if v != 0 {
			m.indices = append(m.indices, j)
			m.data = append(m.data, v)
		}
	}
	m.indptr = append(m.indptr, len(m.indices))
}

// NNZ returns the number of stored non-zero values.
func (m *CSR) NNZ() int { return len(m.data) }

// RowSubset is a read-only view of selected rows of another matrix.
// It shares the underlying storage, so building train/eval partitions
// of a split costs only the index slice.
type RowSubset struct {
	m    Matrix
	rows []int
}

// SubsetRows returns a view of m restricted to the given rows, in the
// given order. Row indices may repeat.
func SubsetRows(m Matrix, rows []int) *RowSubset {
	return &RowSubset{m: m, rows: rows}
}

func (s *RowSubset) Rows() int { return len(s.rows) }

func (s *RowSubset) Cols() int { return s.m.Cols() }

func (s *RowSubset) At(i, j int) float64 { return s.m.At(s.rows[i], j) }

func (s *RowSubset) Row(i int) []float64 { return s.m.Row(s.rows[i]) }

// SubsetFloats returns the elements of vals at the given indices. It is
// the companion of SubsetRows for label slices.
func SubsetFloats(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

// SubsetStrings returns the elements of vals at the given indices. It is
// the companion of SubsetRows for group key slices.
func SubsetStrings(vals []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}
