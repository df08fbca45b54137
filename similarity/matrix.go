package similarity

import (
	"context"
	"fmt"
	"sync"

	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/resource"
)

// Matrix is a dense row-major n×n similarity matrix. Row i holds the
// similarity of entity i to every entity of the same side.
type Matrix struct {
	n      int
	data   []float64
	metric string
	side   datamodel.Side

	rc       *resource.Controller
	reserved int64
	release  sync.Once
}

// MatrixBytes returns the memory footprint of an n×n matrix.
func MatrixBytes(n int) int64 { return int64(n) * int64(n) * 8 }

// NewMatrix allocates an n×n matrix filled with Undefined, reserving its
// memory on rc without waiting. rc may be nil.
func NewMatrix(ctx context.Context, n int, metric string, side datamodel.Side, rc *resource.Controller) (*Matrix, error) {
	if n < 1 {
		return nil, fmt.Errorf("similarity: invalid matrix size %d", n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bytes := MatrixBytes(n)
	if err := rc.ReserveMemory(bytes); err != nil {
		return nil, err
	}

	data := make([]float64, n*n)
	for i := range data {
		data[i] = Undefined
	}
	return &Matrix{
		n:        n,
		data:     data,
		metric:   metric,
		side:     side,
		rc:       rc,
		reserved: bytes,
	}, nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return m.n }

// Metric returns the name of the metric that filled the matrix.
func (m *Matrix) Metric() string { return m.metric }

// Side returns the side the matrix was computed over.
func (m *Matrix) Side() datamodel.Side { return m.side }

// Row returns row i. The slice aliases the matrix.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n]
}

// At returns the similarity of entity i to entity j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Release returns the matrix memory to the resource controller.
// The matrix must not be used afterwards.
func (m *Matrix) Release() {
	m.release.Do(func() {
		m.rc.ReleaseMemory(m.reserved)
		m.data = nil
	})
}
