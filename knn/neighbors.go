package knn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ferortega/cf4j-sub001/parallel"
	"github.com/ferortega/cf4j-sub001/similarity"
)

// PassName identifies neighbor passes in logs and metrics.
const PassName = "neighbors"

// ErrInvalidK is returned when the neighbor count is not positive.
var ErrInvalidK = errors.New("knn: k must be positive")

// NeighborTable holds k neighbor indices per entity, best first, padded with
// NotFound.
type NeighborTable struct {
	n, k int
	data []int
}

// NewNeighborTable allocates an n×k table filled with NotFound.
func NewNeighborTable(n, k int) (*NeighborTable, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if n < 1 {
		return nil, parallel.ErrEmptyDomain
	}
	data := make([]int, n*k)
	for i := range data {
		data[i] = NotFound
	}
	return &NeighborTable{n: n, k: k, data: data}, nil
}

// Len returns the number of rows.
func (t *NeighborTable) Len() int { return t.n }

// K returns the row width.
func (t *NeighborTable) K() int { return t.k }

// Row returns the neighbors of entity i. The slice aliases the table.
func (t *NeighborTable) Row(i int) []int {
	return t.data[i*t.k : (i+1)*t.k : (i+1)*t.k]
}

type neighborWorker struct {
	parallel.Base
	matrix *similarity.Matrix
	table  *NeighborTable
}

func (w *neighborWorker) Process(_ context.Context, i int) error {
	selectInto(w.table.Row(i), w.matrix.Row(i), i)
	return nil
}

// Neighbors runs one neighbor pass over m and returns the table.
// k <= 0 fails with ErrInvalidK before the pass starts.
func Neighbors(ctx context.Context, m *similarity.Matrix, k int, opts ...Option) (*NeighborTable, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	o := applyOptions(opts)
	if o.numWorkers < 1 {
		return nil, fmt.Errorf("%s pass: %w", PassName, parallel.ErrInvalidWorkers)
	}

	table, err := NewNeighborTable(m.Len(), k)
	if err != nil {
		return nil, fmt.Errorf("%s pass: %w", PassName, err)
	}

	start := time.Now()
	err = parallel.Run(ctx, m.Len(), &neighborWorker{matrix: m, table: table}, o.numWorkers,
		parallel.WithResourceController(o.controller))
	elapsed := time.Since(start)

	o.metricsCollector.RecordPass(PassName, m.Len(), elapsed, err)
	o.logger.WithK(k).WithWorkers(o.numWorkers).LogPass(ctx, PassName, m.Len(), elapsed, err)

	if err != nil {
		return nil, fmt.Errorf("%s pass: %w", PassName, err)
	}
	return table, nil
}
