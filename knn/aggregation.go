package knn

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownAggregation is returned by ParseAggregation for unknown names.
var ErrUnknownAggregation = errors.New("knn: unknown aggregation")

// Aggregation combines the neighbors' ratings of a target into a prediction.
type Aggregation int

const (
	// Mean is the arithmetic mean of the neighbors' ratings.
	Mean Aggregation = iota
	// WeightedMean is Σ(sim·rating) / Σ(sim).
	WeightedMean
	// DeviationFromMean is avg + Σ(sim·(rating − neighborAvg)) / Σ(sim).
	DeviationFromMean
)

func (a Aggregation) String() string {
	switch a {
	case Mean:
		return "mean"
	case WeightedMean:
		return "weighted-mean"
	case DeviationFromMean:
		return "deviation-from-mean"
	default:
		return fmt.Sprintf("aggregation(%d)", int(a))
	}
}

// ParseAggregation maps a name to an Aggregation. Underscores and case are
// ignored ("WEIGHTED_MEAN" parses as WeightedMean).
func ParseAggregation(name string) (Aggregation, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-") {
	case "mean":
		return Mean, nil
	case "weighted-mean":
		return WeightedMean, nil
	case "deviation-from-mean":
		return DeviationFromMean, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAggregation, name)
	}
}

// accumulator folds neighbor contributions for one prediction.
type accumulator struct {
	policy Aggregation
	n      int
	sum    float64 // Σ rating, Σ sim·rating or Σ sim·(rating − neighborAvg)
	sims   float64 // Σ sim
}

func (acc *accumulator) add(sim, rating, neighborAvg float64) {
	acc.n++
	switch acc.policy {
	case Mean:
		acc.sum += rating
	case WeightedMean:
		acc.sum += sim * rating
		acc.sims += sim
	case DeviationFromMean:
		acc.sum += sim * (rating - neighborAvg)
		acc.sims += sim
	}
}

// result returns the prediction, or NaN if none is possible.
func (acc *accumulator) result(entityAvg float64) float64 {
	if acc.n == 0 {
		return math.NaN()
	}
	switch acc.policy {
	case Mean:
		return acc.sum / float64(acc.n)
	case WeightedMean:
		if acc.sims == 0 {
			return math.NaN()
		}
		return acc.sum / acc.sims
	case DeviationFromMean:
		if acc.sims == 0 {
			return math.NaN()
		}
		return entityAvg + acc.sum/acc.sims
	default:
		return math.NaN()
	}
}
