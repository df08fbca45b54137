package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownMetric is returned by ByName for unregistered names.
var ErrUnknownMetric = errors.New("similarity: unknown metric")

type metricOptions struct {
	threshold float64
}

// MetricOption configures metrics created by ByName.
type MetricOption func(*metricOptions)

// WithRelevanceThreshold sets the relevance threshold of Singularities.
func WithRelevanceThreshold(t float64) MetricOption {
	return func(o *metricOptions) {
		o.threshold = t
	}
}

var constructors = map[string]func(metricOptions) Metric{
	"cosine":              func(metricOptions) Metric { return Cosine{} },
	"pearson":             func(metricOptions) Metric { return PearsonCorrelation{} },
	"constrained-pearson": func(metricOptions) Metric { return NewConstrainedPearsonCorrelation() },
	"adjusted-cosine":     func(metricOptions) Metric { return NewAdjustedCosine() },
	"spearman":            func(metricOptions) Metric { return SpearmanRank{} },
	"jaccard":             func(metricOptions) Metric { return Jaccard{} },
	"msd":                 func(metricOptions) Metric { return NewMSD() },
	"jmsd":                func(metricOptions) Metric { return NewJMSD() },
	"cjmsd":               func(metricOptions) Metric { return NewCJMSD() },
	"pip":                 func(metricOptions) Metric { return NewPIP() },
	"singularities":       func(o metricOptions) Metric { return NewSingularities(o.threshold) },
}

// ByName returns a new instance of the metric with the given name.
// Names are case-insensitive.
func ByName(name string, opts ...MetricOption) (Metric, error) {
	o := metricOptions{threshold: math.NaN()}
	for _, opt := range opts {
		opt(&o)
	}

	ctor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return ctor(o), nil
}

// Names returns the registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
