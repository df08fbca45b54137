package knn

import (
	"time"

	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/similarity"
)

// ItemKNN predicts a user's rating of an item from that user's ratings of the
// k items most similar to the item.
type ItemKNN struct {
	*knn
}

// NewItemKNN creates an unfitted item-based recommender.
func NewItemKNN(dm *datamodel.DataModel, k int, metric similarity.Metric, opts ...Option) (*ItemKNN, error) {
	core, err := newKNN(dm, datamodel.ItemSide, k, metric, opts)
	if err != nil {
		return nil, err
	}
	return &ItemKNN{knn: core}, nil
}

// Predict returns the predicted rating, or NaN if no prediction is possible,
// including before Fit and for out-of-range indices.
func (r *ItemKNN) Predict(user, item int) float64 {
	start := time.Now()
	v, _ := r.predict(item, user)
	r.observe(start, v)
	return v
}

// PredictE is Predict with ErrNotFitted and ErrIndexOutOfRange reported.
func (r *ItemKNN) PredictE(user, item int) (float64, error) {
	return r.predict(item, user)
}

// Recommend returns up to n items the user has not rated, best first.
func (r *ItemKNN) Recommend(user, n int) []Recommendation {
	return r.recommend(user, n, r.Predict)
}
