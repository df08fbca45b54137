package knn

import (
	"time"

	"github.com/ferortega/cf4j-sub001/datamodel"
	"github.com/ferortega/cf4j-sub001/similarity"
)

// UserKNN predicts a user's rating of an item from the ratings of the k users
// most similar to that user.
type UserKNN struct {
	*knn
}

// NewUserKNN creates an unfitted user-based recommender.
func NewUserKNN(dm *datamodel.DataModel, k int, metric similarity.Metric, opts ...Option) (*UserKNN, error) {
	core, err := newKNN(dm, datamodel.UserSide, k, metric, opts)
	if err != nil {
		return nil, err
	}
	return &UserKNN{knn: core}, nil
}

// Predict returns the predicted rating, or NaN if no prediction is possible,
// including before Fit and for out-of-range indices.
func (r *UserKNN) Predict(user, item int) float64 {
	start := time.Now()
	v, _ := r.predict(user, item)
	r.observe(start, v)
	return v
}

// PredictE is Predict with ErrNotFitted and ErrIndexOutOfRange reported.
// A NaN with a nil error means no neighbor rated the item.
func (r *UserKNN) PredictE(user, item int) (float64, error) {
	return r.predict(user, item)
}

// Recommend returns up to n items the user has not rated, best first.
// Items without a prediction are skipped; ties go to the lower item index.
func (r *UserKNN) Recommend(user, n int) []Recommendation {
	return r.recommend(user, n, r.Predict)
}
