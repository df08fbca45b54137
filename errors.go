package cf4j

import (
	"errors"
	"fmt"

	"github.com/ferortega/cf4j-sub001/blobstore"
	"github.com/ferortega/cf4j-sub001/codec"
	"github.com/ferortega/cf4j-sub001/config"
	"github.com/ferortega/cf4j-sub001/knn"
	"github.com/ferortega/cf4j-sub001/parallel"
	"github.com/ferortega/cf4j-sub001/resource"
	"github.com/ferortega/cf4j-sub001/similarity"
	"github.com/ferortega/cf4j-sub001/snapshot"
)

var (
	// ErrInvalidConfig is returned for configurations that cannot build a
	// recommender.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotFitted is returned when tables are needed before Fit or
	// LoadSnapshot.
	ErrNotFitted = errors.New("recommender not fitted")

	// ErrIndexOutOfRange is returned for user or item indices outside the
	// data model.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownUser is returned for user IDs absent from the data model.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownItem is returned for item IDs absent from the data model.
	ErrUnknownItem = errors.New("unknown item")

	// ErrSnapshotNotFound is returned when the configured snapshot does not
	// exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrCorruptSnapshot is returned for unreadable or damaged snapshots.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrSnapshotMismatch is returned when a snapshot was computed for
	// another side, metric, k or data model size.
	ErrSnapshotMismatch = errors.New("snapshot does not match recommender")

	// ErrMemoryLimit is returned when a similarity matrix does not fit the
	// configured memory limit.
	ErrMemoryLimit = errors.New("memory limit exceeded")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Snapshot errors first: a corrupt header may wrap codec errors.
	switch {
	case errors.Is(err, snapshot.ErrCorrupt),
		errors.Is(err, snapshot.ErrInvalidMagic),
		errors.Is(err, snapshot.ErrInvalidVersion):
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	case errors.Is(err, blobstore.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrSnapshotNotFound, err)
	case errors.Is(err, knn.ErrTableMismatch):
		return fmt.Errorf("%w: %w", ErrSnapshotMismatch, err)
	}

	switch {
	case errors.Is(err, knn.ErrInvalidK):
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	case errors.Is(err, config.ErrInvalid),
		errors.Is(err, similarity.ErrUnknownMetric),
		errors.Is(err, knn.ErrUnknownAggregation),
		errors.Is(err, parallel.ErrInvalidWorkers),
		errors.Is(err, codec.ErrUnknownCodec),
		errors.Is(err, snapshot.ErrUnknownCompression):
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	case errors.Is(err, knn.ErrNotFitted):
		return fmt.Errorf("%w: %w", ErrNotFitted, err)
	case errors.Is(err, knn.ErrIndexOutOfRange):
		return fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimit, err)
	}

	return err
}
