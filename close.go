package cf4j

// Close releases the similarity matrix and its memory reservation. The
// recommender behaves as unfitted afterwards.
func (r *Recommender) Close() error {
	if r == nil {
		return nil
	}
	return r.model.Close()
}
