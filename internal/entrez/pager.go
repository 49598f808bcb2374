package entrez

// Batch is one contiguous sub-range of a result set fetched in a single
// EFetch request.
type Batch struct {
	Start int
	Size  int
}

// End returns the exclusive upper bound of the batch.
func (b Batch) End() int { return b.Start + b.Size }

// PlanBatches partitions [0, count) into consecutive batches of at most
// batchSize records. The batches are contiguous, non-overlapping, and cover
// the range exactly; only the final batch may be short. count == 0 yields an
// empty plan. batchSize must be positive.
func PlanBatches(count, batchSize int) []Batch {
	if count <= 0 || batchSize <= 0 {
		return nil
	}

	batches := make([]Batch, 0, (count+batchSize-1)/batchSize)
	for start := 0; start < count; start += batchSize {
		size := batchSize
		if remaining := count - start; remaining < size {
			size = remaining
		}
		batches = append(batches, Batch{Start: start, Size: size})
	}
	return batches
}
