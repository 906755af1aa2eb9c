package tasks

import (
	"context"
	"fmt"
)

// ProgressUpdate describes how far a job has advanced.
type ProgressUpdate struct {
	JobID      string `json:"jobId"`
	Percent    int    `json:"percent"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	BatchLabel string `json:"batchLabel,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Notifier delivers progress updates to interested observers. Delivery is
// best effort; implementations must not block job processing.
type Notifier interface {
	Notify(ctx context.Context, update ProgressUpdate) error
}

// ProgressBatcher decides when progress should be reported and persisted
// while a job walks its track list. Updates fire at the start, at every
// batch boundary, and at the end, so a job emits on the order of twenty
// updates regardless of playlist size.
type ProgressBatcher struct {
	total         int
	batchSize     int
	lastReported  int
	lastPersisted int
}

// NewProgressBatcher creates a batcher for a job of the given total size.
func NewProgressBatcher(total int) *ProgressBatcher {
	batchSize := total / 20
	if batchSize < 1 {
		batchSize = 1
	}

	return &ProgressBatcher{
		total:         total,
		batchSize:     batchSize,
		lastReported:  -1,
		lastPersisted: -1,
	}
}

// BatchSize returns the stride between progress updates.
func (b *ProgressBatcher) BatchSize() int {
	return b.batchSize
}

// Percent converts a processed count to a whole percentage, rounded down.
// Only 100% is reported as 100, so observers can treat it as completion.
func (b *ProgressBatcher) Percent(processed int) int {
	if b.total == 0 {
		return 100
	}
	return processed * 100 / b.total
}

// ShouldReport returns true when the processed count crosses a reporting
// point: the first call, every batchSize tracks since the last report, and
// the final track. Calling with the same count twice reports only once.
func (b *ProgressBatcher) ShouldReport(processed int) bool {
	if !b.due(processed, b.lastReported) {
		return false
	}
	b.lastReported = processed
	return true
}

// ShouldPersist mirrors ShouldReport with independent bookkeeping, so a
// failed notification never skips a durable checkpoint or vice versa.
func (b *ProgressBatcher) ShouldPersist(processed int) bool {
	if !b.due(processed, b.lastPersisted) {
		return false
	}
	b.lastPersisted = processed
	return true
}

// Describe builds the update for a processed count, labeling the position
// within the run as "processed/total".
func (b *ProgressBatcher) Describe(processed int, message string) ProgressUpdate {
	return ProgressUpdate{
		Percent:    b.Percent(processed),
		Processed:  processed,
		Total:      b.total,
		BatchLabel: fmt.Sprintf("%d/%d", processed, b.total),
		Message:    message,
	}
}

func (b *ProgressBatcher) due(processed, last int) bool {
	if processed == last {
		return false
	}
	if processed == 0 || processed == b.total {
		return true
	}
	return processed-last >= b.batchSize
}
