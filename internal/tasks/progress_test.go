package tasks

import "testing"

func TestNewProgressBatcher(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		batchSize int
	}{
		{"empty playlist", 0, 1},
		{"single track", 1, 1},
		{"small playlist", 10, 1},
		{"twenty tracks", 20, 1},
		{"hundred tracks", 100, 5},
		{"large playlist", 2000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewProgressBatcher(tt.total)
			if b.BatchSize() != tt.batchSize {
				t.Errorf("expected batch size %d, got %d", tt.batchSize, b.BatchSize())
			}
		})
	}
}

func TestProgressBatcherReporting(t *testing.T) {
	t.Run("bounded update count", func(t *testing.T) {
		for _, total := range []int{1, 5, 19, 20, 21, 100, 999, 5000} {
			b := NewProgressBatcher(total)

			reports := 0
			for i := 0; i <= total; i++ {
				if b.ShouldReport(i) {
					reports++
				}
			}

			// Start, end, and roughly one per batch.
			if reports < 2 || reports > 23 {
				t.Errorf("total %d: expected between 2 and 23 reports, got %d", total, reports)
			}
		}
	})

	t.Run("always reports first and last", func(t *testing.T) {
		b := NewProgressBatcher(500)

		if !b.ShouldReport(0) {
			t.Error("expected report at start")
		}
		if !b.ShouldReport(500) {
			t.Error("expected report at end")
		}
	})

	t.Run("same count reports once", func(t *testing.T) {
		b := NewProgressBatcher(10)

		if !b.ShouldReport(0) {
			t.Error("expected first report at 0")
		}
		if b.ShouldReport(0) {
			t.Error("expected repeat call at 0 to be suppressed")
		}
	})

	t.Run("report and persist track independently", func(t *testing.T) {
		b := NewProgressBatcher(100)

		if !b.ShouldReport(0) {
			t.Error("expected report at 0")
		}
		if !b.ShouldPersist(0) {
			t.Error("expected persist at 0 despite prior report")
		}
	})
}

func TestProgressBatcherPercent(t *testing.T) {
	t.Run("monotone from zero to hundred", func(t *testing.T) {
		b := NewProgressBatcher(7)

		prev := -1
		for i := 0; i <= 7; i++ {
			p := b.Percent(i)
			if p < prev {
				t.Errorf("percent decreased: %d then %d", prev, p)
			}
			prev = p
		}

		if b.Percent(0) != 0 {
			t.Errorf("expected 0%% at start, got %d", b.Percent(0))
		}
		if b.Percent(7) != 100 {
			t.Errorf("expected 100%% at end, got %d", b.Percent(7))
		}
	})

	t.Run("rounds down", func(t *testing.T) {
		b := NewProgressBatcher(3)

		if got := b.Percent(1); got != 33 {
			t.Errorf("expected 33, got %d", got)
		}
		if got := b.Percent(2); got != 66 {
			t.Errorf("expected 66, got %d", got)
		}
	})

	t.Run("empty total is complete", func(t *testing.T) {
		b := NewProgressBatcher(0)
		if got := b.Percent(0); got != 100 {
			t.Errorf("expected 100 for empty job, got %d", got)
		}
	})
}

func TestProgressBatcherDescribe(t *testing.T) {
	b := NewProgressBatcher(40)

	update := b.Describe(10, "resolving")

	if update.Percent != 25 {
		t.Errorf("expected 25%%, got %d", update.Percent)
	}
	if update.Processed != 10 || update.Total != 40 {
		t.Errorf("expected 10/40, got %d/%d", update.Processed, update.Total)
	}
	if update.BatchLabel != "10/40" {
		t.Errorf("expected batch label 10/40, got %s", update.BatchLabel)
	}
	if update.Message != "resolving" {
		t.Errorf("expected message to pass through, got %s", update.Message)
	}
}
