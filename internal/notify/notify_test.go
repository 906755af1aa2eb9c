package notify

import (
	"context"
	"io"
	"testing"

	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"github.com/t-murch/radio-wash-sub000/internal/tasks"
)

func TestChannel(t *testing.T) {
	got := Channel("abc-123")
	want := "radiowash:jobs:abc-123"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestChannelNotifier(t *testing.T) {
	t.Run("delivers buffered updates", func(t *testing.T) {
		notifier := NewChannelNotifier(2)

		err := notifier.Notify(context.Background(), tasks.ProgressUpdate{JobID: "j1", Percent: 50})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		update := <-notifier.Updates()
		if update.Percent != 50 {
			t.Errorf("expected percent 50, got %d", update.Percent)
		}
	})

	t.Run("drops updates instead of blocking", func(t *testing.T) {
		notifier := NewChannelNotifier(1)

		for i := 0; i < 10; i++ {
			if err := notifier.Notify(context.Background(), tasks.ProgressUpdate{JobID: "j1", Percent: i * 10}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		update := <-notifier.Updates()
		if update.Percent != 0 {
			t.Errorf("expected the first update to survive, got percent %d", update.Percent)
		}

		select {
		case <-notifier.Updates():
			t.Error("expected later updates to be dropped")
		default:
		}
	})
}

func TestLogNotifier(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	notifier := NewLogNotifier(logger)

	err := notifier.Notify(context.Background(), tasks.ProgressUpdate{JobID: "j1", Percent: 100, Processed: 5, Total: 5})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
