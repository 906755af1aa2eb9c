// Package notify provides progress-update sinks for running jobs.
//
// All sinks are best effort: a sink that cannot deliver returns an error
// and the job keeps going.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/t-murch/radio-wash-sub000/internal/tasks"
)

// RedisPublisher publishes progress updates as JSON to a per-job Redis
// channel, so out-of-process subscribers can follow along live.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects a publisher to the given Redis server.
func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPublisher{client: client}
}

// Channel returns the pub/sub channel name for a job.
func Channel(jobID string) string {
	return fmt.Sprintf("radiowash:jobs:%s", jobID)
}

func (p *RedisPublisher) Notify(ctx context.Context, update tasks.ProgressUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode progress update: %w", err)
	}
	return p.client.Publish(ctx, Channel(update.JobID), payload).Err()
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// LogNotifier writes progress updates to the logger. The default sink when
// no Redis server is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, update tasks.ProgressUpdate) error {
	n.logger.Info("progress",
		"job", update.JobID,
		"percent", update.Percent,
		"processed", update.Processed,
		"total", update.Total,
	)
	return nil
}

// ChannelNotifier feeds progress updates to an in-process channel, used by
// the TUI to drive its progress view. Sends never block: when the receiver
// is behind, the update is dropped.
type ChannelNotifier struct {
	updates chan tasks.ProgressUpdate
}

func NewChannelNotifier(buffer int) *ChannelNotifier {
	return &ChannelNotifier{updates: make(chan tasks.ProgressUpdate, buffer)}
}

// Updates returns the receive side of the notifier.
func (n *ChannelNotifier) Updates() <-chan tasks.ProgressUpdate {
	return n.updates
}

func (n *ChannelNotifier) Notify(ctx context.Context, update tasks.ProgressUpdate) error {
	select {
	case n.updates <- update:
	default:
	}
	return nil
}

// Close closes the update channel. Call only after the last Notify.
func (n *ChannelNotifier) Close() {
	close(n.updates)
}
