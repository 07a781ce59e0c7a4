package module

import (
	"os"
	"time"

	"hellomama/internal/platform/config"
)

// Options controls the lifecycle worker
type Options struct {
	WorkerID       string
	Concurrency    int
	QueueTakeBatch int
	PollEvery      time.Duration
	LeaseFor       time.Duration
	RetryBase      time.Duration
	MaxAttempts    int
}

// FromConfig reads LIFECYCLE_ keys
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("LIFECYCLE_")
	host, _ := os.Hostname()
	return Options{
		WorkerID:       c.MayString("WORKER_ID", host),
		Concurrency:    c.MayInt("WORKER_CONCURRENCY", 4),
		QueueTakeBatch: c.MayInt("QUEUE_TAKE_BATCH", 16),
		PollEvery:      c.MayDuration("POLL_EVERY", 500*time.Millisecond),
		LeaseFor:       c.MayDuration("LEASE_FOR", 2*time.Minute),
		RetryBase:      c.MayDuration("RETRY_BASE", 2*time.Second),
		MaxAttempts:    c.MayInt("MAX_ATTEMPTS", 8),
	}
}
