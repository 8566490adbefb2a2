package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const flushTimeout = 5 * time.Second

// Debouncer coalesces writes per key: each Enqueue replaces the key's
// pending value and resets its timer, so only the latest value of a burst
// reaches storage. One slot per key, not a queue. Write failures are
// logged and never propagated - persistence is best effort by contract.
type Debouncer struct {
	kv     KV
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	timer *time.Timer
	value []byte
}

// NewDebouncer creates a debouncer writing through to kv.
func NewDebouncer(kv KV, logger *slog.Logger) *Debouncer {
	return &Debouncer{
		kv:      kv,
		logger:  logger,
		pending: make(map[string]*pendingWrite),
	}
}

// Enqueue schedules value for key after delay, replacing any pending value
// and restarting the key's timer.
func (d *Debouncer) Enqueue(key string, value []byte, delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pw, ok := d.pending[key]; ok {
		pw.value = value
		pw.timer.Reset(delay)
		return
	}

	pw := &pendingWrite{value: value}
	pw.timer = time.AfterFunc(delay, func() {
		d.flushKey(key)
	})
	d.pending[key] = pw
}

// flushKey writes the pending value for key, if still present.
func (d *Debouncer) flushKey(key string) {
	d.mu.Lock()
	pw, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	value := pw.value
	d.mu.Unlock()

	d.write(key, value)
}

// Flush writes all pending values immediately. Used on shutdown.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	flushes := make(map[string][]byte, len(d.pending))
	for key, pw := range d.pending {
		pw.timer.Stop()
		flushes[key] = pw.value
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for key, value := range flushes {
		d.write(key, value)
	}
}

func (d *Debouncer) write(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := d.kv.Set(ctx, key, value); err != nil {
		d.logger.Error("persistence write failed", "key", key, "error", err)
	}
}
