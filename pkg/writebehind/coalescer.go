package writebehind

import (
	"sync"
	"time"
)

// FlushFunc is invoked once per key when its accumulated writes are due.
type FlushFunc func(key string)

type pending struct {
	timer *time.Timer
	bytes int
}

// Coalescer batches bursts of writes per key: a flush fires after a quiet
// interval with no new writes, or immediately once the byte threshold is
// crossed. Used to keep streamed autosaves from hitting durable storage on
// every fragment.
type Coalescer struct {
	mu       sync.Mutex
	quiet    time.Duration
	maxBytes int
	flush    FlushFunc
	pending  map[string]*pending
	closed   bool
}

func New(quiet time.Duration, maxBytes int, flush FlushFunc) *Coalescer {
	return &Coalescer{
		quiet:    quiet,
		maxBytes: maxBytes,
		flush:    flush,
		pending:  make(map[string]*pending),
	}
}

// Note records n new bytes for key and schedules a flush. Crossing the byte
// threshold flushes synchronously; otherwise the quiet timer is re-armed.
func (c *Coalescer) Note(key string, n int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	p, ok := c.pending[key]
	if !ok {
		p = &pending{}
		c.pending[key] = p
	}
	p.bytes += n

	if c.maxBytes > 0 && p.bytes >= c.maxBytes {
		c.clearLocked(key, p)
		c.mu.Unlock()
		c.flush(key)
		return
	}

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(c.quiet, func() {
		c.Flush(key)
	})
	c.mu.Unlock()
}

// Flush forces any pending write for key out immediately.
func (c *Coalescer) Flush(key string) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.clearLocked(key, p)
	c.mu.Unlock()
	c.flush(key)
}

// Close flushes every pending key and rejects further writes.
func (c *Coalescer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	keys := make([]string, 0, len(c.pending))
	for key, p := range c.pending {
		c.clearLocked(key, p)
		keys = append(keys, key)
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.flush(key)
	}
}

func (c *Coalescer) clearLocked(key string, p *pending) {
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(c.pending, key)
}
