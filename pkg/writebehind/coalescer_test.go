package writebehind

import (
	"sync"
	"testing"
	"time"
)

type flushRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *flushRecorder) flush(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, key)
}

func (r *flushRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestFlushAfterQuietInterval(t *testing.T) {
	rec := &flushRecorder{}
	c := New(30*time.Millisecond, 1<<20, rec.flush)
	defer c.Close()

	c.Note("doc", 10)
	c.Note("doc", 10)

	if rec.count() != 0 {
		t.Fatal("flush fired before the quiet interval elapsed")
	}
	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
}

func TestQuietTimerRearmsOnNewWrites(t *testing.T) {
	rec := &flushRecorder{}
	c := New(60*time.Millisecond, 1<<20, rec.flush)
	defer c.Close()

	// Keep writing inside the quiet window; no flush should fire yet.
	for i := 0; i < 4; i++ {
		c.Note("doc", 1)
		time.Sleep(20 * time.Millisecond)
	}
	if rec.count() != 0 {
		t.Fatal("flush fired while writes kept arriving")
	}
	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
}

func TestFlushAtByteThreshold(t *testing.T) {
	rec := &flushRecorder{}
	c := New(time.Hour, 100, rec.flush)
	defer c.Close()

	c.Note("doc", 60)
	if rec.count() != 0 {
		t.Fatal("flushed below the threshold")
	}
	c.Note("doc", 60)
	if rec.count() != 1 {
		t.Fatal("crossing the byte threshold should flush synchronously")
	}
}

func TestExplicitFlush(t *testing.T) {
	rec := &flushRecorder{}
	c := New(time.Hour, 1<<20, rec.flush)
	defer c.Close()

	c.Flush("doc") // nothing pending: no call
	if rec.count() != 0 {
		t.Fatal("flush with nothing pending should be a no-op")
	}

	c.Note("doc", 1)
	c.Flush("doc")
	if rec.count() != 1 {
		t.Fatal("explicit flush should fire immediately")
	}
}

func TestCloseFlushesPendingAndRejectsWrites(t *testing.T) {
	rec := &flushRecorder{}
	c := New(time.Hour, 1<<20, rec.flush)

	c.Note("a", 1)
	c.Note("b", 1)
	c.Close()

	if rec.count() != 2 {
		t.Fatalf("Close should flush every pending key, got %d", rec.count())
	}

	c.Note("c", 1)
	c.Flush("c")
	if rec.count() != 2 {
		t.Fatal("writes after Close must be dropped")
	}
}
