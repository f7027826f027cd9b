package memory

import (
	"context"
	"testing"
	"time"

	"ai-writepad-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStatusIsMonotonic(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "prompt")

	assert.Equal(t, entity.GenerationRunning, s.Status())

	require.True(t, s.Finalize(entity.GenerationDone, entity.StreamEvent{Done: true}))
	assert.Equal(t, entity.GenerationDone, s.Status())

	// A second transition loses and changes nothing.
	assert.False(t, s.Finalize(entity.GenerationCancelled, entity.StreamEvent{Cancelled: true}))
	assert.Equal(t, entity.GenerationDone, s.Status())
}

func TestAppendAfterTerminalIsDiscarded(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "")

	require.True(t, s.AppendText("kept "))
	s.Finalize(entity.GenerationCancelled, entity.StreamEvent{Cancelled: true})

	assert.False(t, s.AppendText("dropped"))
	assert.Equal(t, "kept ", s.Accumulated())
}

func TestSubscribeDeliversOrderedEvents(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "")

	events, err := s.Subscribe()
	require.NoError(t, err)

	s.AppendText("a")
	s.AppendText("b")
	s.Emit(entity.StreamEvent{AutoRenamed: "Title"})
	s.Finalize(entity.GenerationDone, entity.StreamEvent{Done: true})

	var got []entity.StreamEvent
	for event := range events {
		got = append(got, event)
	}

	require.Len(t, got, 4)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "b", got[1].Text)
	assert.Equal(t, "Title", got[2].AutoRenamed)
	assert.True(t, got[3].Done)
}

func TestSingleSubscriberGuard(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "")

	_, err := s.Subscribe()
	require.NoError(t, err)

	_, err = s.Subscribe()
	require.ErrorIs(t, err, ErrStreamBusy)

	s.Unsubscribe()
	_, err = s.Subscribe()
	require.NoError(t, err)
}

func TestTerminalEventReplayForReconnect(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "")

	// First subscriber drains the stream to the end.
	events, err := s.Subscribe()
	require.NoError(t, err)
	s.AppendText("partial")
	s.Finalize(entity.GenerationCancelled, entity.StreamEvent{Cancelled: true})
	for range events {
	}
	s.Unsubscribe()
	r.Retire(s)

	// A reconnecting client still resolves the id and sees the terminal
	// frame again.
	again, ok := r.Get(s.ID)
	require.True(t, ok)
	replay, err := again.Subscribe()
	require.NoError(t, err)

	var got []entity.StreamEvent
	for event := range replay {
		got = append(got, event)
	}
	require.Len(t, got, 1)
	assert.True(t, got[0].Cancelled)
}

func TestCancelFlagObservedOnce(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "")

	assert.False(t, s.CancelRequested())
	s.RequestCancel()
	assert.True(t, s.CancelRequested())
	s.RequestCancel() // idempotent
	assert.True(t, s.CancelRequested())
}

func TestActiveForDocument(t *testing.T) {
	r := NewSessionRegistry()
	docID := uuid.New()

	_, ok := r.ActiveForDocument(docID)
	assert.False(t, ok)

	first := r.Create(docID, "")
	got, ok := r.ActiveForDocument(docID)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	// A newer session for the same document shadows the old one.
	second := r.Create(docID, "")
	got, ok = r.ActiveForDocument(docID)
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)

	// Terminal sessions stop counting as active.
	second.Finalize(entity.GenerationDone, entity.StreamEvent{Done: true})
	_, ok = r.ActiveForDocument(docID)
	assert.False(t, ok)
}

func TestWaitTerminal(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create(uuid.New(), "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, s.WaitTerminal(ctx), "should time out while running")

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Finalize(entity.GenerationDone, entity.StreamEvent{Done: true})
	}()

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	require.NoError(t, s.WaitTerminal(ctx2))
}
