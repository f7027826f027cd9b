package reroll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu        sync.Mutex
	restored  []string
	cancelled []string
	submitted []string
	calls     []string // interleaving of operations

	nextGenerationID string
}

func (b *fakeBackend) RestoreContent(ctx context.Context, documentID, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restored = append(b.restored, content)
	b.calls = append(b.calls, "restore")
	return nil
}

func (b *fakeBackend) CancelGeneration(ctx context.Context, generationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = append(b.cancelled, generationID)
	b.calls = append(b.calls, "cancel")
	return nil
}

func (b *fakeBackend) SubmitGeneration(ctx context.Context, documentID, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitted = append(b.submitted, prompt)
	b.calls = append(b.calls, "submit")
	return b.nextGenerationID, nil
}

func TestRerollRestoresCheckpointByteForByte(t *testing.T) {
	backend := &fakeBackend{nextGenerationID: "gen-2"}
	c := NewController(backend, "doc-1")

	checkpoint := "original draft é\x00 with odd bytes"
	c.ArmCheckpoint(checkpoint)
	c.TrackGeneration("gen-1")

	id, err := c.Reroll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gen-2", id)

	require.Len(t, backend.restored, 1)
	assert.Equal(t, checkpoint, backend.restored[0], "restore must be byte-for-byte")
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, checkpoint, backend.submitted[0], "resubmit uses the checkpoint as prompt")

	// Restore happens before the new submit is sent.
	require.GreaterOrEqual(t, len(backend.calls), 2)
	assert.Equal(t, "restore", backend.calls[0])
}

func TestRerollCancelsTrackedGeneration(t *testing.T) {
	backend := &fakeBackend{nextGenerationID: "gen-2"}
	c := NewController(backend, "doc-1")

	c.ArmCheckpoint("content")
	c.TrackGeneration("gen-1")

	_, err := c.Reroll(context.Background())
	require.NoError(t, err)

	// Cancel is fire-and-forget on its own goroutine.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		backend.mu.Lock()
		n := len(backend.cancelled)
		backend.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.cancelled, 1)
	assert.Equal(t, "gen-1", backend.cancelled[0])
}

func TestManualEditInvalidatesCheckpoint(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, "doc-1")

	c.ArmCheckpoint("generated text")
	assert.True(t, c.CanReroll())

	c.NoteManualEdit()
	assert.False(t, c.CanReroll())

	id, err := c.Reroll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, backend.restored, "no restore without a checkpoint")
	assert.Empty(t, backend.submitted)
}

func TestRerollWithoutCheckpointIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, "doc-1")

	id, err := c.Reroll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, backend.calls)
}

func TestRerollWithoutLiveGenerationSkipsCancel(t *testing.T) {
	backend := &fakeBackend{nextGenerationID: "gen-1"}
	c := NewController(backend, "doc-1")

	c.ArmCheckpoint("content")

	id, err := c.Reroll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gen-1", id)

	time.Sleep(20 * time.Millisecond)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Empty(t, backend.cancelled)
}
