package reroll

import (
	"context"
	"sync"
)

// Backend is the slice of the generation system the controller drives.
type Backend interface {
	// RestoreContent overwrites the document's content with the checkpoint.
	RestoreContent(ctx context.Context, documentID, content string) error

	// CancelGeneration requests cancellation of a running generation.
	CancelGeneration(ctx context.Context, generationID string) error

	// SubmitGeneration starts a fresh generation and returns its id.
	SubmitGeneration(ctx context.Context, documentID, prompt string) (string, error)
}

// Controller coordinates cancel-then-regenerate with an exact content
// checkpoint. Only generation output may be rerolled away: any manual edit
// invalidates the checkpoint and becomes permanent.
type Controller struct {
	mu      sync.Mutex
	backend Backend

	documentID   string
	checkpoint   *string
	generationID string
}

func NewController(backend Backend, documentID string) *Controller {
	return &Controller{backend: backend, documentID: documentID}
}

// ArmCheckpoint snapshots the document content. Call immediately before each
// submit.
func (c *Controller) ArmCheckpoint(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := content
	c.checkpoint = &snapshot
}

// TrackGeneration records the live generation id so a later reroll can
// cancel it.
func (c *Controller) TrackGeneration(generationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generationID = generationID
}

// NoteManualEdit invalidates the checkpoint. Hand-typed edits are permanent.
func (c *Controller) NoteManualEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkpoint = nil
	c.generationID = ""
}

// CanReroll reports whether a checkpoint is armed.
func (c *Controller) CanReroll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkpoint != nil
}

// Reroll restores the checkpoint, fires a best-effort cancel at any live
// generation, and resubmits with the checkpoint as the prompt. Content is
// restored before the cancel is confirmed; the restore never waits on the
// network. Without a checkpoint it is a no-op returning an empty id.
func (c *Controller) Reroll(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.checkpoint == nil {
		c.mu.Unlock()
		return "", nil
	}
	checkpoint := *c.checkpoint
	prior := c.generationID
	documentID := c.documentID
	c.mu.Unlock()

	if err := c.backend.RestoreContent(ctx, documentID, checkpoint); err != nil {
		return "", err
	}

	if prior != "" {
		// Fire-and-forget: the new submit must not block on cancel
		// confirmation.
		go c.backend.CancelGeneration(context.WithoutCancel(ctx), prior)
	}

	generationID, err := c.backend.SubmitGeneration(ctx, documentID, checkpoint)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.generationID = generationID
	c.mu.Unlock()
	return generationID, nil
}
