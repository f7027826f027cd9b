package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ai-writepad-be/internal/entity"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

var (
	// ErrStreamBusy is returned when a second reader tries to attach to a
	// session that already has a live subscriber.
	ErrStreamBusy = errors.New("generation stream already has a subscriber")
)

// retiredTTL is how long a finished session stays resolvable so a client
// that disconnected mid-stream can reconnect and observe the terminal event.
const retiredTTL = 60 * time.Second

// Session is the in-memory state of one generation. Text accumulates here
// while chunks arrive; the persisted document only catches up through the
// write-behind flushes. Status moves from running into exactly one terminal
// state and never reverses.
type Session struct {
	ID         string
	DocumentID uuid.UUID
	Prompt     string

	mu          sync.Mutex
	status      entity.GenerationStatus
	accumulated strings.Builder
	terminal    *entity.StreamEvent
	events      chan entity.StreamEvent
	subscribed  bool

	cancelRequested atomic.Bool
	done            chan struct{}

	upstreamMu     sync.Mutex
	cancelUpstream context.CancelFunc
}

func newSession(documentID uuid.UUID, prompt string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Prompt:     prompt,
		status:     entity.GenerationRunning,
		events:     make(chan entity.StreamEvent, 1024),
		done:       make(chan struct{}),
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() entity.GenerationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Accumulated returns all text appended so far.
func (s *Session) Accumulated() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accumulated.String()
}

// AppendText adds a fragment to the buffer and emits a text frame. It
// reports false once the session is terminal, in which case the fragment is
// discarded.
func (s *Session) AppendText(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	s.accumulated.WriteString(text)
	// A slow or absent reader must not stall the pipeline; text frames are
	// dropped when the buffer is full, the document itself stays complete.
	select {
	case s.events <- entity.StreamEvent{Text: text}:
	default:
	}
	return true
}

// Emit sends a non-terminal informational frame (e.g. auto_renamed).
func (s *Session) Emit(event entity.StreamEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	select {
	case s.events <- event:
	default:
	}
	return true
}

// Finalize transitions into a terminal status, records the terminal frame
// for replay and closes the stream. Only the first call wins; later calls
// report false and change nothing.
func (s *Session) Finalize(status entity.GenerationStatus, event entity.StreamEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	s.status = status
	s.terminal = &event
	select {
	case s.events <- event:
	default:
	}
	close(s.events)
	close(s.done)
	return true
}

// RequestCancel flags the session for cooperative cancellation. The
// generation loop observes the flag at the next chunk boundary, so at most
// one more fragment may still be appended after this returns.
func (s *Session) RequestCancel() {
	s.cancelRequested.Store(true)
}

// CancelRequested reports whether a cancel has been asked for.
func (s *Session) CancelRequested() bool {
	return s.cancelRequested.Load()
}

// SetUpstreamCancel registers the cancel func for the provider request.
func (s *Session) SetUpstreamCancel(cancel context.CancelFunc) {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()
	s.cancelUpstream = cancel
}

// CancelUpstream tears down the provider request, if one is in flight.
func (s *Session) CancelUpstream() {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()
	if s.cancelUpstream != nil {
		s.cancelUpstream()
	}
}

// Subscribe attaches the single allowed reader to the event stream. A
// subscriber arriving after the session finished gets a short replay
// channel carrying just the terminal frame.
func (s *Session) Subscribe() (<-chan entity.StreamEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed {
		return nil, ErrStreamBusy
	}
	if s.status.Terminal() {
		replay := make(chan entity.StreamEvent, 1)
		if s.terminal != nil {
			replay <- *s.terminal
		}
		close(replay)
		return replay, nil
	}
	s.subscribed = true
	return s.events, nil
}

// Unsubscribe releases the reader slot so a reconnecting client can attach.
func (s *Session) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = false
}

// WaitTerminal blocks until the session reaches a terminal status or the
// context is cancelled.
func (s *Session) WaitTerminal(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SessionRegistry tracks live and recently finished generation sessions.
// Running sessions never expire; retired ones linger for a grace window so
// late stream requests can still resolve the generation id.
type SessionRegistry struct {
	sessions *cache.Cache

	mu    sync.Mutex
	byDoc map[uuid.UUID]string
}

func NewSessionRegistry() *SessionRegistry {
	r := &SessionRegistry{
		sessions: cache.New(cache.NoExpiration, 30*time.Second),
		byDoc:    make(map[uuid.UUID]string),
	}
	r.sessions.OnEvicted(func(id string, value interface{}) {
		session, ok := value.(*Session)
		if !ok {
			return
		}
		r.mu.Lock()
		if r.byDoc[session.DocumentID] == id {
			delete(r.byDoc, session.DocumentID)
		}
		r.mu.Unlock()
	})
	return r
}

// Create registers a fresh running session for a document and makes it the
// document's current generation.
func (r *SessionRegistry) Create(documentID uuid.UUID, prompt string) *Session {
	session := newSession(documentID, prompt)
	r.sessions.Set(session.ID, session, cache.NoExpiration)
	r.mu.Lock()
	r.byDoc[documentID] = session.ID
	r.mu.Unlock()
	return session
}

// Get resolves a session by generation id.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	value, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	session, ok := value.(*Session)
	return session, ok
}

// ActiveForDocument returns the document's current session if it is still
// running.
func (r *SessionRegistry) ActiveForDocument(documentID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	id, ok := r.byDoc[documentID]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	session, ok := r.Get(id)
	if !ok || session.Status().Terminal() {
		return nil, false
	}
	return session, true
}

// Retire rearms a finished session with the reconnect grace TTL.
func (r *SessionRegistry) Retire(session *Session) {
	r.sessions.Set(session.ID, session, retiredTTL)
}
