package entity

// GenerationStatus is the lifecycle state of a generation session. The
// transition is monotonic: running moves into exactly one terminal state and
// never reverses.
type GenerationStatus string

const (
	GenerationRunning   GenerationStatus = "running"
	GenerationDone      GenerationStatus = "done"
	GenerationCancelled GenerationStatus = "cancelled"
	GenerationErrored   GenerationStatus = "errored"
)

// Terminal reports whether the status is final.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationDone || s == GenerationCancelled || s == GenerationErrored
}

// StreamEvent is one frame on a generation's event stream. Exactly one of
// the fields is populated per event; Done/Cancelled/Error frames are
// terminal and close the stream.
type StreamEvent struct {
	Text        string `json:"text,omitempty"`
	Done        bool   `json:"done,omitempty"`
	Cancelled   bool   `json:"cancelled,omitempty"`
	Error       string `json:"error,omitempty"`
	AutoRenamed string `json:"auto_renamed,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Done || e.Cancelled || e.Error != ""
}
