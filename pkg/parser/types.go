// Package parser turns workflow engine log lines into typed events.
package parser

import "time"

// Kind classifies an event.
type Kind string

const (
	// KindStart marks a transition that was started.
	KindStart Kind = "start"

	// KindEnd marks a transition that completed.
	KindEnd Kind = "end"

	// KindDetail is a self-contained event carrying its own elapsed time.
	KindDetail Kind = "detail"

	// KindRequest is a single-shot "request issued" event.
	KindRequest Kind = "request"

	// KindCheckStart and KindCheckEnd count document check operations.
	KindCheckStart Kind = "check_start"
	KindCheckEnd   Kind = "check_end"
)

// Event is a single parsed occurrence from a log file.
type Event struct {
	// Timestamp is the parsed log timestamp (millisecond precision).
	Timestamp time.Time `json:"timestamp"`

	// EntityID is the tracked business object, usually a document GUID.
	EntityID string `json:"entity_id,omitempty"`

	// Category is the transition name or request type.
	Category string `json:"category"`

	// ThreadName is diagnostic only.
	ThreadName string `json:"thread_name,omitempty"`

	Kind Kind `json:"kind"`

	// DurationMillis is set for events that report their own elapsed time.
	DurationMillis *int64 `json:"duration_ms,omitempty"`

	// Descriptor carries free-form context such as the document type.
	Descriptor string `json:"descriptor,omitempty"`

	// Source is the file path this event came from.
	Source string `json:"source"`

	// LineNum is the 1-based line number of the (first) line of the event.
	LineNum int `json:"line_num"`

	// FileIndex is the discovery position of Source within the run.
	FileIndex int `json:"-"`
}

// Less reports whether e sorts before o: by timestamp, then discovery
// order of the file, then line order within the file.
func (e *Event) Less(o *Event) bool {
	if !e.Timestamp.Equal(o.Timestamp) {
		return e.Timestamp.Before(o.Timestamp)
	}
	if e.FileIndex != o.FileIndex {
		return e.FileIndex < o.FileIndex
	}
	return e.LineNum < o.LineNum
}

// Millis returns the event's embedded duration, or 0 if it has none.
func (e *Event) Millis() int64 {
	if e.DurationMillis == nil {
		return 0
	}
	return *e.DurationMillis
}

// LogLine is a raw log line before parsing.
type LogLine struct {
	// Content is the raw line text.
	Content string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int

	// FileIndex is the discovery position of Source.
	FileIndex int
}

// LineParser converts raw lines into events. Implementations hold only the
// state needed for multi-line events and are used by one file at a time.
type LineParser interface {
	// Feed consumes one line. It returns the completed event and true when
	// one is available. A non-nil error is a per-line diagnostic; the caller
	// records it and continues with the next line.
	Feed(line LogLine) (Event, bool, error)

	// Flush is called at end of input. It reports a dangling multi-line
	// event as ErrTruncatedEvent and resets the parser.
	Flush() error
}
