package parser

import (
	"strings"
)

// LifecycleFormat holds the textual markers of transition lifecycle lines:
//
//	2025-12-12 10:00:00,000 INFO [pool-1] [c.o.s.s.d.LifeCycleServiceImpl] Переход Sign для документа [GUID] запущен.
type LifecycleFormat struct {
	// LevelMarker ends the timestamp slice (e.g. " INFO").
	LevelMarker string

	// Component must appear in the line for it to be a transition line.
	Component string

	// Phrase precedes the transition name.
	Phrase string

	// Separator sits between the transition name and the bracketed entity id.
	Separator string

	// StartedStatus is the trailing status of a start line; any other
	// status is treated as completion.
	StartedStatus string

	// CheckMarker identifies document check operation lines (optional).
	CheckMarker string

	// CheckCompleted appears in a check line when the check finished.
	CheckCompleted string
}

// LifecycleParser parses transition start/end lines and check operation lines.
type LifecycleParser struct {
	format LifecycleFormat
	ts     *TimestampExtractor
}

// NewLifecycleParser creates a parser for transition lifecycle lines.
func NewLifecycleParser(format LifecycleFormat, ts *TimestampExtractor) *LifecycleParser {
	return &LifecycleParser{format: format, ts: ts}
}

// Feed parses a single line.
func (p *LifecycleParser) Feed(line LogLine) (Event, bool, error) {
	text := line.Content

	if p.format.CheckMarker != "" && strings.Contains(text, p.format.CheckMarker) {
		return p.parseCheck(line)
	}

	if !strings.Contains(text, p.format.Component) || !strings.Contains(text, p.format.Phrase) {
		return Event{}, false, nil
	}

	ts, err := p.ts.Extract(text, p.format.LevelMarker)
	if err != nil {
		return Event{}, false, lineError(ErrMalformedTimestamp, line, err)
	}

	_, msg, _ := strings.Cut(text, p.format.Phrase)
	parts := strings.Split(msg, p.format.Separator)
	if len(parts) != 2 {
		return Event{}, false, unparseable(line, "expected one %q separator, found %d", p.format.Separator, len(parts)-1)
	}

	entityID, ok := between(parts[1], "[", "]")
	if !ok || entityID == "" {
		return Event{}, false, unparseable(line, "missing entity id")
	}

	kind := KindEnd
	if _, status, _ := strings.Cut(parts[1], "] "); strings.TrimSpace(status) == p.format.StartedStatus {
		kind = KindStart
	}

	thread, _ := between(text, "[", "]")

	return Event{
		Timestamp:  ts,
		EntityID:   entityID,
		Category:   parts[0],
		ThreadName: thread,
		Kind:       kind,
		Source:     line.Source,
		LineNum:    line.LineNum,
		FileIndex:  line.FileIndex,
	}, true, nil
}

// parseCheck accepts check lines at any log level. When the level marker is
// absent the leading len(layout) bytes are parsed instead. A check line whose
// timestamp still does not parse is unparseable, never malformed, so it cannot
// abort the file.
func (p *LifecycleParser) parseCheck(line LogLine) (Event, bool, error) {
	ts, err := p.ts.Extract(line.Content, p.format.LevelMarker)
	if err != nil {
		ts, err = p.ts.Extract(line.Content, "")
	}
	if err != nil {
		return Event{}, false, lineError(ErrUnparseableLine, line, err)
	}

	kind := KindCheckStart
	if p.format.CheckCompleted != "" && strings.Contains(line.Content, p.format.CheckCompleted) {
		kind = KindCheckEnd
	}

	thread, _ := between(line.Content, "[", "]")

	return Event{
		Timestamp:  ts,
		Category:   strings.TrimSpace(p.format.CheckMarker),
		ThreadName: thread,
		Kind:       kind,
		Source:     line.Source,
		LineNum:    line.LineNum,
		FileIndex:  line.FileIndex,
	}, true, nil
}

// Flush is a no-op; lifecycle events are single-line.
func (p *LifecycleParser) Flush() error {
	return nil
}
