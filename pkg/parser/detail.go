package parser

import (
	"strconv"
	"strings"
)

// DetailFormat holds the markers of transition detail events. The two-line form is
//
//	2025-03-27 09:24:17,376 DEBUG [exec-1] [LIFECYCLE-PERF-LOG] []: Детали перехода <guid> для документа <DocType>:
//		<Transition> 1234 ms
//
// and the one-line form is "<ts> DEBUG ... <Transition> took 1234 ms".
type DetailFormat struct {
	// LevelMarker ends the timestamp slice (e.g. " DEBUG").
	LevelMarker string

	// HeaderSuffix terminates a header line.
	HeaderSuffix string

	// DetailMarker precedes the entity id in a header line.
	DetailMarker string

	// DocumentMarker precedes the document type, which runs up to ":".
	DocumentMarker string

	// UnitSuffix follows the duration value.
	UnitSuffix string

	// TookMarker joins name and duration in the one-line form (optional).
	TookMarker string
}

type detailState int

const (
	stateIdle detailState = iota
	stateAwaitingContinuation
)

// DetailParser is a two-phase state machine: a header line moves it to
// awaiting-continuation, and the next line completes the event.
type DetailParser struct {
	format DetailFormat
	ts     *TimestampExtractor

	state       detailState
	pending     Event
	pendingLine LogLine
}

// NewDetailParser creates a parser for transition detail events.
func NewDetailParser(format DetailFormat, ts *TimestampExtractor) *DetailParser {
	return &DetailParser{format: format, ts: ts}
}

// Feed parses a single line.
func (p *DetailParser) Feed(line LogLine) (Event, bool, error) {
	if p.state == stateAwaitingContinuation {
		return p.continuation(line)
	}

	text := line.Content

	if strings.HasSuffix(text, p.format.HeaderSuffix) && strings.Contains(text, p.format.DetailMarker) {
		ts, err := p.ts.Extract(text, p.format.LevelMarker)
		if err != nil {
			return Event{}, false, lineError(ErrMalformedTimestamp, line, err)
		}

		entityID, _ := between(text, p.format.DetailMarker, " ")
		docType, _ := between(text, p.format.DocumentMarker, ":")
		thread, _ := between(text, "[", "]")

		p.pending = Event{
			Timestamp:  ts,
			EntityID:   entityID,
			ThreadName: thread,
			Kind:       KindDetail,
			Descriptor: docType,
			Source:     line.Source,
			LineNum:    line.LineNum,
			FileIndex:  line.FileIndex,
		}
		p.pendingLine = line
		p.state = stateAwaitingContinuation
		return Event{}, false, nil
	}

	if p.format.TookMarker != "" && strings.Contains(text, p.format.TookMarker) &&
		strings.HasSuffix(strings.TrimSpace(text), p.format.UnitSuffix) {
		return p.oneLine(line)
	}

	return Event{}, false, nil
}

func (p *DetailParser) continuation(line LogLine) (Event, bool, error) {
	ev := p.pending
	p.reset()

	body := strings.TrimLeft(line.Content, " \t\\")
	name := firstToken(body)
	if name == "" {
		return Event{}, false, unparseable(line, "continuation has no transition name")
	}

	millis, err := p.duration(body[len(name):])
	if err != nil {
		return Event{}, false, unparseable(line, "%v", err)
	}

	ev.Category = name
	ev.DurationMillis = &millis
	return ev, true, nil
}

func (p *DetailParser) oneLine(line LogLine) (Event, bool, error) {
	ts, err := p.ts.Extract(line.Content, p.format.LevelMarker)
	if err != nil {
		return Event{}, false, lineError(ErrMalformedTimestamp, line, err)
	}

	head, tail, _ := strings.Cut(line.Content, p.format.TookMarker)
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return Event{}, false, unparseable(line, "no name before %q", p.format.TookMarker)
	}

	millis, err := p.duration(tail)
	if err != nil {
		return Event{}, false, unparseable(line, "%v", err)
	}

	thread, _ := between(line.Content, "[", "]")

	return Event{
		Timestamp:      ts,
		Category:       fields[len(fields)-1],
		ThreadName:     thread,
		Kind:           KindDetail,
		DurationMillis: &millis,
		Source:         line.Source,
		LineNum:        line.LineNum,
		FileIndex:      line.FileIndex,
	}, true, nil
}

// duration parses "<N><unit>" with optional surrounding whitespace.
func (p *DetailParser) duration(s string) (int64, error) {
	num, _, ok := strings.Cut(s, p.format.UnitSuffix)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(strings.TrimSpace(num), 10, 64)
}

// Flush reports a header whose continuation line never arrived.
func (p *DetailParser) Flush() error {
	if p.state != stateAwaitingContinuation {
		return nil
	}
	line := p.pendingLine
	p.reset()
	return lineError(ErrTruncatedEvent, line, nil)
}

// Pending reports whether the parser is waiting for a continuation line.
func (p *DetailParser) Pending() bool {
	return p.state == stateAwaitingContinuation
}

func (p *DetailParser) reset() {
	p.state = stateIdle
	p.pending = Event{}
	p.pendingLine = LogLine{}
}
