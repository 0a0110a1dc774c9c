package parser

import (
	"fmt"
	"strconv"
	"strings"
)

const resourcesPrefix = "resources="

// RequestFormat holds the markers of "request issued" lines:
//
//	2025-01-10 12:00:00,123 DEBUG [http-1] Сформирован запрос на SOBI: getAllowedResources(4f2a) [...]
type RequestFormat struct {
	// LevelMarker ends the timestamp slice (e.g. " DEBUG").
	LevelMarker string

	// Marker identifies request lines.
	Marker string

	// ResourceRequest is the request type whose payload is summarized by
	// counting ResourceMarker occurrences.
	ResourceRequest string
	ResourceMarker  string
}

// RequestParser parses single-shot request events.
type RequestParser struct {
	format RequestFormat
	ts     *TimestampExtractor
}

// NewRequestParser creates a parser for request lines.
func NewRequestParser(format RequestFormat, ts *TimestampExtractor) *RequestParser {
	return &RequestParser{format: format, ts: ts}
}

// Feed parses a single line.
func (p *RequestParser) Feed(line LogLine) (Event, bool, error) {
	text := line.Content
	if !strings.Contains(text, p.format.Marker) {
		return Event{}, false, nil
	}

	ts, err := p.ts.Extract(text, p.format.LevelMarker)
	if err != nil {
		return Event{}, false, lineError(ErrMalformedTimestamp, line, err)
	}

	target, ok := between(text, p.format.Marker, "(")
	if !ok {
		return Event{}, false, unparseable(line, "missing request arguments")
	}
	_, requestType, ok := strings.Cut(target, ": ")
	if !ok || requestType == "" {
		return Event{}, false, unparseable(line, "missing request type")
	}

	hash, _ := between(text, "(", ")")
	thread, _ := between(text, "[", "]")

	var descriptor string
	if p.format.ResourceRequest != "" && requestType == p.format.ResourceRequest {
		_, payload, _ := strings.Cut(text, requestType)
		descriptor = fmt.Sprintf("%s%d", resourcesPrefix, strings.Count(payload, p.format.ResourceMarker))
	}

	return Event{
		Timestamp:  ts,
		EntityID:   hash,
		Category:   requestType,
		ThreadName: thread,
		Kind:       KindRequest,
		Descriptor: descriptor,
		Source:     line.Source,
		LineNum:    line.LineNum,
		FileIndex:  line.FileIndex,
	}, true, nil
}

// ResourceCount returns the number of resources listed by a resource request
// event. ok is false for every other event.
func (e *Event) ResourceCount() (n int, ok bool) {
	s, found := strings.CutPrefix(e.Descriptor, resourcesPrefix)
	if !found || e.Kind != KindRequest {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Flush is a no-op; request events are single-line.
func (p *RequestParser) Flush() error {
	return nil
}
