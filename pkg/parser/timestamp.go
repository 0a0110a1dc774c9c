package parser

import (
	"fmt"
	"strings"
	"time"
)

// TimestampExtractor slices the timestamp off the front of a log line and
// parses it.
type TimestampExtractor struct {
	layout   string
	location *time.Location
}

// NewTimestampExtractor creates a new timestamp extractor. A nil location
// means UTC.
func NewTimestampExtractor(layout string, location *time.Location) *TimestampExtractor {
	if location == nil {
		location = time.UTC
	}
	return &TimestampExtractor{
		layout:   layout,
		location: location,
	}
}

// Extract parses the text before marker as a timestamp.
// An empty marker parses the leading len(layout) bytes instead.
func (e *TimestampExtractor) Extract(line, marker string) (time.Time, error) {
	var tsStr string
	if marker == "" {
		if len(line) < len(e.layout) {
			return time.Time{}, fmt.Errorf("%w: line shorter than layout", ErrMalformedTimestamp)
		}
		tsStr = line[:len(e.layout)]
	} else {
		idx := strings.Index(line, marker)
		if idx < 0 {
			return time.Time{}, fmt.Errorf("%w: marker %q not found", ErrMalformedTimestamp, marker)
		}
		tsStr = line[:idx]
	}

	ts, err := time.ParseInLocation(e.layout, strings.TrimSpace(tsStr), e.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing %q: %v", ErrMalformedTimestamp, tsStr, err)
	}

	return ts, nil
}
