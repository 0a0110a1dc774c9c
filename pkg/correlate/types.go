// Package correlate matches transition start events to their end events per
// entity and reports what never completed.
package correlate

import (
	"github.com/ccollicutt/translog/pkg/parser"
)

// Timeline is the ordered sequence of events sharing one entity id, in
// arrival order.
type Timeline struct {
	EntityID string
	Events   []parser.Event
}

// Sorted returns a copy of the timeline's events stably sorted by timestamp.
func (t *Timeline) Sorted() []parser.Event {
	sorted := make([]parser.Event, len(t.Events))
	copy(sorted, t.Events)
	parser.SortEvents(sorted)
	return sorted
}

// Pair is a start event and the end event it was matched with.
type Pair struct {
	Start parser.Event
	End   parser.Event
}

// DurationMillis is the elapsed time between start and end.
func (p Pair) DurationMillis() int64 {
	return p.End.Timestamp.Sub(p.Start.Timestamp).Milliseconds()
}

// MatchResult is the outcome of matching one entity's timeline.
type MatchResult struct {
	// Pairs are in chronological order of their start events.
	Pairs []Pair

	// Dangling are start events with no qualifying end.
	Dangling []parser.Event

	// Orphans are end events that no start claimed.
	Orphans []parser.Event
}

// Result is the outcome of correlating a whole event stream.
type Result struct {
	// Starts and Ends count all start and end events.
	Starts int
	Ends   int

	// Dangling counts unmatched starts across all entities.
	Dangling int

	// CategoryStarts counts start events per category.
	CategoryStarts map[string]int

	// Entities lists entity ids in order of first appearance.
	Entities []string

	// Timelines holds every entity's events in arrival order.
	Timelines map[string]*Timeline

	// Matches holds every entity's match result.
	Matches map[string]*MatchResult
}

// EntityPair is a matched pair tagged with its entity.
type EntityPair struct {
	EntityID string
	Pair
}

// AllPairs returns every matched pair, entities in first-appearance order
// and pairs in chronological order within an entity.
func (r *Result) AllPairs() []EntityPair {
	var pairs []EntityPair
	for _, id := range r.Entities {
		for _, p := range r.Matches[id].Pairs {
			pairs = append(pairs, EntityPair{EntityID: id, Pair: p})
		}
	}
	return pairs
}

// OrphanCount returns the number of end events left unmatched.
func (r *Result) OrphanCount() int {
	n := 0
	for _, m := range r.Matches {
		n += len(m.Orphans)
	}
	return n
}
