package correlate

import (
	"github.com/ccollicutt/translog/pkg/parser"
)

// Correlate groups start and end events by entity and matches them.
// Events of other kinds are ignored. Input order is the arrival order kept
// in each Timeline; matching works on a timestamp-sorted copy.
func Correlate(events []parser.Event) *Result {
	result := &Result{
		CategoryStarts: make(map[string]int),
		Timelines:      make(map[string]*Timeline),
		Matches:        make(map[string]*MatchResult),
	}

	for _, ev := range events {
		switch ev.Kind {
		case parser.KindStart:
			result.Starts++
			result.CategoryStarts[ev.Category]++
		case parser.KindEnd:
			result.Ends++
		default:
			continue
		}

		tl, ok := result.Timelines[ev.EntityID]
		if !ok {
			tl = &Timeline{EntityID: ev.EntityID}
			result.Timelines[ev.EntityID] = tl
			result.Entities = append(result.Entities, ev.EntityID)
		}
		tl.Events = append(tl.Events, ev)
	}

	for _, id := range result.Entities {
		m := Match(result.Timelines[id].Sorted())
		result.Matches[id] = m
		result.Dangling += len(m.Dangling)
	}

	return result
}

// Match pairs starts with ends in one entity's chronologically sorted events.
//
// Each start, in order, claims the earliest pending end of the same category
// whose timestamp is not before its own. A start with no such end is
// dangling. Ends that are skipped because they precede the start can never
// qualify for a later start either, so they become orphans immediately.
func Match(sorted []parser.Event) *MatchResult {
	pending := make(map[string]*endQueue)
	for _, ev := range sorted {
		if ev.Kind != parser.KindEnd {
			continue
		}
		q, ok := pending[ev.Category]
		if !ok {
			q = &endQueue{}
			pending[ev.Category] = q
		}
		q.push(ev)
	}

	m := &MatchResult{}
	for _, start := range sorted {
		if start.Kind != parser.KindStart {
			continue
		}

		q := pending[start.Category]
		if q == nil {
			m.Dangling = append(m.Dangling, start)
			continue
		}

		for q.len() > 0 && q.peek().Timestamp.Before(start.Timestamp) {
			m.Orphans = append(m.Orphans, q.pop())
		}

		if q.len() == 0 {
			m.Dangling = append(m.Dangling, start)
			continue
		}

		m.Pairs = append(m.Pairs, Pair{Start: start, End: q.pop()})
	}

	for _, q := range pending {
		m.Orphans = append(m.Orphans, q.rest()...)
	}
	parser.SortEvents(m.Orphans)

	return m
}

// endQueue is a FIFO of pending end events for one category.
type endQueue struct {
	events []parser.Event
	head   int
}

func (q *endQueue) push(ev parser.Event) { q.events = append(q.events, ev) }

func (q *endQueue) len() int { return len(q.events) - q.head }

func (q *endQueue) peek() *parser.Event { return &q.events[q.head] }

func (q *endQueue) pop() parser.Event {
	ev := q.events[q.head]
	q.head++
	return ev
}

func (q *endQueue) rest() []parser.Event { return q.events[q.head:] }
