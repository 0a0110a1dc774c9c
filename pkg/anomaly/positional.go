package anomaly

import (
	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/parser"
)

// PairPositionally pairs consecutive entries of a timeline: first with
// second, third with fourth, and so on. A trailing odd entry is dropped.
//
// Neither kind nor category is checked. With interleaved transitions on one
// entity this pairs unrelated events, so results differ from
// correlate.Match. It is kept as its own heuristic because the "longest
// transitions" report has always been computed this way.
func PairPositionally(events []parser.Event) []correlate.Pair {
	pairs := make([]correlate.Pair, 0, len(events)/2)
	for i := 0; i+1 < len(events); i += 2 {
		pairs = append(pairs, correlate.Pair{Start: events[i], End: events[i+1]})
	}
	return pairs
}

// FindLongRunningPositional applies PairPositionally to every entity's
// timestamp-sorted timeline and reports pairs longer than thresholdMillis,
// longest first. Entities are visited in first-appearance order.
func FindLongRunningPositional(r *correlate.Result, thresholdMillis int64) []LongRunning {
	var pairs []correlate.EntityPair
	for _, id := range r.Entities {
		for _, p := range PairPositionally(r.Timelines[id].Sorted()) {
			pairs = append(pairs, correlate.EntityPair{EntityID: id, Pair: p})
		}
	}
	return FindLongRunning(pairs, thresholdMillis)
}
