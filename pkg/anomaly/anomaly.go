// Package anomaly flags transitions that ran longer than a threshold.
package anomaly

import (
	"sort"

	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/parser"
)

// LongRunning is a transition whose duration exceeded the threshold.
type LongRunning struct {
	EntityID       string       `json:"entity_id"`
	Start          parser.Event `json:"start"`
	DurationMillis int64        `json:"duration_ms"`
}

// FindLongRunning returns matched pairs whose duration is strictly greater
// than thresholdMillis, longest first. Equal durations keep input order.
func FindLongRunning(pairs []correlate.EntityPair, thresholdMillis int64) []LongRunning {
	var out []LongRunning
	for _, p := range pairs {
		if d := p.DurationMillis(); d > thresholdMillis {
			out = append(out, LongRunning{EntityID: p.EntityID, Start: p.Start, DurationMillis: d})
		}
	}
	sortByDuration(out)
	return out
}

// FilterSlowDetails returns self-contained events whose embedded duration is
// strictly greater than thresholdMillis, longest first. No pairing is done.
func FilterSlowDetails(events []parser.Event, thresholdMillis int64) []LongRunning {
	var out []LongRunning
	for _, ev := range events {
		if ev.DurationMillis == nil {
			continue
		}
		if d := *ev.DurationMillis; d > thresholdMillis {
			out = append(out, LongRunning{EntityID: ev.EntityID, Start: ev, DurationMillis: d})
		}
	}
	sortByDuration(out)
	return out
}

func sortByDuration(items []LongRunning) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DurationMillis > items[j].DurationMillis
	})
}
