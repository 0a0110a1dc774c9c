package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/translog/pkg/correlate"
	"github.com/ccollicutt/translog/pkg/parser"
)

var base = time.Date(2025, 12, 12, 10, 0, 0, 0, time.UTC)

func event(entity, category string, kind parser.Kind, offsetMillis int) parser.Event {
	return parser.Event{
		Timestamp: base.Add(time.Duration(offsetMillis) * time.Millisecond),
		EntityID:  entity,
		Category:  category,
		Kind:      kind,
	}
}

func pair(entity string, startMillis, endMillis int) correlate.EntityPair {
	return correlate.EntityPair{
		EntityID: entity,
		Pair: correlate.Pair{
			Start: event(entity, "X", parser.KindStart, startMillis),
			End:   event(entity, "X", parser.KindEnd, endMillis),
		},
	}
}

func TestFindLongRunning(t *testing.T) {
	pairs := []correlate.EntityPair{
		pair("A", 0, 5000),
		pair("B", 0, 9000),
		pair("C", 0, 6000),
		pair("D", 0, 9000),
		pair("E", 0, 6001),
	}

	got := FindLongRunning(pairs, 6000)

	var ids []string
	for _, lr := range got {
		ids = append(ids, lr.EntityID)
	}
	// Strictly greater than the threshold; ties keep input order
	assert.Equal(t, []string{"B", "D", "E"}, ids)
	assert.Equal(t, int64(9000), got[0].DurationMillis)
}

func TestFindLongRunning_None(t *testing.T) {
	assert.Empty(t, FindLongRunning([]correlate.EntityPair{pair("A", 0, 10)}, 6000))
	assert.Empty(t, FindLongRunning(nil, 0))
}

func TestFilterSlowDetails(t *testing.T) {
	d := func(entity string, millis int64) parser.Event {
		ev := event(entity, "Sign", parser.KindDetail, 0)
		ev.DurationMillis = &millis
		return ev
	}

	events := []parser.Event{
		d("a", 15000),
		d("b", 20000),
		event("c", "Sign", parser.KindDetail, 0),
		d("e", 15001),
	}

	got := FilterSlowDetails(events, 15000)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].EntityID)
	assert.Equal(t, "e", got[1].EntityID)
	assert.Equal(t, int64(15001), got[1].DurationMillis)
}

func TestPairPositionally(t *testing.T) {
	events := []parser.Event{
		event("G", "A", parser.KindStart, 0),
		event("G", "B", parser.KindStart, 10),
		event("G", "B", parser.KindEnd, 20),
		event("G", "A", parser.KindEnd, 30),
		event("G", "C", parser.KindStart, 40),
	}

	pairs := PairPositionally(events)

	require.Len(t, pairs, 2)
	// Positional pairing joins A-start with B-start: categories are not checked
	assert.Equal(t, "A", pairs[0].Start.Category)
	assert.Equal(t, "B", pairs[0].End.Category)
	assert.Equal(t, "B", pairs[1].Start.Category)
	assert.Equal(t, "A", pairs[1].End.Category)
}

func TestPositionalDiffersFromCategoryMatching(t *testing.T) {
	r := correlate.Correlate([]parser.Event{
		event("G", "A", parser.KindStart, 0),
		event("G", "B", parser.KindStart, 1000),
		event("G", "B", parser.KindEnd, 8000),
		event("G", "A", parser.KindEnd, 9000),
	})

	matched := FindLongRunning(r.AllPairs(), 6000)
	positional := FindLongRunningPositional(r, 6000)

	require.Len(t, matched, 2)
	assert.Equal(t, int64(9000), matched[0].DurationMillis)
	assert.Equal(t, int64(7000), matched[1].DurationMillis)

	// Positional sees (A-start, B-start)=1000ms and (B-end, A-end)=1000ms
	assert.Empty(t, positional)
}

func TestFindLongRunningPositional(t *testing.T) {
	r := correlate.Correlate([]parser.Event{
		event("G1", "X", parser.KindEnd, 7000),
		event("G1", "X", parser.KindStart, 0),
		event("G2", "Y", parser.KindStart, 0),
		event("G2", "Y", parser.KindEnd, 8000),
		event("G2", "Y", parser.KindStart, 9000),
	})

	got := FindLongRunningPositional(r, 6000)

	require.Len(t, got, 2)
	assert.Equal(t, "G2", got[0].EntityID)
	assert.Equal(t, int64(8000), got[0].DurationMillis)
	assert.Equal(t, "G1", got[1].EntityID)
	assert.Equal(t, int64(7000), got[1].DurationMillis)
}
