package correlate

import (
	"sort"
	"time"

	"github.com/ccollicutt/translog/pkg/parser"
)

// CategoryCount is one row of a category tally.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Tally orders category counts by descending count, then ascending name.
func Tally(counts map[string]int) []CategoryCount {
	tally := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		tally = append(tally, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(tally, func(i, j int) bool {
		if tally[i].Count != tally[j].Count {
			return tally[i].Count > tally[j].Count
		}
		return tally[i].Category < tally[j].Category
	})
	return tally
}

// CountCategories counts events per category.
func CountCategories(events []parser.Event) map[string]int {
	counts := make(map[string]int)
	for i := range events {
		counts[events[i].Category]++
	}
	return counts
}

// EntityDangling lists one entity's unmatched starts.
type EntityDangling struct {
	EntityID string         `json:"entity_id"`
	Starts   []parser.Event `json:"starts"`
}

// DanglingByEntity returns entities with unmatched starts, ordered by their
// earliest dangling start, then entity id.
func DanglingByEntity(r *Result) []EntityDangling {
	var out []EntityDangling
	for _, id := range r.Entities {
		if d := r.Matches[id].Dangling; len(d) > 0 {
			out = append(out, EntityDangling{EntityID: id, Starts: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Starts[0].Timestamp, out[j].Starts[0].Timestamp
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// BusyEntity is an entity with many transitions in one run.
type BusyEntity struct {
	EntityID    string   `json:"entity_id"`
	Transitions int      `json:"transitions"`
	Categories  []string `json:"categories"`
}

// BusyEntities returns entities whose timeline holds at least minTransitions
// transitions, counting a transition as two timeline events. Categories are
// distinct, in first-seen order. Entities keep first-appearance order.
func BusyEntities(r *Result, minTransitions int) []BusyEntity {
	if minTransitions <= 0 {
		return nil
	}
	var out []BusyEntity
	for _, id := range r.Entities {
		tl := r.Timelines[id]
		n := len(tl.Events) / 2
		if n < minTransitions {
			continue
		}
		seen := make(map[string]bool)
		var categories []string
		for _, ev := range tl.Events {
			if !seen[ev.Category] {
				seen[ev.Category] = true
				categories = append(categories, ev.Category)
			}
		}
		out = append(out, BusyEntity{EntityID: id, Transitions: n, Categories: categories})
	}
	return out
}

// Span is the earliest and latest timestamp seen.
type Span struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// Extend widens the span to include ts.
func (s *Span) Extend(ts time.Time) {
	if s.First.IsZero() || ts.Before(s.First) {
		s.First = ts
	}
	if ts.After(s.Last) {
		s.Last = ts
	}
}
