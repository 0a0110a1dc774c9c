// Package interval counts events in fixed-width, epoch-aligned time windows.
package interval

import (
	"fmt"
	"sort"
	"time"

	"github.com/ccollicutt/translog/pkg/parser"
)

// LabelLayout formats the start of a bucket label; the end uses EndLayout.
const (
	LabelLayout = "2006-01-02 15:04"
	EndLayout   = "15:04"
)

// Bucket is the half-open window [Start, End) and the number of events in it.
type Bucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

// Label renders the bucket as "2006-01-02 15:04-15:04" in loc.
func (b Bucket) Label(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s-%s", b.Start.In(loc).Format(LabelLayout), b.End.In(loc).Format(EndLayout))
}

// Floor returns the start of the epoch-aligned window of the given width
// containing ts.
func Floor(ts time.Time, width time.Duration) time.Time {
	widthMillis := width.Milliseconds()
	millis := ts.UnixMilli()
	start := millis / widthMillis * widthMillis
	if millis < 0 && millis%widthMillis != 0 {
		start -= widthMillis
	}
	return time.UnixMilli(start).UTC()
}

// Bucketize counts timestamps per window, ascending by window start.
// Only non-empty windows are returned.
func Bucketize(timestamps []time.Time, width time.Duration) ([]Bucket, error) {
	if width < time.Millisecond {
		return nil, fmt.Errorf("interval width must be at least 1ms, got %s", width)
	}

	counts := make(map[int64]int)
	for _, ts := range timestamps {
		counts[Floor(ts, width).UnixMilli()]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for startMillis, count := range counts {
		start := time.UnixMilli(startMillis).UTC()
		buckets = append(buckets, Bucket{Start: start, End: start.Add(width), Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets, nil
}

// BucketizeEvents counts events per window.
func BucketizeEvents(events []parser.Event, width time.Duration) ([]Bucket, error) {
	timestamps := make([]time.Time, len(events))
	for i := range events {
		timestamps[i] = events[i].Timestamp
	}
	return Bucketize(timestamps, width)
}

// BucketizeByCategory counts events per window separately for each category.
func BucketizeByCategory(events []parser.Event, width time.Duration) (map[string][]Bucket, error) {
	byCategory := make(map[string][]time.Time)
	for i := range events {
		byCategory[events[i].Category] = append(byCategory[events[i].Category], events[i].Timestamp)
	}

	out := make(map[string][]Bucket, len(byCategory))
	for category, timestamps := range byCategory {
		buckets, err := Bucketize(timestamps, width)
		if err != nil {
			return nil, err
		}
		out[category] = buckets
	}
	return out, nil
}
