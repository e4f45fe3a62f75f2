// Package stats folds testimonials into time buckets for the admin chart.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Granularity selects the bucket width.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// DefaultGranularity is used when none is requested.
const DefaultGranularity = Week

// ParseGranularity accepts day, week or month in any case. An empty string
// selects DefaultGranularity.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return DefaultGranularity, nil
	case Day, Week, Month:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want day, week or month)", s)
	}
}

// Entry is the part of a record the fold needs.
type Entry struct {
	CreatedAt time.Time
	HasImage  bool
}

// Bucket counts the records created within one period.
type Bucket struct {
	Key          string    `json:"key"`
	Start        time.Time `json:"start"`
	Total        int       `json:"total"`
	WithImage    int       `json:"withImage"`
	WithoutImage int       `json:"withoutImage"`
}

// Report is the chart payload.
type Report struct {
	Granularity Granularity `json:"granularity"`
	Total       int         `json:"total"`
	Buckets     []Bucket    `json:"buckets"`
}

// Key returns the bucket key and period start of t in UTC.
func (g Granularity) Key(t time.Time) (string, time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case Month:
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01"), start
	case Week:
		year, week := t.ISOWeek()
		// ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return fmt.Sprintf("%04d-W%02d", year, week), start
	default:
		return day.Format("2006-01-02"), day
	}
}

// Bucketize groups entries by period, sorted by period start. Bucket totals
// always sum to len(entries).
func Bucketize(entries []Entry, g Granularity) (Report, error) {
	switch g {
	case Day, Week, Month:
	default:
		return Report{}, fmt.Errorf("unknown granularity %q", g)
	}
	byKey := make(map[string]*Bucket)
	for _, e := range entries {
		key, start := g.Key(e.CreatedAt)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key, Start: start}
			byKey[key] = b
		}
		b.Total++
		if e.HasImage {
			b.WithImage++
		} else {
			b.WithoutImage++
		}
	}
	out := Report{Granularity: g, Total: len(entries), Buckets: make([]Bucket, 0, len(byKey))}
	for _, b := range byKey {
		out.Buckets = append(out.Buckets, *b)
	}
	sort.Slice(out.Buckets, func(i, j int) bool { return out.Buckets[i].Start.Before(out.Buckets[j].Start) })
	return out, nil
}
