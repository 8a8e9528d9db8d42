// Package aggregate pivots usage readings into calendar buckets by power flow.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jgoulah/powerchart/internal/usageerr"
	"github.com/jgoulah/powerchart/pkg/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Bucket is one calendar interval with the summed usage per flow
type Bucket struct {
	Start  time.Time // Civil start date, in UTC
	Label  string
	Values map[string]decimal.Decimal
}

// Value returns the summed usage for a flow and whether the cell is present
func (b Bucket) Value(flow string) (decimal.Decimal, bool) {
	v, ok := b.Values[flow]
	return v, ok
}

// Table is the aggregated usage, one row per bucket in chronological order
// and one column per distinct power flow in the input.
type Table struct {
	Granularity models.Granularity
	Flows       []string
	Buckets     []Bucket
}

// Empty reports whether the table has no buckets
func (t *Table) Empty() bool {
	return len(t.Buckets) == 0
}

// Total sums a flow over all buckets
func (t *Table) Total(flow string) decimal.Decimal {
	total := decimal.Zero
	for _, b := range t.Buckets {
		if v, ok := b.Values[flow]; ok {
			total = total.Add(v)
		}
	}
	return total
}

type pivotKey struct {
	startdate string
	flow      string
}

type cell struct {
	at    time.Time
	flow  string
	usage decimal.Decimal
}

// Aggregate sums readings per (Startdate, powerFlow), parses the timestamps
// and buckets them at the requested granularity.
//
// Month and Year tables cover every calendar bucket between the first and
// last reading, with absent cells as zero. Day tables only hold days that
// have readings and leave absent cells out.
func Aggregate(readings []models.Reading, g models.Granularity) (*Table, error) {
	sums := make(map[pivotKey]decimal.Decimal)
	var order []pivotKey

	for _, r := range readings {
		// Rows without a timestamp or a flow have nowhere to go
		if r.Startdate == "" || r.Flow == "" {
			continue
		}
		key := pivotKey{startdate: r.Startdate, flow: r.Flow}
		if _, ok := sums[key]; !ok {
			order = append(order, key)
			sums[key] = decimal.Zero
		}
		sums[key] = sums[key].Add(r.Usage)
	}

	parsed := make(map[string]time.Time)
	cells := make([]cell, 0, len(order))
	for _, key := range order {
		at, ok := parsed[key.startdate]
		if !ok {
			var err error
			at, err = ParseTimestamp(key.startdate)
			if err != nil {
				return nil, err
			}
			parsed[key.startdate] = at
		}
		cells = append(cells, cell{at: at, flow: key.flow, usage: sums[key]})
	}

	flows := lo.Uniq(lo.Map(order, func(k pivotKey, _ int) string { return k.flow }))
	sort.Strings(flows)

	return build(cells, flows, g), nil
}

// Rebucket re-aggregates a table at a coarser granularity. Aggregating at Day
// and rebucketing to Month gives the same totals as aggregating at Month.
func Rebucket(t *Table, g models.Granularity) (*Table, error) {
	if g < t.Granularity {
		return nil, fmt.Errorf("cannot rebucket %s table to finer %s granularity", t.Granularity, g)
	}

	var cells []cell
	for _, b := range t.Buckets {
		for _, flow := range t.Flows {
			if v, ok := b.Values[flow]; ok {
				cells = append(cells, cell{at: b.Start, flow: flow, usage: v})
			}
		}
	}

	return build(cells, append([]string(nil), t.Flows...), g), nil
}

func build(cells []cell, flows []string, g models.Granularity) *Table {
	table := &Table{Granularity: g, Flows: flows, Buckets: []Bucket{}}
	if len(flows) == 0 {
		table.Flows = []string{}
	}

	index := make(map[string]int)
	for _, c := range cells {
		start := BucketStart(c.at, g)
		label := Label(start, g)
		i, ok := index[label]
		if !ok {
			i = len(table.Buckets)
			index[label] = i
			table.Buckets = append(table.Buckets, Bucket{
				Start:  start,
				Label:  label,
				Values: make(map[string]decimal.Decimal),
			})
		}
		values := table.Buckets[i].Values
		values[c.flow] = values[c.flow].Add(c.usage)
	}

	sortBuckets(table.Buckets)

	if g != models.Day && len(table.Buckets) > 0 {
		table.Buckets = fillCalendar(table.Buckets, flows, g)
	}

	return table
}

// fillCalendar returns every bucket from the first to the last one, inserting
// zero buckets for gaps and zero cells for flows with no readings.
func fillCalendar(buckets []Bucket, flows []string, g models.Granularity) []Bucket {
	byLabel := lo.KeyBy(buckets, func(b Bucket) string { return b.Label })
	first := buckets[0].Start
	last := buckets[len(buckets)-1].Start

	filled := make([]Bucket, 0, len(buckets))
	for start := first; !start.After(last); start = next(start, g) {
		label := Label(start, g)
		b, ok := byLabel[label]
		if !ok {
			b = Bucket{Start: start, Label: label, Values: make(map[string]decimal.Decimal)}
		}
		for _, flow := range flows {
			if _, ok := b.Values[flow]; !ok {
				b.Values[flow] = decimal.Zero
			}
		}
		filled = append(filled, b)
	}

	return filled
}

func sortBuckets(buckets []Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Start.Equal(buckets[j].Start) {
			return buckets[i].Label < buckets[j].Label
		}
		return buckets[i].Start.Before(buckets[j].Start)
	})
}

func next(start time.Time, g models.Granularity) time.Time {
	switch g {
	case models.Year:
		return start.AddDate(1, 0, 0)
	case models.Month:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// BucketStart truncates a timestamp to the start of its calendar bucket. The
// calendar is the one of the timestamp's own location, but the result is a
// civil date in UTC so buckets from readings with different offsets (e.g.
// either side of a DST change) compare and step consistently.
func BucketStart(t time.Time, g models.Granularity) time.Time {
	switch g {
	case models.Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case models.Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Label formats a bucket start: 2006-01-02 for days, 2006-01 for months, 2006 for years
func Label(start time.Time, g models.Granularity) string {
	switch g {
	case models.Year:
		return start.Format("2006")
	case models.Month:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
}

// ParseTimestamp parses a Startdate value. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse Startdate %q: %w", s, usageerr.ErrDateParse)
}
