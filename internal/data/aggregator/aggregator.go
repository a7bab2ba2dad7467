package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/go-agent-usage/internal/core/model"
	"github.com/penwyp/go-agent-usage/internal/core/pricing"
	"github.com/penwyp/go-agent-usage/internal/util"
)

// Supported time units for bucketing.
const (
	GroupByDay   = "day"
	GroupByMonth = "month"
	GroupByHour  = "hour"
)

// Aggregator buckets reconciled sessions into a time-keyed report.
type Aggregator struct {
	groupBy  string
	rank     bool
	limit    int
	location *time.Location
}

// Bucket holds running totals for one time unit.
type Bucket struct {
	Key          string
	Sessions     int
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// Totals are run-wide sums over the full reconciliation, independent of any
// result limit applied to the bucket list.
type Totals struct {
	TotalSessions     int
	TotalInputTokens  int
	TotalOutputTokens int
	TotalCost         float64
}

// Report is the aggregation result consumed by the report renderers.
type Report struct {
	Buckets []Bucket
	Totals  Totals
}

// New creates an Aggregator. groupBy must be one of day, month or hour; an
// unknown value falls back to day. A nil location means UTC.
func New(groupBy string, rank bool, limit int, location *time.Location) *Aggregator {
	switch groupBy {
	case GroupByDay, GroupByMonth, GroupByHour:
	default:
		groupBy = GroupByDay
	}
	if location == nil {
		location = time.UTC
	}
	return &Aggregator{
		groupBy:  groupBy,
		rank:     rank,
		limit:    limit,
		location: location,
	}
}

// CostFor computes the cost of a session from the pricing table.
func CostFor(session model.ReconciledSession) float64 {
	rates := pricing.GetPricing(session.Model)
	return float64(session.InputTokens)/1e6*rates.Input +
		float64(session.OutputTokens)/1e6*rates.Output
}

// Aggregate buckets the sessions, fills temporal gaps when not ranking,
// sorts, and applies the result limit. Totals always reflect every session
// passed in, never the truncated bucket list.
func (a *Aggregator) Aggregate(sessions []model.ReconciledSession) Report {
	bucketMap := make(map[string]*Bucket)
	var totals Totals
	var earliest, latest time.Time

	for _, session := range sessions {
		if session.Date.IsZero() {
			util.LogDebug(fmt.Sprintf("Skip session %s with no date", session.SessionID))
			continue
		}

		cost := CostFor(session)
		unit := a.truncate(session.Date.In(a.location))
		key := unit.Format(a.keyLayout())

		bucket, ok := bucketMap[key]
		if !ok {
			bucket = &Bucket{Key: key}
			bucketMap[key] = bucket
		}
		bucket.Sessions++
		bucket.InputTokens += session.InputTokens
		bucket.OutputTokens += session.OutputTokens
		bucket.Cost += cost

		totals.TotalSessions++
		totals.TotalInputTokens += session.InputTokens
		totals.TotalOutputTokens += session.OutputTokens
		totals.TotalCost += cost

		if earliest.IsZero() || unit.Before(earliest) {
			earliest = unit
		}
		if latest.IsZero() || unit.After(latest) {
			latest = unit
		}
	}

	// A continuous timeline reads better than one with holes, but ranking by
	// cost would bury the zero buckets at the bottom, so skip the fill there.
	if !a.rank && !earliest.IsZero() {
		for unit := earliest; !unit.After(latest); unit = a.step(unit) {
			key := unit.Format(a.keyLayout())
			if _, ok := bucketMap[key]; !ok {
				bucketMap[key] = &Bucket{Key: key}
			}
		}
	}

	buckets := make([]Bucket, 0, len(bucketMap))
	for _, bucket := range bucketMap {
		buckets = append(buckets, *bucket)
	}

	if a.rank {
		sort.Slice(buckets, func(i, j int) bool {
			if buckets[i].Cost != buckets[j].Cost {
				return buckets[i].Cost > buckets[j].Cost
			}
			return buckets[i].Key > buckets[j].Key
		})
	} else {
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].Key > buckets[j].Key
		})
	}

	if a.limit > 0 && len(buckets) > a.limit {
		util.LogDebug(fmt.Sprintf("Applying result limit: %d -> %d", len(buckets), a.limit))
		buckets = buckets[:a.limit]
	}

	return Report{Buckets: buckets, Totals: totals}
}

func (a *Aggregator) keyLayout() string {
	switch a.groupBy {
	case GroupByMonth:
		return "2006-01"
	case GroupByHour:
		return "2006-01-02 15:00"
	default:
		return "2006-01-02"
	}
}

// truncate aligns a time to its calendar bucket boundary.
func (a *Aggregator) truncate(t time.Time) time.Time {
	switch a.groupBy {
	case GroupByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, a.location)
	case GroupByHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, a.location)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.location)
	}
}

// step advances a bucket boundary by one unit.
func (a *Aggregator) step(t time.Time) time.Time {
	switch a.groupBy {
	case GroupByMonth:
		return t.AddDate(0, 1, 0)
	case GroupByHour:
		return t.Add(time.Hour)
	default:
		return t.AddDate(0, 0, 1)
	}
}
