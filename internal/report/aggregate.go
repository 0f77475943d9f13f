// Package report reshapes prorated overlap records into a per-bracket
// income distribution and renders it as a bar chart.
package report

import (
	"sort"

	"github.com/sells-group/trailshed/internal/income"
	"github.com/sells-group/trailshed/internal/overlap"
)

// BracketCount is one melted (block group, bracket) observation.
type BracketCount struct {
	GEOID string
	Label string
	Count int
}

// Bar is one chart bar: a bracket label and its summed prorated count.
type Bar struct {
	Label string
	Lower int // income lower bound, the sort key
	Count int
}

// Melt reshapes each record's bracket columns into long-form
// (geoid, label, count) triples. Output length is len(records) × 16.
func Melt(records []overlap.Record) []BracketCount {
	out := make([]BracketCount, 0, len(records)*len(income.Brackets))
	for _, rec := range records {
		for i, b := range income.Brackets {
			var c int
			if i < len(rec.BracketCounts) {
				c = rec.BracketCounts[i]
			}
			out = append(out, BracketCount{
				GEOID: rec.GEOID,
				Label: b.Label,
				Count: c,
			})
		}
	}
	return out
}

// SumByBracket sums melted counts per bracket label and returns bars
// sorted ascending by each bracket's income lower bound. Summation is
// order-independent, so no input ordering is assumed.
func SumByBracket(melted []BracketCount) ([]Bar, error) {
	sums := make(map[string]int)
	for _, bc := range melted {
		sums[bc.Label] += bc.Count
	}

	bars := make([]Bar, 0, len(sums))
	for label, count := range sums {
		lower, err := income.ParseLabel(label)
		if err != nil {
			return nil, err
		}
		bars = append(bars, Bar{Label: label, Lower: lower, Count: count})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Lower < bars[j].Lower })
	return bars, nil
}

// Distribution melts and sums in one step.
func Distribution(records []overlap.Record) ([]Bar, error) {
	return SumByBracket(Melt(records))
}
