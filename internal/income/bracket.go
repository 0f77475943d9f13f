// Package income ingests household-income-by-bracket tables keyed by
// Census block-group GEOID.
package income

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Bracket describes one household-income bracket column from the ACS
// B19001 table. Brackets are mutually exclusive and collectively
// exhaustive; their counts sum to the total subject to Census rounding.
type Bracket struct {
	Column string // DB column name in trail.income / trail.overlaps
	Label  string // presentation label, e.g. "10-15k"
	Lower  int    // income lower bound in dollars, the ascending sort key
}

// Brackets lists the 16 B19001 brackets in ascending income order.
var Brackets = []Bracket{
	{Column: "inc_under_10k", Label: "under 10k", Lower: 0},
	{Column: "inc_10_15k", Label: "10-15k", Lower: 10000},
	{Column: "inc_15_20k", Label: "15-20k", Lower: 15000},
	{Column: "inc_20_25k", Label: "20-25k", Lower: 20000},
	{Column: "inc_25_30k", Label: "25-30k", Lower: 25000},
	{Column: "inc_30_35k", Label: "30-35k", Lower: 30000},
	{Column: "inc_35_40k", Label: "35-40k", Lower: 35000},
	{Column: "inc_40_45k", Label: "40-45k", Lower: 40000},
	{Column: "inc_45_50k", Label: "45-50k", Lower: 45000},
	{Column: "inc_50_60k", Label: "50-60k", Lower: 50000},
	{Column: "inc_60_75k", Label: "60-75k", Lower: 60000},
	{Column: "inc_75_100k", Label: "75-100k", Lower: 75000},
	{Column: "inc_100_125k", Label: "100-125k", Lower: 100000},
	{Column: "inc_125_150k", Label: "125-150k", Lower: 125000},
	{Column: "inc_150_200k", Label: "150-200k", Lower: 150000},
	{Column: "inc_200k_plus", Label: "200k+", Lower: 200000},
}

// Columns returns the bracket DB column names in ascending income order.
func Columns() []string {
	cols := make([]string, len(Brackets))
	for i, b := range Brackets {
		cols[i] = b.Column
	}
	return cols
}

// ParseLabel extracts the income lower bound from a bracket label such as
// "10-15k", "under 10k", or "200k+". Used as the ascending sort key when
// labels arrive from outside the fixed bracket set.
func ParseLabel(label string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return 0, eris.New("income: empty bracket label")
	}

	if strings.HasPrefix(s, "under") || strings.HasPrefix(s, "<") {
		return 0, nil
	}

	// "200k+" and "10-15k" both start with the lower bound.
	numEnd := 0
	for numEnd < len(s) && s[numEnd] >= '0' && s[numEnd] <= '9' {
		numEnd++
	}
	if numEnd == 0 {
		return 0, eris.Errorf("income: unparseable bracket label %q", label)
	}

	n, err := strconv.Atoi(s[:numEnd])
	if err != nil {
		return 0, eris.Wrapf(err, "income: parse bracket label %q", label)
	}

	// A trailing k applies to the leading number whether it is written
	// "10-15k" or "10k-15k".
	if strings.Contains(s, "k") {
		n *= 1000
	}
	return n, nil
}
