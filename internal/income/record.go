package income

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Record is one block group's household-income row. Bracket counts are in
// ascending income order, matching Brackets.
type Record struct {
	GEOID           string `csv:"geoid"`
	HouseholdsTotal int    `csv:"households_total"`
	Under10k        int    `csv:"inc_under_10k"`
	From10to15k     int    `csv:"inc_10_15k"`
	From15to20k     int    `csv:"inc_15_20k"`
	From20to25k     int    `csv:"inc_20_25k"`
	From25to30k     int    `csv:"inc_25_30k"`
	From30to35k     int    `csv:"inc_30_35k"`
	From35to40k     int    `csv:"inc_35_40k"`
	From40to45k     int    `csv:"inc_40_45k"`
	From45to50k     int    `csv:"inc_45_50k"`
	From50to60k     int    `csv:"inc_50_60k"`
	From60to75k     int    `csv:"inc_60_75k"`
	From75to100k    int    `csv:"inc_75_100k"`
	From100to125k   int    `csv:"inc_100_125k"`
	From125to150k   int    `csv:"inc_125_150k"`
	From150to200k   int    `csv:"inc_150_200k"`
	Over200k        int    `csv:"inc_200k_plus"`
}

// BracketCounts returns the 16 bracket counts in ascending income order.
func (r *Record) BracketCounts() []int {
	return []int{
		r.Under10k, r.From10to15k, r.From15to20k, r.From20to25k,
		r.From25to30k, r.From30to35k, r.From35to40k, r.From40to45k,
		r.From45to50k, r.From50to60k, r.From60to75k, r.From75to100k,
		r.From100to125k, r.From125to150k, r.From150to200k, r.Over200k,
	}
}

// Validate checks structural invariants on a record. A bracket sum that
// disagrees with the total by more than tolerance is logged, not fatal:
// Census rounding leaves the published counts slightly off.
func (r *Record) Validate(tolerance int) error {
	if r.GEOID == "" {
		return eris.New("income: record missing geoid")
	}
	if r.HouseholdsTotal < 0 {
		return eris.Errorf("income: %s: negative household total %d", r.GEOID, r.HouseholdsTotal)
	}

	var sum int
	for i, c := range r.BracketCounts() {
		if c < 0 {
			return eris.Errorf("income: %s: negative count in bracket %s", r.GEOID, Brackets[i].Label)
		}
		sum += c
	}

	drift := sum - r.HouseholdsTotal
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		zap.L().Warn("income: bracket sum disagrees with total",
			zap.String("geoid", r.GEOID),
			zap.Int("total", r.HouseholdsTotal),
			zap.Int("bracket_sum", sum),
		)
	}
	return nil
}
