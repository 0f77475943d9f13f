// Package overlap computes area-weighted overlap between trail buffers and
// Census block groups and prorates household-income counts by the overlap
// fraction. This is the apportionment core of the pipeline.
package overlap

// Fraction returns the share of a block group covered by a buffer:
// intersection area divided by block-group area, clamped to [0,1] against
// floating-point slop from the geometry engine. ok is false for degenerate
// inputs — a zero-area block group or an empty intersection — which must be
// excluded from the output rather than producing a NaN, Inf, or >1 fraction.
func Fraction(intersectSqm, blockGroupSqm float64) (float64, bool) {
	if blockGroupSqm <= 0 {
		return 0, false
	}
	if intersectSqm <= 0 {
		return 0, false
	}

	f := intersectSqm / blockGroupSqm
	if f > 1 {
		f = 1
	}
	return f, true
}

// Prorate scales a household count by an overlap fraction using integer
// truncation. Truncation is deliberate: per-bracket truncated counts can
// sum to less than the truncated total, and that drift is an accepted
// property of the apportionment, not something to repair.
func Prorate(count int, fraction float64) int {
	if count <= 0 {
		return 0
	}
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return count
	}
	return int(float64(count) * fraction)
}

// ProrateAll applies Prorate to every bracket count.
func ProrateAll(counts []int, fraction float64) []int {
	out := make([]int, len(counts))
	for i, c := range counts {
		out[i] = Prorate(c, fraction)
	}
	return out
}
