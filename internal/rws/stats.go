package rws

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics over one numeric sample. It is a
// pure function of the sample with no identity beyond the call producing it.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64 // sample standard deviation (n-1)
	Min    float64
	Max    float64
}

// Summarize computes descriptive statistics over sample. A zero-length
// sample returns ErrEmptySample rather than a NaN-filled summary.
func Summarize(sample []float64) (Summary, error) {
	if len(sample) == 0 {
		return Summary{}, ErrEmptySample
	}

	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(sample),
		Mean:   stat.Mean(sample, nil),
		Median: quantileSorted(sorted, 0.5),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
	if len(sample) > 1 {
		s.StdDev = stat.StdDev(sample, nil)
	}
	return s, nil
}

// Quantile returns the q-th quantile of sample, 0 <= q <= 1, using linear
// interpolation between order statistics: for a sorted sample of size n the
// value is read at position q*(n-1), interpolating between the surrounding
// indexes. Floor-indexed percentiles are fine for dashboard summaries but
// not here, where exact quantile semantics are part of the contract.
func Quantile(sample []float64, q float64) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile %v out of range [0, 1]", q)
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q), nil
}

func quantileSorted(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// GroupStat pairs a grouping key with the summary of its members.
type GroupStat struct {
	Key   float64
	Stats Summary
}

// SummarizeBy groups records by exact equality of key(r) and summarizes
// value(r) within each group. Group keys are sorted ascending for
// deterministic iteration. Exact equality is intentional: the usual keys
// (range gates, scan angles) are quantized to small discrete sets.
func SummarizeBy(records []Record, value, key FieldFunc) []GroupStat {
	groups := make(map[float64][]float64)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], value(r))
	}

	keys := make([]float64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := make([]GroupStat, 0, len(keys))
	for _, k := range keys {
		s, err := Summarize(groups[k])
		if err != nil {
			continue // unreachable: every group has at least one member
		}
		out = append(out, GroupStat{Key: k, Stats: s})
	}
	return out
}

// SummarizeRWSByDistance summarizes the RWS sample of each range gate,
// gates ascending.
func SummarizeRWSByDistance(records []Record) []GroupStat {
	return SummarizeBy(records, FieldRWS, FieldDistance)
}
