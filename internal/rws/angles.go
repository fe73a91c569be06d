package rws

import (
	"math"
	"sort"
)

// DefaultAngleToleranceDeg is the maximum floating-point deviation for two
// angles to be treated as the same logical pointing direction. Matching is
// strict (open interval): a difference equal to the tolerance is excluded.
const DefaultAngleToleranceDeg = 0.1

// SelectAzimuth returns the records whose azimuth lies strictly within
// tolDeg of azimuthDeg. An empty result is not an error.
func SelectAzimuth(records []Record, azimuthDeg, tolDeg float64) []Record {
	return selectBy(records, FieldAzimuth, azimuthDeg, tolDeg)
}

// SelectElevation returns the records whose elevation lies strictly within
// tolDeg of elevationDeg.
func SelectElevation(records []Record, elevationDeg, tolDeg float64) []Record {
	return selectBy(records, FieldElevation, elevationDeg, tolDeg)
}

// SelectAngle applies both azimuth and elevation constraints (AND).
func SelectAngle(records []Record, azimuthDeg, elevationDeg, tolDeg float64) []Record {
	return SelectElevation(SelectAzimuth(records, azimuthDeg, tolDeg), elevationDeg, tolDeg)
}

func selectBy(records []Record, field FieldFunc, target, tolDeg float64) []Record {
	var out []Record
	for _, r := range records {
		if math.Abs(field(r)-target) < tolDeg {
			out = append(out, r)
		}
	}
	return out
}

// DistinctValues returns the sorted distinct values of field across records.
// Distance gates and scan-pattern angles form small discrete sets, so exact
// float equality is the intended grouping here.
func DistinctValues(records []Record, field FieldFunc) []float64 {
	seen := make(map[float64]struct{})
	for _, r := range records {
		seen[field(r)] = struct{}{}
	}
	out := make([]float64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// AngleBuckets folds sorted distinct angle values whose gap is below tolDeg
// into a single bucket, returning one representative (the lowest member)
// per bucket, ascending. Scan-pattern jitter keeps true directions well
// separated, so consecutive near-equal values belong together.
func AngleBuckets(values []float64, tolDeg float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	buckets := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v-buckets[len(buckets)-1] >= tolDeg {
			buckets = append(buckets, v)
		}
	}
	return buckets
}

// nearestBucket returns the index of the bucket representative closest to v.
// Buckets must be sorted ascending and non-empty.
func nearestBucket(buckets []float64, v float64) int {
	i := sort.SearchFloat64s(buckets, v)
	if i == 0 {
		return 0
	}
	if i == len(buckets) {
		return len(buckets) - 1
	}
	if v-buckets[i-1] <= buckets[i]-v {
		return i - 1
	}
	return i
}
