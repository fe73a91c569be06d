package rws

// AngleSample is one bucket of a cross-angle comparison: the bucket's
// representative angle, the raw RWS sample (retained for distribution
// rendering), and its summary.
type AngleSample struct {
	AngleDeg float64
	Sample   []float64
	Stats    Summary
}

// CompareAzimuths holds elevation fixed (within tolDeg) and partitions the
// matching records into azimuth buckets, ascending by bucket angle. Returns
// nil when no record matches the elevation; callers report that as a
// warning, not a failure.
func CompareAzimuths(records []Record, elevationDeg, tolDeg float64) []AngleSample {
	return compareBy(SelectElevation(records, elevationDeg, tolDeg), FieldAzimuth, tolDeg)
}

// CompareElevations holds azimuth fixed (within tolDeg) and partitions the
// matching records into elevation buckets, ascending.
func CompareElevations(records []Record, azimuthDeg, tolDeg float64) []AngleSample {
	return compareBy(SelectAzimuth(records, azimuthDeg, tolDeg), FieldElevation, tolDeg)
}

// compareBy partitions records across tolerance-grouped buckets of the
// varying dimension. Every record lands in exactly one bucket (its nearest
// representative), so per-bucket counts sum to the input count.
func compareBy(records []Record, varying FieldFunc, tolDeg float64) []AngleSample {
	if len(records) == 0 {
		return nil
	}

	buckets := AngleBuckets(DistinctValues(records, varying), tolDeg)
	samples := make([][]float64, len(buckets))
	for _, r := range records {
		i := nearestBucket(buckets, varying(r))
		samples[i] = append(samples[i], r.RWSMps)
	}

	out := make([]AngleSample, 0, len(buckets))
	for i, b := range buckets {
		if len(samples[i]) == 0 {
			continue
		}
		s, err := Summarize(samples[i])
		if err != nil {
			continue
		}
		out = append(out, AngleSample{AngleDeg: b, Sample: samples[i], Stats: s})
	}
	return out
}
