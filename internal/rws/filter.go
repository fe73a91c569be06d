package rws

// FilterByCNR returns the records whose carrier-to-noise ratio is at or
// above thresholdDb, preserving input order. The input slice is never
// mutated. Idempotent, and monotonic in the threshold: raising it never
// increases the retained count.
func FilterByCNR(records []Record, thresholdDb float64) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.CNRDb >= thresholdDb {
			out = append(out, r)
		}
	}
	return out
}

// Retention returns the retained/total ratio in percent, or 100 when the
// input was empty. Observability only, not part of the filter contract.
func Retention(total, retained int) float64 {
	if total == 0 {
		return 100
	}
	return float64(retained) / float64(total) * 100
}
