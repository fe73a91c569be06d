package rws

import (
	"math"
	"sort"
)

// RoseBucket is one spoke of the wind rose: an azimuth and the mean
// absolute RWS observed there.
type RoseBucket struct {
	AzimuthDeg float64
	MeanAbsRWS float64
	Count      int
}

// WindRose computes mean(|RWS|) per distinct azimuth across the full
// record set, ascending by azimuth. Unlike the per-angle analyses this is
// deliberately a full-sky aggregation: no CNR filter and no elevation
// restriction, and grouping uses the exact azimuth values present rather
// than tolerance buckets. Azimuths are degrees clockwise from north; polar
// placement is the renderer's concern.
func WindRose(records []Record) []RoseBucket {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, r := range records {
		sums[r.AzimuthDeg] += math.Abs(r.RWSMps)
		counts[r.AzimuthDeg]++
	}

	azimuths := make([]float64, 0, len(sums))
	for az := range sums {
		azimuths = append(azimuths, az)
	}
	sort.Float64s(azimuths)

	out := make([]RoseBucket, 0, len(azimuths))
	for _, az := range azimuths {
		out = append(out, RoseBucket{
			AzimuthDeg: az,
			MeanAbsRWS: sums[az] / float64(counts[az]),
			Count:      counts[az],
		})
	}
	return out
}
