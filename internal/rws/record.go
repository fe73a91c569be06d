// Package rws implements the statistical core for radial wind speed (RWS)
// analysis of Doppler wind-profiling lidar returns. It provides the record
// model and CSV loader, CNR quality filtering, tolerance-based angle
// selection, descriptive aggregation, cross-angle comparison, and wind-rose
// aggregation. All operations are pure functions over an immutable record
// slice; rendering and pipeline orchestration live elsewhere.
package rws

import "time"

// Record is one lidar detection cell at one timestamp.
type Record struct {
	Timestamp    time.Time
	AzimuthDeg   float64
	ElevationDeg float64
	DistanceM    float64
	RWSMps       float64 // positive = away from instrument
	CNRDb        float64 // signal quality proxy
}

// FieldFunc selects a numeric field from a record, for use as an
// aggregation value or grouping key.
type FieldFunc func(Record) float64

// Field selectors for the numeric record columns.
var (
	FieldAzimuth   FieldFunc = func(r Record) float64 { return r.AzimuthDeg }
	FieldElevation FieldFunc = func(r Record) float64 { return r.ElevationDeg }
	FieldDistance  FieldFunc = func(r Record) float64 { return r.DistanceM }
	FieldRWS       FieldFunc = func(r Record) float64 { return r.RWSMps }
	FieldCNR       FieldFunc = func(r Record) float64 { return r.CNRDb }
)

// Sample extracts field values from records in input order.
func Sample(records []Record, field FieldFunc) []float64 {
	if len(records) == 0 {
		return nil
	}
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = field(r)
	}
	return out
}
