package rws

import (
	"reflect"
	"testing"
)

func TestSelectAzimuthScenario(t *testing.T) {
	records := []Record{
		makeRecord(10.00, 5, 50, 1.0, -10),
		makeRecord(10.05, 5, 50, 2.0, -10),
		makeRecord(20.00, 5, 50, 3.0, -10),
	}

	selected := SelectAzimuth(records, 10.0, 0.1)
	if len(selected) != 2 {
		t.Fatalf("selected %d records, want 2", len(selected))
	}
	if selected[0].RWSMps != 1.0 || selected[1].RWSMps != 2.0 {
		t.Errorf("wrong records selected: %+v", selected)
	}
}

func TestSelectAzimuthOpenInterval(t *testing.T) {
	records := []Record{
		makeRecord(10.0, 5, 50, 1.0, -10),
		makeRecord(10.1, 5, 50, 2.0, -10),
	}

	selected := SelectAzimuth(records, 10.0, 0.1)
	if len(selected) != 1 {
		t.Fatalf("selected %d records, want 1", len(selected))
	}
	// Exact match is included, offset equal to the tolerance is not.
	if selected[0].AzimuthDeg != 10.0 {
		t.Errorf("selected azimuth %f, want 10.0", selected[0].AzimuthDeg)
	}
}

func TestSelectAngleAppliesBothConstraints(t *testing.T) {
	records := []Record{
		makeRecord(10.0, 5.0, 50, 1.0, -10),
		makeRecord(10.0, 6.0, 50, 2.0, -10),
		makeRecord(11.0, 5.0, 50, 3.0, -10),
	}

	selected := SelectAngle(records, 10.0, 5.0, 0.1)
	if len(selected) != 1 {
		t.Fatalf("selected %d records, want 1", len(selected))
	}
	if selected[0].RWSMps != 1.0 {
		t.Errorf("wrong record selected: %+v", selected[0])
	}
}

func TestSelectSingleDimensionOnly(t *testing.T) {
	// Selecting by azimuth alone ignores elevation entirely.
	records := []Record{
		makeRecord(10.0, 5.0, 50, 1.0, -10),
		makeRecord(10.0, 85.0, 50, 2.0, -10),
	}
	if got := len(SelectAzimuth(records, 10.0, 0.1)); got != 2 {
		t.Errorf("selected %d records, want 2", got)
	}
}

func TestSelectEmptyInput(t *testing.T) {
	if got := SelectAzimuth(nil, 10.0, 0.1); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if got := SelectAngle(nil, 10.0, 5.0, 0.1); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestSelectNoMatchIsEmptyNotError(t *testing.T) {
	records := []Record{makeRecord(10.0, 5.0, 50, 1.0, -10)}
	if got := SelectAzimuth(records, 200.0, 0.1); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestDistinctValues(t *testing.T) {
	records := []Record{
		makeRecord(30, 5, 50, 1.0, -10),
		makeRecord(10, 5, 100, 2.0, -10),
		makeRecord(30, 5, 50, 3.0, -10),
		makeRecord(20, 5, 150, 4.0, -10),
	}

	got := DistinctValues(records, FieldAzimuth)
	want := []float64{10, 20, 30}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctValues(azimuth) = %v, want %v", got, want)
	}

	got = DistinctValues(records, FieldDistance)
	want = []float64{50, 100, 150}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctValues(distance) = %v, want %v", got, want)
	}
}

func TestAngleBuckets(t *testing.T) {
	testCases := []struct {
		name     string
		values   []float64
		tol      float64
		expected []float64
	}{
		{"empty", nil, 0.1, nil},
		{"well_separated", []float64{10, 20, 30}, 0.1, []float64{10, 20, 30}},
		{"jitter_folded", []float64{10.00, 10.05, 20.00}, 0.1, []float64{10.00, 20.00}},
		{"boundary_gap_kept", []float64{10.0, 10.1}, 0.1, []float64{10.0, 10.1}},
		{"unsorted_input", []float64{20, 10.05, 10}, 0.1, []float64{10, 20}},
		{"single", []float64{5.5}, 0.1, []float64{5.5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AngleBuckets(tc.values, tc.tol)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("AngleBuckets(%v) = %v, want %v", tc.values, got, tc.expected)
			}
		})
	}
}

func TestNearestBucket(t *testing.T) {
	buckets := []float64{10, 20, 30}
	testCases := []struct {
		v        float64
		expected int
	}{
		{9.0, 0},
		{10.04, 0},
		{14.9, 0},
		{15.1, 1},
		{29.99, 2},
		{35.0, 2},
	}
	for _, tc := range testCases {
		if got := nearestBucket(buckets, tc.v); got != tc.expected {
			t.Errorf("nearestBucket(%v) = %d, want %d", tc.v, got, tc.expected)
		}
	}
}
