package render

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/windprofile.report/internal/fsutil"
	"github.com/banshee-data/windprofile.report/internal/rws"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func newTestPlotter() (*Plotter, *fsutil.MemoryFileSystem) {
	memfs := fsutil.NewMemoryFileSystem()
	return &Plotter{Dir: "out", FS: memfs}, memfs
}

// requirePNG asserts that path exists in memfs and holds a PNG payload.
func requirePNG(t *testing.T, memfs *fsutil.MemoryFileSystem, path string) {
	t.Helper()
	data, err := memfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q): %v", path, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("%s does not start with a PNG header", path)
	}
}

func testGroups() []rws.GroupStat {
	return []rws.GroupStat{
		{Key: 50, Stats: rws.Summary{Count: 3, Mean: 2.0, Median: 2.0, StdDev: 1.0, Min: 1.0, Max: 3.0}},
		{Key: 100, Stats: rws.Summary{Count: 2, Mean: 3.0, Median: 3.0, StdDev: 1.4, Min: 2.0, Max: 4.0}},
		{Key: 150, Stats: rws.Summary{Count: 4, Mean: 2.5, Median: 2.5, StdDev: 0.5, Min: 2.0, Max: 3.0}},
	}
}

func TestDistanceProfile(t *testing.T) {
	pl, memfs := newTestPlotter()

	path, err := pl.DistanceProfile(testGroups(), 10.0, 5.0)
	if err != nil {
		t.Fatalf("DistanceProfile: %v", err)
	}
	if want := "out/rws_distance_az10.0_el5.0.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	requirePNG(t, memfs, path)
}

func TestDistanceProfileEmpty(t *testing.T) {
	pl, _ := newTestPlotter()
	if _, err := pl.DistanceProfile(nil, 10.0, 5.0); err == nil {
		t.Fatal("expected error for empty groups")
	}
}

func TestHistogram(t *testing.T) {
	pl, memfs := newTestPlotter()
	sample := []float64{1, 2, 2, 3, 3, 3, 4, 5}
	s, err := rws.Summarize(sample)
	if err != nil {
		t.Fatal(err)
	}

	path, err := pl.Histogram(sample, s, 10, 10.0, 5.0)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if want := "out/rws_distribution_az10.0_el5.0.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	requirePNG(t, memfs, path)
}

func TestHistogramEmptySample(t *testing.T) {
	pl, _ := newTestPlotter()
	_, err := pl.Histogram(nil, rws.Summary{}, 10, 10.0, 5.0)
	if !errors.Is(err, rws.ErrEmptySample) {
		t.Fatalf("err = %v, want ErrEmptySample", err)
	}
}

func TestQuantileCurve(t *testing.T) {
	pl, memfs := newTestPlotter()

	path, err := pl.QuantileCurve([]float64{1, 2, 3, 4, 5}, []float64{0.1, 0.5, 0.9}, 10.0, 5.0)
	if err != nil {
		t.Fatalf("QuantileCurve: %v", err)
	}
	if want := "out/rws_quantiles_az10.0_el5.0.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	requirePNG(t, memfs, path)
}

func TestCNRComparison(t *testing.T) {
	pl, memfs := newTestPlotter()

	path, err := pl.CNRComparison([]float64{1, 2, 3, 4}, []float64{2, 3}, -20, 10.0, 5.0)
	if err != nil {
		t.Fatalf("CNRComparison: %v", err)
	}
	if want := "out/cnr_filter_comparison_az10.0_el5.0.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	requirePNG(t, memfs, path)
}

func TestCNRComparisonNothingRetained(t *testing.T) {
	// An empty filtered sample still yields a chart of the unfiltered side.
	pl, memfs := newTestPlotter()

	path, err := pl.CNRComparison([]float64{1, 2, 3}, nil, -20, 10.0, 5.0)
	if err != nil {
		t.Fatalf("CNRComparison: %v", err)
	}
	requirePNG(t, memfs, path)
}

func TestAngleComparisons(t *testing.T) {
	buckets := []rws.AngleSample{
		{AngleDeg: 10.0, Sample: []float64{1, 2, 3}},
		{AngleDeg: 20.0, Sample: []float64{4, 5, 6}},
	}

	pl, memfs := newTestPlotter()
	path, err := pl.AzimuthComparison(buckets, 5.0)
	if err != nil {
		t.Fatalf("AzimuthComparison: %v", err)
	}
	if want := "out/azimuth_comparison_el5.0.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	requirePNG(t, memfs, path)

	path, err = pl.ElevationComparison(buckets, 10.0)
	if err != nil {
		t.Fatalf("ElevationComparison: %v", err)
	}
	if want := "out/elevation_comparison_az10.0.png"; path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	requirePNG(t, memfs, path)

	if _, err := pl.AzimuthComparison(nil, 5.0); !errors.Is(err, rws.ErrEmptySample) {
		t.Fatalf("err = %v, want ErrEmptySample", err)
	}
}

func TestMaxBinCount(t *testing.T) {
	tests := []struct {
		name   string
		sample []float64
		bins   int
		want   float64
	}{
		{"uniform", []float64{1, 2, 3, 4}, 4, 1},
		{"peaked", []float64{1, 2, 2, 2, 3}, 3, 3},
		{"constant_sample", []float64{5, 5, 5}, 10, 3},
		{"single_value", []float64{2}, 5, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := maxBinCount(tc.sample, tc.bins); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("maxBinCount(%v, %d) = %v, want %v", tc.sample, tc.bins, got, tc.want)
			}
		})
	}
}
