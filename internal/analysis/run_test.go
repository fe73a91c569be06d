package analysis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/windprofile.report/internal/config"
	"github.com/banshee-data/windprofile.report/internal/fsutil"
	"github.com/banshee-data/windprofile.report/internal/monitoring"
	"github.com/banshee-data/windprofile.report/internal/rws"
	"github.com/banshee-data/windprofile.report/internal/timeutil"
)

var fixedTime = time.Date(2025, 10, 5, 12, 0, 0, 0, time.UTC)

// fakeCharts records renderer calls without producing artifacts.
type fakeCharts struct {
	distanceGroups   []rws.GroupStat
	histogramSamples int
	cnrBefore        int
	cnrAfter         int
	azimuthBuckets   int
	elevationBuckets int
}

func (f *fakeCharts) DistanceProfile(groups []rws.GroupStat, az, el float64) (string, error) {
	f.distanceGroups = groups
	return "distance.png", nil
}

func (f *fakeCharts) Histogram(sample []float64, s rws.Summary, bins int, az, el float64) (string, error) {
	f.histogramSamples = len(sample)
	return "hist.png", nil
}

func (f *fakeCharts) QuantileCurve(sample []float64, refs []float64, az, el float64) (string, error) {
	return "quantiles.png", nil
}

func (f *fakeCharts) CNRComparison(before, after []float64, threshold, az, el float64) (string, error) {
	f.cnrBefore = len(before)
	f.cnrAfter = len(after)
	return "cnr.png", nil
}

func (f *fakeCharts) AzimuthComparison(buckets []rws.AngleSample, el float64) (string, error) {
	f.azimuthBuckets = len(buckets)
	return "az_compare.png", nil
}

func (f *fakeCharts) ElevationComparison(buckets []rws.AngleSample, az float64) (string, error) {
	f.elevationBuckets = len(buckets)
	return "el_compare.png", nil
}

type fakeMaps struct {
	azHeatmap   *rws.Grid
	elHeatmap   *rws.Grid
	roseBuckets []rws.RoseBucket
	roseRecords int
}

func (f *fakeMaps) AzimuthDistanceHeatmap(grid rws.Grid, el float64) (string, error) {
	f.azHeatmap = &grid
	return "heat_az.html", nil
}

func (f *fakeMaps) ElevationDistanceHeatmap(grid rws.Grid, az float64) (string, error) {
	f.elHeatmap = &grid
	return "heat_el.html", nil
}

func (f *fakeMaps) WindRose(buckets []rws.RoseBucket) (string, error) {
	f.roseBuckets = buckets
	for _, b := range buckets {
		f.roseRecords += b.Count
	}
	return "wind_rose.html", nil
}

const fixtureCSV = `Timestamp,Azimuth(deg),Elevation(deg),Distance(m),RWS(m/s),CNR(dB)
2025-10-05 08:00:00,10.0,5.0,50,1.0,-10
2025-10-05 08:00:00,10.0,5.0,100,2.0,-12
2025-10-05 08:00:01,10.0,5.0,50,3.0,-15
2025-10-05 08:00:01,10.0,5.0,100,4.0,-35
2025-10-05 08:00:02,20.0,5.0,50,-5.0,-10
2025-10-05 08:00:02,20.0,5.0,100,-6.0,-18
2025-10-05 08:00:03,20.0,8.0,50,7.0,-11
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lidar.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestRunner(t *testing.T, cfg *config.AnalysisConfig) (*Runner, *fakeCharts, *fakeMaps, *fsutil.MemoryFileSystem) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.Logf = original })

	charts := &fakeCharts{}
	maps := &fakeMaps{}
	memfs := fsutil.NewMemoryFileSystem()
	runner := &Runner{
		Config: cfg,
		Plots:  charts,
		Maps:   maps,
		FS:     memfs,
		Clock:  timeutil.FixedClock{T: fixedTime},
	}
	return runner, charts, maps, memfs
}

func TestRunFullPipeline(t *testing.T) {
	dir := "out"
	cfg := &config.AnalysisConfig{OutputDir: &dir}
	runner, charts, maps, memfs := newTestRunner(t, cfg)

	res, err := runner.Run(writeFixture(t, fixtureCSV))
	require.NoError(t, err)

	assert.Equal(t, 7, res.TotalRecords)
	assert.Equal(t, 6, res.RetainedRecords) // one record below -20 dB
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, fixedTime, res.GeneratedAt)

	// Every step succeeds on this fixture.
	require.Len(t, res.Steps, 9)
	for _, s := range res.Steps {
		assert.Equal(t, StepOK, s.Status, "step %s: %s", s.Name, s.Reason)
	}

	// Single-angle stats cover the first azimuth/elevation bucket (10.0, 5.0).
	require.NotNil(t, res.AngleStats)
	assert.Equal(t, 10.0, res.AngleStats.AzimuthDeg)
	assert.Equal(t, 5.0, res.AngleStats.ElevationDeg)
	assert.Equal(t, 3, res.AngleStats.Stats.Count)
	assert.Contains(t, res.AngleStats.Quantiles, "p50")

	// Two range gates at the selected angle.
	assert.Len(t, charts.distanceGroups, 2)
	assert.Equal(t, 3, charts.histogramSamples)

	// CNR comparison starts from the unfiltered set.
	assert.Equal(t, 4, charts.cnrBefore)
	assert.Equal(t, 3, charts.cnrAfter)

	// Azimuth comparison at el=5.0 sees both azimuths.
	assert.Equal(t, 2, charts.azimuthBuckets)
	assert.Equal(t, 1, charts.elevationBuckets)

	require.NotNil(t, maps.azHeatmap)
	assert.Len(t, maps.azHeatmap.AngleDeg, 2)

	// Wind rose spans all 7 records, including the filtered one.
	assert.Equal(t, 7, maps.roseRecords)

	// Manifest and distance CSV land in the output directory.
	assert.True(t, memfs.Exists(filepath.Join(dir, ResultFileName)))
	assert.True(t, memfs.Exists(filepath.Join(dir, "distance_stats_az10.0_el5.0.csv")))

	data, err := memfs.ReadFile(filepath.Join(dir, ResultFileName))
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, res.RunID, decoded.RunID)
}

func TestRunOverview(t *testing.T) {
	dir := "out"
	cfg := &config.AnalysisConfig{OutputDir: &dir}
	runner, _, _, _ := newTestRunner(t, cfg)

	res, err := runner.Run(writeFixture(t, fixtureCSV))
	require.NoError(t, err)

	o := res.Overview
	assert.Equal(t, 7, o.TotalRecords)
	assert.Equal(t, 4, o.UniqueTimestamps)
	assert.Equal(t, 2, o.UniqueAzimuths)
	assert.Equal(t, 2, o.UniqueElevations)
	assert.Equal(t, 2, o.DistanceGates)
	assert.Equal(t, 3, o.AngleCombinations)
	assert.Equal(t, -6.0, o.RWSMinMps)
	assert.Equal(t, 7.0, o.RWSMaxMps)
}

func TestRunLoadFailureIsFatal(t *testing.T) {
	dir := "out"
	cfg := &config.AnalysisConfig{OutputDir: &dir}
	runner, _, _, _ := newTestRunner(t, cfg)

	_, err := runner.Run(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	var loadErr *rws.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestRunAllRecordsFiltered(t *testing.T) {
	// Everything falls below the CNR threshold: per-angle analyses are
	// skipped but the run completes and the wind rose still renders.
	input := `Timestamp,Azimuth(deg),Elevation(deg),Distance(m),RWS(m/s),CNR(dB)
2025-10-05 08:00:00,10.0,5.0,50,1.0,-40
2025-10-05 08:00:01,20.0,5.0,50,2.0,-45
`
	dir := "out"
	cfg := &config.AnalysisConfig{OutputDir: &dir}
	runner, _, maps, memfs := newTestRunner(t, cfg)

	res, err := runner.Run(writeFixture(t, input))
	require.NoError(t, err)

	assert.Equal(t, 0, res.RetainedRecords)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "wind_rose", res.Steps[0].Name)
	assert.Equal(t, StepOK, res.Steps[0].Status)
	assert.Equal(t, 2, maps.roseRecords)
	assert.True(t, memfs.Exists(filepath.Join(dir, ResultFileName)))
}

func TestRunFilterDisabled(t *testing.T) {
	dir := "out"
	off := false
	cfg := &config.AnalysisConfig{OutputDir: &dir, ApplyCNRFilter: &off}
	runner, _, _, _ := newTestRunner(t, cfg)

	res, err := runner.Run(writeFixture(t, fixtureCSV))
	require.NoError(t, err)
	assert.Equal(t, res.TotalRecords, res.RetainedRecords)
	assert.False(t, res.CNRFilterApplied)
}
