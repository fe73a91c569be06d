// Package analysis drives the RWS pipeline: load, overview, quality
// filter, per-angle analyses, cross-angle comparisons, wind rose, and
// result export. Loader failures are fatal; every per-angle step is
// isolated, so one empty selection or render failure skips that step and
// the run continues.
package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/windprofile.report/internal/config"
	"github.com/banshee-data/windprofile.report/internal/fsutil"
	"github.com/banshee-data/windprofile.report/internal/monitoring"
	"github.com/banshee-data/windprofile.report/internal/render"
	"github.com/banshee-data/windprofile.report/internal/rws"
	"github.com/banshee-data/windprofile.report/internal/timeutil"
)

// ChartRenderer produces the per-angle and comparison chart artifacts.
// Implementations return the artifact path they wrote.
type ChartRenderer interface {
	DistanceProfile(groups []rws.GroupStat, azimuthDeg, elevationDeg float64) (string, error)
	Histogram(sample []float64, s rws.Summary, bins int, azimuthDeg, elevationDeg float64) (string, error)
	QuantileCurve(sample []float64, refs []float64, azimuthDeg, elevationDeg float64) (string, error)
	CNRComparison(before, after []float64, thresholdDb, azimuthDeg, elevationDeg float64) (string, error)
	AzimuthComparison(buckets []rws.AngleSample, elevationDeg float64) (string, error)
	ElevationComparison(buckets []rws.AngleSample, azimuthDeg float64) (string, error)
}

// MapRenderer produces the heatmap and wind-rose artifacts.
type MapRenderer interface {
	AzimuthDistanceHeatmap(grid rws.Grid, elevationDeg float64) (string, error)
	ElevationDistanceHeatmap(grid rws.Grid, azimuthDeg float64) (string, error)
	WindRose(buckets []rws.RoseBucket) (string, error)
}

// Runner owns one pipeline run.
type Runner struct {
	Config *config.AnalysisConfig
	Plots  ChartRenderer
	Maps   MapRenderer
	FS     fsutil.FileSystem
	Clock  timeutil.Clock
}

// New wires a Runner with the default renderers targeting the configured
// output directory on the real filesystem.
func New(cfg *config.AnalysisConfig) *Runner {
	dir := cfg.GetOutputDir()
	return &Runner{
		Config: cfg,
		Plots:  render.NewPlotter(dir),
		Maps:   render.NewCharts(dir),
		FS:     fsutil.OSFileSystem{},
		Clock:  timeutil.RealClock{},
	}
}

func (r *Runner) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}

// Run executes the full pipeline over the input file and returns the run
// manifest. The only fatal errors are load failures and an unwritable
// output directory.
func (r *Runner) Run(inputPath string) (*Result, error) {
	cfg := r.Config
	outDir := cfg.GetOutputDir()
	tol := cfg.GetAngleToleranceDeg()
	threshold := cfg.GetCNRThresholdDb()

	records, err := rws.Load(inputPath)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &rws.LoadError{Path: inputPath, Err: fmt.Errorf("no data rows")}
	}
	monitoring.Logf("loaded %d records from %s (%s to %s)", len(records), inputPath,
		records[0].Timestamp.Format(time.RFC3339), records[len(records)-1].Timestamp.Format(time.RFC3339))

	if err := r.FS.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", outDir, err)
	}

	res := &Result{
		RunID:             uuid.NewString(),
		InputFile:         inputPath,
		GeneratedAt:       r.now().UTC(),
		CNRThresholdDb:    threshold,
		CNRFilterApplied:  cfg.GetApplyCNRFilter(),
		AngleToleranceDeg: tol,
		TotalRecords:      len(records),
		Overview:          buildOverview(records),
	}
	logOverview(res.Overview)

	filtered := records
	if cfg.GetApplyCNRFilter() {
		filtered = rws.FilterByCNR(records, threshold)
		monitoring.Logf("CNR filter at %.0f dB retained %d/%d records (%.2f%%)",
			threshold, len(filtered), len(records), rws.Retention(len(records), len(filtered)))
	}
	res.RetainedRecords = len(filtered)
	res.RetentionPct = rws.Retention(len(records), len(filtered))

	azimuths := rws.AngleBuckets(rws.DistinctValues(filtered, rws.FieldAzimuth), tol)
	elevations := rws.AngleBuckets(rws.DistinctValues(filtered, rws.FieldElevation), tol)
	monitoring.Logf("found %d azimuth and %d elevation buckets", len(azimuths), len(elevations))

	if len(azimuths) > 0 && len(elevations) > 0 {
		az, el := azimuths[0], elevations[0]

		r.step(res, "single_angle_stats", func() ([]string, error) {
			return nil, r.singleAngleStats(res, filtered, az, el)
		})
		r.step(res, "distance_profile", func() ([]string, error) {
			return r.distanceProfile(filtered, az, el)
		})
		r.step(res, "distribution", func() ([]string, error) {
			return r.distribution(filtered, az, el)
		})
		r.step(res, "cnr_comparison", func() ([]string, error) {
			return r.cnrComparison(records, az, el)
		})

		r.step(res, "azimuth_comparison", func() ([]string, error) {
			buckets := rws.CompareAzimuths(filtered, el, tol)
			if len(buckets) == 0 {
				return nil, fmt.Errorf("no records at elevation %.1f°", el)
			}
			path, err := r.Plots.AzimuthComparison(buckets, el)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		})
		r.step(res, "elevation_comparison", func() ([]string, error) {
			buckets := rws.CompareElevations(filtered, az, tol)
			if len(buckets) == 0 {
				return nil, fmt.Errorf("no records at azimuth %.1f°", az)
			}
			path, err := r.Plots.ElevationComparison(buckets, az)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		})

		r.step(res, "heatmap_azimuth_distance", func() ([]string, error) {
			subset := rws.SelectElevation(filtered, el, tol)
			if len(subset) == 0 {
				return nil, fmt.Errorf("no records at elevation %.1f°", el)
			}
			path, err := r.Maps.AzimuthDistanceHeatmap(rws.PivotMeanRWS(subset, rws.FieldAzimuth), el)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		})
		r.step(res, "heatmap_elevation_distance", func() ([]string, error) {
			subset := rws.SelectAzimuth(filtered, az, tol)
			if len(subset) == 0 {
				return nil, fmt.Errorf("no records at azimuth %.1f°", az)
			}
			path, err := r.Maps.ElevationDistanceHeatmap(rws.PivotMeanRWS(subset, rws.FieldElevation), az)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		})
	} else {
		monitoring.Logf("warning: no angle buckets after filtering, skipping per-angle analyses")
	}

	// Full-sky by design: the rose spans the unfiltered input, all
	// elevations, grouped by the exact azimuth values present.
	r.step(res, "wind_rose", func() ([]string, error) {
		path, err := r.Maps.WindRose(rws.WindRose(records))
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	})

	manifest, err := writeManifest(r.FS, outDir, res)
	if err != nil {
		return res, err
	}
	monitoring.Logf("run %s complete: %d steps, manifest %s", res.RunID, len(res.Steps), manifest)
	return res, nil
}

// step runs one analysis step, isolating failures as skips.
func (r *Runner) step(res *Result, name string, fn func() ([]string, error)) {
	artifacts, err := fn()
	if err != nil {
		monitoring.Logf("warning: %s skipped: %v", name, err)
		res.Steps = append(res.Steps, StepResult{Name: name, Status: StepSkipped, Reason: err.Error()})
		return
	}
	for _, a := range artifacts {
		monitoring.Logf("%s: wrote %s", name, a)
	}
	res.Steps = append(res.Steps, StepResult{Name: name, Status: StepOK, Artifacts: artifacts})
}

func (r *Runner) singleAngleStats(res *Result, records []rws.Record, az, el float64) error {
	tol := r.Config.GetAngleToleranceDeg()
	selected := rws.SelectAngle(records, az, el, tol)
	sample := rws.Sample(selected, rws.FieldRWS)

	s, err := rws.Summarize(sample)
	if err != nil {
		return fmt.Errorf("angle (%.1f°, %.1f°): %w", az, el, err)
	}

	quantiles := make(map[string]float64, len(r.Config.GetQuantiles()))
	for _, q := range r.Config.GetQuantiles() {
		v, err := rws.Quantile(sample, q)
		if err != nil {
			return err
		}
		quantiles[fmt.Sprintf("p%02.0f", q*100)] = v
	}

	res.AngleStats = &AngleStats{AzimuthDeg: az, ElevationDeg: el, Stats: s, Quantiles: quantiles}
	monitoring.Logf("angle (%.1f°, %.1f°): n=%d mean=%.3f median=%.3f stddev=%.3f min=%.3f max=%.3f",
		az, el, s.Count, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
	for _, q := range r.Config.GetQuantiles() {
		monitoring.Logf("angle (%.1f°, %.1f°): P%02.0f=%.3f", az, el, q*100, quantiles[fmt.Sprintf("p%02.0f", q*100)])
	}
	return nil
}

func (r *Runner) distanceProfile(records []rws.Record, az, el float64) ([]string, error) {
	tol := r.Config.GetAngleToleranceDeg()
	selected := rws.SelectAngle(records, az, el, tol)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no records at angle (%.1f°, %.1f°)", az, el)
	}

	groups := rws.SummarizeRWSByDistance(selected)
	plotPath, err := r.Plots.DistanceProfile(groups, az, el)
	if err != nil {
		return nil, err
	}
	csvPath, err := writeDistanceStatsCSV(r.FS, r.Config.GetOutputDir(), groups, az, el)
	if err != nil {
		return nil, err
	}
	return []string{plotPath, csvPath}, nil
}

func (r *Runner) distribution(records []rws.Record, az, el float64) ([]string, error) {
	tol := r.Config.GetAngleToleranceDeg()
	sample := rws.Sample(rws.SelectAngle(records, az, el, tol), rws.FieldRWS)
	s, err := rws.Summarize(sample)
	if err != nil {
		return nil, fmt.Errorf("angle (%.1f°, %.1f°): %w", az, el, err)
	}

	histPath, err := r.Plots.Histogram(sample, s, r.Config.GetHistogramBins(), az, el)
	if err != nil {
		return nil, err
	}
	quantPath, err := r.Plots.QuantileCurve(sample, r.Config.GetQuantiles(), az, el)
	if err != nil {
		return nil, err
	}
	return []string{histPath, quantPath}, nil
}

// cnrComparison contrasts the angle-selected sample before and after CNR
// filtering, so it always starts from the unfiltered record set.
func (r *Runner) cnrComparison(unfiltered []rws.Record, az, el float64) ([]string, error) {
	tol := r.Config.GetAngleToleranceDeg()
	threshold := r.Config.GetCNRThresholdDb()

	selected := rws.SelectAngle(unfiltered, az, el, tol)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no records at angle (%.1f°, %.1f°)", az, el)
	}
	kept := rws.FilterByCNR(selected, threshold)

	before := rws.Sample(selected, rws.FieldRWS)
	after := rws.Sample(kept, rws.FieldRWS)

	logSampleStats("before filter", before)
	logSampleStats("after filter", after)
	monitoring.Logf("cnr_comparison: retention %.2f%%", rws.Retention(len(before), len(after)))

	path, err := r.Plots.CNRComparison(before, after, threshold, az, el)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func logSampleStats(label string, sample []float64) {
	s, err := rws.Summarize(sample)
	if err != nil {
		monitoring.Logf("cnr_comparison %s: no data", label)
		return
	}
	monitoring.Logf("cnr_comparison %s: n=%d mean=%.3f stddev=%.3f min=%.3f max=%.3f",
		label, s.Count, s.Mean, s.StdDev, s.Min, s.Max)
}

func buildOverview(records []rws.Record) Overview {
	rwsSample := rws.Sample(records, rws.FieldRWS)
	cnrSample := rws.Sample(records, rws.FieldCNR)

	azimuths := rws.DistinctValues(records, rws.FieldAzimuth)
	elevations := rws.DistinctValues(records, rws.FieldElevation)
	distances := rws.DistinctValues(records, rws.FieldDistance)

	timestamps := make(map[int64]struct{})
	combos := make(map[[2]float64]struct{})
	for _, rec := range records {
		timestamps[rec.Timestamp.UnixNano()] = struct{}{}
		combos[[2]float64{rec.AzimuthDeg, rec.ElevationDeg}] = struct{}{}
	}

	rwsStats, _ := rws.Summarize(rwsSample)
	cnrStats, _ := rws.Summarize(cnrSample)

	return Overview{
		TotalRecords:      len(records),
		UniqueTimestamps:  len(timestamps),
		AzimuthMinDeg:     azimuths[0],
		AzimuthMaxDeg:     azimuths[len(azimuths)-1],
		UniqueAzimuths:    len(azimuths),
		ElevationMinDeg:   elevations[0],
		ElevationMaxDeg:   elevations[len(elevations)-1],
		UniqueElevations:  len(elevations),
		DistanceMinM:      distances[0],
		DistanceMaxM:      distances[len(distances)-1],
		DistanceGates:     len(distances),
		RWSMinMps:         rwsStats.Min,
		RWSMaxMps:         rwsStats.Max,
		RWSMeanMps:        rwsStats.Mean,
		RWSStdDevMps:      rwsStats.StdDev,
		CNRMinDb:          cnrStats.Min,
		CNRMaxDb:          cnrStats.Max,
		CNRMeanDb:         cnrStats.Mean,
		AngleCombinations: len(combos),
	}
}

func logOverview(o Overview) {
	monitoring.Logf("overview: %d records, %d timestamps, %d angle combinations",
		o.TotalRecords, o.UniqueTimestamps, o.AngleCombinations)
	monitoring.Logf("overview: azimuth %.3f°..%.3f° (%d distinct), elevation %.3f°..%.3f° (%d distinct)",
		o.AzimuthMinDeg, o.AzimuthMaxDeg, o.UniqueAzimuths,
		o.ElevationMinDeg, o.ElevationMaxDeg, o.UniqueElevations)
	monitoring.Logf("overview: distance %.1fm..%.1fm (%d gates)", o.DistanceMinM, o.DistanceMaxM, o.DistanceGates)
	monitoring.Logf("overview: RWS %.3f..%.3f m/s (mean %.3f, stddev %.3f)",
		o.RWSMinMps, o.RWSMaxMps, o.RWSMeanMps, o.RWSStdDevMps)
	monitoring.Logf("overview: CNR %.3f..%.3f dB (mean %.3f)", o.CNRMinDb, o.CNRMaxDb, o.CNRMeanDb)
}
