package analysis

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/banshee-data/windprofile.report/internal/fsutil"
	"github.com/banshee-data/windprofile.report/internal/rws"
)

// Step status values.
const (
	StepOK      = "ok"
	StepSkipped = "skipped"
)

// StepResult records the outcome of one analysis step. Failed steps are
// reported as skipped with a reason; they never abort the run.
type StepResult struct {
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	Reason    string   `json:"reason,omitempty"`
	Artifacts []string `json:"artifacts,omitempty"`
}

// Overview summarises the loaded dataset before any analysis.
type Overview struct {
	TotalRecords      int     `json:"total_records"`
	UniqueTimestamps  int     `json:"unique_timestamps"`
	AzimuthMinDeg     float64 `json:"azimuth_min_deg"`
	AzimuthMaxDeg     float64 `json:"azimuth_max_deg"`
	UniqueAzimuths    int     `json:"unique_azimuths"`
	ElevationMinDeg   float64 `json:"elevation_min_deg"`
	ElevationMaxDeg   float64 `json:"elevation_max_deg"`
	UniqueElevations  int     `json:"unique_elevations"`
	DistanceMinM      float64 `json:"distance_min_m"`
	DistanceMaxM      float64 `json:"distance_max_m"`
	DistanceGates     int     `json:"distance_gates"`
	RWSMinMps         float64 `json:"rws_min_mps"`
	RWSMaxMps         float64 `json:"rws_max_mps"`
	RWSMeanMps        float64 `json:"rws_mean_mps"`
	RWSStdDevMps      float64 `json:"rws_stddev_mps"`
	CNRMinDb          float64 `json:"cnr_min_db"`
	CNRMaxDb          float64 `json:"cnr_max_db"`
	CNRMeanDb         float64 `json:"cnr_mean_db"`
	AngleCombinations int     `json:"angle_combinations"`
}

// AngleStats is the single-angle statistics block of the manifest.
type AngleStats struct {
	AzimuthDeg   float64            `json:"azimuth_deg"`
	ElevationDeg float64            `json:"elevation_deg"`
	Stats        rws.Summary        `json:"stats"`
	Quantiles    map[string]float64 `json:"quantiles"`
}

// Result is the machine-readable manifest of one pipeline run.
type Result struct {
	RunID             string      `json:"run_id"`
	InputFile         string      `json:"input_file"`
	GeneratedAt       time.Time   `json:"generated_at"`
	CNRThresholdDb    float64     `json:"cnr_threshold_db"`
	CNRFilterApplied  bool        `json:"cnr_filter_applied"`
	AngleToleranceDeg float64     `json:"angle_tolerance_deg"`
	TotalRecords      int         `json:"total_records"`
	RetainedRecords   int         `json:"retained_records"`
	RetentionPct      float64     `json:"retention_pct"`
	Overview          Overview     `json:"overview"`
	AngleStats        *AngleStats  `json:"angle_stats,omitempty"`
	Steps             []StepResult `json:"steps"`
}

// ResultFileName is the manifest written into the output directory.
const ResultFileName = "analysis_result.json"

// writeManifest serialises the result manifest into dir.
func writeManifest(fs fsutil.FileSystem, dir string, res *Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	path := filepath.Join(dir, ResultFileName)
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result manifest: %w", err)
	}
	return path, nil
}

// writeDistanceStatsCSV exports per-gate summaries for one pointing
// direction as CSV.
func writeDistanceStatsCSV(fs fsutil.FileSystem, dir string, groups []rws.GroupStat, azimuthDeg, elevationDeg float64) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("distance_stats_az%.1f_el%.1f.csv", azimuthDeg, elevationDeg))
	f, err := fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"distance_m", "count", "mean_mps", "median_mps", "stddev_mps", "min_mps", "max_mps"})
	for _, g := range groups {
		w.Write([]string{
			strconv.FormatFloat(g.Key, 'f', 1, 64),
			strconv.Itoa(g.Stats.Count),
			strconv.FormatFloat(g.Stats.Mean, 'f', 3, 64),
			strconv.FormatFloat(g.Stats.Median, 'f', 3, 64),
			strconv.FormatFloat(g.Stats.StdDev, 'f', 3, 64),
			strconv.FormatFloat(g.Stats.Min, 'f', 3, 64),
			strconv.FormatFloat(g.Stats.Max, 'f', 3, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
