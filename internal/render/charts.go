package render

import (
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/windprofile.report/internal/fsutil"
	"github.com/banshee-data/windprofile.report/internal/rws"
)

// viridis is the colour ramp used for visual maps.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// Charts renders interactive HTML charts with go-echarts into an output
// directory.
type Charts struct {
	Dir string
	FS  fsutil.FileSystem
}

// NewCharts returns a Charts renderer writing to dir on the real filesystem.
func NewCharts(dir string) *Charts {
	return &Charts{Dir: dir, FS: fsutil.OSFileSystem{}}
}

type renderable interface {
	Render(w io.Writer) error
}

func (c *Charts) save(chart renderable, name string) (string, error) {
	path := filepath.Join(c.Dir, name)
	f, err := c.FS.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := chart.Render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// AzimuthDistanceHeatmap renders mean RWS over azimuth × distance at a
// fixed elevation.
func (c *Charts) AzimuthDistanceHeatmap(grid rws.Grid, elevationDeg float64) (string, error) {
	name := fmt.Sprintf("heatmap_azimuth_distance_el%.1f.html", elevationDeg)
	title := fmt.Sprintf("Mean RWS: Azimuth × Distance (el=%.1f°)", elevationDeg)
	return c.heatmap(grid, name, title, "Azimuth (°)")
}

// ElevationDistanceHeatmap renders mean RWS over elevation × distance at a
// fixed azimuth.
func (c *Charts) ElevationDistanceHeatmap(grid rws.Grid, azimuthDeg float64) (string, error) {
	name := fmt.Sprintf("heatmap_elevation_distance_az%.1f.html", azimuthDeg)
	title := fmt.Sprintf("Mean RWS: Elevation × Distance (az=%.1f°)", azimuthDeg)
	return c.heatmap(grid, name, title, "Elevation (°)")
}

func (c *Charts) heatmap(grid rws.Grid, name, title, angleLabel string) (string, error) {
	if len(grid.AngleDeg) == 0 || len(grid.DistanceM) == 0 {
		return "", rws.ErrEmptySample
	}

	angleLabels := make([]string, len(grid.AngleDeg))
	for i, v := range grid.AngleDeg {
		angleLabels[i] = fmt.Sprintf("%.1f", v)
	}
	distLabels := make([]string, len(grid.DistanceM))
	for i, v := range grid.DistanceM {
		distLabels[i] = fmt.Sprintf("%.0f", v)
	}

	data := make([]opts.HeatMapData, 0, len(grid.AngleDeg)*len(grid.DistanceM))
	lo, hi := math.Inf(1), math.Inf(-1)
	for row, dist := range grid.Mean {
		for col := range dist {
			v := grid.Mean[row][col]
			if math.IsNaN(v) {
				continue // gate never observed at this angle
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{col, row, v}})
		}
	}
	if len(data) == 0 {
		return "", rws.ErrEmptySample
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d angles × %d gates", len(grid.AngleDeg), len(grid.DistanceM))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: angleLabel, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: distLabels, Name: "Distance (m)", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	hm.SetXAxis(angleLabels).AddSeries("mean_rws", data)

	return c.save(hm, name)
}

// WindRose renders mean |RWS| per azimuth as a polar plot projected to XY,
// north up and azimuth increasing clockwise.
func (c *Charts) WindRose(buckets []rws.RoseBucket) (string, error) {
	if len(buckets) == 0 {
		return "", rws.ErrEmptySample
	}

	data := make([]opts.ScatterData, 0, len(buckets))
	maxAbs := 0.0
	for _, b := range buckets {
		// Compass convention: x east, y north, azimuth clockwise from north.
		theta := b.AzimuthDeg * math.Pi / 180.0
		x := b.MeanAbsRWS * math.Sin(theta)
		y := b.MeanAbsRWS * math.Cos(theta)
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("az %.1f°", b.AzimuthDeg),
			Value: []interface{}{x, y, b.MeanAbsRWS},
		})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	maxVal := 0.0
	for _, b := range buckets {
		if b.MeanAbsRWS > maxVal {
			maxVal = b.MeanAbsRWS
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "RWS Wind Rose", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "RWS Wind Rose", Subtitle: fmt.Sprintf("mean |RWS| per azimuth, %d spokes, north up, clockwise", len(buckets))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "E (m/s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "N (m/s)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxVal),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("wind_rose", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}))

	return c.save(scatter, "wind_rose.html")
}
