// Package render produces chart artifacts from aggregated RWS series. The
// statistical core has no dependency on this package; it hands over
// aggregated series and receives artifact paths back.
package render

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/windprofile.report/internal/fsutil"
	"github.com/banshee-data/windprofile.report/internal/rws"
)

// Plotter renders PNG charts with gonum/plot into an output directory.
type Plotter struct {
	Dir string
	FS  fsutil.FileSystem
}

// NewPlotter returns a Plotter writing to dir on the real filesystem.
func NewPlotter(dir string) *Plotter {
	return &Plotter{Dir: dir, FS: fsutil.OSFileSystem{}}
}

var (
	colorMean   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorSpread = color.RGBA{R: 31, G: 119, B: 180, A: 96}
	colorMedian = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorMark   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorRange  = color.RGBA{R: 44, G: 160, B: 44, A: 96}
)

// save renders p through the configured filesystem.
func (pl *Plotter) save(p *plot.Plot, w, h vg.Length, name string) (string, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	path := filepath.Join(pl.Dir, name)
	f, err := pl.FS.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// DistanceProfile plots per-gate mean with a ±1 stddev band and the min/max
// envelope for one pointing direction.
func (pl *Plotter) DistanceProfile(groups []rws.GroupStat, azimuthDeg, elevationDeg float64) (string, error) {
	if len(groups) == 0 {
		return "", fmt.Errorf("no distance groups to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("RWS vs Distance (az=%.1f°, el=%.1f°)", azimuthDeg, elevationDeg)
	p.X.Label.Text = "Distance (m)"
	p.Y.Label.Text = "RWS (m/s)"

	mean := make(plotter.XYs, len(groups))
	lower := make(plotter.XYs, len(groups))
	upper := make(plotter.XYs, len(groups))
	min := make(plotter.XYs, len(groups))
	max := make(plotter.XYs, len(groups))
	for i, g := range groups {
		mean[i] = plotter.XY{X: g.Key, Y: g.Stats.Mean}
		lower[i] = plotter.XY{X: g.Key, Y: g.Stats.Mean - g.Stats.StdDev}
		upper[i] = plotter.XY{X: g.Key, Y: g.Stats.Mean + g.Stats.StdDev}
		min[i] = plotter.XY{X: g.Key, Y: g.Stats.Min}
		max[i] = plotter.XY{X: g.Key, Y: g.Stats.Max}
	}

	for _, series := range []struct {
		pts   plotter.XYs
		col   color.Color
		width vg.Length
		label string
	}{
		{mean, colorMean, vg.Points(2), "mean"},
		{lower, colorSpread, vg.Points(1), "-1 stddev"},
		{upper, colorSpread, vg.Points(1), "+1 stddev"},
		{min, colorRange, vg.Points(1), "min"},
		{max, colorRange, vg.Points(1), "max"},
	} {
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return "", err
		}
		line.Color = series.col
		line.Width = series.width
		p.Add(line)
		p.Legend.Add(series.label, line)
	}
	p.Legend.Top = true

	name := fmt.Sprintf("rws_distance_az%.1f_el%.1f.png", azimuthDeg, elevationDeg)
	return pl.save(p, 12*vg.Inch, 6*vg.Inch, name)
}

// Histogram plots the RWS frequency distribution with mean and median
// markers for one pointing direction.
func (pl *Plotter) Histogram(sample []float64, s rws.Summary, bins int, azimuthDeg, elevationDeg float64) (string, error) {
	if len(sample) == 0 {
		return "", rws.ErrEmptySample
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("RWS Distribution (az=%.1f°, el=%.1f°)", azimuthDeg, elevationDeg)
	p.X.Label.Text = "RWS (m/s)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(sample), bins)
	if err != nil {
		return "", err
	}
	h.FillColor = colorSpread
	p.Add(h)

	peak := maxBinCount(sample, bins)
	for _, marker := range []struct {
		x     float64
		col   color.Color
		label string
	}{
		{s.Mean, colorMark, fmt.Sprintf("mean %.2f", s.Mean)},
		{s.Median, colorMedian, fmt.Sprintf("median %.2f", s.Median)},
	} {
		line, err := plotter.NewLine(plotter.XYs{{X: marker.x, Y: 0}, {X: marker.x, Y: peak}})
		if err != nil {
			return "", err
		}
		line.Color = marker.col
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(marker.label, line)
	}
	p.Legend.Top = true

	name := fmt.Sprintf("rws_distribution_az%.1f_el%.1f.png", azimuthDeg, elevationDeg)
	return pl.save(p, 8*vg.Inch, 6*vg.Inch, name)
}

// QuantileCurve plots the full quantile function of sample with reference
// lines at the configured quantiles.
func (pl *Plotter) QuantileCurve(sample []float64, refs []float64, azimuthDeg, elevationDeg float64) (string, error) {
	if len(sample) == 0 {
		return "", rws.ErrEmptySample
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("RWS Quantiles (az=%.1f°, el=%.1f°)", azimuthDeg, elevationDeg)
	p.X.Label.Text = "Quantile (%)"
	p.Y.Label.Text = "RWS (m/s)"

	curve := make(plotter.XYs, 101)
	for i := 0; i <= 100; i++ {
		q := float64(i) / 100
		v, err := rws.Quantile(sample, q)
		if err != nil {
			return "", err
		}
		curve[i] = plotter.XY{X: q * 100, Y: v}
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return "", err
	}
	line.Color = colorMean
	line.Width = vg.Points(2)
	p.Add(line)

	for _, q := range refs {
		v, err := rws.Quantile(sample, q)
		if err != nil {
			return "", err
		}
		ref, err := plotter.NewLine(plotter.XYs{{X: 0, Y: v}, {X: 100, Y: v}})
		if err != nil {
			return "", err
		}
		ref.Color = colorMark
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(ref)
		p.Legend.Add(fmt.Sprintf("P%.0f: %.2f", q*100, v), ref)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	name := fmt.Sprintf("rws_quantiles_az%.1f_el%.1f.png", azimuthDeg, elevationDeg)
	return pl.save(p, 8*vg.Inch, 6*vg.Inch, name)
}

// CNRComparison draws side-by-side box plots of the RWS sample before and
// after the CNR quality filter for one pointing direction.
func (pl *Plotter) CNRComparison(before, after []float64, thresholdDb, azimuthDeg, elevationDeg float64) (string, error) {
	if len(before) == 0 {
		return "", rws.ErrEmptySample
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("CNR Filter Comparison (az=%.1f°, el=%.1f°, threshold=%.0f dB)",
		azimuthDeg, elevationDeg, thresholdDb)
	p.Y.Label.Text = "RWS (m/s)"

	labels := []string{fmt.Sprintf("unfiltered (n=%d)", len(before))}
	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(before))
	if err != nil {
		return "", err
	}
	p.Add(box)

	if len(after) > 0 {
		filtered, err := plotter.NewBoxPlot(vg.Points(40), 1, plotter.Values(after))
		if err != nil {
			return "", err
		}
		p.Add(filtered)
		labels = append(labels, fmt.Sprintf("filtered (n=%d)", len(after)))
	}
	p.NominalX(labels...)

	name := fmt.Sprintf("cnr_filter_comparison_az%.1f_el%.1f.png", azimuthDeg, elevationDeg)
	return pl.save(p, 8*vg.Inch, 6*vg.Inch, name)
}

// AzimuthComparison draws one RWS box plot per azimuth bucket at a fixed
// elevation.
func (pl *Plotter) AzimuthComparison(buckets []rws.AngleSample, elevationDeg float64) (string, error) {
	name := fmt.Sprintf("azimuth_comparison_el%.1f.png", elevationDeg)
	title := fmt.Sprintf("RWS by Azimuth (el=%.1f°)", elevationDeg)
	return pl.angleComparison(buckets, name, title, "Azimuth")
}

// ElevationComparison draws one RWS box plot per elevation bucket at a
// fixed azimuth.
func (pl *Plotter) ElevationComparison(buckets []rws.AngleSample, azimuthDeg float64) (string, error) {
	name := fmt.Sprintf("elevation_comparison_az%.1f.png", azimuthDeg)
	title := fmt.Sprintf("RWS by Elevation (az=%.1f°)", azimuthDeg)
	return pl.angleComparison(buckets, name, title, "Elevation")
}

func (pl *Plotter) angleComparison(buckets []rws.AngleSample, name, title, dimension string) (string, error) {
	if len(buckets) == 0 {
		return "", rws.ErrEmptySample
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = dimension
	p.Y.Label.Text = "RWS (m/s)"

	labels := make([]string, len(buckets))
	means := make(plotter.XYs, len(buckets))
	for i, b := range buckets {
		box, err := plotter.NewBoxPlot(vg.Points(25), float64(i), plotter.Values(b.Sample))
		if err != nil {
			return "", err
		}
		p.Add(box)
		labels[i] = fmt.Sprintf("%.1f°", b.AngleDeg)
		means[i] = plotter.XY{X: float64(i), Y: b.Stats.Mean}
	}

	meanLine, err := plotter.NewLine(means)
	if err != nil {
		return "", err
	}
	meanLine.Color = colorMark
	meanLine.Width = vg.Points(1.5)
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(meanLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.NominalX(labels...)

	return pl.save(p, 12*vg.Inch, 6*vg.Inch, name)
}

// maxBinCount computes the tallest histogram bin so marker lines can span
// the full plot height.
func maxBinCount(sample []float64, bins int) float64 {
	lo, hi := sample[0], sample[0]
	for _, v := range sample {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo || bins < 1 {
		return float64(len(sample))
	}

	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range sample {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	return float64(peak)
}
