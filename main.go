// windprofile.report analyses radial wind speed (RWS) measurements from a
// Doppler wind-profiling lidar: CNR quality filtering, per-angle and
// cross-angle descriptive statistics, and chart artifacts (distance
// profiles, histograms, box plots, quantile curves, heatmaps, wind rose).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/windprofile.report/internal/analysis"
	"github.com/banshee-data/windprofile.report/internal/config"
	"github.com/banshee-data/windprofile.report/internal/version"
)

// defaultInputFile is used when no positional argument is given.
const defaultInputFile = "Molas3D_00941_RealTime_20251005.csv"

var (
	configPath  = flag.String("config", "", "Path to analysis config JSON (optional)")
	outputDir   = flag.String("output", "", "Output directory override")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [input.csv]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Analyses lidar RWS returns and writes charts and result exports.\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Defaults to %s when no input file is given.\n\nFlags:\n", defaultInputFile)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	inputPath := defaultInputFile
	if flag.NArg() > 0 {
		inputPath = flag.Arg(0)
	}

	cfg := config.EmptyAnalysisConfig()
	if *configPath != "" {
		loaded, err := config.LoadAnalysisConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *outputDir != "" {
		cfg.OutputDir = outputDir
	}

	log.Printf("input file: %s", inputPath)
	log.Printf("output directory: %s", cfg.GetOutputDir())
	log.Printf("CNR threshold: %.0f dB, angle tolerance: %.1f°",
		cfg.GetCNRThresholdDb(), cfg.GetAngleToleranceDeg())

	runner := analysis.New(cfg)
	res, err := runner.Run(inputPath)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	ok, skipped := 0, 0
	for _, s := range res.Steps {
		if s.Status == analysis.StepOK {
			ok++
		} else {
			skipped++
		}
	}
	log.Printf("done: %d steps ok, %d skipped, artifacts in %s", ok, skipped, cfg.GetOutputDir())
}
