package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/nasa-jpl/forstner/internal/forstner"
	"github.com/nasa-jpl/forstner/internal/pgmio"
	"github.com/spf13/cobra"
)

var (
	runImagePath  string
	runOutPath    string
	runOp         string
	runN          int
	runTopK       int
	runROIX0      int
	runROIY0      int
	runROINX      int
	runROINY      int
	runCPUProfile string
	runMemProfile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single-shot interest-point scan",
	Long:  `Scans a PGM raster with the Förstner interest operator and writes the result as JSON.`,
	RunE:  runScan,
}

func init() {
	runCmd.Flags().StringVar(&runImagePath, "image", "", "Input PGM image path (required)")
	runCmd.Flags().StringVar(&runOutPath, "out", "out.json", "Output JSON path")
	runCmd.Flags().StringVar(&runOp, "op", "topk", "Operation: dense, covariance, best, topk")
	runCmd.Flags().IntVar(&runN, "n", 7, "Window size (odd, >= 3)")
	runCmd.Flags().IntVar(&runTopK, "k", 100, "Number of strongest points to keep (topk only)")
	runCmd.Flags().IntVar(&runROIX0, "roi-x0", 0, "ROI left column")
	runCmd.Flags().IntVar(&runROIY0, "roi-y0", 0, "ROI top row")
	runCmd.Flags().IntVar(&runROINX, "roi-nx", 0, "ROI width (0 together with --roi-ny 0 = full image)")
	runCmd.Flags().IntVar(&runROINY, "roi-ny", 0, "ROI height (0 together with --roi-nx 0 = full image)")

	runCmd.Flags().StringVar(&runCPUProfile, "cpuprofile", "", "Write CPU profile to file")
	runCmd.Flags().StringVar(&runMemProfile, "memprofile", "", "Write memory profile to file")

	runCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(runCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if runCPUProfile != "" {
		f, err := os.Create(runCPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", "output", runCPUProfile)
	}

	slog.Info("Starting scan", "image", runImagePath, "op", runOp, "n", runN)

	img, err := pgmio.Load(runImagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	roi := forstner.ROI{X0: runROIX0, Y0: runROIY0, NX: runROINX, NY: runROINY}
	if roi.NX == 0 && roi.NY == 0 {
		roi.NX, roi.NY = img.Width, img.Height
	}

	slog.Info("Loaded image", "width", img.Width, "height", img.Height)

	start := time.Now()
	var result interface{}

	switch runOp {
	case "dense":
		interest := make([]float32, img.Width*img.Height)
		if err := forstner.Dense(img, roi, runN, interest, nil); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		result = interest

	case "covariance":
		need := img.Width * img.Height
		c00 := make([]float32, need)
		c01 := make([]float32, need)
		c11 := make([]float32, need)
		if err := forstner.Covariance(img, roi, runN, c00, c01, c11, nil); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		result = map[string][]float32{"c00": c00, "c01": c01, "c11": c11}

	case "best":
		p, ok, err := forstner.Best(img, roi, runN, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		result = map[string]interface{}{"point": p, "found": ok}

	case "topk":
		points, err := forstner.TopK(img, roi, runN, runTopK, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		result = points

	default:
		return fmt.Errorf("unknown op: %s (expected dense, covariance, best, or topk)", runOp)
	}

	elapsed := time.Since(start)

	outFile, err := os.Create(runOutPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer outFile.Close()

	enc := json.NewEncoder(outFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	pixelsPerSecond := float64(roi.NX*roi.NY) / elapsed.Seconds()

	slog.Info("Scan complete",
		"op", runOp,
		"elapsed", elapsed,
		"pixels_per_second", fmt.Sprintf("%.0f", pixelsPerSecond),
	)

	fmt.Printf("Wrote %s (%s, %.0f px/sec)\n", runOutPath, runOp, pixelsPerSecond)

	if runMemProfile != "" {
		f, err := os.Create(runMemProfile)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		slog.Info("Memory profile written", "output", runMemProfile)
	}

	return nil
}
