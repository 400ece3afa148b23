package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nasa-jpl/forstner/internal/forstner"
	"github.com/nasa-jpl/forstner/internal/pgmio"
	"github.com/nasa-jpl/forstner/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeServerURL string
	resumeLocalMode bool
	resumeOutputDir string
	resumeDataDir   string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a scan from a checkpoint",
	Long: `Resume a Förstner scan job from a saved checkpoint.

Supports two modes:
  1. Server mode (default): POST to server's resume endpoint
  2. Local mode (--local): Load checkpoint and continue scanning locally

Examples:
  # Resume via server
  forstner resume abc123 --server-url http://localhost:8080

  # Resume locally
  forstner resume abc123 --local --output ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeServerURL, "server-url", "http://localhost:8080", "Server URL for remote resume")
	resumeCmd.Flags().BoolVar(&resumeLocalMode, "local", false, "Run resume locally instead of via server")
	resumeCmd.Flags().StringVar(&resumeOutputDir, "output", "./resumed", "Output directory for local mode")
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Checkpoint storage directory for local mode")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if resumeLocalMode {
		return runResumeLocal(jobID)
	}
	return runResumeServer(jobID)
}

func runResumeServer(jobID string) error {
	url := fmt.Sprintf("%s/api/v1/jobs/%s/resume", resumeServerURL, jobID)

	slog.Info("Resuming job via server", "job_id", jobID, "url", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("checkpoint not found for job %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		JobID       string `json:"jobId"`
		State       string `json:"state"`
		Message     string `json:"message,omitempty"`
		ResumedFrom string `json:"resumedFrom,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Job resumed successfully\n")
	fmt.Printf("  Job ID: %s\n", result.JobID)
	fmt.Printf("  State: %s\n", result.State)
	if result.Message != "" {
		fmt.Printf("  Message: %s\n", result.Message)
	}
	fmt.Printf("\nUse 'forstner status %s' to monitor progress\n", result.JobID)

	return nil
}

// runResumeLocal loads a checkpoint and continues the scan in-process,
// restarting from the checkpointed row since the engine keeps no
// cross-call state of its own.
func runResumeLocal(jobID string) error {
	slog.Info("Resuming job locally", "job_id", jobID)

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	fmt.Printf("Loaded checkpoint:\n")
	fmt.Printf("  Job ID: %s\n", checkpoint.JobID)
	fmt.Printf("  Rows done: %d / %d\n", checkpoint.RowsDone, checkpoint.Config.ROINY)
	fmt.Printf("  Image: %s\n", checkpoint.Config.ImagePath)
	fmt.Printf("  Window size (n): %d\n", checkpoint.Config.N)
	fmt.Printf("  Checkpoint time: %s\n\n", checkpoint.Timestamp.Format(time.RFC3339))

	img, err := pgmio.Load(checkpoint.Config.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	fmt.Printf("Resuming scan...\n")
	start := time.Now()

	config := checkpoint.Config
	k := config.TopK
	if k <= 0 {
		k = 1
	}

	topK := append([]store.Point(nil), checkpoint.RunningTopK...)
	remaining := forstner.ROI{
		X0: config.ROIX0,
		Y0: config.ROIY0 + checkpoint.RowsDone,
		NX: config.ROINX,
		NY: config.ROINY - checkpoint.RowsDone,
	}

	if remaining.NY > 0 {
		points, err := forstner.TopK(img, remaining, config.N, k, nil)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		merged := append(topK, toResumePoints(points)...)
		sort.Slice(merged, func(i, j int) bool { return merged[i].Score < merged[j].Score })
		if len(merged) > k {
			merged = merged[:k]
		}
		topK = merged
	}

	elapsed := time.Since(start)

	fmt.Printf("\nScan completed in %s\n", elapsed)
	fmt.Printf("  Points found: %d\n", len(topK))

	if err := os.MkdirAll(resumeOutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(resumeOutputDir, fmt.Sprintf("%s_resumed.json", jobID))
	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer outFile.Close()

	enc := json.NewEncoder(outFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(topK); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	fmt.Printf("\nOutput saved to: %s\n", outPath)

	updatedCheckpoint := store.NewCheckpoint(jobID, topK, config.ROINY, config)
	if err := checkpointStore.SaveCheckpoint(jobID, updatedCheckpoint); err != nil {
		slog.Warn("Failed to update checkpoint", "error", err)
	} else {
		fmt.Printf("Checkpoint updated\n")
	}

	return nil
}

func toResumePoints(pts []forstner.Point) []store.Point {
	out := make([]store.Point, len(pts))
	for i, p := range pts {
		out[i] = store.Point{X: p.X, Y: p.Y, Score: p.Score}
	}
	return out
}
