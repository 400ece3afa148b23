package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nasa-jpl/forstner/internal/forstner"
	"github.com/nasa-jpl/forstner/internal/pgmio"
	"github.com/nasa-jpl/forstner/internal/store"
)

// rowChunk is the number of ROI rows scored per engine call. Processing in
// chunks (rather than one run() call over the whole ROI) is what makes
// periodic progress broadcast and mid-scan checkpointing possible: the scan
// engine itself holds no state the caller can observe between run() calls.
const rowChunk = 64

// runJob executes a Förstner scan job in the background. If checkpointStore
// is not nil and the job's config sets CheckpointRows > 0, a checkpoint is
// saved after each rowChunk-row chunk that brings the rows scored since the
// last save to at least CheckpointRows.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("Starting scan job", "job_id", jobID, "image", job.Config.ImagePath)

	img, err := pgmio.Load(job.Config.ImagePath)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to load image: %w", err))
		return err
	}

	slog.Info("Loaded scan image", "job_id", jobID, "width", img.Width, "height", img.Height)

	var pool forstner.Pool
	if err := pool.Reserve(job.Config.ROINX+job.Config.N, job.Config.N); err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to reserve pool: %w", err))
		return err
	}
	defer pool.Release()

	start := time.Now()
	rowsDone := job.RowsDone
	topK := append([]Point(nil), job.TopK...)

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	checkpointEnabled := checkpointStore != nil && job.Config.CheckpointRows > 0
	rowsSinceCheckpoint := 0

	for rowsDone < job.Config.ROINY {
		select {
		case <-ctx.Done():
			close(progressDone)
			if checkpointEnabled {
				saveCheckpoint(jm, checkpointStore, jobID)
			}
			markJobCancelled(jm, jobID)
			return ctx.Err()
		default:
		}

		height := rowChunk
		if rowsDone+height > job.Config.ROINY {
			height = job.Config.ROINY - rowsDone
		}

		chunkROI := forstner.ROI{
			X0: job.Config.ROIX0,
			Y0: job.Config.ROIY0 + rowsDone,
			NX: job.Config.ROINX,
			NY: height,
		}

		k := job.Config.TopK
		if k <= 0 {
			k = 1
		}
		chunkPoints, err := forstner.TopK(img, chunkROI, job.Config.N, k, &pool)
		if err != nil {
			close(progressDone)
			markJobFailed(jm, jobID, fmt.Errorf("scan failed at row %d: %w", rowsDone, err))
			return err
		}

		topK = mergeTopK(topK, toStorePoints(chunkPoints), k)
		rowsDone += height
		rowsSinceCheckpoint += height

		if err := jm.UpdateJob(jobID, func(j *Job) {
			j.RowsDone = rowsDone
			j.TopK = topK
		}); err != nil {
			close(progressDone)
			return err
		}

		if checkpointEnabled && rowsSinceCheckpoint >= job.Config.CheckpointRows {
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
			rowsSinceCheckpoint = 0
		}
	}

	close(progressDone)

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	elapsed := time.Since(start)
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	rowsPerSecond := float64(job.Config.ROINY) / elapsed.Seconds()

	slog.Info("Scan job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"rows", job.Config.ROINY,
		"rows_per_second", rowsPerSecond,
		"points_found", len(topK),
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		RowsDone:  job.Config.ROINY,
		RowRate:   rowsPerSecond,
		Timestamp: time.Now(),
	})

	return nil
}

// mergeTopK combines two running top-K lists (smallest Score wins) and
// truncates to k entries.
func mergeTopK(existing, fresh []Point, k int) []Point {
	combined := append(append([]Point(nil), existing...), fresh...)
	sort.Slice(combined, func(i, j int) bool { return combined[i].Score < combined[j].Score })
	if len(combined) > k {
		combined = combined[:k]
	}
	return combined
}

func toStorePoints(pts []forstner.Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X, Y: p.Y, Score: p.Score}
	}
	return out
}

// monitorProgress periodically broadcasts progress events during a scan.
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var rowRate float64
			if elapsed > 0 {
				rowRate = float64(job.RowsDone) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     job.State,
				RowsDone:  job.RowsDone,
				RowRate:   rowRate,
				Timestamp: time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled.
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// saveCheckpoint saves a checkpoint for the given job's current progress.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	checkpoint := store.NewCheckpoint(jobID, job.TopK, job.RowsDone, job.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "job_id", jobID, "rows_done", job.RowsDone)
	return nil
}
