package store

import (
	"fmt"
	"time"
)

// ScanConfig holds the parameters of a Förstner scan job (checkpoint copy).
// This avoids import cycles with the server package.
type ScanConfig struct {
	ImagePath string `json:"imagePath"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	N         int    `json:"n"`        // window size, odd >= 3
	TopK      int    `json:"topK"`     // number of smallest-λ points kept; there is no dense-only mode
	ROIX0     int    `json:"roiX0"`
	ROIY0     int    `json:"roiY0"`
	ROINX     int    `json:"roiNX"`
	ROINY     int    `json:"roiNY"`
	// CheckpointRows is how many completed output rows trigger a checkpoint
	// write (0 disables periodic checkpointing; a checkpoint is still taken
	// on graceful cancellation).
	CheckpointRows int `json:"checkpointRows,omitempty"`
}

// Checkpoint represents a saved scan state that can be resumed later. All
// fields are serialized to JSON for persistence.
//
// Scan state handling:
//
// The engine processes the ROI row-major and is itself stateless between
// calls (internal/forstner's windowAccumulator holds no state the caller can
// see), so resuming a scan means re-running it starting at the first row
// after the checkpointed one, with the in-progress TopK/Best accumulation
// restored from RunningTopK.
//
// SAVED STATE:
//   - RowsDone: how many ROI rows have been fully scored
//   - RunningTopK: the best points seen across the rows already done
//   - Config: the scan parameters, checked for compatibility on resume
//
// REINITIALIZED ON RESUME:
//   - The column-sum accumulator: rebuilt from scratch at the resume row,
//     since it is an engine-internal detail never exposed across calls
type Checkpoint struct {
	JobID string `json:"jobId"`

	// RunningTopK holds the best points accumulated over the rows scored so
	// far, in ascending Score order as the merge step that builds it leaves it.
	RunningTopK []Point `json:"runningTopK"`

	// RowsDone is the count of ROI rows fully processed at checkpoint time.
	RowsDone int `json:"rowsDone"`

	Timestamp time.Time `json:"timestamp"`

	Config ScanConfig `json:"config"`
}

// Point mirrors forstner.Point without importing the engine package, to
// keep the store dependency-free of the scan engine's internal layout.
type Point struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// running point list. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	RowsDone  int       `json:"rowsDone"`
	Timestamp time.Time `json:"timestamp"`
	ImagePath string    `json:"imagePath"`
	N         int       `json:"n"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, runningTopK []Point, rowsDone int, config ScanConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		RunningTopK: runningTopK,
		RowsDone:    rowsDone,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		RowsDone:  c.RowsDone,
		Timestamp: c.Timestamp,
		ImagePath: c.Config.ImagePath,
		N:         c.Config.N,
	}
}

// Validate checks if the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.RowsDone < 0 {
		return &ValidationError{Field: "RowsDone", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.ImagePath == "" {
		return &ValidationError{Field: "Config.ImagePath", Reason: "cannot be empty"}
	}
	if c.Config.N < 3 || c.Config.N%2 == 0 {
		return &ValidationError{Field: "Config.N", Reason: "must be odd and >= 3"}
	}
	if c.Config.ROINX <= 0 || c.Config.ROINY <= 0 {
		return &ValidationError{Field: "Config.ROINX/ROINY", Reason: "must be positive"}
	}
	if c.RowsDone > c.Config.ROINY {
		return &ValidationError{
			Field:  "RowsDone",
			Reason: fmt.Sprintf("exceeds ROI height: %d > %d", c.RowsDone, c.Config.ROINY),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config ScanConfig) error {
	if c.Config.ImagePath != config.ImagePath {
		return &CompatibilityError{Field: "ImagePath", Expected: c.Config.ImagePath, Actual: config.ImagePath}
	}
	if c.Config.N != config.N {
		return &CompatibilityError{
			Field:    "N",
			Expected: fmt.Sprintf("%d", c.Config.N),
			Actual:   fmt.Sprintf("%d", config.N),
		}
	}
	if c.Config.ROIX0 != config.ROIX0 || c.Config.ROIY0 != config.ROIY0 ||
		c.Config.ROINX != config.ROINX || c.Config.ROINY != config.ROINY {
		return &CompatibilityError{
			Field:    "ROI",
			Expected: fmt.Sprintf("(%d,%d,%d,%d)", c.Config.ROIX0, c.Config.ROIY0, c.Config.ROINX, c.Config.ROINY),
			Actual:   fmt.Sprintf("(%d,%d,%d,%d)", config.ROIX0, config.ROIY0, config.ROINX, config.ROINY),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
