package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File naming inside the working directory
const (
	InputPrefix     = "temp_"
	OutputPrefix    = "bw_"
	ContainerFormat = "mp4"
	ContainerExt    = "." + ContainerFormat
)

// AcquisitionJob is one download+convert request for a chosen resolution
type AcquisitionJob struct {
	ID             string
	URL            string
	Resolution     int
	WorkDir        string
	OutputTemplate string // <workdir>/temp_<id>, the engine appends the extension
	InputPath      string // <workdir>/temp_<id>.mp4, ready for conversion
	OutputPath     string // <workdir>/bw_<id>.mp4
	State          JobState
	Percent        int
	LastError      string
	CreatedAt      time.Time
	FinishedAt     time.Time
}

// NewJob creates a job in the Created state with paths namespaced by a fresh identifier
func NewJob(url string, resolution int, workDir string) *AcquisitionJob {
	id := generateJobID()
	stem := filepath.Join(workDir, InputPrefix+id)
	return &AcquisitionJob{
		ID:             id,
		URL:            url,
		Resolution:     resolution,
		WorkDir:        workDir,
		OutputTemplate: stem,
		InputPath:      stem + ContainerExt,
		OutputPath:     filepath.Join(workDir, OutputPrefix+id+ContainerExt),
		State:          JobStateCreated,
		CreatedAt:      time.Now(),
	}
}

// Stem returns the base name every engine-produced file of this job starts with
func (j *AcquisitionJob) Stem() string {
	return InputPrefix + j.ID
}

// Owns reports whether path was derived from this job's identifier
func (j *AcquisitionJob) Owns(path string) bool {
	if filepath.Dir(path) != filepath.Clean(j.WorkDir) {
		return false
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, j.Stem()+".") || strings.HasPrefix(base, OutputPrefix+j.ID+".")
}

// Transition moves the job to next, rejecting moves the lifecycle does not allow
func (j *AcquisitionJob) Transition(next JobState) error {
	if !j.State.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.State, next)
	}
	j.State = next
	if next.IsFinished() {
		j.FinishedAt = time.Now()
	}
	return nil
}

// Fail marks the job as failed with err, when the lifecycle allows it
func (j *AcquisitionJob) Fail(err error) {
	if err != nil {
		j.LastError = err.Error()
	}
	if j.State.CanTransition(JobStateFailed) {
		j.State = JobStateFailed
		j.FinishedAt = time.Now()
	}
}

// generateJobID uses UUID v7 so working directory listings sort chronologically
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
