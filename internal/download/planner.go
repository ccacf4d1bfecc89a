package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
)

// Selector templates and request defaults
const (
	// FormatSelectorTemplate prefers an exact-height video+audio pair and
	// falls back to the best single stream at that height
	FormatSelectorTemplate = "bestvideo[height=%d]+bestaudio/best[height=%d]"
)

// Planner creates acquisition jobs and drives them to a ready input file
type Planner struct {
	engine  Engine
	muxer   Muxer
	workDir string
	network model.NetworkOptions

	mu         sync.RWMutex
	onProgress func(job *model.AcquisitionJob, percent int) // callback for UI updates
}

// NewPlanner creates a planner writing under workDir
func NewPlanner(engine Engine, muxer Muxer, workDir string, network model.NetworkOptions) *Planner {
	return &Planner{
		engine:  engine,
		muxer:   muxer,
		workDir: workDir,
		network: network,
	}
}

// SetProgressFunc sets the callback for download progress updates
func (p *Planner) SetProgressFunc(callback func(job *model.AcquisitionJob, percent int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress = callback
}

// WorkDir returns the directory all job files live in
func (p *Planner) WorkDir() string {
	return p.workDir
}

// FormatSelector returns the yt-dlp format selector for an exact height
func FormatSelector(height int) string {
	return fmt.Sprintf(FormatSelectorTemplate, height, height)
}

// BuildRequest builds the engine request for job
func (p *Planner) BuildRequest(job *model.AcquisitionJob) model.DownloadRequest {
	return model.DownloadRequest{
		URL:               job.URL,
		Format:            FormatSelector(job.Resolution),
		OutputTemplate:    job.OutputTemplate + OutputExtTemplate,
		MergeOutputFormat: model.ContainerFormat,
		Quiet:             true,
		NoWarnings:        true,
		NetworkOptions:    p.network,
	}
}

// Acquire downloads url at resolution and reconciles the output into the
// job's input path. On failure the job is Failed and its files are removed.
func (p *Planner) Acquire(ctx context.Context, url string, resolution int) (*model.AcquisitionJob, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("invalid resolution: %d", resolution)
	}

	job := model.NewJob(url, resolution, p.workDir)
	if err := job.Transition(model.JobStateDownloading); err != nil {
		return job, err
	}
	log.Printf("Starting job %s: %s at %dp", job.ID, url, resolution)

	if err := platform.CreateDirectoryIfNotExists(p.workDir); err != nil {
		return job, p.fail(job, fmt.Errorf("create working directory: %w", err))
	}

	files, err := p.engine.Download(ctx, p.BuildRequest(job), func(percent int) {
		p.notifyProgress(job, percent)
	})
	if err != nil {
		return job, p.fail(job, err)
	}

	if err := job.Transition(model.JobStateReconciling); err != nil {
		return job, p.fail(job, err)
	}

	plan, err := Reconcile(job.InputPath, ownedBy(job, files))
	if err != nil {
		return job, p.fail(job, err)
	}
	if err := p.apply(ctx, plan); err != nil {
		return job, p.fail(job, err)
	}

	if err := job.Transition(model.JobStateReady); err != nil {
		return job, p.fail(job, err)
	}
	p.notifyProgress(job, 100)
	log.Printf("Job %s ready (%s): %s", job.ID, plan.Action, job.InputPath)
	return job, nil
}

// apply performs a reconcile plan on disk
func (p *Planner) apply(ctx context.Context, plan Plan) error {
	switch plan.Action {
	case ActionRename:
		if err := os.Rename(plan.Sources[0], plan.Expected); err != nil {
			return fmt.Errorf("rename %s: %w", plan.Sources[0], err)
		}
	case ActionMerge:
		if p.muxer == nil {
			return fmt.Errorf("%w: no muxer for separate streams", model.ErrAmbiguousOutput)
		}
		if err := p.muxer.Merge(ctx, plan.Sources[0], plan.Sources[1], plan.Expected); err != nil {
			return fmt.Errorf("merge streams: %w", err)
		}
		for _, src := range plan.Sources {
			if err := platform.RemoveIfExists(src); err != nil {
				return err
			}
		}
	}

	for _, leftover := range plan.Leftovers {
		if err := platform.RemoveIfExists(leftover); err != nil {
			return err
		}
	}

	if !platform.FileExists(plan.Expected) {
		return fmt.Errorf("%w: %s missing after %s", model.ErrNothingDownloaded, plan.Expected, plan.Action)
	}
	return nil
}

// fail marks the job failed, removes its files and wraps err
func (p *Planner) fail(job *model.AcquisitionJob, err error) error {
	stage := job.State
	job.Fail(err)

	if cleanupErr := platform.RemoveByStem(job.WorkDir, job.Stem()); cleanupErr != nil {
		log.Printf("Cleanup failed for job %s: %v", job.ID, cleanupErr)
		err = errors.Join(err, cleanupErr)
	}

	log.Printf("Job %s failed while %s: %v", job.ID, stage, err)
	return &model.AcquisitionError{JobID: job.ID, Stage: stage, Err: err}
}

// notifyProgress calls the progress callback if set
func (p *Planner) notifyProgress(job *model.AcquisitionJob, percent int) {
	p.mu.Lock()
	job.Percent = percent
	callback := p.onProgress
	p.mu.Unlock()

	if callback != nil {
		callback(job, percent)
	}
}

// ownedBy drops any reported path not derived from the job's identifier
func ownedBy(job *model.AcquisitionJob, files []string) []string {
	owned := make([]string, 0, len(files))
	for _, f := range files {
		if job.Owns(f) {
			owned = append(owned, f)
		} else {
			log.Printf("Ignoring foreign file %s for job %s", f, job.ID)
		}
	}
	return owned
}
