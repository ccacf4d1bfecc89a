package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/yt-bw/internal/catalog"
	"github.com/ytget/yt-bw/internal/download"
	"github.com/ytget/yt-bw/internal/metrics"
	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
	"github.com/ytget/yt-bw/internal/probe"
	"github.com/ytget/yt-bw/internal/storage"
)

var (
	// ErrBusy is returned when the session already has a step running
	ErrBusy = errors.New("another request is in progress for this session")
	// ErrNotFetched is returned when converting before any qualities were fetched
	ErrNotFetched = errors.New("fetch available qualities first")
	// ErrUnknownResolution is returned for a resolution the catalog did not offer
	ErrUnknownResolution = errors.New("resolution is not available for this video")
	// ErrNothingToDeliver is returned when there is no processed file to hand out
	ErrNothingToDeliver = errors.New("no processed video to download")
)

// DefaultJobTimeout bounds one acquire+convert run
const DefaultJobTimeout = 30 * time.Minute

// Converter is the monochrome transform the flow runs on a ready job
type Converter interface {
	Convert(ctx context.Context, job *model.AcquisitionJob) error
}

// PlaylistExpander lists the videos behind a playlist URL
type PlaylistExpander interface {
	Expand(ctx context.Context, rawURL string) (*model.Playlist, error)
}

// Deps are the collaborators of a Flow. Expander, Publisher and Metrics
// are optional.
type Deps struct {
	Prober    probe.Prober
	Acquirer  download.Acquirer
	Converter Converter
	Store     Store
	Expander  PlaylistExpander
	Publisher storage.Publisher
	Metrics   metrics.Recorder
}

// Flow sequences probe, catalog, acquisition, conversion and delivery for
// many independent sessions
type Flow struct {
	deps       Deps
	jobTimeout time.Duration

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewFlow creates a flow; jobTimeout <= 0 uses DefaultJobTimeout
func NewFlow(deps Deps, jobTimeout time.Duration) *Flow {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Store == nil {
		deps.Store = NewMemoryStore(0)
	}
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}
	return &Flow{deps: deps, jobTimeout: jobTimeout, locks: make(map[string]*sync.Mutex)}
}

// State returns the current state of a session
func (f *Flow) State(ctx context.Context, sessionID string) (*State, error) {
	return f.deps.Store.Load(ctx, sessionID)
}

// Busy reports whether a step is running for the session
func (f *Flow) Busy(sessionID string) bool {
	unlock, err := f.lock(sessionID)
	if err != nil {
		return true
	}
	unlock()
	return false
}

// Fetch probes rawURL and stores the selectable resolutions. A playlist URL
// is expanded into entries instead. On failure the error is recorded in the
// state and resolutions stay unset.
func (f *Flow) Fetch(ctx context.Context, sessionID, rawURL string) (*State, error) {
	unlock, err := f.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := f.deps.Store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.clearSource()
	state.URL = strings.TrimSpace(rawURL)

	done := f.track(metrics.OpFetch)

	if f.deps.Expander != nil && platform.IsPlaylistURL(state.URL) {
		playlist, err := f.deps.Expander.Expand(ctx, state.URL)
		if err != nil {
			return f.failed(ctx, state, done, fmt.Errorf("expand playlist: %w", err))
		}
		state.Playlist = playlist
		state.Title = playlist.Title
		done(nil)
		return state, f.deps.Store.Save(ctx, state)
	}

	info, err := f.deps.Prober.Probe(ctx, state.URL)
	if err != nil {
		return f.failed(ctx, state, done, err)
	}

	resolutions := catalog.Resolutions(info.Formats)
	if resolutions.IsEmpty() {
		state.Title = info.Title
		return f.failed(ctx, state, done, model.ErrNoResolutions)
	}

	state.Title = info.Title
	state.Duration = info.Duration
	state.Resolutions = resolutions
	state.Selected = resolutions[0]
	done(nil)
	log.Printf("INFO: Session %s fetched %d resolutions for %s", sessionID, len(resolutions), state.URL)
	return state, f.deps.Store.Save(ctx, state)
}

// Convert downloads the fetched URL at resolution and converts it. The job
// runs to completion or the job timeout even if ctx is cancelled.
func (f *Flow) Convert(ctx context.Context, sessionID string, resolution int) (*State, error) {
	unlock, err := f.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := f.deps.Store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.URL == "" || !state.HasResolutions() {
		return state, ErrNotFetched
	}
	if !state.Resolutions.Contains(resolution) {
		return state, fmt.Errorf("%w: %dp", ErrUnknownResolution, resolution)
	}

	// A new conversion replaces the previous result
	f.discard(state.Processed)
	state.Processed = nil
	state.Selected = resolution
	state.LastError = ""

	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.jobTimeout)
	defer cancel()

	artifact, err := f.run(jobCtx, state.URL, resolution)
	if err != nil {
		state.LastError = err.Error()
		if saveErr := f.deps.Store.Save(ctx, state); saveErr != nil {
			log.Printf("ERROR: Failed to save session %s: %v", sessionID, saveErr)
		}
		return state, err
	}

	state.Processed = artifact
	log.Printf("INFO: Session %s converted %s at %dp (%s)", sessionID, state.URL, resolution, artifact.HumanSize)
	return state, f.deps.Store.Save(ctx, state)
}

// run acquires, converts and optionally publishes one job
func (f *Flow) run(ctx context.Context, url string, resolution int) (*Artifact, error) {
	done := f.track(metrics.OpAcquire)
	job, err := f.deps.Acquirer.Acquire(ctx, url, resolution)
	done(err)
	if err != nil {
		return nil, err
	}

	done = f.track(metrics.OpConvert)
	err = f.deps.Converter.Convert(ctx, job)
	done(err)
	if err != nil {
		cleanupJob(job)
		return nil, err
	}

	size, err := platform.FileSize(job.OutputPath)
	if err != nil {
		cleanupJob(job)
		return nil, err
	}
	f.deps.Metrics.RecordFileSize(model.ContainerFormat, size)

	artifact := &Artifact{
		JobID:      job.ID,
		Resolution: resolution,
		Path:       job.OutputPath,
		Size:       size,
		HumanSize:  humanize.Bytes(uint64(size)),
		CreatedAt:  time.Now(),
	}

	if f.deps.Publisher != nil {
		done = f.track(metrics.OpPublish)
		remoteURL, err := f.deps.Publisher.Publish(ctx, job.OutputPath)
		done(err)
		cleanupJob(job)
		if err != nil {
			return nil, err
		}
		artifact.Path = ""
		artifact.RemoteURL = remoteURL
		if err := job.Transition(model.JobStateDelivered); err != nil {
			log.Printf("WARN: Job %s: %v", job.ID, err)
		}
	}
	return artifact, nil
}

// Deliver streams the processed file to w once, then removes it. Published
// artifacts are not streamed; their RemoteURL is the delivery.
func (f *Flow) Deliver(ctx context.Context, sessionID string, w io.Writer) (int64, error) {
	unlock, err := f.lock(sessionID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	state, err := f.deps.Store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if state.Processed == nil || state.Processed.Path == "" {
		return 0, ErrNothingToDeliver
	}

	done := f.track(metrics.OpDeliver)
	file, err := os.Open(state.Processed.Path)
	if err != nil {
		// The file is gone; forget it so the UI stops offering it
		state.Processed = nil
		_ = f.deps.Store.Save(ctx, state)
		done(err)
		return 0, fmt.Errorf("%w: %v", ErrNothingToDeliver, err)
	}

	n, err := io.Copy(w, file)
	file.Close()
	done(err)
	if err != nil {
		// Keep the file so the user can retry the download
		return n, fmt.Errorf("stream processed video: %w", err)
	}

	f.discard(state.Processed)
	state.Processed = nil
	log.Printf("INFO: Session %s delivered %d bytes", sessionID, n)
	return n, f.deps.Store.Save(ctx, state)
}

// Reset removes the session's processed file and forgets its state
func (f *Flow) Reset(ctx context.Context, sessionID string) error {
	unlock, err := f.lock(sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := f.deps.Store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	f.discard(state.Processed)
	return f.deps.Store.Delete(ctx, sessionID)
}

// failed records err in the state and returns it
func (f *Flow) failed(ctx context.Context, state *State, done func(error), err error) (*State, error) {
	done(err)
	state.Resolutions = nil
	state.Selected = 0
	state.LastError = err.Error()
	log.Printf("WARN: Session %s: %v", state.ID, err)
	if saveErr := f.deps.Store.Save(ctx, state); saveErr != nil {
		log.Printf("ERROR: Failed to save session %s: %v", state.ID, saveErr)
	}
	return state, err
}

// track starts metrics for op and returns the function that finishes them
func (f *Flow) track(op string) func(error) {
	start := time.Now()
	f.deps.Metrics.StartOperation(op)
	return func(err error) {
		f.deps.Metrics.EndOperation(op)
		f.deps.Metrics.RecordDuration(op, time.Since(start).Seconds())
		if err != nil {
			f.deps.Metrics.RecordError(op, metrics.ErrorType(err))
		} else {
			f.deps.Metrics.RecordSuccess(op)
		}
	}
}

// lock takes the session's try-lock
func (f *Flow) lock(sessionID string) (func(), error) {
	f.locksMu.Lock()
	m, ok := f.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		f.locks[sessionID] = m
	}
	f.locksMu.Unlock()

	if !m.TryLock() {
		return nil, ErrBusy
	}
	return m.Unlock, nil
}

// discard removes a local artifact file
func (f *Flow) discard(a *Artifact) {
	if a == nil || a.Path == "" {
		return
	}
	if err := platform.RemoveIfExists(a.Path); err != nil {
		log.Printf("WARN: Failed to remove %s: %v", a.Path, err)
	}
}

// cleanupJob removes every file a job created
func cleanupJob(job *model.AcquisitionJob) {
	if err := platform.RemoveByStem(job.WorkDir, job.Stem()); err != nil {
		log.Printf("WARN: Cleanup of job %s inputs failed: %v", job.ID, err)
	}
	if err := platform.RemoveIfExists(job.OutputPath); err != nil {
		log.Printf("WARN: Cleanup of job %s output failed: %v", job.ID, err)
	}
}
