package convert

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ytget/yt-bw/internal/model"
	"github.com/ytget/yt-bw/internal/platform"
)

// FFmpeg constants for the monochrome transform
const (
	// MonochromeFilter drops saturation, leaving luma only
	MonochromeFilter = "hue=s=0"

	// Video codec settings
	DefaultVideoCodec = "libx264"
	DefaultThreads    = 4

	// Audio codec settings
	AudioCodec = "aac"

	// Container flags
	FastStartFlag = "+faststart"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFmpegLogLevel      = "error"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	ProbeTimeout        = 30 * time.Second
	stderrTailLines     = 5
)

// Options configures the external tools
type Options struct {
	FFmpegPath  string
	FFprobePath string
	VideoCodec  string
	Threads     int
	Filter      string
}

// DefaultOptions returns the stock ffmpeg settings
func DefaultOptions() Options {
	return Options{
		FFmpegPath:  FFmpegCommand,
		FFprobePath: FFprobeCommand,
		VideoCodec:  DefaultVideoCodec,
		Threads:     DefaultThreads,
		Filter:      MonochromeFilter,
	}
}

// Service runs ffmpeg conversions and merges
type Service struct {
	opts   Options
	runner commandRunner

	mu       sync.Mutex
	onUpdate func(*model.AcquisitionJob, int) // callback for UI updates
}

// NewService creates a conversion service; zero option fields take defaults
func NewService(opts Options) *Service {
	return newService(opts, execRunner{})
}

func newService(opts Options, runner commandRunner) *Service {
	def := DefaultOptions()
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = def.FFmpegPath
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = def.FFprobePath
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = def.VideoCodec
	}
	if opts.Threads <= 0 {
		opts.Threads = def.Threads
	}
	if opts.Filter == "" {
		opts.Filter = def.Filter
	}
	return &Service{opts: opts, runner: runner}
}

// SetProgressFunc sets the callback function for conversion progress
func (s *Service) SetProgressFunc(callback func(*model.AcquisitionJob, int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// Convert writes the black-and-white rendition of job.InputPath to
// job.OutputPath. The job must be Ready; it ends Converted or Failed.
func (s *Service) Convert(ctx context.Context, job *model.AcquisitionJob) error {
	if job.State != model.JobStateReady {
		return fmt.Errorf("%w: job %s is %s", model.ErrNotReady, job.ID, job.State)
	}
	if !platform.FileExists(job.InputPath) {
		return &model.ConversionError{JobID: job.ID, Err: fmt.Errorf("input file does not exist: %s", job.InputPath)}
	}
	if err := job.Transition(model.JobStateConverting); err != nil {
		return err
	}
	s.notifyUpdate(job, 0)

	// Get duration of input file for progress calculation
	duration, err := s.videoDuration(ctx, job.InputPath)
	if err != nil {
		log.Printf("Failed to get video duration for %s: %v", job.InputPath, err)
	}

	var tail []string
	err = s.runner.Run(ctx, s.opts.FFmpegPath, s.BuildFFmpegArgs(job.InputPath, job.OutputPath), func(line string) {
		if percent, ok := ParseProgress(line, duration); ok {
			s.notifyUpdate(job, percent)
			return
		}
		if line != "" && !strings.Contains(line, "=") {
			tail = append(tail, line)
			if len(tail) > stderrTailLines {
				tail = tail[1:]
			}
		}
	})
	if err == nil && !platform.FileExists(job.OutputPath) {
		err = fmt.Errorf("ffmpeg produced no output at %s", job.OutputPath)
	}
	if err != nil {
		if len(tail) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.Join(tail, "; "))
		}
		// Remove partial output file
		if rmErr := platform.RemoveIfExists(job.OutputPath); rmErr != nil {
			log.Printf("Failed to remove partial output %s: %v", job.OutputPath, rmErr)
		}
		job.Fail(err)
		log.Printf("Conversion failed for job %s: %v", job.ID, err)
		return &model.ConversionError{JobID: job.ID, Err: err}
	}

	if err := platform.RemoveIfExists(job.InputPath); err != nil {
		log.Printf("Failed to remove input %s: %v", job.InputPath, err)
	}
	if err := job.Transition(model.JobStateConverted); err != nil {
		return err
	}
	s.notifyUpdate(job, 100)
	return nil
}

// Merge muxes a separate video and audio stream into outputPath without
// re-encoding. ffmpeg's default stream selection picks the video and audio
// track, so argument order does not matter. Inputs are removed on success.
func (s *Service) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := BuildMergeArgs(videoPath, audioPath, outputPath)

	var tail []string
	err := s.runner.Run(ctx, s.opts.FFmpegPath, args, func(line string) {
		if line != "" {
			tail = append(tail, line)
		}
	})
	if err != nil {
		_ = platform.RemoveIfExists(outputPath)
		if len(tail) > 0 {
			return fmt.Errorf("ffmpeg merge failed: %w: %s", err, strings.Join(tail, "; "))
		}
		return fmt.Errorf("ffmpeg merge failed: %w", err)
	}

	// Clean up input files
	_ = os.Remove(videoPath)
	_ = os.Remove(audioPath)
	return nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments for the monochrome transform
func (s *Service) BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-loglevel", FFmpegLogLevel,
		"-i", inputPath,
		"-vf", s.opts.Filter,
		"-c:v", s.opts.VideoCodec,
		"-threads", strconv.Itoa(s.opts.Threads),
		"-c:a", AudioCodec,
		"-movflags", FastStartFlag,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// BuildMergeArgs builds the ffmpeg arguments for a stream-copy merge
func BuildMergeArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-loglevel", FFmpegLogLevel,
		"-i", videoPath,
		"-i", audioPath,
		"-c", "copy",
		outputPath,
	}
}

// ParseProgress converts an `out_time_us=` progress line into percent of totalSeconds
func ParseProgress(line string, totalSeconds float64) (int, bool) {
	if totalSeconds <= 0 || !strings.HasPrefix(line, ProgressTimePrefix) {
		return 0, false
	}
	timeMicroseconds, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || timeMicroseconds < 0 {
		return 0, false
	}

	progress := float64(timeMicroseconds) / 1000000.0 / totalSeconds
	if progress > 1.0 {
		progress = 1.0
	}
	return int(progress * 100), true
}

// videoDuration gets the duration of a video file using ffprobe
func (s *Service) videoDuration(ctx context.Context, filePath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	output, err := s.runner.Output(ctx, s.opts.FFprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// notifyUpdate records percent on the job and calls the callback if set
func (s *Service) notifyUpdate(job *model.AcquisitionJob, percent int) {
	s.mu.Lock()
	job.Percent = percent
	callback := s.onUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(job, percent)
	}
}
