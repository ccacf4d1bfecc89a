package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/yt-bw/internal/model"
)

// fakeRunner emulates ffmpeg/ffprobe without spawning processes
type fakeRunner struct {
	lines    []string
	runErr   error
	write    bool
	duration string
	calls    [][]string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args []string, onLine func(string)) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	for _, line := range r.lines {
		onLine(line)
	}
	if r.write {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("bw"), 0644); err != nil {
			return err
		}
	}
	return r.runErr
}

func (r *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.duration == "" {
		return nil, errors.New("ffprobe not found")
	}
	return []byte(r.duration + "\n"), nil
}

func readyJob(t *testing.T) *model.AcquisitionJob {
	t.Helper()
	job := model.NewJob("https://youtu.be/abc", 720, t.TempDir())
	for _, next := range []model.JobState{model.JobStateDownloading, model.JobStateReconciling, model.JobStateReady} {
		if err := job.Transition(next); err != nil {
			t.Fatalf("Failed to move job to %s: %v", next, err)
		}
	}
	if err := os.WriteFile(job.InputPath, []byte("color"), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	return job
}

func TestNewService_Defaults(t *testing.T) {
	service := NewService(Options{})

	if service.opts.FFmpegPath != FFmpegCommand {
		t.Errorf("Expected ffmpeg path %s, got %s", FFmpegCommand, service.opts.FFmpegPath)
	}
	if service.opts.Threads != DefaultThreads {
		t.Errorf("Expected %d threads, got %d", DefaultThreads, service.opts.Threads)
	}
	if service.opts.Filter != MonochromeFilter {
		t.Errorf("Expected filter %s, got %s", MonochromeFilter, service.opts.Filter)
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	service := NewService(Options{Threads: 2})
	args := service.BuildFFmpegArgs("/input.mp4", "/output.mp4")

	expectedArgs := []string{
		"-y",
		"-loglevel", "error",
		"-i", "/input.mp4",
		"-vf", "hue=s=0",
		"-c:v", "libx264",
		"-threads", "2",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-progress", "pipe:2",
		"-nostats",
		"/output.mp4",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}
	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestBuildMergeArgs(t *testing.T) {
	args := strings.Join(BuildMergeArgs("v.mp4", "a.webm", "out.mp4"), " ")
	expected := "-y -loglevel error -i v.mp4 -i a.webm -c copy out.mp4"
	if args != expected {
		t.Errorf("Expected %q, got %q", expected, args)
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line     string
		total    float64
		expected int
		ok       bool
	}{
		{"out_time_us=5000000", 10, 50, true},
		{"out_time_us=20000000", 10, 100, true},
		{"out_time_us=0", 10, 0, true},
		{"out_time_us=abc", 10, 0, false},
		{"out_time_us=5000000", 0, 0, false},
		{"frame=12", 10, 0, false},
	}

	for _, test := range tests {
		got, ok := ParseProgress(test.line, test.total)
		if got != test.expected || ok != test.ok {
			t.Errorf("ParseProgress(%q, %v) = (%d, %v), expected (%d, %v)", test.line, test.total, got, ok, test.expected, test.ok)
		}
	}
}

func TestConvert_Success(t *testing.T) {
	runner := &fakeRunner{write: true, duration: "10.0", lines: []string{"out_time_us=2500000", "progress=continue"}}
	service := newService(Options{}, runner)
	job := readyJob(t)

	var seen []int
	service.SetProgressFunc(func(_ *model.AcquisitionJob, percent int) {
		seen = append(seen, percent)
	})

	if err := service.Convert(context.Background(), job); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if job.State != model.JobStateConverted {
		t.Errorf("Expected Converted, got %s", job.State)
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		t.Errorf("Expected output file: %v", err)
	}
	if _, err := os.Stat(job.InputPath); !os.IsNotExist(err) {
		t.Errorf("Expected input file to be removed, stat err = %v", err)
	}
	expected := []int{0, 25, 100}
	if len(seen) != len(expected) {
		t.Fatalf("Expected progress %v, got %v", expected, seen)
	}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Errorf("Progress %d: expected %d, got %d", i, expected[i], seen[i])
		}
	}
	if filepath.Base(runner.calls[0][0]) != FFmpegCommand {
		t.Errorf("Expected ffmpeg to run, got %v", runner.calls[0])
	}
}

func TestConvert_RequiresReady(t *testing.T) {
	service := newService(Options{}, &fakeRunner{})
	job := model.NewJob("https://youtu.be/abc", 720, t.TempDir())

	err := service.Convert(context.Background(), job)
	if !errors.Is(err, model.ErrNotReady) {
		t.Fatalf("Expected ErrNotReady, got %v", err)
	}
	if job.State != model.JobStateCreated {
		t.Errorf("Rejected job must keep its state, got %s", job.State)
	}
}

func TestConvert_FailureRemovesPartialOutput(t *testing.T) {
	runner := &fakeRunner{write: true, runErr: errors.New("exit status 1"), lines: []string{"Unknown encoder 'libx999'"}}
	service := newService(Options{VideoCodec: "libx999"}, runner)
	job := readyJob(t)

	err := service.Convert(context.Background(), job)

	var convErr *model.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Expected ConversionError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Errorf("Expected ffmpeg stderr in error, got %v", err)
	}
	if job.State != model.JobStateFailed {
		t.Errorf("Expected Failed, got %s", job.State)
	}
	if _, statErr := os.Stat(job.OutputPath); !os.IsNotExist(statErr) {
		t.Error("Expected partial output to be removed")
	}
}

func TestConvert_MissingOutput(t *testing.T) {
	service := newService(Options{}, &fakeRunner{})
	job := readyJob(t)

	err := service.Convert(context.Background(), job)
	if err == nil {
		t.Fatal("Expected error when ffmpeg writes nothing")
	}
	if job.State != model.JobStateFailed {
		t.Errorf("Expected Failed, got %s", job.State)
	}
}

func TestConvert_NonExistentInput(t *testing.T) {
	service := newService(Options{}, &fakeRunner{})
	job := readyJob(t)
	os.Remove(job.InputPath)

	err := service.Convert(context.Background(), job)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "temp_x.f137.mp4")
	audio := filepath.Join(dir, "temp_x.f251.webm")
	out := filepath.Join(dir, "temp_x.mp4")
	for _, p := range []string{video, audio} {
		if err := os.WriteFile(p, []byte("s"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	service := newService(Options{}, &fakeRunner{write: true})
	if err := service.Merge(context.Background(), video, audio, out); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "temp_x.mp4" {
		t.Errorf("Expected only merged output to remain, got %v", entries)
	}
}

func TestMerge_Failure(t *testing.T) {
	dir := t.TempDir()
	service := newService(Options{}, &fakeRunner{write: true, runErr: errors.New("exit status 1")})

	err := service.Merge(context.Background(), filepath.Join(dir, "v"), filepath.Join(dir, "a"), filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Fatal("Expected merge error")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.mp4")); !os.IsNotExist(statErr) {
		t.Error("Expected partial merge output to be removed")
	}
}
